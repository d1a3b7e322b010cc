package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gtfs-rt-rater/server/internal/api/docs"
	"github.com/gtfs-rt-rater/server/internal/api/handlers"
	"github.com/gtfs-rt-rater/server/pkg/config"
	"github.com/gtfs-rt-rater/server/pkg/logger"
	"github.com/gtfs-rt-rater/server/pkg/metrics"
)

// Handlers groups the endpoint handlers mounted by the router
type Handlers struct {
	Feeds *handlers.FeedsHandler
	Admin *handlers.AdminHandler
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, cfg *config.Config, m *metrics.Manager, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()

	// Public endpoints
	api.HandleFunc("/healthcheck", handlers.Health).Methods("GET")
	api.HandleFunc("/feeds", h.Feeds.ListFeeds).Methods("GET")
	api.HandleFunc("/feeds/{feed_id}", h.Feeds.GetFeedDetail).Methods("GET")

	// Admin endpoints
	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/refresh-agency-names", h.Admin.RefreshAgencyNames).Methods("POST")

	// API documentation
	if err := docs.Register(r); err != nil {
		log.WithError(err).Error("API docs unavailable")
	}

	if cfg.MetricsEnabled && m != nil {
		r.Handle("/metrics", m.Handler()).Methods("GET")
	}

	// Apply middleware
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))
	r.Use(metricsMiddleware(m))
	r.Use(recoveryMiddleware(log))

	return corsMiddleware("https://" + cfg.FrontendHost)(r)
}

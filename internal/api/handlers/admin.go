package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/gtfs-rt-rater/server/internal/agency"
	"github.com/gtfs-rt-rater/server/pkg/logger"
)

// AdminTokenHeader carries the shared admin secret
const AdminTokenHeader = "x-admin-token"

// Refresher runs one agency name refresh
type Refresher interface {
	Refresh(ctx context.Context, trigger string) (int, error)
}

// RefreshResponse is the body of a successful admin refresh
type RefreshResponse struct {
	Updated int `json:"updated"`
}

// AdminHandler handles administrative endpoints
// ⭐ SSOT: 관리자 API 핸들러는 이 구조체에서만
type AdminHandler struct {
	refresher Refresher
	token     string
	limiter   *rate.Limiter
	logger    *logger.Logger
}

// NewAdminHandler creates a new admin handler. An empty token rejects every
// call; perMinute bounds authorized refreshes, 0 means unlimited.
func NewAdminHandler(refresher Refresher, token string, perMinute int, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		refresher: refresher,
		token:     token,
		limiter:   refreshLimiter(perMinute),
		logger:    log,
	}
}

// refreshLimiter allows perMinute calls per minute with a burst of the same size
func refreshLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}

// RefreshAgencyNames fetches agency names from MobilityDatabase and stores them
// POST /api/admin/refresh-agency-names
func (h *AdminHandler) RefreshAgencyNames(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		h.logger.WithField("remote_addr", r.RemoteAddr).Warn("Rejected admin refresh")
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	// only authorized calls spend the budget
	if !h.limiter.Allow() {
		h.logger.Warn("Admin refresh rate limit exceeded")
		w.Header().Set("Retry-After", "60")
		respondError(w, http.StatusTooManyRequests, "Too many requests")
		return
	}

	n, err := h.refresher.Refresh(r.Context(), agency.TriggerAdmin)
	if err != nil {
		h.logger.WithError(err).Error("Admin agency name refresh failed")
		respondError(w, http.StatusInternalServerError, "Failed to store agency names")
		return
	}

	respondJSON(w, http.StatusOK, RefreshResponse{Updated: n})
}

func (h *AdminHandler) authorized(r *http.Request) bool {
	if h.token == "" {
		return false
	}
	got := r.Header.Get(AdminTokenHeader)
	if got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) == 1
}

package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gtfs-rt-rater/server/internal/contracts"
	"github.com/gtfs-rt-rater/server/pkg/logger"
)

// FeedsCacheControl lets the CDN and browsers keep feed documents for 15 minutes
const FeedsCacheControl = "public, max-age=900"

// FeedsHandler serves the aggregate feed documents
// ⭐ SSOT: 피드 조회 API 핸들러는 이 구조체에서만
type FeedsHandler struct {
	reader contracts.FeedReader
	logger *logger.Logger
}

// NewFeedsHandler creates a new feeds handler over the active backend
func NewFeedsHandler(reader contracts.FeedReader, log *logger.Logger) *FeedsHandler {
	return &FeedsHandler{
		reader: reader,
		logger: log,
	}
}

// ListFeeds returns the feeds list document.
// An absent document is served as JSON null, which clients tell apart from an empty list.
// GET /api/feeds
func (h *FeedsHandler) ListFeeds(w http.ResponseWriter, r *http.Request) {
	feeds, err := h.reader.GetFeeds(r.Context())
	if err != nil && !errors.Is(err, contracts.ErrNotFound) {
		h.logger.WithError(err).Error("Failed to get feeds list")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve feeds")
		return
	}

	w.Header().Set("Cache-Control", FeedsCacheControl)
	if feeds == nil {
		respondJSON(w, http.StatusOK, nil)
		return
	}
	respondJSON(w, http.StatusOK, feeds)
}

// GetFeedDetail returns one feed detail document
// GET /api/feeds/{feed_id}
func (h *FeedsHandler) GetFeedDetail(w http.ResponseWriter, r *http.Request) {
	feedID := mux.Vars(r)["feed_id"]

	detail, err := h.reader.GetFeedDetail(r.Context(), feedID)
	if errors.Is(err, contracts.ErrNotFound) {
		respondError(w, http.StatusNotFound, fmt.Sprintf("Feed '%s' not found", feedID))
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("feed_id", feedID).Error("Failed to get feed detail")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve feed detail")
		return
	}

	w.Header().Set("Cache-Control", FeedsCacheControl)
	respondJSON(w, http.StatusOK, detail)
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtfs-rt-rater/server/internal/contracts"
	"github.com/gtfs-rt-rater/server/pkg/logger"
)

type stubReader struct {
	feeds     *contracts.FeedsList
	feedsErr  error
	details   map[string]*contracts.FeedDetail
	detailErr error
}

func (s *stubReader) GetFeeds(ctx context.Context) (*contracts.FeedsList, error) {
	if s.feedsErr != nil {
		return nil, s.feedsErr
	}
	if s.feeds == nil {
		return nil, contracts.ErrNotFound
	}
	return s.feeds, nil
}

func (s *stubReader) GetFeedDetail(ctx context.Context, feedID string) (*contracts.FeedDetail, error) {
	if s.detailErr != nil {
		return nil, s.detailErr
	}
	d, ok := s.details[feedID]
	if !ok {
		return nil, contracts.ErrNotFound
	}
	return d, nil
}

type stubRefresher struct {
	n     int
	err   error
	calls int
}

func (r *stubRefresher) Refresh(ctx context.Context, trigger string) (int, error) {
	r.calls++
	return r.n, r.err
}

// serve routes through mux so path variables resolve
func serve(pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc(pattern, h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodGet, "/api/healthcheck", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"pass"}`, rec.Body.String())
}

func TestListFeeds(t *testing.T) {
	name := "Metro Transit"
	reader := &stubReader{feeds: &contracts.FeedsList{
		GeneratedAt: "2024-05-01T00:00:00Z",
		Feeds: []contracts.FeedSummary{
			{FeedID: "mdb-1", AgencyName: &name, OverallGrade: "A", OverallScore: 0.93, UptimePercent: 99.1},
		},
	}}
	h := NewFeedsHandler(reader, logger.NewNop())

	rec := serve("/api/feeds", h.ListFeeds, httptest.NewRequest(http.MethodGet, "/api/feeds", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, FeedsCacheControl, rec.Header().Get("Cache-Control"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body contracts.FeedsList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Feeds, 1)
	assert.Equal(t, "Metro Transit", *body.Feeds[0].AgencyName)
}

func TestListFeedsAbsent(t *testing.T) {
	h := NewFeedsHandler(&stubReader{}, logger.NewNop())

	rec := serve("/api/feeds", h.ListFeeds, httptest.NewRequest(http.MethodGet, "/api/feeds", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestListFeedsBackendError(t *testing.T) {
	h := NewFeedsHandler(&stubReader{feedsErr: errors.New("access denied")}, logger.NewNop())

	rec := serve("/api/feeds", h.ListFeeds, httptest.NewRequest(http.MethodGet, "/api/feeds", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Cache-Control"))
	assert.NotContains(t, rec.Body.String(), "access denied")
}

func TestGetFeedDetail(t *testing.T) {
	reader := &stubReader{details: map[string]*contracts.FeedDetail{
		"mdb-1": {FeedID: "mdb-1", SchemaVersion: 1, WindowMinutes: 60},
	}}
	h := NewFeedsHandler(reader, logger.NewNop())

	rec := serve("/api/feeds/{feed_id}", h.GetFeedDetail, httptest.NewRequest(http.MethodGet, "/api/feeds/mdb-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, FeedsCacheControl, rec.Header().Get("Cache-Control"))

	var body contracts.FeedDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "mdb-1", body.FeedID)
	assert.NotContains(t, rec.Body.String(), "agency_name")
}

func TestGetFeedDetailNotFound(t *testing.T) {
	h := NewFeedsHandler(&stubReader{}, logger.NewNop())

	rec := serve("/api/feeds/{feed_id}", h.GetFeedDetail, httptest.NewRequest(http.MethodGet, "/api/feeds/unknown", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Feed 'unknown' not found"}`, rec.Body.String())
}

func TestGetFeedDetailBackendError(t *testing.T) {
	h := NewFeedsHandler(&stubReader{detailErr: errors.New("decode failed")}, logger.NewNop())

	rec := serve("/api/feeds/{feed_id}", h.GetFeedDetail, httptest.NewRequest(http.MethodGet, "/api/feeds/mdb-1", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRefreshAgencyNames(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		header     string
		wantStatus int
		wantCalls  int
	}{
		{"valid token", "secret", "secret", http.StatusOK, 1},
		{"wrong token", "secret", "wrong", http.StatusUnauthorized, 0},
		{"missing header", "secret", "", http.StatusUnauthorized, 0},
		{"no secret configured", "", "", http.StatusUnauthorized, 0},
		{"no secret configured, header sent", "", "anything", http.StatusUnauthorized, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refresher := &stubRefresher{n: 7}
			h := NewAdminHandler(refresher, tt.configured, 0, logger.NewNop())

			req := httptest.NewRequest(http.MethodPost, "/api/admin/refresh-agency-names", nil)
			if tt.header != "" {
				req.Header.Set(AdminTokenHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			h.RefreshAgencyNames(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalls, refresher.calls)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"updated":7}`, rec.Body.String())
			}
		})
	}
}

func TestRefreshAgencyNamesNothingFetched(t *testing.T) {
	h := NewAdminHandler(&stubRefresher{n: 0}, "secret", 0, logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/refresh-agency-names", nil)
	req.Header.Set(AdminTokenHeader, "secret")
	rec := httptest.NewRecorder()
	h.RefreshAgencyNames(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"updated":0}`, rec.Body.String())
}

func TestRefreshAgencyNamesStoreFailure(t *testing.T) {
	h := NewAdminHandler(&stubRefresher{err: errors.New("put failed")}, "secret", 0, logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/refresh-agency-names", nil)
	req.Header.Set(AdminTokenHeader, "secret")
	rec := httptest.NewRecorder()
	h.RefreshAgencyNames(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRefreshAgencyNamesRateLimit(t *testing.T) {
	refresher := &stubRefresher{n: 1}
	h := NewAdminHandler(refresher, "secret", 1, logger.NewNop())

	post := func(token string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/refresh-agency-names", nil)
		req.Header.Set(AdminTokenHeader, token)
		rec := httptest.NewRecorder()
		h.RefreshAgencyNames(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, post("wrong"))
	assert.Equal(t, http.StatusOK, post("secret"))
	assert.Equal(t, http.StatusTooManyRequests, post("secret"))
	assert.Equal(t, http.StatusUnauthorized, post("wrong"), "bad tokens stay 401 once the budget is spent")
	assert.Equal(t, 1, refresher.calls)
}

func TestRefreshLimiterUnlimited(t *testing.T) {
	limiter := refreshLimiter(0)
	for i := 0; i < 100; i++ {
		require.True(t, limiter.Allow())
	}
}

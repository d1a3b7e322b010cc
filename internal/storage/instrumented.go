package storage

import (
	"context"
	"errors"

	"github.com/gtfs-rt-rater/server/internal/contracts"
	"github.com/gtfs-rt-rater/server/pkg/metrics"
)

// instrumentedReader counts reads per backend and outcome
type instrumentedReader struct {
	next    contracts.FeedReader
	backend string
	metrics *metrics.Manager
}

// Instrument wraps reader so that every read is recorded in m
func Instrument(reader contracts.FeedReader, backend Backend, m *metrics.Manager) contracts.FeedReader {
	if m == nil {
		return reader
	}
	return &instrumentedReader{next: reader, backend: string(backend), metrics: m}
}

func (r *instrumentedReader) GetFeeds(ctx context.Context) (*contracts.FeedsList, error) {
	list, err := r.next.GetFeeds(ctx)
	r.record(err)
	return list, err
}

func (r *instrumentedReader) GetFeedDetail(ctx context.Context, feedID string) (*contracts.FeedDetail, error) {
	detail, err := r.next.GetFeedDetail(ctx, feedID)
	r.record(err)
	return detail, err
}

func (r *instrumentedReader) record(err error) {
	switch {
	case err == nil:
		r.metrics.RecordDocumentRead(r.backend, "ok")
	case errors.Is(err, contracts.ErrNotFound):
		r.metrics.RecordDocumentRead(r.backend, "not_found")
	default:
		r.metrics.RecordDocumentRead(r.backend, "error")
	}
}

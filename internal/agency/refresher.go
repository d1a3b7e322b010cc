// Package agency keeps the agency name mapping in the object store current.
package agency

import (
	"context"
	"fmt"

	"github.com/gtfs-rt-rater/server/internal/contracts"
	"github.com/gtfs-rt-rater/server/internal/external/mobilitydb"
	"github.com/gtfs-rt-rater/server/pkg/logger"
	"github.com/gtfs-rt-rater/server/pkg/metrics"
)

// Refresh triggers
const (
	TriggerAdmin    = "admin"
	TriggerSchedule = "schedule"
	TriggerCLI      = "cli"
)

// Fetcher builds a fresh agency name mapping
type Fetcher interface {
	FetchAgencyNames(ctx context.Context) mobilitydb.FetchResult
}

// Refresher fetches agency names and writes them back to the store
// ⭐ SSOT: 기관명 갱신 흐름 (관리자 + 스케줄) 은 여기서만
type Refresher struct {
	fetcher Fetcher
	writer  contracts.AgencyNameWriter
	logger  *logger.Logger
	metrics *metrics.Manager
}

// NewRefresher creates a refresher. writer may be nil when the active backend
// has nowhere to store the mapping.
func NewRefresher(fetcher Fetcher, writer contracts.AgencyNameWriter, log *logger.Logger, m *metrics.Manager) *Refresher {
	return &Refresher{
		fetcher: fetcher,
		writer:  writer,
		logger:  log.WithComponent("agency-refresher"),
		metrics: m,
	}
}

// Refresh fetches the mapping and stores it if anything was fetched. It returns
// the number of names fetched. Fetch problems only yield a smaller count; the
// returned error is reserved for a failed store write.
func (r *Refresher) Refresh(ctx context.Context, trigger string) (int, error) {
	log := r.logger.WithField("trigger", trigger)

	if r.writer == nil {
		log.Info("No writable store for agency names; skipping refresh")
		r.metrics.RecordAgencyRefresh(trigger, metrics.RefreshSkipped, 0)
		return 0, nil
	}

	result := r.fetcher.FetchAgencyNames(ctx)
	if !result.OK() {
		log.WithError(result.Err).WithField("names", len(result.Names)).Warn("Agency name fetch incomplete")
	}

	if len(result.Names) == 0 {
		log.Info("No agency names fetched; store left unchanged")
		r.metrics.RecordAgencyRefresh(trigger, metrics.RefreshEmpty, 0)
		return 0, nil
	}

	if err := r.writer.PutAgencyNames(ctx, result.Names); err != nil {
		r.metrics.RecordAgencyRefresh(trigger, metrics.RefreshFailed, 0)
		return 0, fmt.Errorf("store agency names: %w", err)
	}

	r.metrics.RecordAgencyRefresh(trigger, metrics.RefreshUpdated, len(result.Names))
	log.WithField("count", len(result.Names)).Info("Agency names refreshed")
	return len(result.Names), nil
}

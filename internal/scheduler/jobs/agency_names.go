package jobs

import (
	"context"
	"fmt"

	"github.com/gtfs-rt-rater/server/internal/agency"
	"github.com/gtfs-rt-rater/server/pkg/logger"
)

// AgencyNamesJobName is the registered name of the agency name refresh job
const AgencyNamesJobName = "agency_names_refresh"

// DefaultAgencyNamesSchedule runs the refresh once a day at midnight
const DefaultAgencyNamesSchedule = "@daily"

// Refresher is the refresh flow the job drives
type Refresher interface {
	Refresh(ctx context.Context, trigger string) (int, error)
}

// AgencyNamesJob refreshes the agency name mapping from MobilityDatabase
// ⭐ SSOT: 기관명 정기 갱신 스케줄은 이 Job에서만
type AgencyNamesJob struct {
	refresher Refresher
	schedule  string
	logger    *logger.Logger
}

// NewAgencyNamesJob creates the job; an empty schedule means DefaultAgencyNamesSchedule
func NewAgencyNamesJob(refresher Refresher, schedule string, log *logger.Logger) *AgencyNamesJob {
	if schedule == "" {
		schedule = DefaultAgencyNamesSchedule
	}
	return &AgencyNamesJob{
		refresher: refresher,
		schedule:  schedule,
		logger:    log,
	}
}

// Name returns the job name
func (j *AgencyNamesJob) Name() string {
	return AgencyNamesJobName
}

// Schedule returns the cron schedule
func (j *AgencyNamesJob) Schedule() string {
	return j.schedule
}

// Run executes the refresh. Only a failed store write is an error, so the
// scheduler retries writes but not upstream outages.
func (j *AgencyNamesJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled agency name refresh")

	n, err := j.refresher.Refresh(ctx, agency.TriggerSchedule)
	if err != nil {
		return fmt.Errorf("refresh agency names: %w", err)
	}

	j.logger.WithField("updated", n).Info("Scheduled agency name refresh completed")
	return nil
}

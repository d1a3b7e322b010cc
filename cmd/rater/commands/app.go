package commands

import (
	"context"
	"fmt"

	"github.com/gtfs-rt-rater/server/internal/agency"
	"github.com/gtfs-rt-rater/server/internal/external/mobilitydb"
	"github.com/gtfs-rt-rater/server/internal/scheduler"
	"github.com/gtfs-rt-rater/server/internal/scheduler/jobs"
	"github.com/gtfs-rt-rater/server/internal/storage"
	"github.com/gtfs-rt-rater/server/pkg/config"
	"github.com/gtfs-rt-rater/server/pkg/httputil"
	"github.com/gtfs-rt-rater/server/pkg/logger"
	"github.com/gtfs-rt-rater/server/pkg/metrics"
	"github.com/gtfs-rt-rater/server/pkg/redis"
)

// app holds the wired dependencies shared by every command
// ⭐ SSOT: 의존성 조립 (composition root) 은 여기서만
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	metrics   *metrics.Manager
	backend   *storage.Resolved
	redis     *redis.Client
	refresher *agency.Refresher
}

// loadConfig loads config and applies the global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp builds config, logger, metrics, backend, and the refresh flow
func newApp(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	// 2. Initialize logger and metrics
	log := logger.New(cfg)
	m := metrics.NewManager()

	// 3. Select backend (once per process)
	backend, err := storage.Resolve(ctx, cfg, log, m)
	if err != nil {
		return nil, fmt.Errorf("resolve backend: %w", err)
	}
	log.WithField("backend", backend.Backend).Info("Document backend selected")

	// 4. Connect to Redis (shared MobilityDatabase rate limit across instances)
	rdb, err := redis.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// 5. Create HTTP client: no retries, a failed call ends the fetch
	httpClient := httputil.NewWithTimeout(log, cfg.MobilityDB.Timeout).DisableRetry()
	if rdb.Enabled() {
		httpClient.WithRateLimiter(redis.NewRateLimiter(rdb, "gtfs-rt-rater"), redis.MobilityDBRateLimit)
	}

	// 6. Create MobilityDatabase client and refresher
	mdb := mobilitydb.NewClient(cfg.MobilityDB, httpClient, log, m)
	refresher := agency.NewRefresher(mdb, backend.Writer, log, m)

	return &app{
		cfg:       cfg,
		log:       log,
		metrics:   m,
		backend:   backend,
		redis:     rdb,
		refresher: refresher,
	}, nil
}

// newScheduler registers every job on a fresh scheduler
func (a *app) newScheduler() (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.log)

	if err := sched.AddJob(jobs.NewAgencyNamesJob(a.refresher, a.cfg.Agency.RefreshSchedule, a.log)); err != nil {
		return nil, fmt.Errorf("add agency names job: %w", err)
	}

	return sched, nil
}

func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close redis")
	}
}

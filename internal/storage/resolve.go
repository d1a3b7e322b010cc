package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/gtfs-rt-rater/server/internal/contracts"
	"github.com/gtfs-rt-rater/server/internal/storage/objectstore"
	"github.com/gtfs-rt-rater/server/internal/storage/static"
	"github.com/gtfs-rt-rater/server/pkg/config"
	"github.com/gtfs-rt-rater/server/pkg/logger"
	"github.com/gtfs-rt-rater/server/pkg/metrics"
)

// Resolved is the wiring produced from the selected backend.
// Writer is nil for the static backend, which has nowhere to store agency names.
type Resolved struct {
	Backend Backend
	Reader  contracts.FeedReader
	Writer  contracts.AgencyNameWriter
}

// awsLoader loads the AWS config at most once, and only when needed
type awsLoader struct {
	region string
	once   sync.Once
	cfg    aws.Config
	err    error
}

func (l *awsLoader) load(ctx context.Context) (aws.Config, error) {
	l.once.Do(func() {
		l.cfg, l.err = objectstore.LoadAWSConfig(ctx, l.region)
	})
	return l.cfg, l.err
}

// Resolve selects the backend and builds its reader (and writer)
func Resolve(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Manager) (*Resolved, error) {
	loader := &awsLoader{region: cfg.Storage.Region}

	checker := CheckerFunc(func(ctx context.Context) bool {
		awsCfg, err := loader.load(ctx)
		if err != nil {
			log.WithError(err).Warn("AWS config unavailable")
			return false
		}
		return objectstore.NewSTSChecker(sts.NewFromConfig(awsCfg), log).Check(ctx)
	})

	backend := NewSelector(cfg.Storage, checker, log).Select(ctx)
	m.SetBackend(string(backend))

	return build(ctx, backend, cfg, log, m, loader)
}

func build(ctx context.Context, backend Backend, cfg *config.Config, log *logger.Logger, m *metrics.Manager, loader *awsLoader) (*Resolved, error) {
	if backend == BackendStatic {
		reader := static.NewReader(cfg.Storage.StaticDir)
		return &Resolved{
			Backend: backend,
			Reader:  Instrument(reader, backend, m),
		}, nil
	}

	if cfg.Storage.Bucket == "" {
		return nil, fmt.Errorf("remote backend requires GTFS_RT_RATER_BUCKET")
	}
	awsCfg, err := loader.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	store := objectstore.New(objectstore.NewS3Client(awsCfg), cfg.Storage.Bucket, log, objectstore.WithMetrics(m))
	return &Resolved{
		Backend: backend,
		Reader:  Instrument(store, backend, m),
		Writer:  store,
	}, nil
}

package storage

import (
	"context"
	"strings"
	"sync"

	"github.com/gtfs-rt-rater/server/pkg/config"
	"github.com/gtfs-rt-rater/server/pkg/logger"
)

// Backend names the source of aggregate documents
type Backend string

const (
	BackendStatic Backend = "static"
	BackendRemote Backend = "remote"
)

// CredentialChecker reports whether the remote store is reachable with the
// ambient credentials
type CredentialChecker interface {
	Check(ctx context.Context) bool
}

// CheckerFunc adapts a function to CredentialChecker
type CheckerFunc func(ctx context.Context) bool

// Check implements CredentialChecker
func (f CheckerFunc) Check(ctx context.Context) bool { return f(ctx) }

// Selector decides once per process which backend serves documents
// ⭐ SSOT: 백엔드 선택은 이 구조체에서만
type Selector struct {
	cfg     config.StorageConfig
	checker CredentialChecker
	logger  *logger.Logger

	once    sync.Once
	backend Backend
}

// NewSelector creates a selector; nothing is probed until Select is called
func NewSelector(cfg config.StorageConfig, checker CredentialChecker, log *logger.Logger) *Selector {
	return &Selector{
		cfg:     cfg,
		checker: checker,
		logger:  log.WithComponent("backend-selector"),
	}
}

// Select returns the memoized backend, deciding on first use
func (s *Selector) Select(ctx context.Context) Backend {
	s.once.Do(func() {
		s.backend = s.decide(ctx)
	})
	return s.backend
}

func (s *Selector) decide(ctx context.Context) Backend {
	switch source := strings.ToLower(s.cfg.BackendSource); source {
	case "remote", "aws":
		s.logger.WithField("backend", BackendRemote).Info("Backend set explicitly")
		return BackendRemote
	case "static":
		s.logger.WithField("backend", BackendStatic).Info("Backend set explicitly")
		return BackendStatic
	case "":
	default:
		s.logger.WithField("backend_source", source).Warn("Unrecognized BACKEND_SOURCE, auto-detecting")
	}

	if s.cfg.Bucket == "" {
		s.logger.Info("No bucket configured, using static backend")
		return BackendStatic
	}
	if s.checker == nil || !s.checker.Check(ctx) {
		s.logger.WithField("bucket", s.cfg.Bucket).Info("No usable AWS credentials, using static backend")
		return BackendStatic
	}

	s.logger.WithField("bucket", s.cfg.Bucket).Info("AWS credentials available, using remote backend")
	return BackendRemote
}

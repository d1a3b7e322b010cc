package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/gtfs-rt-rater/server/internal/contracts"
	"github.com/gtfs-rt-rater/server/pkg/logger"
	"github.com/gtfs-rt-rater/server/pkg/metrics"
)

// Storage keys written by the rating pipeline and by the agency refresh
const (
	FeedsKey       = "aggregates/feeds.json"
	AgencyNamesKey = "aggregates/agency_names.json"
	feedDetailKeyF = "aggregates/feeds/%s.json"
)

// FeedDetailKey returns the object key of a feed's detail document
func FeedDetailKey(feedID string) string {
	return fmt.Sprintf(feedDetailKeyF, feedID)
}

// ObjectAPI is the part of *s3.Client the store uses
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store reads aggregate documents from S3, enriches them with agency names,
// and writes the agency name mapping.
// ⭐ SSOT: S3 문서 조회/기관명 저장은 이 구조체에서만
type Store struct {
	api     ObjectAPI
	bucket  string
	cache   *AgencyNameCache
	logger  *logger.Logger
	metrics *metrics.Manager
}

// Option customises a Store
type Option func(*Store)

// WithCache replaces the default one-hour agency name cache
func WithCache(cache *AgencyNameCache) Option {
	return func(s *Store) { s.cache = cache }
}

// WithMetrics records cache lookups
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Store) { s.metrics = m }
}

// New creates a store over bucket
func New(api ObjectAPI, bucket string, log *logger.Logger, opts ...Option) *Store {
	s := &Store{
		api:    api,
		bucket: bucket,
		cache:  NewAgencyNameCache(AgencyNamesTTL, SystemClock),
		logger: log.WithComponent("objectstore"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetFeeds returns the enriched feeds list
func (s *Store) GetFeeds(ctx context.Context) (*contracts.FeedsList, error) {
	var list contracts.FeedsList
	if err := s.getJSON(ctx, FeedsKey, &list); err != nil {
		return nil, err
	}

	list.ApplyAgencyNames(s.agencyNames(ctx))
	return &list, nil
}

// GetFeedDetail returns the enriched detail document of feedID
func (s *Store) GetFeedDetail(ctx context.Context, feedID string) (*contracts.FeedDetail, error) {
	var detail contracts.FeedDetail
	if err := s.getJSON(ctx, FeedDetailKey(feedID), &detail); err != nil {
		return nil, err
	}

	detail.ApplyAgencyNames(s.agencyNames(ctx))
	return &detail, nil
}

// PutAgencyNames writes the mapping and, once the write succeeded, serves it
// from memory immediately.
func (s *Store) PutAgencyNames(ctx context.Context, names contracts.AgencyNames) error {
	if names == nil {
		names = contracts.AgencyNames{}
	}
	data, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("encode agency names: %w", err)
	}

	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(AgencyNamesKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, AgencyNamesKey, err)
	}

	s.cache.Put(names)

	s.logger.WithField("count", len(names)).Info("Agency names stored")
	return nil
}

// agencyNames returns the cached mapping, loading it on a miss. Failures
// degrade to an empty mapping and are not cached.
func (s *Store) agencyNames(ctx context.Context) contracts.AgencyNames {
	if names, ok := s.cache.Get(); ok {
		s.metrics.RecordAgencyCache(metrics.CacheHit)
		return names
	}
	s.metrics.RecordAgencyCache(metrics.CacheMiss)

	var names contracts.AgencyNames
	err := s.getJSON(ctx, AgencyNamesKey, &names)
	switch {
	case errors.Is(err, contracts.ErrNotFound):
		names = contracts.AgencyNames{}
	case err != nil:
		s.logger.WithError(err).Warn("Agency names unavailable, serving without them")
		return contracts.AgencyNames{}
	}

	s.cache.Put(names)
	return names
}

// getJSON fetches key and decodes it into dest; NoSuchKey maps to ErrNotFound
func (s *Store) getJSON(ctx context.Context, key string, dest interface{}) error {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if IsNotFound(err) {
			return contracts.ErrNotFound
		}
		return fmt.Errorf("get s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return fmt.Errorf("read s3://%s/%s: %w", s.bucket, key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// IsNotFound reports whether err is S3's missing-key error
func IsNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

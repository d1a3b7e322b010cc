package contracts

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the requested document does not exist in the
// active backend. It is an expected outcome, not a failure.
var ErrNotFound = errors.New("document not found")

// FeedReader reads the aggregate documents produced by the rating pipeline
// ⭐ SSOT: 피드 문서 조회 인터페이스
type FeedReader interface {
	GetFeeds(ctx context.Context) (*FeedsList, error)
	GetFeedDetail(ctx context.Context, feedID string) (*FeedDetail, error)
}

// AgencyNameWriter persists the agency name mapping
// ⭐ SSOT: 기관명 매핑 저장 인터페이스
type AgencyNameWriter interface {
	PutAgencyNames(ctx context.Context, names AgencyNames) error
}

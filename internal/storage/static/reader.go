package static

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gtfs-rt-rater/server/internal/contracts"
)

const (
	feedsFile = "feeds.json"
	feedsDir  = "feeds"
)

// Reader serves aggregate documents from a local directory tree for
// development without cloud credentials. It never attaches agency names.
// ⭐ SSOT: 로컬 예제 데이터 조회는 이 구조체에서만
type Reader struct {
	baseDir string
}

// NewReader creates a reader rooted at baseDir (e.g. examples/aggregates)
func NewReader(baseDir string) *Reader {
	return &Reader{baseDir: baseDir}
}

// BaseDir returns the directory documents are read from
func (r *Reader) BaseDir() string {
	return r.baseDir
}

// GetFeeds reads <base>/feeds.json
func (r *Reader) GetFeeds(ctx context.Context) (*contracts.FeedsList, error) {
	var list contracts.FeedsList
	if err := r.readJSON(filepath.Join(r.baseDir, feedsFile), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetFeedDetail reads <base>/feeds/<feedID>.json
func (r *Reader) GetFeedDetail(ctx context.Context, feedID string) (*contracts.FeedDetail, error) {
	if !validFeedID(feedID) {
		return nil, contracts.ErrNotFound
	}

	var detail contracts.FeedDetail
	if err := r.readJSON(filepath.Join(r.baseDir, feedsDir, feedID+".json"), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// readJSON maps a missing file to ErrNotFound; every other failure is returned
// as is so that a misconfigured checkout fails loudly.
func (r *Reader) readJSON(path string, dest interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return contracts.ErrNotFound
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// validFeedID rejects ids that would escape the feeds directory
func validFeedID(feedID string) bool {
	if feedID == "" || feedID == "." || feedID == ".." {
		return false
	}
	return !strings.ContainsAny(feedID, `/\`) && !strings.Contains(feedID, "..")
}

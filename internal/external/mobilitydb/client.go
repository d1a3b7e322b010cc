package mobilitydb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gtfs-rt-rater/server/internal/contracts"
	"github.com/gtfs-rt-rater/server/pkg/config"
	"github.com/gtfs-rt-rater/server/pkg/httputil"
	"github.com/gtfs-rt-rater/server/pkg/logger"
	"github.com/gtfs-rt-rater/server/pkg/metrics"
)

// Client fetches GTFS-RT feed metadata from the MobilityDatabase REST API
// ⭐ SSOT: MobilityDatabase API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	metrics    *metrics.Manager
	cfg        config.MobilityDBConfig
}

// NewClient creates a new MobilityDatabase client. httpClient is expected to
// have retries disabled: a failed call ends the fetch.
func NewClient(cfg config.MobilityDBConfig, httpClient *httputil.Client, log *logger.Logger, m *metrics.Manager) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = httputil.DefaultTimeout
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("mobilitydb"),
		metrics:    m,
		cfg:        cfg,
	}
}

// FetchAgencyNames builds the feed id -> provider mapping. It never fails
// outright: problems are reported in FetchResult.Err alongside any names
// gathered before the failure.
func (c *Client) FetchAgencyNames(ctx context.Context) FetchResult {
	result := FetchResult{Names: contracts.AgencyNames{}}

	if c.cfg.APIKey == "" {
		c.logger.Warn("MOBILITY_DB_API_KEY not set; skipping agency name fetch")
		result.Err = ErrNoAPIKey
		return result
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		c.metrics.RecordMobilityDBFailure("token")
		c.logger.WithError(err).Error("MobilityDatabase token exchange failed")
		result.Err = fmt.Errorf("token exchange: %w", err)
		return result
	}

	for offset := 0; ; offset += PageLimit {
		if result.Pages >= c.cfg.MaxPages {
			c.logger.WithField("pages", result.Pages).Warn("MobilityDatabase page cap reached")
			result.Err = ErrPageLimit
			break
		}

		feeds, pageSize, err := c.listRealtimeFeeds(ctx, token, offset)
		if err != nil {
			c.metrics.RecordMobilityDBFailure("page")
			c.logger.WithError(err).WithField("offset", offset).Error("MobilityDatabase request failed")
			result.Err = fmt.Errorf("list feeds at offset %d: %w", offset, err)
			break
		}
		result.Pages++
		c.metrics.RecordMobilityDBPage()

		for _, feed := range feeds {
			if feed.ID != "" && feed.Provider != "" {
				result.Names[string(feed.ID)] = feed.Provider
			}
		}

		if pageSize < PageLimit {
			break
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"count": len(result.Names),
		"pages": result.Pages,
	}).Info("Fetched agency names")

	return result
}

// accessToken exchanges the refresh token for a short-lived access token
func (c *Client) accessToken(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.httpClient.PostJSON(ctx, c.cfg.BaseURL+"/tokens", tokenRequest{RefreshToken: c.cfg.APIKey})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		return "", err
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token response has no access_token")
	}
	return tok.AccessToken, nil
}

// listRealtimeFeeds fetches one page of GET /gtfs_rt_feeds and reports how
// many entries the page held
func (c *Client) listRealtimeFeeds(ctx context.Context, token string, offset int) ([]RealtimeFeed, int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(PageLimit))

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	header.Set("Accept", "application/json")

	resp, err := c.httpClient.Get(ctx, c.cfg.BaseURL+"/gtfs_rt_feeds?"+query.Encode(), header)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		return nil, 0, err
	}

	var raw []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, 0, fmt.Errorf("decode feed listing: %w", err)
	}

	// a malformed entry is skipped; it still counts toward the page size
	feeds := make([]RealtimeFeed, 0, len(raw))
	for i, entry := range raw {
		var feed RealtimeFeed
		if err := json.Unmarshal(entry, &feed); err != nil {
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"offset": offset,
				"index":  i,
			}).Warn("Skipping malformed feed entry")
			continue
		}
		feeds = append(feeds, feed)
	}
	return feeds, len(raw), nil
}

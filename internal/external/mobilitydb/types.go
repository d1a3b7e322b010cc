package mobilitydb

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/gtfs-rt-rater/server/internal/contracts"
)

// PageLimit is the number of feeds requested per listing page
const PageLimit = 100

// DefaultMaxPages bounds pagination when no cap is configured
const DefaultMaxPages = 1000

var (
	// ErrNoAPIKey means no refresh token is configured
	ErrNoAPIKey = errors.New("MOBILITY_DB_API_KEY not set")
	// ErrPageLimit means pagination stopped at the configured page cap
	ErrPageLimit = errors.New("page limit reached before end of listing")
)

// tokenRequest exchanges the refresh token
type tokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// tokenResponse carries the short-lived access token
type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// RealtimeFeed is one entry of GET /gtfs_rt_feeds. Only the fields used to
// build the agency name mapping are decoded.
type RealtimeFeed struct {
	ID       FeedID `json:"id"`
	Provider string `json:"provider"`
}

// FeedID accepts both string ("mdb-1234") and numeric (1234) ids
type FeedID string

// UnmarshalJSON implements json.Unmarshaler
func (id *FeedID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FeedID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = FeedID(n.String())
	return nil
}

// FetchResult is the outcome of one agency name fetch. Names is never nil and
// keeps whatever was gathered before Err occurred.
type FetchResult struct {
	Names contracts.AgencyNames
	Pages int
	Err   error
}

// OK reports whether the listing was read to its end
func (r FetchResult) OK() bool {
	return r.Err == nil
}

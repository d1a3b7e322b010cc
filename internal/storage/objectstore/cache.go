package objectstore

import (
	"sync"
	"time"

	"github.com/gtfs-rt-rater/server/internal/contracts"
)

// AgencyNamesTTL is how long a loaded mapping is served before re-reading it
const AgencyNamesTTL = time.Hour

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

// Now implements Clock
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock
var SystemClock Clock = ClockFunc(time.Now)

// AgencyNameCache holds the agency name mapping in process memory for a fixed TTL.
// Concurrent writers race with last-write-wins semantics.
// ⭐ SSOT: 기관명 매핑 캐시는 이 구조체에서만
type AgencyNameCache struct {
	mu       sync.RWMutex
	names    contracts.AgencyNames
	loadedAt time.Time
	valid    bool
	ttl      time.Duration
	clock    Clock
}

// NewAgencyNameCache creates an empty cache
func NewAgencyNameCache(ttl time.Duration, clock Clock) *AgencyNameCache {
	if clock == nil {
		clock = SystemClock
	}
	return &AgencyNameCache{
		ttl:   ttl,
		clock: clock,
	}
}

// Get returns the cached mapping unless it is absent or expired.
// The returned map is shared and must not be modified.
func (c *AgencyNameCache) Get() (contracts.AgencyNames, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.valid || c.clock.Now().Sub(c.loadedAt) >= c.ttl {
		return nil, false
	}
	return c.names, true
}

// Put replaces the mapping with a copy of names and restarts the TTL
func (c *AgencyNameCache) Put(names contracts.AgencyNames) {
	copied := names.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.names = copied
	c.loadedAt = c.clock.Now()
	c.valid = true
}

// Invalidate drops the mapping; the next Get misses
func (c *AgencyNameCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.names = nil
	c.valid = false
}

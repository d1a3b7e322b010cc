package objectstore

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtfs-rt-rater/server/internal/contracts"
)

func TestAgencyNameCache_EmptyMisses(t *testing.T) {
	cache := NewAgencyNameCache(time.Hour, newFakeClock())

	_, ok := cache.Get()
	assert.False(t, ok)
}

func TestAgencyNameCache_Expiry(t *testing.T) {
	clock := newFakeClock()
	cache := NewAgencyNameCache(time.Hour, clock)

	cache.Put(contracts.AgencyNames{"mdb-1": "Metro Transit"})

	clock.Advance(59 * time.Minute)
	names, ok := cache.Get()
	require.True(t, ok)
	assert.Equal(t, "Metro Transit", names["mdb-1"])

	clock.Advance(time.Minute)
	_, ok = cache.Get()
	assert.False(t, ok, "entry expires exactly at the TTL")
}

func TestAgencyNameCache_PutResetsTTL(t *testing.T) {
	clock := newFakeClock()
	cache := NewAgencyNameCache(time.Hour, clock)

	cache.Put(contracts.AgencyNames{"a": "A"})
	clock.Advance(50 * time.Minute)
	cache.Put(contracts.AgencyNames{"b": "B"})
	clock.Advance(50 * time.Minute)

	names, ok := cache.Get()
	require.True(t, ok)
	assert.Equal(t, contracts.AgencyNames{"b": "B"}, names)
}

func TestAgencyNameCache_EmptyMappingIsCached(t *testing.T) {
	cache := NewAgencyNameCache(time.Hour, newFakeClock())

	cache.Put(nil)

	names, ok := cache.Get()
	require.True(t, ok)
	assert.Empty(t, names)
}

func TestAgencyNameCache_PutCopies(t *testing.T) {
	cache := NewAgencyNameCache(time.Hour, newFakeClock())
	names := contracts.AgencyNames{"a": "A"}

	cache.Put(names)
	names["a"] = "changed"

	cached, _ := cache.Get()
	assert.Equal(t, "A", cached["a"])
}

func TestAgencyNameCache_Invalidate(t *testing.T) {
	cache := NewAgencyNameCache(time.Hour, newFakeClock())
	cache.Put(contracts.AgencyNames{"a": "A"})

	cache.Invalidate()

	_, ok := cache.Get()
	assert.False(t, ok)
}

func TestAgencyNameCache_ConcurrentAccess(t *testing.T) {
	cache := NewAgencyNameCache(time.Hour, newFakeClock())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cache.Put(contracts.AgencyNames{"writer": string(rune('a' + i))})
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if names, ok := cache.Get(); ok {
					assert.Len(t, names, 1)
				}
			}
		}()
	}
	wg.Wait()

	names, ok := cache.Get()
	require.True(t, ok)
	assert.Len(t, names, 1)
}

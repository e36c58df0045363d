package pool

import (
	"sync"
	"time"

	"memebattles/internal/league/model"

	"github.com/jonboulle/clockwork"
)

// cacheKey includes the epoch start so numbers can never bleed across an
// epoch boundary.
type cacheKey struct {
	ChainID    int64
	Period     model.Period
	EpochStart int64
}

type cacheEntry struct {
	breakdown Breakdown
	expiresAt time.Time
}

// Cache is an explicit TTL memo for prize breakdowns. The clock is injected
// so expiry is testable.
type Cache struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	ttl     time.Duration
	entries map[cacheKey]cacheEntry
}

func NewCache(clock clockwork.Clock, ttl time.Duration) *Cache {
	return &Cache{
		clock:   clock,
		ttl:     ttl,
		entries: make(map[cacheKey]cacheEntry),
	}
}

func (c *Cache) Get(key cacheKey) (Breakdown, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return Breakdown{}, false
	}
	if c.clock.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return Breakdown{}, false
	}
	return entry.breakdown, true
}

func (c *Cache) Set(key cacheKey, breakdown Breakdown) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		breakdown: breakdown,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
}

// Invalidate drops the memo for one epoch, used after finalization writes.
func (c *Cache) Invalidate(chainID int64, period model.Period, epochStart time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey{ChainID: chainID, Period: period, EpochStart: epochStart.Unix()})
}

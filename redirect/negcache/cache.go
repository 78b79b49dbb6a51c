// Package negcache caches confirmed "this code does not resolve" results so
// repeated lookups of nonexistent codes never reach the record store.
package negcache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// avgEntryBytes approximates the in-memory footprint of one cached miss:
// a short key string, the item struct and its share of map overhead. The
// byte budget divided by this gives the entry-count threshold the sweeper
// checks against.
const avgEntryBytes = 200

// Cache is a bounded, self-pruning negative-result cache. Entries expire
// after a fixed TTL; expired entries are hidden from readers immediately and
// physically removed by a periodic sweep, but only while the cache is over
// its byte budget. Live entries are never swept, so the cache can
// transiently exceed the budget.
type Cache struct {
	ttl        time.Duration
	maxEntries int64
	sweepEvery time.Duration
	entries    *gocache.Cache

	mu      sync.Mutex
	started bool
	stop    chan struct{}
}

func New(ttl time.Duration, budgetBytes int64, sweepEvery time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if sweepEvery <= 0 {
		sweepEvery = time.Minute
	}
	if budgetBytes <= 0 {
		budgetBytes = 4 * 1024 * 1024
	}
	return &Cache{
		ttl:        ttl,
		maxEntries: budgetBytes / avgEntryBytes,
		sweepEvery: sweepEvery,
		// cleanup interval 0 disables the library janitor, the budget-gated
		// sweeper below owns physical removal.
		entries: gocache.New(ttl, 0),
	}
}

// RecordMiss marks a code as confirmed absent for the next TTL. Re-recording
// an existing code extends its expiry (last write wins).
func (c *Cache) RecordMiss(code string) {
	c.entries.SetDefault(code, struct{}{})
}

// IsRecentMiss reports whether a still-live miss is recorded for the code.
func (c *Cache) IsRecentMiss(code string) bool {
	_, found := c.entries.Get(code)
	return found
}

// Len counts held entries, including expired ones not yet swept.
func (c *Cache) Len() int {
	return c.entries.ItemCount()
}

// EstimatedBytes is the approximate footprint the sweeper compares against
// the budget.
func (c *Cache) EstimatedBytes() int64 {
	return int64(c.entries.ItemCount()) * avgEntryBytes
}

// Start launches the background sweeper. Duplicate starts are a no-op.
func (c *Cache) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}
	c.started = true
	c.stop = make(chan struct{})
	go c.sweepLoop(c.stop)
}

// Stop halts the sweeper. Readers and writers are unaffected.
func (c *Cache) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return
	}
	c.started = false
	close(c.stop)
}

func (c *Cache) sweepLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(c.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-stop:
			return
		}
	}
}

// Sweep removes expired entries when the cache is over budget. Advisory
// only: live entries always survive.
func (c *Cache) Sweep() {
	if int64(c.entries.ItemCount()) > c.maxEntries {
		c.entries.DeleteExpired()
	}
}

package application

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// availabilityCache memoizes slot-availability scans so repeated identical
// queries do not re-run the resolver while the date's bookings are unchanged.
//
// Entries embed a per-date generation number in their key; any mutation for a
// date bumps its generation, so stale entries become unreachable immediately
// and age out of the LRU on their own.
type availabilityCache struct {
	mu          sync.Mutex
	generations map[string]uint64
	entries     *expirable.LRU[string, []string]
}

func newAvailabilityCache(size int, ttl time.Duration) *availabilityCache {
	if size <= 0 {
		size = 256
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &availabilityCache{
		generations: make(map[string]uint64),
		entries:     expirable.NewLRU[string, []string](size, nil, ttl),
	}
}

func (c *availabilityCache) key(date string, partySize, durationMinutes int) string {
	c.mu.Lock()
	gen := c.generations[date]
	c.mu.Unlock()
	return fmt.Sprintf("%s|%d|%d|%d", date, gen, partySize, durationMinutes)
}

func (c *availabilityCache) Get(date string, partySize, durationMinutes int) ([]string, bool) {
	if c == nil {
		return nil, false
	}
	return c.entries.Get(c.key(date, partySize, durationMinutes))
}

func (c *availabilityCache) Store(date string, partySize, durationMinutes int, slots []string) {
	if c == nil {
		return
	}
	cloned := make([]string, len(slots))
	copy(cloned, slots)
	c.entries.Add(c.key(date, partySize, durationMinutes), cloned)
}

// Invalidate marks all cached scans for a date as stale.
func (c *availabilityCache) Invalidate(date string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.generations[date]++
	c.mu.Unlock()
}

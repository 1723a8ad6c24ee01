package cache

import (
	"sync"
	"time"
)

// Slot names used by the analytics service.
const (
	SlotOverview     = "overview"
	SlotTimeSeries7d = "timeseries7d"
)

type entry struct {
	data       any
	insertedAt time.Time
	hasData    bool
}

// Cache memoizes expensive query results per named slot. Each slot holds
// at most one value with a fixed TTL configured at construction. Value and
// timestamp are swapped together under the lock, so readers never observe
// old data with a new timestamp. Concurrent refreshers for the same slot
// are not deduplicated; the refresh is an idempotent external query and
// the last write wins.
type Cache struct {
	mu    sync.RWMutex
	slots map[string]*entry
	ttls  map[string]time.Duration
	now   func() time.Time
}

// New builds a cache with one slot per ttls entry. The clock is injected
// for tests; nil means time.Now.
func New(now func() time.Time, ttls map[string]time.Duration) *Cache {
	if now == nil {
		now = time.Now
	}

	slots := make(map[string]*entry, len(ttls))
	ttlCopy := make(map[string]time.Duration, len(ttls))
	for slot, ttl := range ttls {
		slots[slot] = &entry{}
		ttlCopy[slot] = ttl
	}

	return &Cache{
		slots: slots,
		ttls:  ttlCopy,
		now:   now,
	}
}

// Get returns the slot value while it is strictly younger than the slot
// TTL. A stale or empty slot (or an unknown slot name) is a miss.
func (c *Cache) Get(slot string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.slots[slot]
	if !ok || !e.hasData {
		return nil, false
	}
	if c.now().Sub(e.insertedAt) >= c.ttls[slot] {
		return nil, false
	}
	return e.data, true
}

// Set stores data in the slot, resetting its age. Unknown slots are
// ignored.
func (c *Cache) Set(slot string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.slots[slot]
	if !ok {
		return
	}
	e.data = data
	e.insertedAt = c.now()
	e.hasData = true
}

// Clear empties the named slots, or every slot when none are named,
// forcing the next Get to miss.
func (c *Cache) Clear(slots ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(slots) == 0 {
		for _, e := range c.slots {
			*e = entry{}
		}
		return
	}

	for _, slot := range slots {
		if e, ok := c.slots[slot]; ok {
			*e = entry{}
		}
	}
}

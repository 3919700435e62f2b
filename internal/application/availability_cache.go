package application

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// availabilityCache stores recently computed search results to avoid
// re-running the overlap query for identical filter sets while the booking
// ledger remains unchanged. Entries are advisory: every booking mutation
// invalidates the whole cache, and a hit is still only a point-in-time
// snapshot that create revalidates.
type availabilityCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]availabilityCacheEntry
}

type availabilityCacheEntry struct {
	rooms     []RoomDetail
	expiresAt time.Time
}

func newAvailabilityCache(ttl time.Duration, maxEntries int, now func() time.Time) *availabilityCache {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &availabilityCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]availabilityCacheEntry),
	}
}

func (c *availabilityCache) Get(key string) ([]RoomDetail, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneRoomDetails(entry.rooms), true
}

func (c *availabilityCache) Store(key string, rooms []RoomDetail) {
	if c == nil {
		return
	}
	cloned := cloneRoomDetails(rooms)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = availabilityCacheEntry{rooms: cloned, expiresAt: expiry}
}

// Invalidate drops every cached snapshot. Called after any booking mutation.
func (c *availabilityCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]availabilityCacheEntry)
	c.mu.Unlock()
}

func (c *availabilityCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *availabilityCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cloneRoomDetails(rooms []RoomDetail) []RoomDetail {
	if len(rooms) == 0 {
		return nil
	}
	out := make([]RoomDetail, len(rooms))
	copy(out, rooms)
	return out
}

func buildAvailabilityCacheKey(filters SearchFilters) string {
	builder := strings.Builder{}
	builder.WriteString(strings.ToLower(strings.TrimSpace(filters.City)))
	builder.WriteString("|")
	builder.WriteString(filters.CheckIn.UTC().Format(time.RFC3339))
	builder.WriteString("|")
	builder.WriteString(filters.CheckOut.UTC().Format(time.RFC3339))
	builder.WriteString("|")
	builder.WriteString(fmt.Sprintf("%d", filters.Guests))
	builder.WriteString("|")
	builder.WriteString(strings.TrimSpace(filters.Category))
	builder.WriteString("|")
	if filters.MinPrice != nil {
		builder.WriteString(fmt.Sprintf("%g", *filters.MinPrice))
	}
	builder.WriteString("|")
	if filters.MaxPrice != nil {
		builder.WriteString(fmt.Sprintf("%g", *filters.MaxPrice))
	}
	return builder.String()
}

package realtime

import (
	"log"
	"sync"
)

// RefetchFunc loads the full list from the source of truth
type RefetchFunc func() ([]Row, error)

// ListCache is an in-memory ordered list kept consistent by applying
// change events, with an unconditional refetch whenever a merge cannot be
// performed safely. It also tracks a selection set so deleted rows never
// linger in bulk-action state.
type ListCache struct {
	mu       sync.RWMutex
	idKey    string
	preserve []string
	refetch  RefetchFunc

	rows     []Row
	selected map[string]struct{}
	loaded   bool
}

// NewListCache creates a cache for rows keyed by idKey. Fields named in
// preserve survive partial updates (see ApplyChangeEvent).
func NewListCache(idKey string, preserve []string, refetch RefetchFunc) *ListCache {
	return &ListCache{
		idKey:    idKey,
		preserve: preserve,
		refetch:  refetch,
		selected: make(map[string]struct{}),
	}
}

// Rows returns a snapshot of the current list, loading it on first use
func (c *ListCache) Rows() ([]Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		if err := c.reloadLocked(); err != nil {
			return nil, err
		}
	}

	out := make([]Row, len(c.rows))
	copy(out, c.rows)
	return out, nil
}

// Apply merges one event into the cached list. On any merge error the
// cache falls back to a full refetch; the event is never silently dropped.
func (c *ListCache) Apply(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		// Nothing cached yet; the next Rows() call loads fresh state
		// that already includes this change.
		return
	}

	merged, err := ApplyChangeEvent(c.rows, ev, c.idKey, c.preserve)
	if err != nil {
		log.Printf("⚠️  realtime: merge failed (%v), refetching %s", err, ev.Table)
		if rerr := c.reloadLocked(); rerr != nil {
			// Keep the stale list rather than serving nothing; the next
			// read retries the load.
			log.Printf("❌ realtime: refetch of %s failed: %v", ev.Table, rerr)
			c.loaded = false
		}
		return
	}
	c.rows = merged

	if ev.Type == EventDelete {
		delete(c.selected, ev.RowID(c.idKey))
	}
}

// Select adds a row ID to the selection set
func (c *ListCache) Select(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected[id] = struct{}{}
}

// Deselect removes a row ID from the selection set
func (c *ListCache) Deselect(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.selected, id)
}

// Selected reports whether a row ID is in the selection set
func (c *ListCache) Selected(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.selected[id]
	return ok
}

// Invalidate forces the next read to refetch
func (c *ListCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
}

func (c *ListCache) reloadLocked() error {
	rows, err := c.refetch()
	if err != nil {
		return err
	}
	c.rows = rows
	c.loaded = true
	return nil
}

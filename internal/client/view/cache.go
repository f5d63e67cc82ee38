// Package view holds the reconstructed listing the rendering layer consumes.
// Rows are rebuilt wholesale from the synchronizer's join on every refresh;
// the only in-place patches allowed are the two purely local fields
// (staged delete password and the expanded flag), which do not survive the
// next refresh. That reset-on-refresh behavior is intentional.
package view

import "sync"

// Row is one rendered asset.
type Row struct {
	Key         string
	SignedURL   string
	Description string
	Date        string

	// local-only state, never persisted
	DeletePasswordInput string
	Expanded            bool
}

// Cache is a mutex-guarded row sequence.
type Cache struct {
	mu   sync.Mutex
	rows []Row
}

func NewCache() *Cache {
	return &Cache{}
}

// Replace swaps in a freshly joined sequence, discarding all local state.
func (c *Cache) Replace(rows []Row) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = make([]Row, len(rows))
	copy(c.rows, rows)
}

// Remove drops the row for key, used after a successful delete so the view
// updates without waiting for the next full refresh.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.rows[:0]
	for _, r := range c.rows {
		if r.Key != key {
			kept = append(kept, r)
		}
	}
	c.rows = kept
}

// SetDeletePassword stages a per-row delete password. Local field only.
func (c *Cache) SetDeletePassword(key, password string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.rows {
		if c.rows[i].Key == key {
			c.rows[i].DeletePasswordInput = password
			return
		}
	}
}

// ToggleExpanded flips the detail-expanded flag of one row. Local field only.
func (c *Cache) ToggleExpanded(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.rows {
		if c.rows[i].Key == key {
			c.rows[i].Expanded = !c.rows[i].Expanded
			return
		}
	}
}

// Rows returns a copy of the current sequence.
func (c *Cache) Rows() []Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Row, len(c.rows))
	copy(out, c.rows)
	return out
}

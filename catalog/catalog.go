// Package catalog holds the wardrobe a session picks garments from.
// The list only grows: uploads, imports and applied garments are appended
// once, keyed by garment id.
package catalog

import (
	"sync"

	"github.com/raushankrgupta/fitly-atelier/models"
)

// Catalog is a concurrency-safe, append-only garment list
type Catalog struct {
	mu    sync.RWMutex
	items []models.Garment
	index map[string]int
}

// New creates a catalog seeded with the given garments
func New(seed []models.Garment) *Catalog {
	c := &Catalog{}
	c.Reset(seed)
	return c
}

// Reset replaces the contents with seed, dropping duplicates
func (c *Catalog) Reset(seed []models.Garment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make([]models.Garment, 0, len(seed))
	c.index = make(map[string]int, len(seed))
	for _, g := range seed {
		c.addLocked(g)
	}
}

// Add appends g unless a garment with the same id is already listed.
// It reports whether the catalog grew.
func (c *Catalog) Add(g models.Garment) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addLocked(g)
}

func (c *Catalog) addLocked(g models.Garment) bool {
	if _, ok := c.index[g.ID]; ok {
		return false
	}
	c.index[g.ID] = len(c.items)
	c.items = append(c.items, g)
	return true
}

// Get looks a garment up by id
func (c *Catalog) Get(id string) (models.Garment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		return models.Garment{}, false
	}
	return c.items[i], true
}

// Items returns a copy of the catalog in insertion order
func (c *Catalog) Items() []models.Garment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Garment, len(c.items))
	copy(out, c.items)
	return out
}

// ByCategory returns the garments listed under category, in insertion order
func (c *Catalog) ByCategory(category models.Category) []models.Garment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []models.Garment
	for _, g := range c.items {
		if g.Category == category {
			out = append(out, g)
		}
	}
	return out
}

// Len is the number of listed garments
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

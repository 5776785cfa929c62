package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/raushankrgupta/fitly-atelier/models"
)

// MemoryStore keeps records in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
	limit   int
}

// NewMemoryStore creates an empty store rejecting records over maxBytes
func NewMemoryStore(maxBytes int) *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte), limit: limitOrDefault(maxBytes)}
}

func (m *MemoryStore) SaveRecord(ctx context.Context, key string, blob []byte) error {
	if err := checkSize(key, blob, m.limit); err != nil {
		return err
	}
	cp := append([]byte(nil), blob...)
	m.mu.Lock()
	m.records[key] = cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) LoadRecord(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.records[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), blob...), true, nil
}

func (m *MemoryStore) DeleteRecord(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.records, key)
	m.mu.Unlock()
	return nil
}

// Keys lists the stored keys with the given prefix in sorted order
func (m *MemoryStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := []string{}
	for k := range m.records {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// MemoryGallery keeps generated images in process memory
type MemoryGallery struct {
	mu      sync.RWMutex
	entries []models.TryOn
}

func NewMemoryGallery() *MemoryGallery {
	return &MemoryGallery{}
}

func (g *MemoryGallery) Record(ctx context.Context, t models.TryOn) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	g.mu.Lock()
	g.entries = append(g.entries, t)
	g.mu.Unlock()
	return nil
}

func (g *MemoryGallery) List(ctx context.Context, sessionID string, page, limit int) (GalleryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	g.mu.RLock()
	var matched []models.TryOn
	for i := len(g.entries) - 1; i >= 0; i-- {
		e := g.entries[i]
		if e.SessionID == sessionID && !e.IsDeleted {
			matched = append(matched, e)
		}
	}
	g.mu.RUnlock()

	out := GalleryPage{
		Images:      []models.TryOn{},
		Total:       int64(len(matched)),
		CurrentPage: page,
		TotalPages:  totalPages(int64(len(matched)), limit),
	}
	// pages past the last one are empty; checking first keeps the offset
	// from overflowing
	if page <= out.TotalPages {
		start := (page - 1) * limit
		end := start + min(limit, len(matched)-start)
		out.Images = append(out.Images, matched[start:end]...)
	}
	return out, nil
}

func (g *MemoryGallery) DeleteSession(ctx context.Context, sessionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.entries {
		if g.entries[i].SessionID == sessionID {
			g.entries[i].IsDeleted = true
		}
	}
	return nil
}

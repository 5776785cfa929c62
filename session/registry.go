package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Registry holds the live sessions of the server process
type Registry struct {
	gen   Generator
	store Store
	opts  []Option
	log   *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	lastUsed map[string]time.Time
	now      func() time.Time
}

// NewRegistry creates a registry whose sessions share gen, store and opts
func NewRegistry(gen Generator, store Store, log *zap.Logger, opts ...Option) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		gen:      gen,
		store:    store,
		opts:     append([]Option{WithLogger(log)}, opts...),
		log:      log,
		sessions: make(map[string]*Session),
		lastUsed: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Create starts an empty session under a new id
func (r *Registry) Create() *Session {
	s := New(uuid.New().String(), r.gen, r.store, r.opts...)
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.lastUsed[s.ID()] = r.now()
	r.mu.Unlock()
	r.log.Info("session created", zap.String("session_id", s.ID()))
	return s
}

// Get returns a live session, restoring it from its saved record when the
// process no longer holds it
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		r.lastUsed[id] = r.now()
	}
	r.mu.Unlock()
	if ok {
		return s, nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}

	s = New(id, r.gen, r.store, r.opts...)
	if err := s.Load(ctx); err != nil {
		if errors.Is(err, ErrNoSavedSession) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastUsed[id] = r.now()
	if existing, ok := r.sessions[id]; ok {
		return existing, nil
	}
	r.sessions[id] = s
	r.log.Info("session restored", zap.String("session_id", id))
	return s, nil
}

// Remove forgets a live session. The saved record is left alone.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	delete(r.lastUsed, id)
	r.mu.Unlock()
}

// EvictIdle forgets sessions untouched for longer than idle. Busy sessions
// are kept. An evicted session comes back from its saved record on the
// next Get; changes made since the last save are dropped.
func (r *Registry) EvictIdle(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, s := range r.sessions {
		if r.lastUsed[id].After(cutoff) {
			continue
		}
		if !s.flight.TryAcquire(1) {
			continue
		}
		delete(r.sessions, id)
		delete(r.lastUsed, id)
		s.flight.Release(1)
		evicted++
	}
	if evicted > 0 {
		r.log.Info("idle sessions evicted", zap.Int("evicted", evicted), zap.Int("live", len(r.sessions)))
	}
	return evicted
}

// RunEviction calls EvictIdle every interval until ctx is done
func (r *Registry) RunEviction(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.EvictIdle(idle)
		}
	}
}

// Len is the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

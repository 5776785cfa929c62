package session

import (
	"context"
	"testing"
	"time"

	"github.com/raushankrgupta/fitly-atelier/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreateGetRemove(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(&fakeGenerator{}, store.NewMemoryStore(0), nil)

	s := r.Create()
	got, err := r.Get(ctx, s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, r.Len())

	r.Remove(s.ID())
	assert.Equal(t, 0, r.Len())
	_, err = r.Get(ctx, s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistryRestoresSavedSession(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore(0)
	r := NewRegistry(&fakeGenerator{}, st, nil)

	s := r.Create()
	require.NoError(t, s.FinalizeBaseModel("base"))
	require.NoError(t, s.Save(ctx))
	r.Remove(s.ID())

	restored, err := r.Get(ctx, s.ID())
	require.NoError(t, err)
	assert.NotSame(t, s, restored)
	assert.Equal(t, "base", restored.DisplayImage())
	assert.Equal(t, 1, r.Len())
}

func TestRegistryRejectsMalformedID(t *testing.T) {
	r := NewRegistry(&fakeGenerator{}, store.NewMemoryStore(0), nil)
	_, err := r.Get(context.Background(), "../etc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistryEvictsIdleSessions(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore(0)
	r := NewRegistry(&fakeGenerator{}, st, nil)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	saved := r.Create()
	require.NoError(t, saved.FinalizeBaseModel("base"))
	require.NoError(t, saved.Save(ctx))
	stale := r.Create()
	busy := r.Create()
	require.NoError(t, busy.begin("working"))
	defer busy.end()

	clock = clock.Add(20 * time.Minute)
	fresh := r.Create()

	clock = clock.Add(20 * time.Minute)
	_, err := r.Get(ctx, fresh.ID())
	require.NoError(t, err)

	assert.Equal(t, 2, r.EvictIdle(30*time.Minute))
	assert.Equal(t, 2, r.Len())

	_, err = r.Get(ctx, stale.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	restored, err := r.Get(ctx, saved.ID())
	require.NoError(t, err)
	assert.NotSame(t, saved, restored)
	assert.Equal(t, "base", restored.DisplayImage())

	got, err := r.Get(ctx, busy.ID())
	require.NoError(t, err)
	assert.Same(t, busy, got)
}

package session

import (
	"context"
	"errors"
	"testing"

	"github.com/raushankrgupta/fitly-atelier/models"
	"github.com/raushankrgupta/fitly-atelier/store"
	"github.com/raushankrgupta/fitly-atelier/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, gen *fakeGenerator, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithWardrobe(noWardrobe)}, opts...)
	s := New("test", gen, store.NewMemoryStore(0), opts...)
	require.NoError(t, s.FinalizeBaseModel("base"))
	return s
}

func TestFinalizeBaseModel(t *testing.T) {
	s := New("test", &fakeGenerator{}, store.NewMemoryStore(0))
	assert.Equal(t, "", s.DisplayImage())

	require.NoError(t, s.FinalizeBaseModel("base"))
	st := s.Snapshot()
	require.Len(t, st.History, 1)
	assert.True(t, st.History[0].IsBase())
	assert.Equal(t, "base", st.History[0].PoseImages[models.PoseInstructions[0]])
	assert.Equal(t, 0, st.CurrentIndex)
	assert.Equal(t, 0, st.CurrentPoseIndex)
	assert.Equal(t, "base", s.DisplayImage())

	assert.ErrorIs(t, s.FinalizeBaseModel(""), ErrInvalidInput)
}

func TestCreateModel(t *testing.T) {
	gen := &fakeGenerator{}
	rec := &fakeRecorder{}
	s := New("test", gen, store.NewMemoryStore(0), WithRecorder(rec))

	require.NoError(t, s.CreateModel(context.Background(), "photo"))
	assert.Equal(t, "twin(photo)", s.DisplayImage())
	assert.Equal(t, "twin(photo)", s.Snapshot().ModelImageURL)
	require.Len(t, rec.entries, 1)
	assert.Equal(t, models.KindModel, rec.entries[0].Kind)
}

func TestCreateModelFailureKeepsState(t *testing.T) {
	gen := &fakeGenerator{failOn: 1, err: utils.ErrBlocked}
	s := New("test", gen, store.NewMemoryStore(0))

	err := s.CreateModel(context.Background(), "photo")
	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.ErrorIs(t, err, utils.ErrBlocked)
	assert.Empty(t, s.Snapshot().History)
	assert.NotEmpty(t, s.Snapshot().Error)
}

func TestApplyGarmentAppendsAndAdvances(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestSession(t, gen)
	ctx := context.Background()

	require.NoError(t, s.ApplyGarment(ctx, "", garment("a"), models.TargetShirt))
	require.NoError(t, s.ApplyGarment(ctx, "", garment("b"), models.TargetJacket))

	st := s.Snapshot()
	require.Len(t, st.History, 3)
	assert.Equal(t, 2, st.CurrentIndex)
	assert.Equal(t, "base+a@shirt+b@jacket", s.DisplayImage())
	assert.Equal(t, []string{"a", "b"}, s.ActiveGarmentIDs())
	assert.Len(t, s.ActiveLayers(), 3)

	_, ok := s.Catalog().Get("a")
	assert.True(t, ok)
}

func TestApplyGarmentUsesSessionTarget(t *testing.T) {
	s := newTestSession(t, &fakeGenerator{})
	require.NoError(t, s.SetTarget("Suit"))
	require.NoError(t, s.ApplyGarment(context.Background(), "", garment("a"), ""))

	_, target, ok := s.ActiveLayers()[1].Garment()
	require.True(t, ok)
	assert.Equal(t, models.TargetSuit, target)
}

func TestApplyGarmentValidation(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestSession(t, gen)
	ctx := context.Background()

	assert.ErrorIs(t, s.ApplyGarment(ctx, "", models.Garment{Name: "x", URL: "x"}, models.TargetShirt), ErrInvalidInput)
	assert.ErrorIs(t, s.ApplyGarment(ctx, "", garment("a"), "hat"), ErrInvalidInput)
	assert.ErrorIs(t, s.ApplyGarment(ctx, "", models.Garment{ID: "x", Name: "x"}, models.TargetShirt), ErrInvalidInput)
	assert.Empty(t, gen.Calls())
}

func TestApplyGarmentWithoutModel(t *testing.T) {
	s := New("test", &fakeGenerator{}, store.NewMemoryStore(0))
	assert.ErrorIs(t, s.ApplyGarment(context.Background(), "", garment("a"), models.TargetShirt), ErrNoModel)
}

func TestUndoThenRedoSkipsGeneration(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestSession(t, gen)
	ctx := context.Background()

	require.NoError(t, s.ApplyGarment(ctx, "", garment("a"), models.TargetShirt))
	require.NoError(t, s.RemoveLastGarment())
	assert.Equal(t, 0, s.Snapshot().CurrentIndex)
	assert.Len(t, s.Snapshot().History, 2)

	require.NoError(t, s.ApplyGarment(ctx, "", garment("a"), models.TargetShirt))
	assert.Equal(t, 1, s.Snapshot().CurrentIndex)
	assert.Len(t, gen.Calls(), 1)
}

func TestRedoWithDifferentTargetRegenerates(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestSession(t, gen)
	ctx := context.Background()

	require.NoError(t, s.ApplyGarment(ctx, "", garment("a"), models.TargetShirt))
	require.NoError(t, s.RemoveLastGarment())
	require.NoError(t, s.ApplyGarment(ctx, "", garment("a"), models.TargetSuit))
	assert.Len(t, gen.Calls(), 2)
	assert.Equal(t, "base+a@suit", s.DisplayImage())
}

func TestApplyAfterUndoTruncates(t *testing.T) {
	s := newTestSession(t, &fakeGenerator{})
	ctx := context.Background()

	require.NoError(t, s.ApplyGarment(ctx, "", garment("a"), models.TargetShirt))
	require.NoError(t, s.ApplyGarment(ctx, "", garment("b"), models.TargetShirt))
	require.NoError(t, s.RemoveLastGarment())
	require.NoError(t, s.RemoveLastGarment())
	require.NoError(t, s.ApplyGarment(ctx, "", garment("c"), models.TargetShirt))

	st := s.Snapshot()
	require.Len(t, st.History, 2)
	assert.Equal(t, 1, st.CurrentIndex)
	assert.Equal(t, []string{"c"}, s.ActiveGarmentIDs())
}

func TestRemoveLastGarmentAtBase(t *testing.T) {
	s := newTestSession(t, &fakeGenerator{})
	require.NoError(t, s.RemoveLastGarment())
	assert.Equal(t, 0, s.Snapshot().CurrentIndex)
	assert.Equal(t, "base", s.DisplayImage())
}

func TestApplyGarmentFailureLeavesHistory(t *testing.T) {
	gen := &fakeGenerator{failOn: 2, err: utils.ErrQuota}
	s := newTestSession(t, gen)
	ctx := context.Background()

	require.NoError(t, s.ApplyGarment(ctx, "", garment("a"), models.TargetShirt))
	before := s.Snapshot()

	err := s.ApplyGarment(ctx, "", garment("b"), models.TargetShirt)
	assert.ErrorIs(t, err, utils.ErrQuota)

	after := s.Snapshot()
	assert.Equal(t, before.History, after.History)
	assert.Equal(t, before.CurrentIndex, after.CurrentIndex)
	assert.Contains(t, after.Error, "Quota exceeded")
	assert.False(t, after.Busy)
}

func TestSelectPoseRendersAndCaches(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestSession(t, gen)
	ctx := context.Background()
	require.NoError(t, s.ApplyGarment(ctx, "", garment("a"), models.TargetShirt))

	require.NoError(t, s.SelectPose(ctx, 2))
	assert.Equal(t, 2, s.Snapshot().CurrentPoseIndex)
	assert.Equal(t, "base+a@shirt#2", s.DisplayImage())
	assert.Equal(t, []string{models.PoseInstructions[0], models.PoseInstructions[2]}, s.AvailablePoseKeys())

	require.NoError(t, s.SelectPose(ctx, 0))
	require.NoError(t, s.SelectPose(ctx, 2))
	assert.Equal(t, []string{"composite", "pose"}, gen.Calls())
}

func TestSelectPoseFailureRollsBack(t *testing.T) {
	gen := &fakeGenerator{failOn: 2, err: errors.New("boom")}
	s := newTestSession(t, gen)
	ctx := context.Background()
	require.NoError(t, s.ApplyGarment(ctx, "", garment("a"), models.TargetShirt))
	layerBefore := s.ActiveLayers()[1]

	err := s.SelectPose(ctx, 3)
	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "pose", gerr.Op)

	assert.Equal(t, 0, s.Snapshot().CurrentPoseIndex)
	assert.Equal(t, layerBefore, s.ActiveLayers()[1])
}

func TestSelectPoseOutOfRange(t *testing.T) {
	s := newTestSession(t, &fakeGenerator{})
	assert.ErrorIs(t, s.SelectPose(context.Background(), len(models.PoseInstructions)), ErrInvalidPose)
	assert.ErrorIs(t, s.SelectPose(context.Background(), -1), ErrInvalidPose)
}

func TestSelectPoseOnEmptySessionIsNoop(t *testing.T) {
	gen := &fakeGenerator{}
	s := New("test", gen, store.NewMemoryStore(0))
	require.NoError(t, s.SelectPose(context.Background(), 1))
	assert.Equal(t, 0, s.Snapshot().CurrentPoseIndex)
	assert.Empty(t, gen.Calls())
}

func TestNewLayerKeepsPose(t *testing.T) {
	s := newTestSession(t, &fakeGenerator{})
	ctx := context.Background()
	require.NoError(t, s.ApplyGarment(ctx, "", garment("a"), models.TargetShirt))
	require.NoError(t, s.SelectPose(ctx, 1))

	require.NoError(t, s.ApplyGarment(ctx, "", garment("b"), models.TargetJacket))
	assert.Equal(t, 1, s.Snapshot().CurrentPoseIndex)
	assert.Equal(t, "base+a@shirt#1+b@jacket", s.DisplayImage())
	assert.Equal(t, []string{models.PoseInstructions[1]}, s.AvailablePoseKeys())
}

func TestDisplayFallsBackToAnyPose(t *testing.T) {
	s := newTestSession(t, &fakeGenerator{})
	ctx := context.Background()
	require.NoError(t, s.ApplyGarment(ctx, "", garment("a"), models.TargetShirt))
	require.NoError(t, s.SelectPose(ctx, 4))
	require.NoError(t, s.ApplyGarment(ctx, "", garment("b"), models.TargetShirt))

	// layer 2 only exists in pose 4; moving back to it keeps pose 0
	require.NoError(t, s.RemoveLastGarment())
	require.NoError(t, s.ApplyGarment(ctx, "", garment("b"), models.TargetShirt))
	assert.Equal(t, "base+a@shirt#4+b@shirt", s.DisplayImage())
}

func TestBaseOnlyDisplayIgnoresPose(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestSession(t, gen)
	s.mu.Lock()
	s.pose = 3
	s.mu.Unlock()
	assert.Equal(t, "base", s.DisplayImage())
}

func TestRemoveJacket(t *testing.T) {
	s := newTestSession(t, &fakeGenerator{})
	ctx := context.Background()
	require.NoError(t, s.ApplyGarment(ctx, "", garment("a"), models.TargetSuit))
	require.NoError(t, s.RemoveJacket(ctx))

	layers := s.ActiveLayers()
	require.Len(t, layers, 3)
	action, ok := layers[2].Action()
	require.True(t, ok)
	assert.Equal(t, models.ActionRemoveJacket, action)
	assert.Equal(t, "base+a@suit-jacket", s.DisplayImage())
	assert.Equal(t, []string{"a"}, s.ActiveGarmentIDs())
}

func TestEditLayerToggle(t *testing.T) {
	s := newTestSession(t, &fakeGenerator{})
	ctx := context.Background()
	require.NoError(t, s.ApplyGarment(ctx, "", garment("a"), models.TargetShirt))
	require.NoError(t, s.RemoveJacket(ctx))

	assert.ErrorIs(t, s.EditLayer(0), ErrInvalidLayer)
	assert.ErrorIs(t, s.EditLayer(3), ErrInvalidLayer)
	assert.ErrorIs(t, s.EditLayer(2), ErrNotEditable)

	require.NoError(t, s.EditLayer(1))
	require.NotNil(t, s.Snapshot().EditingIndex)
	assert.Equal(t, 1, *s.Snapshot().EditingIndex)

	require.NoError(t, s.EditLayer(1))
	assert.Nil(t, s.Snapshot().EditingIndex)

	require.NoError(t, s.EditLayer(1))
	require.NoError(t, s.CancelEdit())
	assert.Nil(t, s.Snapshot().EditingIndex)
}

func TestUndoBelowEditingClearsEdit(t *testing.T) {
	s := newTestSession(t, &fakeGenerator{})
	ctx := context.Background()
	require.NoError(t, s.ApplyGarment(ctx, "", garment("a"), models.TargetShirt))
	require.NoError(t, s.ApplyGarment(ctx, "", garment("b"), models.TargetShirt))
	require.NoError(t, s.EditLayer(2))
	require.NoError(t, s.RemoveLastGarment())
	assert.Nil(t, s.Snapshot().EditingIndex)
}

func TestSetTargetAndNotes(t *testing.T) {
	s := newTestSession(t, &fakeGenerator{})
	assert.ErrorIs(t, s.SetTarget("hat"), ErrInvalidInput)
	require.NoError(t, s.SetTarget(models.TargetTrousers))
	s.SetNotes("taper the leg")

	st := s.Snapshot()
	assert.Equal(t, models.TargetTrousers, st.Target)
	assert.Equal(t, "taper the leg", st.Notes)
}

func TestSingleFlight(t *testing.T) {
	gen := &fakeGenerator{gate: make(chan struct{}), started: make(chan struct{}, 1)}
	s := newTestSession(t, gen)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- s.ApplyGarment(ctx, "", garment("a"), models.TargetShirt)
	}()
	<-gen.started

	assert.True(t, s.Snapshot().Busy)
	assert.NotEmpty(t, s.Snapshot().LoadingMessage)
	assert.ErrorIs(t, s.ApplyGarment(ctx, "", garment("b"), models.TargetShirt), ErrBusy)
	assert.ErrorIs(t, s.SelectPose(ctx, 1), ErrBusy)
	assert.ErrorIs(t, s.RemoveJacket(ctx), ErrBusy)
	assert.ErrorIs(t, s.RemoveLastGarment(), ErrBusy)
	assert.ErrorIs(t, s.EditLayer(1), ErrBusy)
	assert.ErrorIs(t, s.Load(ctx), ErrBusy)
	assert.ErrorIs(t, s.StartOver(ctx), ErrBusy)

	close(gen.gate)
	require.NoError(t, <-done)
	assert.False(t, s.Snapshot().Busy)
	assert.Len(t, gen.Calls(), 1)
	assert.Equal(t, 1, s.Snapshot().CurrentIndex)
}

func TestSnapshotIsIsolated(t *testing.T) {
	s := newTestSession(t, &fakeGenerator{})
	st := s.Snapshot()
	st.History[0].PoseImages[models.PoseInstructions[0]] = "tampered"
	assert.Equal(t, "base", s.DisplayImage())
}

package session

import (
	"context"
	"errors"
	"testing"

	"github.com/raushankrgupta/fitly-atelier/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeLayers builds [base, a@shirt, b@jacket, c@trousers]
func threeLayers(t *testing.T, gen *fakeGenerator, opts ...Option) *Session {
	t.Helper()
	s := newTestSession(t, gen, opts...)
	ctx := context.Background()
	require.NoError(t, s.ApplyGarment(ctx, "", garment("a"), models.TargetShirt))
	require.NoError(t, s.ApplyGarment(ctx, "", garment("b"), models.TargetJacket))
	require.NoError(t, s.ApplyGarment(ctx, "", garment("c"), models.TargetTrousers))
	return s
}

func layerImage(l models.OutfitLayer) string {
	return l.PoseImages[models.PoseInstructions[0]]
}

func TestCascadeRegeneratesLayersInOrder(t *testing.T) {
	gen := &fakeGenerator{}
	rec := &fakeRecorder{}
	s := threeLayers(t, gen, WithRecorder(rec))
	before := s.Snapshot()

	require.NoError(t, s.EditLayer(1))
	require.NoError(t, s.ApplyGarment(context.Background(), "", garment("x"), models.TargetSuit))

	after := s.Snapshot()
	require.Len(t, after.History, 4)
	assert.Equal(t, 3, after.CurrentIndex)
	assert.Nil(t, after.EditingIndex)
	assert.Equal(t, before.History[0], after.History[0])

	assert.Equal(t, "base+x@suit", layerImage(after.History[1]))
	assert.Equal(t, "base+x@suit+b@jacket", layerImage(after.History[2]))
	assert.Equal(t, "base+x@suit+b@jacket+c@trousers", layerImage(after.History[3]))
	assert.Equal(t, []string{"x", "b", "c"}, s.ActiveGarmentIDs())

	g, target, _ := after.History[1].Garment()
	assert.Equal(t, "x", g.ID)
	assert.Equal(t, models.TargetSuit, target)
	_, target, _ = after.History[2].Garment()
	assert.Equal(t, models.TargetJacket, target)

	assert.Len(t, gen.Calls(), 6)
	var cascades int
	for _, e := range rec.entries {
		if e.Kind == models.KindCascade {
			cascades++
		}
	}
	assert.Equal(t, 3, cascades)
}

func TestCascadeDropsCachedPoses(t *testing.T) {
	gen := &fakeGenerator{}
	s := threeLayers(t, gen)
	ctx := context.Background()
	require.NoError(t, s.SelectPose(ctx, 2))
	require.NoError(t, s.SelectPose(ctx, 0))
	assert.Len(t, s.AvailablePoseKeys(), 2)

	require.NoError(t, s.EditLayer(2))
	require.NoError(t, s.ApplyGarment(ctx, "", garment("y"), models.TargetJacket))
	assert.Equal(t, []string{models.PoseInstructions[0]}, s.AvailablePoseKeys())
}

func TestCascadeThroughJacketRemoval(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestSession(t, gen)
	ctx := context.Background()
	require.NoError(t, s.ApplyGarment(ctx, "", garment("a"), models.TargetSuit))
	require.NoError(t, s.RemoveJacket(ctx))

	require.NoError(t, s.EditLayer(1))
	require.NoError(t, s.ApplyGarment(ctx, "", garment("x"), models.TargetSuit))

	layers := s.ActiveLayers()
	require.Len(t, layers, 3)
	assert.Equal(t, "base+x@suit-jacket", layerImage(layers[2]))
	_, ok := layers[2].Action()
	assert.True(t, ok)
}

func TestCascadeSameGarmentCancelsEdit(t *testing.T) {
	gen := &fakeGenerator{}
	s := threeLayers(t, gen)
	before := s.Snapshot()

	require.NoError(t, s.EditLayer(2))
	require.NoError(t, s.ApplyGarment(context.Background(), "", garment("b"), models.TargetJacket))

	after := s.Snapshot()
	assert.Nil(t, after.EditingIndex)
	assert.Equal(t, before.History, after.History)
	assert.Len(t, gen.Calls(), 3)
}

func TestCascadeDiscardsRedoTail(t *testing.T) {
	gen := &fakeGenerator{}
	s := threeLayers(t, gen)
	require.NoError(t, s.RemoveLastGarment())
	require.NoError(t, s.RemoveLastGarment())

	require.NoError(t, s.EditLayer(1))
	require.NoError(t, s.ApplyGarment(context.Background(), "", garment("x"), models.TargetShirt))

	st := s.Snapshot()
	assert.Len(t, st.History, 2)
	assert.Equal(t, 1, st.CurrentIndex)
	assert.Equal(t, "base+x@shirt", s.DisplayImage())
}

func TestCascadeFailureKeepsRewrittenLayers(t *testing.T) {
	gen := &fakeGenerator{failOn: 5, err: errors.New("boom")}
	s := threeLayers(t, gen)
	before := s.Snapshot()

	require.NoError(t, s.EditLayer(1))
	err := s.ApplyGarment(context.Background(), "", garment("x"), models.TargetSuit)
	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "cascade", gerr.Op)

	after := s.Snapshot()
	require.Len(t, after.History, 4)
	assert.Equal(t, "base+x@suit", layerImage(after.History[1]))
	assert.Equal(t, before.History[2], after.History[2])
	assert.Equal(t, before.History[3], after.History[3])
	assert.Equal(t, 3, after.CurrentIndex)
	assert.Nil(t, after.EditingIndex)
	assert.NotEmpty(t, after.Error)
}

func TestCascadeFailureWithRollback(t *testing.T) {
	gen := &fakeGenerator{failOn: 5, err: errors.New("boom")}
	s := threeLayers(t, gen, WithCascadeRollback(true))
	before := s.Snapshot()

	require.NoError(t, s.EditLayer(1))
	require.Error(t, s.ApplyGarment(context.Background(), "", garment("x"), models.TargetSuit))

	after := s.Snapshot()
	assert.Equal(t, before.History, after.History)
	require.NotNil(t, after.EditingIndex)
	assert.Equal(t, 1, *after.EditingIndex)
}

func TestCascadeFailureOnEditedLayerChangesNothing(t *testing.T) {
	gen := &fakeGenerator{failOn: 4, err: errors.New("boom")}
	s := threeLayers(t, gen)
	before := s.Snapshot()

	require.NoError(t, s.EditLayer(2))
	require.Error(t, s.ApplyGarment(context.Background(), "", garment("x"), models.TargetJacket))

	after := s.Snapshot()
	assert.Equal(t, before.History, after.History)
	require.NotNil(t, after.EditingIndex)
	assert.Equal(t, 2, *after.EditingIndex)
}

func TestCascadeKeepsOverrideSource(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestSession(t, gen)
	ctx := context.Background()
	uploaded := models.Garment{ID: "up", Name: "Uploaded", Type: models.GarmentProduct, Category: models.CategoryJacket}

	require.NoError(t, s.ApplyGarment(ctx, "", garment("a"), models.TargetShirt))
	require.NoError(t, s.ApplyGarment(ctx, "data:image/png;base64,AAA", uploaded, models.TargetJacket))
	assert.Equal(t, "base+a@shirt+data:image/png;base64,AAA@jacket", layerImage(s.Snapshot().History[2]))

	require.NoError(t, s.EditLayer(1))
	require.NoError(t, s.ApplyGarment(ctx, "", garment("x"), models.TargetShirt))

	after := s.Snapshot()
	assert.Equal(t, "base+x@shirt+data:image/png;base64,AAA@jacket", layerImage(after.History[2]))
	g, _, ok := after.History[2].Garment()
	require.True(t, ok)
	assert.Equal(t, "data:image/png;base64,AAA", g.URL)

	cataloged, ok := s.Catalog().Get("up")
	require.True(t, ok)
	assert.Equal(t, "data:image/png;base64,AAA", cataloged.URL)
}

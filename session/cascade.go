package session

import (
	"context"
	"fmt"

	"github.com/raushankrgupta/fitly-atelier/models"
	"go.uber.org/zap"
)

// editWithCascade replaces the garment of layer k and re-derives every
// active layer above it from the freshly generated image below. The caller
// holds the single-flight token.
//
// Layers past the active one are dropped when the rewritten history is
// committed, since they were derived from images that no longer exist.
func (s *Session) editWithCascade(ctx context.Context, k int, source string, garment models.Garment, target models.ClothingTarget) error {
	s.mu.Lock()
	if k <= 0 || k > s.current || k >= len(s.history) {
		s.editing = noEdit
		s.mu.Unlock()
		return ErrInvalidLayer
	}
	if g, t, ok := s.history[k].Garment(); ok && g.ID == garment.ID && t == target {
		s.editing = noEdit
		s.mu.Unlock()
		s.log.Debug("edit cancelled, garment unchanged", zap.Int("layer", k))
		return nil
	}
	poseKey := models.PoseInstructions[s.pose]
	current := s.current
	working := cloneLayers(s.history[:current+1])
	s.loadingMessage = fmt.Sprintf("Re-tailoring layer %d...", k)
	s.mu.Unlock()

	below := working[k-1]
	base, ok := below.Image(poseKey)
	if !ok {
		base = below.AnyImage()
	}

	image, err := s.gen.CompositeGarment(ctx, base, source, target)
	if err != nil {
		return s.fail("cascade", "Failed to apply garment", err)
	}
	working[k] = models.NewGarmentLayer(garment, target, poseKey, image)
	s.record(ctx, models.KindCascade, k, garment.ID, target, poseKey, image)

	for i := k + 1; i <= current; i++ {
		s.mu.Lock()
		s.loadingMessage = fmt.Sprintf("Re-tailoring layer %d of %d...", i, current)
		s.mu.Unlock()

		next, err := s.rederive(ctx, working[i], image, poseKey)
		if err != nil {
			gerr := s.fail("cascade", "Failed to update outfit", err)
			s.abortCascade(working[:i], k, i)
			return gerr
		}
		working[i] = next
		image, _ = next.Image(poseKey)
		g, t, _ := next.Garment()
		s.record(ctx, models.KindCascade, i, g.ID, t, poseKey, image)
	}

	s.mu.Lock()
	s.history = working
	s.editing = noEdit
	s.mu.Unlock()

	s.catalog.Add(garment)
	s.log.Info("layer replaced",
		zap.Int("layer", k),
		zap.String("garment_id", garment.ID),
		zap.Int("regenerated", current-k+1),
	)
	return nil
}

// rederive regenerates layer on top of base, keeping its garment or action
func (s *Session) rederive(ctx context.Context, layer models.OutfitLayer, base, poseKey string) (models.OutfitLayer, error) {
	switch step := layer.Step.(type) {
	case models.GarmentStep:
		image, err := s.gen.CompositeGarment(ctx, base, step.Garment.URL, step.Target)
		if err != nil {
			return models.OutfitLayer{}, err
		}
		return models.NewGarmentLayer(step.Garment, step.Target, poseKey, image), nil
	case models.ActionStep:
		if step.Action != models.ActionRemoveJacket {
			return models.OutfitLayer{}, fmt.Errorf("cannot regenerate action %q", step.Action)
		}
		image, err := s.gen.RemoveJacket(ctx, base)
		if err != nil {
			return models.OutfitLayer{}, err
		}
		return models.NewActionLayer(step.Action, poseKey, image), nil
	default:
		return models.OutfitLayer{}, fmt.Errorf("layer %q cannot be regenerated", layer.Label())
	}
}

// abortCascade applies the failure policy after step failed of a cascade
// started at layer k. rewritten holds layers [0, failed) with the new
// images. With rollback the history is left as it was before the edit.
func (s *Session) abortCascade(rewritten []models.OutfitLayer, k, failed int) {
	if s.rollback {
		s.log.Warn("cascade failed, history restored", zap.Int("layer", k), zap.Int("failed_at", failed))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	h := make([]models.OutfitLayer, 0, s.current+1)
	h = append(h, rewritten...)
	h = append(h, cloneLayers(s.history[failed:s.current+1])...)
	s.history = h
	s.editing = noEdit
	s.log.Warn("cascade failed, earlier layers kept",
		zap.Int("layer", k),
		zap.Int("failed_at", failed),
		zap.Int("rewritten", failed-k),
	)
}

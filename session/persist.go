package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/raushankrgupta/fitly-atelier/models"
	"github.com/raushankrgupta/fitly-atelier/store"
	"go.uber.org/zap"
)

// recordKeyPrefix namespaces session records in the store
const recordKeyPrefix = "mab_bespoke_session_v2:"

// RecordKey is the store key of a session's record
func RecordKey(id string) string {
	return recordKeyPrefix + id
}

// Record builds the persisted form of the session
func (s *Session) Record() models.SessionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.SessionRecord{
		ModelImageURL:      s.modelImage,
		OutfitHistory:      cloneLayers(s.history),
		CurrentOutfitIndex: s.current,
		CurrentPoseIndex:   s.pose,
		ActiveTarget:       s.target,
		TailorNotes:        s.notes,
		Catalog:            s.catalog.Items(),
		SavedAt:            time.Now().UTC(),
	}
}

// Save writes the session record, pose images included, to the store
func (s *Session) Save(ctx context.Context) error {
	rec := s.Record()
	blob, err := json.Marshal(rec)
	if err != nil {
		return &PersistenceError{Op: "save", Message: "Failed to save session.", Err: err}
	}
	if err := s.store.SaveRecord(ctx, RecordKey(s.id), blob); err != nil {
		msg := "Failed to save session."
		if errors.Is(err, store.ErrQuotaExceeded) {
			msg = "Failed to save session. The session is too large for storage; try removing some layers."
		}
		s.log.Error("saving session failed", zap.Int("bytes", len(blob)), zap.Error(err))
		return &PersistenceError{Op: "save", Message: msg, Err: err}
	}
	s.log.Info("session saved", zap.Int("layers", len(rec.OutfitHistory)), zap.Int("bytes", len(blob)))
	return nil
}

// HasSavedSession reports whether a record exists for the session
func (s *Session) HasSavedSession(ctx context.Context) (bool, error) {
	_, ok, err := s.store.LoadRecord(ctx, RecordKey(s.id))
	if err != nil {
		return false, &PersistenceError{Op: "load", Message: "Failed to check for a saved session.", Err: err}
	}
	return ok, nil
}

// Load replaces the session state with the saved record
func (s *Session) Load(ctx context.Context) error {
	if err := s.begin(""); err != nil {
		return err
	}
	defer s.end()

	blob, ok, err := s.store.LoadRecord(ctx, RecordKey(s.id))
	if err != nil {
		return &PersistenceError{Op: "load", Message: "Failed to load session.", Err: err}
	}
	if !ok {
		return ErrNoSavedSession
	}

	rec, err := DecodeRecord(blob)
	if err != nil {
		s.log.Warn("saved session is corrupt", zap.Error(err))
		return &PersistenceError{Op: "load", Message: "Failed to load session. The saved data is corrupt.", Err: err}
	}

	s.restore(rec)
	s.log.Info("session loaded", zap.Int("layers", len(rec.OutfitHistory)))
	return nil
}

func (s *Session) restore(rec models.SessionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modelImage = rec.ModelImageURL
	s.history = rec.OutfitHistory
	s.current = rec.CurrentOutfitIndex
	s.pose = rec.CurrentPoseIndex
	s.target = rec.ActiveTarget
	s.notes = rec.TailorNotes
	s.editing = noEdit
	s.lastError = ""
	s.catalog.Reset(s.wardrobe())
	for _, g := range rec.Catalog {
		s.catalog.Add(g)
	}
}

// DecodeRecord parses a stored session record and repairs what can be
// repaired: out-of-range indexes are clamped, a missing target defaults to
// shirt and a record holding only the model image gets its base layer back.
func DecodeRecord(blob []byte) (models.SessionRecord, error) {
	var rec models.SessionRecord
	if err := json.Unmarshal(blob, &rec); err != nil {
		return rec, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}

	if len(rec.OutfitHistory) == 0 {
		if rec.ModelImageURL != "" {
			rec.OutfitHistory = []models.OutfitLayer{models.NewBaseLayer(models.PoseInstructions[0], rec.ModelImageURL)}
		}
	} else if !rec.OutfitHistory[0].IsBase() {
		return rec, fmt.Errorf("%w: first layer is not the base model", ErrCorruptRecord)
	}
	if rec.ModelImageURL == "" && len(rec.OutfitHistory) > 0 {
		rec.ModelImageURL = rec.OutfitHistory[0].AnyImage()
	}

	rec.CurrentOutfitIndex = clamp(rec.CurrentOutfitIndex, 0, len(rec.OutfitHistory)-1)
	rec.CurrentPoseIndex = clamp(rec.CurrentPoseIndex, 0, len(models.PoseInstructions)-1)

	if t, err := models.ParseTarget(string(rec.ActiveTarget)); err == nil {
		rec.ActiveTarget = t
	} else {
		rec.ActiveTarget = models.DefaultTarget
	}

	valid := rec.Catalog[:0]
	for _, g := range rec.Catalog {
		if g.Validate() == nil {
			valid = append(valid, g)
		}
	}
	rec.Catalog = valid
	return rec, nil
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// StartOver clears the session and deletes its saved record
func (s *Session) StartOver(ctx context.Context) error {
	if err := s.begin(""); err != nil {
		return err
	}
	defer s.end()

	s.mu.Lock()
	s.modelImage = ""
	s.history = nil
	s.current = 0
	s.pose = 0
	s.editing = noEdit
	s.target = models.DefaultTarget
	s.notes = ""
	s.lastError = ""
	s.catalog.Reset(s.wardrobe())
	s.mu.Unlock()

	if err := s.store.DeleteRecord(ctx, RecordKey(s.id)); err != nil {
		s.log.Warn("deleting saved session failed", zap.Error(err))
		return &PersistenceError{Op: "delete", Message: "Failed to clear the saved session.", Err: err}
	}
	s.log.Info("session cleared")
	return nil
}

// Package session implements the outfit session state machine: the
// append-only, truncatable history of outfit layers, the playback position
// inside it, the per-layer pose cache and the image currently displayed.
//
// All operations that call the image generator, and every other operation
// that rewrites the history, share one single-flight token: while one of
// them is in progress the others fail fast with ErrBusy and leave the state
// untouched.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/raushankrgupta/fitly-atelier/catalog"
	"github.com/raushankrgupta/fitly-atelier/models"
	"github.com/raushankrgupta/fitly-atelier/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Generator is the remote image generation service
type Generator interface {
	NormalizeModelPhoto(ctx context.Context, rawImage string) (string, error)
	CompositeGarment(ctx context.Context, baseImage, garmentImage string, target models.ClothingTarget) (string, error)
	RenderPose(ctx context.Context, baseImage, poseInstruction string) (string, error)
	RemoveJacket(ctx context.Context, baseImage string) (string, error)
}

// Store is the durable key-value store sessions are saved to
type Store interface {
	SaveRecord(ctx context.Context, key string, blob []byte) error
	// LoadRecord reports ok=false when no record exists under key
	LoadRecord(ctx context.Context, key string) (blob []byte, ok bool, err error)
	DeleteRecord(ctx context.Context, key string) error
}

// Recorder receives every image the session generates
type Recorder interface {
	Record(ctx context.Context, t models.TryOn) error
}

const noEdit = -1

// Session is one user's try-on session
type Session struct {
	id       string
	gen      Generator
	store    Store
	recorder Recorder
	log      *zap.Logger
	wardrobe func() []models.Garment
	catalog  *catalog.Catalog
	rollback bool

	flight *semaphore.Weighted

	mu             sync.RWMutex
	modelImage     string
	history        []models.OutfitLayer
	current        int
	pose           int
	editing        int
	target         models.ClothingTarget
	notes          string
	busy           bool
	loadingMessage string
	lastError      string
	updatedAt      time.Time
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the logger, the default discards output
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithRecorder reports generated images to r
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithCascadeRollback restores the pre-edit history when a cascade fails
// midway instead of keeping the layers already rewritten
func WithCascadeRollback(on bool) Option {
	return func(s *Session) { s.rollback = on }
}

// WithWardrobe sets the garments the catalog starts from and resets to
func WithWardrobe(seed func() []models.Garment) Option {
	return func(s *Session) { s.wardrobe = seed }
}

// New creates an empty session
func New(id string, gen Generator, store Store, opts ...Option) *Session {
	s := &Session{
		id:       id,
		gen:      gen,
		store:    store,
		log:      zap.NewNop(),
		wardrobe: catalog.DefaultWardrobe,
		flight:   semaphore.NewWeighted(1),
		editing:  noEdit,
		target:   models.DefaultTarget,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(zap.String("session_id", id))
	s.catalog = catalog.New(s.wardrobe())
	s.updatedAt = time.Now()
	return s
}

func (s *Session) ID() string {
	return s.id
}

// Catalog is the session's wardrobe
func (s *Session) Catalog() *catalog.Catalog {
	return s.catalog
}

// begin takes the single-flight token and marks the session busy
func (s *Session) begin(message string) error {
	if !s.flight.TryAcquire(1) {
		return ErrBusy
	}
	s.mu.Lock()
	s.busy = true
	s.loadingMessage = message
	if message != "" {
		s.lastError = ""
	}
	s.mu.Unlock()
	return nil
}

func (s *Session) end() {
	s.mu.Lock()
	s.busy = false
	s.loadingMessage = ""
	s.updatedAt = time.Now()
	s.mu.Unlock()
	s.flight.Release(1)
}

// fail records a generation failure as the user-visible error
func (s *Session) fail(op, attempted string, err error) error {
	gerr := &GenerationError{Op: op, Message: utils.FriendlyMessage(err, attempted), Err: err}
	s.mu.Lock()
	s.lastError = gerr.Message
	s.mu.Unlock()
	s.log.Warn("generation failed", zap.String("op", op), zap.Error(err))
	return gerr
}

// FinalizeBaseModel starts the outfit history from a normalized model image
func (s *Session) FinalizeBaseModel(image string) error {
	if image == "" {
		return fmt.Errorf("%w: model image is empty", ErrInvalidInput)
	}
	if err := s.begin(""); err != nil {
		return err
	}
	defer s.end()

	s.mu.Lock()
	s.finalizeLocked(image)
	s.mu.Unlock()
	s.log.Info("base model finalized")
	return nil
}

func (s *Session) finalizeLocked(image string) {
	s.modelImage = image
	s.history = []models.OutfitLayer{models.NewBaseLayer(models.PoseInstructions[0], image)}
	s.current = 0
	s.pose = 0
	s.editing = noEdit
	s.lastError = ""
}

// CreateModel normalizes a raw photo into the digital twin and finalizes it
// as the base layer
func (s *Session) CreateModel(ctx context.Context, rawImage string) error {
	if rawImage == "" {
		return fmt.Errorf("%w: photo is empty", ErrInvalidInput)
	}
	if err := s.begin("Creating your digital twin..."); err != nil {
		return err
	}
	defer s.end()

	image, err := s.gen.NormalizeModelPhoto(ctx, rawImage)
	if err != nil {
		return s.fail("model", "Failed to create model", err)
	}

	s.mu.Lock()
	s.finalizeLocked(image)
	s.mu.Unlock()

	s.record(ctx, models.KindModel, 0, "", "", models.PoseInstructions[0], image)
	s.log.Info("digital twin created")
	return nil
}

// ApplyGarment layers garment onto the displayed image. An empty target
// means the session's active target. When the next layer in history
// already holds the same garment and target it is re-entered without a
// generation call. When a layer is selected for editing the garment
// replaces that layer instead and everything above it is regenerated.
func (s *Session) ApplyGarment(ctx context.Context, source string, garment models.Garment, target models.ClothingTarget) error {
	if err := garment.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if target == "" {
		target = s.Target()
	}
	target, err := models.ParseTarget(string(target))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if source == "" {
		source = garment.URL
	}
	if source == "" {
		return fmt.Errorf("%w: garment %s has no image", ErrInvalidInput, garment.ID)
	}
	// The layer and the catalog keep the image actually composited so the
	// garment can be re-applied when a layer below it is edited.
	garment.URL = source

	if err := s.begin(fmt.Sprintf("Applying %s to %s...", garment.Name, target)); err != nil {
		return err
	}
	defer s.end()

	s.mu.Lock()
	base := s.displayLocked()
	if base == "" || len(s.history) == 0 {
		s.mu.Unlock()
		return ErrNoModel
	}
	if s.editing > 0 {
		k := s.editing
		s.mu.Unlock()
		return s.editWithCascade(ctx, k, source, garment, target)
	}
	if s.current+1 < len(s.history) {
		if g, t, ok := s.history[s.current+1].Garment(); ok && g.ID == garment.ID && t == target {
			s.current++
			s.pose = 0
			s.mu.Unlock()
			s.log.Debug("redo garment layer", zap.String("garment_id", garment.ID), zap.Int("index", s.current))
			return nil
		}
	}
	from := s.current
	poseKey := models.PoseInstructions[s.pose]
	s.mu.Unlock()

	image, err := s.gen.CompositeGarment(ctx, base, source, target)
	if err != nil {
		return s.fail("garment", "Failed to apply garment", err)
	}

	s.mu.Lock()
	s.appendLocked(from, models.NewGarmentLayer(garment, target, poseKey, image))
	index := s.current
	s.mu.Unlock()

	s.catalog.Add(garment)
	s.record(ctx, models.KindGarment, index, garment.ID, target, poseKey, image)
	s.log.Info("garment applied", zap.String("garment_id", garment.ID), zap.String("target", string(target)), zap.Int("index", index))
	return nil
}

// appendLocked drops every layer after from and appends layer
func (s *Session) appendLocked(from int, layer models.OutfitLayer) {
	h := make([]models.OutfitLayer, from+1, from+2)
	copy(h, s.history[:from+1])
	s.history = append(h, layer)
	s.current = from + 1
}

// RemoveJacket adds a layer with the outer jacket stripped
func (s *Session) RemoveJacket(ctx context.Context) error {
	if err := s.begin("Removing jacket..."); err != nil {
		return err
	}
	defer s.end()

	s.mu.Lock()
	base := s.displayLocked()
	if base == "" || len(s.history) == 0 {
		s.mu.Unlock()
		return ErrNoModel
	}
	from := s.current
	poseKey := models.PoseInstructions[s.pose]
	s.mu.Unlock()

	image, err := s.gen.RemoveJacket(ctx, base)
	if err != nil {
		return s.fail("remove_jacket", "Failed to remove jacket", err)
	}

	s.mu.Lock()
	s.appendLocked(from, models.NewActionLayer(models.ActionRemoveJacket, poseKey, image))
	index := s.current
	s.mu.Unlock()

	s.record(ctx, models.KindRemoveJacket, index, "", "", poseKey, image)
	s.log.Info("jacket removed", zap.Int("index", index))
	return nil
}

// RemoveLastGarment steps back one layer. Later layers stay in history
// until a different garment is applied.
func (s *Session) RemoveLastGarment() error {
	if err := s.begin(""); err != nil {
		return err
	}
	defer s.end()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current > 0 {
		s.current--
		s.pose = 0
		if s.editing > s.current {
			s.editing = noEdit
		}
	}
	return nil
}

// SelectPose switches the displayed pose, rendering it for the active
// layer on first use. A failed render restores the previous pose.
func (s *Session) SelectPose(ctx context.Context, index int) error {
	poseKey, ok := models.PoseInstruction(index)
	if !ok {
		return ErrInvalidPose
	}
	if err := s.begin(""); err != nil {
		return err
	}
	defer s.end()

	s.mu.Lock()
	if len(s.history) == 0 || index == s.pose {
		s.mu.Unlock()
		return nil
	}
	layer := s.history[s.current]
	if _, ok := layer.Image(poseKey); ok {
		s.pose = index
		s.mu.Unlock()
		return nil
	}
	base := layer.AnyImage()
	if base == "" {
		s.mu.Unlock()
		return nil
	}
	previous := s.pose
	layerIndex := s.current
	s.pose = index
	s.loadingMessage = "Changing pose..."
	s.lastError = ""
	s.mu.Unlock()

	image, err := s.gen.RenderPose(ctx, base, poseKey)
	if err != nil {
		s.mu.Lock()
		s.pose = previous
		s.mu.Unlock()
		return s.fail("pose", "Failed to change pose", err)
	}

	s.mu.Lock()
	updated := s.history[layerIndex].Clone()
	updated.PoseImages[poseKey] = image
	s.history[layerIndex] = updated
	s.mu.Unlock()

	s.record(ctx, models.KindPose, layerIndex, "", "", poseKey, image)
	s.log.Debug("pose rendered", zap.Int("layer", layerIndex), zap.Int("pose", index))
	return nil
}

// EditLayer selects layer index for in-place replacement by the next
// ApplyGarment. Selecting the layer already selected clears the selection.
func (s *Session) EditLayer(index int) error {
	if err := s.begin(""); err != nil {
		return err
	}
	defer s.end()

	s.mu.Lock()
	defer s.mu.Unlock()
	if index == s.editing {
		s.editing = noEdit
		return nil
	}
	if index <= 0 || index > s.current {
		return ErrInvalidLayer
	}
	if _, _, ok := s.history[index].Garment(); !ok {
		return ErrNotEditable
	}
	s.editing = index
	return nil
}

// CancelEdit clears the layer selected for editing
func (s *Session) CancelEdit() error {
	if err := s.begin(""); err != nil {
		return err
	}
	defer s.end()

	s.mu.Lock()
	s.editing = noEdit
	s.mu.Unlock()
	return nil
}

// SetTarget chooses the clothing target new garments are applied to
func (s *Session) SetTarget(target models.ClothingTarget) error {
	t, err := models.ParseTarget(string(target))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	s.mu.Lock()
	s.target = t
	s.mu.Unlock()
	return nil
}

// Target is the clothing target new garments are applied to
func (s *Session) Target() models.ClothingTarget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.target
}

// SetNotes replaces the tailor notes
func (s *Session) SetNotes(notes string) {
	s.mu.Lock()
	s.notes = notes
	s.mu.Unlock()
}

// DisplayImage is the image for the active layer and pose
func (s *Session) DisplayImage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.displayLocked()
}

func (s *Session) displayLocked() string {
	if len(s.history) == 0 || s.current >= len(s.history) {
		return s.modelImage
	}
	layer := s.history[s.current]
	if img, ok := layer.Image(models.PoseInstructions[s.pose]); ok {
		return img
	}
	return layer.AnyImage()
}

// ActiveLayers is the history up to and including the active layer
func (s *Session) ActiveLayers() []models.OutfitLayer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.history) == 0 {
		return nil
	}
	return cloneLayers(s.history[:s.current+1])
}

// ActiveGarmentIDs lists the garments worn in the active layers
func (s *Session) ActiveGarmentIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeGarmentIDsLocked()
}

func (s *Session) activeGarmentIDsLocked() []string {
	ids := []string{}
	if len(s.history) == 0 {
		return ids
	}
	for _, l := range s.history[:s.current+1] {
		if g, _, ok := l.Garment(); ok {
			ids = append(ids, g.ID)
		}
	}
	return ids
}

// AvailablePoseKeys lists the poses already rendered for the active layer
func (s *Session) AvailablePoseKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.history) == 0 {
		return []string{}
	}
	return s.history[s.current].PoseKeys()
}

// State is a consistent snapshot of the session
type State struct {
	ID                string                `json:"id"`
	ModelImageURL     string                `json:"model_image_url"`
	History           []models.OutfitLayer  `json:"outfit_history"`
	CurrentIndex      int                   `json:"current_outfit_index"`
	CurrentPoseIndex  int                   `json:"current_pose_index"`
	EditingIndex      *int                  `json:"editing_index"`
	Target            models.ClothingTarget `json:"active_target"`
	Notes             string                `json:"tailor_notes"`
	DisplayImage      string                `json:"display_image_url"`
	AvailablePoseKeys []string              `json:"available_pose_keys"`
	ActiveGarmentIDs  []string              `json:"active_garment_ids"`
	Busy              bool                  `json:"is_loading"`
	LoadingMessage    string                `json:"loading_message,omitempty"`
	Error             string                `json:"error,omitempty"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// Snapshot captures the current state
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := State{
		ID:                s.id,
		ModelImageURL:     s.modelImage,
		History:           cloneLayers(s.history),
		CurrentIndex:      s.current,
		CurrentPoseIndex:  s.pose,
		Target:            s.target,
		Notes:             s.notes,
		DisplayImage:      s.displayLocked(),
		AvailablePoseKeys: []string{},
		ActiveGarmentIDs:  s.activeGarmentIDsLocked(),
		Busy:              s.busy,
		LoadingMessage:    s.loadingMessage,
		Error:             s.lastError,
		UpdatedAt:         s.updatedAt,
	}
	if s.editing != noEdit {
		e := s.editing
		st.EditingIndex = &e
	}
	if len(s.history) > 0 {
		st.AvailablePoseKeys = s.history[s.current].PoseKeys()
	}
	return st
}

func (s *Session) record(ctx context.Context, kind models.GenerationKind, layer int, garmentID string, target models.ClothingTarget, pose, image string) {
	if s.recorder == nil {
		return
	}
	err := s.recorder.Record(ctx, models.TryOn{
		SessionID:         s.id,
		Kind:              kind,
		LayerIndex:        layer,
		GarmentID:         garmentID,
		Target:            target,
		Pose:              pose,
		GeneratedImageURL: image,
		CreatedAt:         time.Now(),
	})
	if err != nil {
		s.log.Warn("recording generated image failed", zap.String("kind", string(kind)), zap.Error(err))
	}
}

func cloneLayers(layers []models.OutfitLayer) []models.OutfitLayer {
	out := make([]models.OutfitLayer, len(layers))
	for i, l := range layers {
		out[i] = l.Clone()
	}
	return out
}

package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Action tags a structural layer that carries no garment
type Action string

const ActionRemoveJacket Action = "remove_jacket"

// Step is the operation that produced a layer from its predecessor.
// The base layer has no step.
type Step interface {
	step()
}

// GarmentStep applies a garment to a clothing target
type GarmentStep struct {
	Garment Garment
	Target  ClothingTarget
}

// ActionStep is a structural operation such as jacket removal
type ActionStep struct {
	Action Action
}

func (GarmentStep) step() {}
func (ActionStep) step()  {}

// OutfitLayer is one entry of the outfit history: the image state after
// one garment/action operation, rendered in one or more poses.
type OutfitLayer struct {
	Step       Step
	PoseImages map[string]string // pose instruction -> image reference
}

// NewBaseLayer creates the photo-only root layer
func NewBaseLayer(pose, image string) OutfitLayer {
	return OutfitLayer{PoseImages: map[string]string{pose: image}}
}

// NewGarmentLayer creates a layer produced by applying g to target t
func NewGarmentLayer(g Garment, t ClothingTarget, pose, image string) OutfitLayer {
	return OutfitLayer{
		Step:       GarmentStep{Garment: g, Target: t},
		PoseImages: map[string]string{pose: image},
	}
}

// NewActionLayer creates a structural layer
func NewActionLayer(a Action, pose, image string) OutfitLayer {
	return OutfitLayer{
		Step:       ActionStep{Action: a},
		PoseImages: map[string]string{pose: image},
	}
}

func (l OutfitLayer) IsBase() bool {
	return l.Step == nil
}

// Garment returns the garment and target of a garment layer
func (l OutfitLayer) Garment() (Garment, ClothingTarget, bool) {
	gs, ok := l.Step.(GarmentStep)
	if !ok {
		return Garment{}, "", false
	}
	return gs.Garment, gs.Target, true
}

// Action returns the tag of a structural layer
func (l OutfitLayer) Action() (Action, bool) {
	as, ok := l.Step.(ActionStep)
	if !ok {
		return "", false
	}
	return as.Action, true
}

// Image looks up the rendering for an exact pose instruction
func (l OutfitLayer) Image(pose string) (string, bool) {
	img, ok := l.PoseImages[pose]
	return img, ok && img != ""
}

// PoseKeys lists the poses already rendered for this layer, known poses
// first in their fixed order, then any unknown keys sorted.
func (l OutfitLayer) PoseKeys() []string {
	keys := make([]string, 0, len(l.PoseImages))
	for _, p := range PoseInstructions {
		if _, ok := l.PoseImages[p]; ok {
			keys = append(keys, p)
		}
	}
	var extra []string
	for k := range l.PoseImages {
		if PoseIndex(k) < 0 {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// AnyImage returns one existing rendering of the layer, or "" if none
func (l OutfitLayer) AnyImage() string {
	for _, k := range l.PoseKeys() {
		if img := l.PoseImages[k]; img != "" {
			return img
		}
	}
	return ""
}

// Clone deep-copies the pose map so the copy can be mutated independently
func (l OutfitLayer) Clone() OutfitLayer {
	poses := make(map[string]string, len(l.PoseImages))
	for k, v := range l.PoseImages {
		poses[k] = v
	}
	return OutfitLayer{Step: l.Step, PoseImages: poses}
}

// Label is a human readable description used in logs and summaries
func (l OutfitLayer) Label() string {
	switch s := l.Step.(type) {
	case GarmentStep:
		return fmt.Sprintf("%s (%s)", s.Garment.Name, s.Target)
	case ActionStep:
		if s.Action == ActionRemoveJacket {
			return "Jacket Removed"
		}
		return string(s.Action)
	default:
		return "Digital Twin Base"
	}
}

type layerJSON struct {
	Garment    *Garment          `json:"garment"`
	Target     ClothingTarget    `json:"target,omitempty"`
	Action     Action            `json:"action,omitempty"`
	PoseImages map[string]string `json:"pose_images"`
}

func (l OutfitLayer) MarshalJSON() ([]byte, error) {
	out := layerJSON{PoseImages: l.PoseImages}
	switch s := l.Step.(type) {
	case GarmentStep:
		g := s.Garment
		out.Garment = &g
		out.Target = s.Target
	case ActionStep:
		out.Action = s.Action
	case nil:
	default:
		return nil, fmt.Errorf("unknown layer step %T", s)
	}
	if out.PoseImages == nil {
		out.PoseImages = map[string]string{}
	}
	return json.Marshal(out)
}

func (l *OutfitLayer) UnmarshalJSON(data []byte) error {
	var in layerJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if len(in.PoseImages) == 0 {
		return fmt.Errorf("layer has no pose images")
	}
	switch {
	case in.Garment != nil && in.Action != "":
		return fmt.Errorf("layer carries both a garment and action %q", in.Action)
	case in.Garment != nil:
		if err := in.Garment.Validate(); err != nil {
			return fmt.Errorf("layer garment: %w", err)
		}
		target := in.Target
		if target == "" {
			target = DefaultTarget
		}
		parsed, err := ParseTarget(string(target))
		if err != nil {
			return err
		}
		l.Step = GarmentStep{Garment: *in.Garment, Target: parsed}
	case in.Action != "":
		if in.Action != ActionRemoveJacket {
			return fmt.Errorf("unknown layer action %q", in.Action)
		}
		l.Step = ActionStep{Action: in.Action}
	default:
		l.Step = nil
	}
	l.PoseImages = in.PoseImages
	return nil
}

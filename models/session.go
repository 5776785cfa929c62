package models

import "time"

// SessionRecord is the persisted shape of an outfit session. It is written
// verbatim, pose-image maps included, under one key per session.
type SessionRecord struct {
	ModelImageURL      string         `json:"model_image_url"`
	OutfitHistory      []OutfitLayer  `json:"outfit_history"`
	CurrentOutfitIndex int            `json:"current_outfit_index"`
	CurrentPoseIndex   int            `json:"current_pose_index"`
	ActiveTarget       ClothingTarget `json:"active_target,omitempty"`
	TailorNotes        string         `json:"tailor_notes,omitempty"`
	Catalog            []Garment      `json:"catalog,omitempty"`
	SavedAt            time.Time      `json:"saved_at"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GenerationKind names the collaborator call that produced an image
type GenerationKind string

const (
	KindModel        GenerationKind = "model"
	KindGarment      GenerationKind = "garment"
	KindPose         GenerationKind = "pose"
	KindRemoveJacket GenerationKind = "remove_jacket"
	KindCascade      GenerationKind = "cascade"
)

// TryOn records one generated image of a session for the gallery
type TryOn struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID         string             `bson:"session_id" json:"session_id"`
	Kind              GenerationKind     `bson:"kind" json:"kind"`
	LayerIndex        int                `bson:"layer_index" json:"layer_index"`
	GarmentID         string             `bson:"garment_id,omitempty" json:"garment_id,omitempty"`
	Target            ClothingTarget     `bson:"target,omitempty" json:"target,omitempty"`
	Pose              string             `bson:"pose" json:"pose"`
	GeneratedImageURL string             `bson:"generated_image_url" json:"generated_image_url"` // Image reference, presigned on read
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	IsDeleted         bool               `bson:"is_deleted" json:"is_deleted"`
}

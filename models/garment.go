package models

import (
	"fmt"
	"strings"
)

// GarmentType separates finished products from raw fabric swatches
type GarmentType string

const (
	GarmentProduct GarmentType = "product"
	GarmentFabric  GarmentType = "fabric"
)

// Category is the wardrobe shelf a garment is listed under
type Category string

const (
	CategoryShirt    Category = "Shirt"
	CategorySuit     Category = "Suit"
	CategoryJacket   Category = "Jacket"
	CategoryTrousers Category = "Trousers"
	CategoryFabric   Category = "Fabric"
)

// ParseCategory accepts the category names case-insensitively
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "shirt", "shirts":
		return CategoryShirt, nil
	case "suit", "suits":
		return CategorySuit, nil
	case "jacket", "jackets":
		return CategoryJacket, nil
	case "trousers":
		return CategoryTrousers, nil
	case "fabric", "fabrics":
		return CategoryFabric, nil
	}
	return "", fmt.Errorf("unknown garment category %q", s)
}

// Garment is an immutable wardrobe entry that can be applied to the model
type Garment struct {
	ID       string      `bson:"id" json:"id"`
	Name     string      `bson:"name" json:"name"`
	URL      string      `bson:"url" json:"url"` // Image source: data URI, http(s) URL or s3:// reference
	Type     GarmentType `bson:"type" json:"type"`
	Category Category    `bson:"category" json:"category"`
	Mill     string      `bson:"mill,omitempty" json:"mill,omitempty"`
}

// Validate reports whether the garment carries the fields needed to apply it
func (g Garment) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return fmt.Errorf("garment id is required")
	}
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("garment name is required")
	}
	if g.Type != "" && g.Type != GarmentProduct && g.Type != GarmentFabric {
		return fmt.Errorf("unknown garment type %q", g.Type)
	}
	return nil
}

// ClothingTarget is the body region a garment operation affects
type ClothingTarget string

const (
	TargetShirt    ClothingTarget = "shirt"
	TargetJacket   ClothingTarget = "jacket"
	TargetTrousers ClothingTarget = "trousers"
	TargetSuit     ClothingTarget = "suit"
)

// DefaultTarget is used when a request or a restored record names none
const DefaultTarget = TargetShirt

// ParseTarget validates a clothing target
func ParseTarget(s string) (ClothingTarget, error) {
	t := ClothingTarget(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TargetShirt, TargetJacket, TargetTrousers, TargetSuit:
		return t, nil
	}
	return "", fmt.Errorf("unknown clothing target %q", s)
}

// TargetForCategory picks the target an uploaded garment of the given
// category is applied to by default
func TargetForCategory(c Category) ClothingTarget {
	switch c {
	case CategorySuit:
		return TargetSuit
	case CategoryJacket:
		return TargetJacket
	case CategoryTrousers:
		return TargetTrousers
	default:
		return TargetShirt
	}
}

package catalog

import "github.com/raushankrgupta/fitly-atelier/models"

const swatchBaseURL = "https://storage.googleapis.com/mabbucket/MABSUITapp/fabric_swatches/"

var defaultWardrobe = []models.Garment{
	{ID: "ESHS-9819600H", Name: "Midnight Navy Super 130s", URL: swatchBaseURL + "ESHS-9819600H.jpg", Type: models.GarmentFabric, Category: models.CategorySuit, Mill: "Holland & Sherry"},
	{ID: "ESHS-983503H", Name: "Charcoal Grey Herringbone", URL: swatchBaseURL + "ESHS-983503H.jpg", Type: models.GarmentFabric, Category: models.CategorySuit, Mill: "Holland & Sherry"},
	{ID: "ESHS-986026H", Name: "Charcoal Pinstripe", URL: swatchBaseURL + "ESHS-986026H.jpg", Type: models.GarmentFabric, Category: models.CategorySuit, Mill: "Holland & Sherry"},
	{ID: "ESHS-986028H", Name: "Grey Glen Plaid", URL: swatchBaseURL + "ESHS-986028H.jpg", Type: models.GarmentFabric, Category: models.CategoryJacket, Mill: "Holland & Sherry"},
	{ID: "SSCA-852455", Name: "Navy Herringbone", URL: swatchBaseURL + "SSCA-852455Scaba.jpg", Type: models.GarmentFabric, Category: models.CategorySuit, Mill: "Scabal"},
	{ID: "SSCA-852482", Name: "Light Grey Flannel", URL: swatchBaseURL + "SSCA-852482Scaba.jpg", Type: models.GarmentFabric, Category: models.CategoryTrousers, Mill: "Scabal"},
	{ID: "ESHS-986006H", Name: "Oxford Blue Birdseye", URL: swatchBaseURL + "ESHS-986006H.jpg", Type: models.GarmentFabric, Category: models.CategoryShirt, Mill: "Holland & Sherry"},
	{ID: "SSCA-852783", Name: "Medium Blue Solid", URL: swatchBaseURL + "SSCA-852783Scaba.jpg", Type: models.GarmentFabric, Category: models.CategoryShirt, Mill: "Scabal"},
}

// DefaultWardrobe returns the garments every new session starts with
func DefaultWardrobe() []models.Garment {
	out := make([]models.Garment, len(defaultWardrobe))
	copy(out, defaultWardrobe)
	return out
}

package scrapers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/raushankrgupta/fitly-atelier/models"
	"github.com/raushankrgupta/fitly-atelier/utils"
	"go.uber.org/zap"
)

// ErrNoProductImage is returned for pages without a usable product image
var ErrNoProductImage = errors.New("product page has no image")

// importFolder is the S3 prefix imported garment images are mirrored under
const importFolder = "imported_garments"

// ImportGarment turns a shop's product page into a wardrobe garment. The
// first product image becomes the garment image, mirrored to S3 when a
// bucket is configured. An empty category is guessed from the page.
func ImportGarment(ctx context.Context, url string, category models.Category) (models.Garment, *models.Product, error) {
	scraper, resolvedURL, err := GetScraper(ctx, url)
	if err != nil {
		return models.Garment{}, nil, err
	}

	product, err := scraper.ScrapeProduct(ctx, resolvedURL)
	if err != nil {
		return models.Garment{}, nil, fmt.Errorf("failed to read product page: %w", err)
	}

	garment, err := GarmentFromProduct(product, category)
	if err != nil {
		return models.Garment{}, product, err
	}

	if utils.S3Enabled() {
		mirrored := utils.MirrorImagesToS3(ctx, []string{garment.URL}, importFolder)
		if ref, ok := mirrored[garment.URL]; ok {
			garment.URL = ref
		} else {
			utils.Logger.Warn("keeping shop image url, mirroring failed", zap.String("url", garment.URL))
		}
	}

	utils.Logger.Info("garment imported",
		zap.String("source", resolvedURL),
		zap.String("garment_id", garment.ID),
		zap.String("category", string(garment.Category)),
	)
	return garment, product, nil
}

// GarmentFromProduct builds the wardrobe entry for a scraped product
func GarmentFromProduct(p *models.Product, category models.Category) (models.Garment, error) {
	var image string
	for _, img := range p.Images {
		if img = normalizeImageURL(img); img != "" {
			image = img
			break
		}
	}
	if image == "" {
		return models.Garment{}, ErrNoProductImage
	}

	if category == "" {
		if c, err := models.ParseCategory(p.Category); err == nil {
			category = c
		} else {
			category = guessCategory(p.Title)
		}
	}

	name := strings.TrimSpace(p.Title)
	if name == "" {
		name = "Imported garment"
	}
	if p.Brand != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(p.Brand)) {
		name = p.Brand + " " + name
	}

	garmentType := models.GarmentProduct
	if category == models.CategoryFabric {
		garmentType = models.GarmentFabric
	}

	return models.Garment{
		ID:       "import-" + uuid.New().String(),
		Name:     name,
		URL:      image,
		Type:     garmentType,
		Category: category,
		Mill:     p.Brand,
	}, nil
}

func normalizeImageURL(img string) string {
	img = strings.TrimSpace(img)
	switch {
	case strings.HasPrefix(img, "//"):
		return "https:" + img
	case strings.HasPrefix(img, "http://"), strings.HasPrefix(img, "https://"):
		return img
	}
	return ""
}

func guessCategory(title string) models.Category {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "suit"):
		return models.CategorySuit
	case strings.Contains(t, "blazer"), strings.Contains(t, "jacket"):
		return models.CategoryJacket
	case strings.Contains(t, "trouser"), strings.Contains(t, "chino"), strings.Contains(t, "pant"):
		return models.CategoryTrousers
	case strings.Contains(t, "fabric"), strings.Contains(t, "cloth"):
		return models.CategoryFabric
	}
	return models.CategoryShirt
}

package scrapers

import (
	"context"

	"github.com/raushankrgupta/fitly-atelier/models"
)

// Scraper reads product details from one family of shop pages
type Scraper interface {
	// CanScrape checks if the scraper can handle the given URL
	CanScrape(url string) bool
	// ScrapeProduct scrapes the product details from the given URL
	ScrapeProduct(ctx context.Context, url string) (*models.Product, error)
}

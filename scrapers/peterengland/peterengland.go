package peterengland

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raushankrgupta/fitly-atelier/models"
	"github.com/raushankrgupta/fitly-atelier/scrapers/base"
)

type PeterEnglandScraper struct {
	*base.BaseScraper
}

func NewPeterEnglandScraper() *PeterEnglandScraper {
	return &PeterEnglandScraper{
		BaseScraper: base.NewBaseScraper(),
	}
}

func (s *PeterEnglandScraper) CanScrape(url string) bool {
	return strings.Contains(url, "peterengland")
}

func (s *PeterEnglandScraper) ScrapeProduct(ctx context.Context, url string) (*models.Product, error) {
	doc, err := s.FetchDocument(ctx, url, func(doc *goquery.Document) bool {
		return doc.Find("h1.pdp-title").Length() > 0 || doc.Find(".ProductDetails__productName").Length() > 0
	})
	if err != nil {
		return nil, err
	}
	return ParseDocument(doc, url), nil
}

// ParseDocument reads a Peter England product page
func ParseDocument(doc *goquery.Document, url string) *models.Product {
	product := &models.Product{Brand: "Peter England", SourceURL: url}

	product.Title = strings.TrimSpace(doc.Find("h1.pdp-title").Text())
	if product.Title == "" {
		product.Title = strings.TrimSpace(doc.Find(".ProductDetails__productName").Text())
	}
	if product.Title == "" {
		// Page title reads "Name Online - ID | Brand"
		pageTitle := doc.Find("title").Text()
		if parts := strings.Split(pageTitle, " Online -"); len(parts) > 1 {
			product.Title = strings.TrimSpace(parts[0])
		}
	}

	product.Price = strings.TrimSpace(doc.Find(".pdp-price strong").Text())
	if product.Price == "" {
		product.Price = strings.TrimSpace(doc.Find(".ProductDetails__price").Text())
	}
	product.MRP = strings.TrimSpace(doc.Find(".pdp-mrp del").Text())
	product.Description = strings.TrimSpace(doc.Find(".pdp-desc").Text())
	product.Category = categoryFromTitle(product.Title)

	product.Images = base.ImageSources(doc, ".Start-image-gallery img")
	if len(product.Images) == 0 {
		product.Images = base.ImageSources(doc, ".slick-track img")
	}
	if len(product.Images) == 0 {
		if og := base.MetaContent(doc, "og:image"); og != "" {
			product.Images = []string{og}
		}
	}
	return product
}

func categoryFromTitle(title string) string {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "suit"):
		return "Suit"
	case strings.Contains(t, "blazer"), strings.Contains(t, "jacket"):
		return "Jacket"
	case strings.Contains(t, "trouser"), strings.Contains(t, "chino"), strings.Contains(t, "pant"):
		return "Trousers"
	case strings.Contains(t, "shirt"):
		return "Shirt"
	}
	return ""
}

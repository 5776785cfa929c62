package tatacliq

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raushankrgupta/fitly-atelier/models"
	"github.com/raushankrgupta/fitly-atelier/scrapers/base"
)

type TataCliqScraper struct {
	*base.BaseScraper
}

func NewTataCliqScraper() *TataCliqScraper {
	return &TataCliqScraper{
		BaseScraper: base.NewBaseScraper(),
	}
}

func (s *TataCliqScraper) CanScrape(url string) bool {
	return strings.Contains(url, "tatacliq.com")
}

func (s *TataCliqScraper) ScrapeProduct(ctx context.Context, url string) (*models.Product, error) {
	doc, err := s.FetchDocument(ctx, url, func(doc *goquery.Document) bool {
		// Needs the rendered product card
		return doc.Find(".ProductDescriptionPage__productName").Length() > 0 || doc.Find(".ProductDetailsMainCard__productName").Length() > 0
	})
	if err != nil {
		return nil, err
	}
	return ParseDocument(doc, url), nil
}

// ParseDocument reads a rendered Tata CLiQ product page
func ParseDocument(doc *goquery.Document, url string) *models.Product {
	product := &models.Product{SourceURL: url}

	product.Title = firstText(doc, "h1.ProductDescriptionPage__productName", ".ProductDetailsMainCard__productName")
	product.Brand = firstText(doc, ".ProductDescriptionPage__brandName", ".ProductDetailsMainCard__brandName")
	product.Price = firstText(doc, ".ProductDescriptionPage__price", ".ProductDetailsMainCard__price")
	product.MRP = firstText(doc, ".ProductDescriptionPage__mrp", ".ProductDetailsMainCard__mrp")
	product.Description = firstText(doc, ".ProductDescriptionPage__productDescription", ".ProductDetailsMainCard__description")

	product.Images = base.ImageSources(doc, "img.ImageGallery__image")
	if len(product.Images) == 0 {
		if metaImg := base.MetaContent(doc, "og:image"); metaImg != "" {
			product.Images = append(product.Images, metaImg)
		}
	}
	return product
}

func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if v := strings.TrimSpace(doc.Find(sel).First().Text()); v != "" {
			return v
		}
	}
	return ""
}

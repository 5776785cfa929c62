// Package generic reads product details any shop exposes for link
// previews: Open Graph tags, product meta tags and JSON-LD.
package generic

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raushankrgupta/fitly-atelier/models"
	"github.com/raushankrgupta/fitly-atelier/scrapers/base"
)

type OpenGraphScraper struct {
	*base.BaseScraper
}

func NewOpenGraphScraper() *OpenGraphScraper {
	return &OpenGraphScraper{BaseScraper: base.NewBaseScraper()}
}

// CanScrape accepts any page, it is tried after the shop-specific scrapers
func (s *OpenGraphScraper) CanScrape(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

func (s *OpenGraphScraper) ScrapeProduct(ctx context.Context, url string) (*models.Product, error) {
	doc, err := s.FetchDocument(ctx, url, func(doc *goquery.Document) bool {
		return base.MetaContent(doc, "og:image") != "" || doc.Find(`script[type="application/ld+json"]`).Length() > 0
	})
	if err != nil {
		return nil, err
	}
	return ParseDocument(doc, url), nil
}

// ParseDocument extracts a product from the page's metadata
func ParseDocument(doc *goquery.Document, url string) *models.Product {
	product := &models.Product{SourceURL: url}
	if ld, ok := findProductLD(doc); ok {
		product.Title = ld.Name
		product.Description = ld.Description
		product.Brand = ld.brand()
		product.Category = ld.Category
		product.Material = ld.Material
		product.Images = ld.images()
		product.Price = ld.price()
	}

	if product.Title == "" {
		product.Title = base.MetaContent(doc, "og:title")
	}
	if product.Title == "" {
		product.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if product.Title == "" {
		product.Title = strings.TrimSpace(doc.Find("title").Text())
	}
	if product.Description == "" {
		product.Description = base.MetaContent(doc, "og:description")
	}
	if product.Brand == "" {
		product.Brand = base.MetaContent(doc, "product:brand")
	}
	if product.Price == "" {
		if amount := base.MetaContent(doc, "product:price:amount"); amount != "" {
			product.Price = strings.TrimSpace(base.MetaContent(doc, "product:price:currency") + " " + amount)
		}
	}
	if img := base.MetaContent(doc, "og:image"); img != "" && !contains(product.Images, img) {
		product.Images = append(product.Images, img)
	}
	return product
}

type productLD struct {
	Type        any    `json:"@type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Material    string `json:"material"`
	Image       any    `json:"image"`
	Brand       any    `json:"brand"`
	Offers      any    `json:"offers"`
}

func findProductLD(doc *goquery.Document) (productLD, bool) {
	var found productLD
	ok := false
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		var candidates []productLD
		if strings.HasPrefix(raw, "[") {
			_ = json.Unmarshal([]byte(raw), &candidates)
		} else {
			var one productLD
			if json.Unmarshal([]byte(raw), &one) == nil {
				candidates = append(candidates, one)
			}
		}
		for _, c := range candidates {
			if c.isProduct() {
				found, ok = c, true
				return false
			}
		}
		return true
	})
	return found, ok
}

func (p productLD) isProduct() bool {
	switch t := p.Type.(type) {
	case string:
		return t == "Product"
	case []any:
		for _, v := range t {
			if v == "Product" {
				return true
			}
		}
	}
	return false
}

func (p productLD) images() []string {
	switch v := p.Image.(type) {
	case string:
		return []string{v}
	case []any:
		var out []string
		for _, item := range v {
			switch img := item.(type) {
			case string:
				out = append(out, img)
			case map[string]any:
				if u, _ := img["url"].(string); u != "" {
					out = append(out, u)
				}
			}
		}
		return out
	case map[string]any:
		if u, _ := v["url"].(string); u != "" {
			return []string{u}
		}
	}
	return nil
}

func (p productLD) brand() string {
	switch v := p.Brand.(type) {
	case string:
		return v
	case map[string]any:
		name, _ := v["name"].(string)
		return name
	}
	return ""
}

func (p productLD) price() string {
	offer, ok := p.Offers.(map[string]any)
	if !ok {
		if list, isList := p.Offers.([]any); isList && len(list) > 0 {
			offer, ok = list[0].(map[string]any)
		}
	}
	if !ok {
		return ""
	}
	currency, _ := offer["priceCurrency"].(string)
	var amount string
	switch v := offer["price"].(type) {
	case string:
		amount = v
	case float64:
		amount = strconv.FormatFloat(v, 'f', -1, 64)
	}
	if amount == "" {
		return ""
	}
	return strings.TrimSpace(currency + " " + amount)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

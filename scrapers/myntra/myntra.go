package myntra

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raushankrgupta/fitly-atelier/models"
	"github.com/raushankrgupta/fitly-atelier/scrapers/base"
)

// stateMarker prefixes the page state script Myntra renders server side
const stateMarker = "window.__myx ="

type MyntraScraper struct {
	*base.BaseScraper
}

func NewMyntraScraper() *MyntraScraper {
	return &MyntraScraper{
		BaseScraper: base.NewBaseScraper(),
	}
}

func (s *MyntraScraper) CanScrape(url string) bool {
	return strings.Contains(url, "myntra.com")
}

func (s *MyntraScraper) ScrapeProduct(ctx context.Context, url string) (*models.Product, error) {
	doc, err := s.FetchDocument(ctx, url, func(doc *goquery.Document) bool {
		return strings.Contains(doc.Text(), stateMarker) || doc.Find("h1").Length() > 0
	})
	if err != nil {
		return nil, err
	}
	return ParseDocument(doc, url), nil
}

type pdpState struct {
	PdpData struct {
		Name  string `json:"name"`
		Brand struct {
			Name string `json:"name"`
		} `json:"brand"`
		MRP            any `json:"mrp"`
		Price          any `json:"price"`
		ProductDetails any `json:"productDetails"`
		AnalyticsData  struct {
			ArticleType string `json:"articleType"`
		} `json:"analytics"`
		Media struct {
			Albums []struct {
				Images []struct {
					Src string `json:"src"`
				} `json:"images"`
			} `json:"albums"`
		} `json:"media"`
	} `json:"pdpData"`
}

// ParseDocument reads the embedded page state, falling back to the
// rendered markup
func ParseDocument(doc *goquery.Document, url string) *models.Product {
	product := &models.Product{SourceURL: url}

	if state, ok := pageState(doc); ok {
		pd := state.PdpData
		product.Title = pd.Name
		product.Brand = pd.Brand.Name
		product.Price = rupees(pd.Price)
		product.MRP = rupees(pd.MRP)
		product.Category = pd.AnalyticsData.ArticleType
		if details, ok := pd.ProductDetails.(string); ok {
			product.Description = details
		}
		for _, album := range pd.Media.Albums {
			for _, img := range album.Images {
				if img.Src != "" {
					product.Images = append(product.Images, img.Src)
				}
			}
		}
	}

	if product.Title == "" {
		product.Title = strings.TrimSpace(doc.Find(".pdp-title").Text())
		if name := strings.TrimSpace(doc.Find(".pdp-name").Text()); name != "" {
			product.Brand = product.Title
			product.Title = name
		}
		product.Price = strings.TrimSpace(doc.Find(".pdp-price").First().Text())
		product.MRP = strings.TrimSpace(doc.Find(".pdp-mrp").First().Text())
		product.Description = strings.TrimSpace(doc.Find(".pdp-product-description-content").Text())
	}

	if len(product.Images) == 0 {
		doc.Find(".image-grid-image").Each(func(i int, s *goquery.Selection) {
			if u := backgroundURL(s.AttrOr("style", "")); u != "" {
				product.Images = append(product.Images, u)
			}
		})
	}
	return product
}

func pageState(doc *goquery.Document) (pdpState, bool) {
	var state pdpState
	found := false
	doc.Find("script").EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := s.Text()
		idx := strings.Index(text, stateMarker)
		if idx < 0 {
			return true
		}
		raw := strings.TrimSpace(text[idx+len(stateMarker):])
		raw = strings.TrimSuffix(raw, ";")
		found = json.Unmarshal([]byte(raw), &state) == nil
		return false
	})
	return state, found
}

func rupees(v any) string {
	if v == nil {
		return ""
	}
	s := strings.TrimSpace(fmt.Sprintf("%v", v))
	if s == "" || strings.Contains(s, "Rs") {
		return s
	}
	return "Rs. " + s
}

// backgroundURL extracts the url from a background-image style
func backgroundURL(style string) string {
	start := strings.Index(style, "url(")
	if start < 0 {
		return ""
	}
	start += len("url(")
	end := strings.Index(style[start:], ")")
	if end < 0 {
		return ""
	}
	return strings.Trim(style[start:start+end], "\"'")
}

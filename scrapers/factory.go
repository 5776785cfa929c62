package scrapers

import (
	"context"
	"fmt"

	"github.com/raushankrgupta/fitly-atelier/scrapers/generic"
	"github.com/raushankrgupta/fitly-atelier/scrapers/myntra"
	"github.com/raushankrgupta/fitly-atelier/scrapers/peterengland"
	"github.com/raushankrgupta/fitly-atelier/scrapers/tatacliq"
	"github.com/raushankrgupta/fitly-atelier/utils"
)

// Registered lists the scrapers in the order they are tried. The Open
// Graph scraper accepts any page and stays last.
func Registered() []Scraper {
	return []Scraper{
		myntra.NewMyntraScraper(),
		tatacliq.NewTataCliqScraper(),
		peterengland.NewPeterEnglandScraper(),
		generic.NewOpenGraphScraper(),
	}
}

// GetScraper returns the appropriate scraper and the resolved URL
func GetScraper(ctx context.Context, url string) (Scraper, string, error) {
	// Resolve shortened URLs (e.g., bit.ly)
	resolvedURL, err := utils.ResolveShortenedURL(ctx, url)
	if err != nil {
		return nil, url, fmt.Errorf("error resolving url: %v", err)
	}

	s, ok := Match(Registered(), resolvedURL)
	if !ok {
		return nil, resolvedURL, fmt.Errorf("no scraper found for url: %s", resolvedURL)
	}
	return s, resolvedURL, nil
}

// Match picks the first scraper in list that handles url
func Match(list []Scraper, url string) (Scraper, bool) {
	for _, s := range list {
		if s.CanScrape(url) {
			return s, true
		}
	}
	return nil, false
}

package base

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/raushankrgupta/fitly-atelier/utils"
	"go.uber.org/zap"
)

// BaseScraper handles common scraping logic
type BaseScraper struct {
	Client *http.Client
	// Browser renders pages that need JavaScript. Nil disables the fallback.
	Browser func(ctx context.Context, url string) (*goquery.Document, error)
}

// NewBaseScraper creates a new BaseScraper instance
func NewBaseScraper() *BaseScraper {
	return &BaseScraper{
		Client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				ForceAttemptHTTP2:     false,
				TLSNextProto:          make(map[string]func(string, *tls.Conn) http.RoundTripper),
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		Browser: FetchDocumentChromeDP,
	}
}

// FetchDocument fetches the URL over plain HTTP first and falls back to a
// headless browser when the page fails validator
func (b *BaseScraper) FetchDocument(ctx context.Context, url string, validator func(*goquery.Document) bool) (*goquery.Document, error) {
	doc, err := b.FetchDocumentHTTP(ctx, url)
	if err == nil {
		if IsValidDocument(doc) && validator(doc) {
			utils.Logger.Debug("page fetched over http", zap.String("url", url))
			return doc, nil
		}
		utils.Logger.Debug("http page failed validation, trying browser", zap.String("url", url))
	} else {
		utils.Logger.Debug("http fetch failed", zap.String("url", url), zap.Error(err))
	}

	if b.Browser == nil {
		if err == nil {
			err = fmt.Errorf("page did not contain product details")
		}
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}

	doc, err = b.Browser(ctx, url)
	if err == nil && validator(doc) {
		utils.Logger.Debug("page rendered in browser", zap.String("url", url))
		return doc, nil
	}
	if err != nil {
		utils.Logger.Warn("browser fetch failed", zap.String("url", url), zap.Error(err))
	}

	return nil, fmt.Errorf("all strategies failed for %s", url)
}

// IsValidDocument rejects bot-check pages and near-empty responses
func IsValidDocument(doc *goquery.Document) bool {
	title := strings.ToLower(strings.TrimSpace(doc.Find("title").Text()))
	if strings.Contains(title, "robot check") ||
		strings.Contains(title, "captcha") ||
		strings.Contains(title, "access denied") {
		return false
	}
	if doc.Find("meta[property='og:image']").Length() > 0 {
		return true
	}
	return len(strings.TrimSpace(doc.Find("body").Text())) > 200
}

// FetchDocumentHTTP fetches the URL and returns a GoQuery document via standard HTTP
func (b *BaseScraper) FetchDocumentHTTP(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	// Common headers to mimic a real browser
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "cross-site")

	res, err := b.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status code error: %d %s", res.StatusCode, res.Status)
	}

	return goquery.NewDocumentFromReader(res.Body)
}

// MetaContent returns the content of the first meta tag with the given
// property or name
func MetaContent(doc *goquery.Document, key string) string {
	v := doc.Find(fmt.Sprintf("meta[property='%s']", key)).AttrOr("content", "")
	if v == "" {
		v = doc.Find(fmt.Sprintf("meta[name='%s']", key)).AttrOr("content", "")
	}
	return strings.TrimSpace(v)
}

// ImageSources collects the src of every image matched by selector
func ImageSources(doc *goquery.Document, selector string) []string {
	var out []string
	doc.Find(selector).Each(func(i int, s *goquery.Selection) {
		src := s.AttrOr("src", "")
		if src == "" {
			src = s.AttrOr("data-src", "")
		}
		if src != "" {
			out = append(out, src)
		}
	})
	return out
}

package base

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productPage = `<html><head><title>Oxford Shirt</title>
<meta property="og:image" content="https://cdn.example.com/oxford.jpg">
<meta name="product:brand" content="Atelier">
</head><body><h1>Oxford Shirt</h1>
<div class="gallery"><img src="/a.jpg"><img data-src="/b.jpg"><img></div></body></html>`

func TestFetchDocumentHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		_, _ = w.Write([]byte(productPage))
	}))
	defer srv.Close()

	b := &BaseScraper{Client: srv.Client()}
	doc, err := b.FetchDocument(context.Background(), srv.URL, func(d *goquery.Document) bool {
		return d.Find("h1").Length() > 0
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/oxford.jpg", MetaContent(doc, "og:image"))
	assert.Equal(t, "Atelier", MetaContent(doc, "product:brand"))
	assert.Equal(t, []string{"/a.jpg", "/b.jpg"}, ImageSources(doc, ".gallery img"))
}

func TestFetchDocumentFallsBackToBrowser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Robot Check</title></head><body></body></html>`))
	}))
	defer srv.Close()

	browserCalls := 0
	b := &BaseScraper{
		Client: srv.Client(),
		Browser: func(ctx context.Context, url string) (*goquery.Document, error) {
			browserCalls++
			return goquery.NewDocumentFromReader(strings.NewReader(productPage))
		},
	}
	doc, err := b.FetchDocument(context.Background(), srv.URL, func(d *goquery.Document) bool {
		return d.Find("h1").Length() > 0
	})
	require.NoError(t, err)
	assert.Equal(t, 1, browserCalls)
	assert.Equal(t, "Oxford Shirt", doc.Find("h1").Text())
}

func TestFetchDocumentWithoutBrowser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	b := &BaseScraper{Client: srv.Client()}
	_, err := b.FetchDocument(context.Background(), srv.URL, func(*goquery.Document) bool { return true })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

package peterengland

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument(t *testing.T) {
	html := `<html><head><title>Men Navy Suit Online - PE123 | Peter England</title></head><body>
<div class="pdp-price"><strong>Rs. 8,999</strong></div>
<div class="Start-image-gallery"><img src="https://imagescdn.example.com/1.jpg"></div>
</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	p := ParseDocument(doc, "https://peterengland.abfrl.in/p/pe123")
	assert.Equal(t, "Men Navy Suit", p.Title)
	assert.Equal(t, "Peter England", p.Brand)
	assert.Equal(t, "Rs. 8,999", p.Price)
	assert.Equal(t, "Suit", p.Category)
	assert.Equal(t, []string{"https://imagescdn.example.com/1.jpg"}, p.Images)
}

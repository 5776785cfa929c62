package scrapers

import (
	"testing"

	"github.com/raushankrgupta/fitly-atelier/models"
	"github.com/raushankrgupta/fitly-atelier/scrapers/generic"
	"github.com/raushankrgupta/fitly-atelier/scrapers/myntra"
	"github.com/raushankrgupta/fitly-atelier/scrapers/peterengland"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchOrder(t *testing.T) {
	list := Registered()

	s, ok := Match(list, "https://www.myntra.com/shirts/123")
	require.True(t, ok)
	assert.IsType(t, &myntra.MyntraScraper{}, s)

	s, ok = Match(list, "https://peterengland.abfrl.in/p/shirt-1")
	require.True(t, ok)
	assert.IsType(t, &peterengland.PeterEnglandScraper{}, s)

	s, ok = Match(list, "https://shop.example.com/item")
	require.True(t, ok)
	assert.IsType(t, &generic.OpenGraphScraper{}, s)

	_, ok = Match(list, "ftp://example.com")
	assert.False(t, ok)
}

func TestGarmentFromProduct(t *testing.T) {
	p := &models.Product{
		Title:    "Navy Wool Blazer",
		Brand:    "Raymond",
		Category: "",
		Images:   []string{"", "/relative.jpg", "//cdn.example.com/blazer.jpg"},
	}

	g, err := GarmentFromProduct(p, "")
	require.NoError(t, err)
	assert.NoError(t, g.Validate())
	assert.Equal(t, "https://cdn.example.com/blazer.jpg", g.URL)
	assert.Equal(t, models.CategoryJacket, g.Category)
	assert.Equal(t, models.GarmentProduct, g.Type)
	assert.Equal(t, "Raymond Navy Wool Blazer", g.Name)
	assert.Contains(t, g.ID, "import-")
}

func TestGarmentFromProductExplicitCategory(t *testing.T) {
	p := &models.Product{Title: "Super 150s", Category: "Shirts", Images: []string{"https://x/y.jpg"}}

	g, err := GarmentFromProduct(p, models.CategoryFabric)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryFabric, g.Category)
	assert.Equal(t, models.GarmentFabric, g.Type)

	g, err = GarmentFromProduct(p, "")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryShirt, g.Category)
}

func TestGarmentFromProductWithoutImage(t *testing.T) {
	_, err := GarmentFromProduct(&models.Product{Title: "x"}, "")
	assert.ErrorIs(t, err, ErrNoProductImage)
}

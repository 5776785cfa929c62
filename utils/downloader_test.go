package utils

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMirrorImagesSkipsFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	urls := []string{""}
	for i := 0; i < 12; i++ {
		urls = append(urls, fmt.Sprintf("%s/img_%d.jpg", srv.URL, i))
	}

	refs := MirrorImagesToS3(context.Background(), urls, "garments")
	assert.Empty(t, refs)
	assert.EqualValues(t, 12, hits.Load())
}

func TestMirrorFilename(t *testing.T) {
	name := mirrorFilename(3, "https://cdn.example.com/a/shirt.jpg?w=400")
	assert.True(t, strings.HasSuffix(name, "_shirt.jpg"), name)

	name = mirrorFilename(3, "https://cdn.example.com/"+strings.Repeat("x", 300))
	assert.True(t, strings.HasSuffix(name, "_image_3.jpg"), name)
}

package utils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidateImage(t *testing.T) {
	mimeType, err := ValidateImage(pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)

	_, err = ValidateImage([]byte("plain text"))
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = ValidateImage(nil)
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestDataURIRoundTrip(t *testing.T) {
	data := pngBytes(t)
	uri := EncodeDataURI("image/png", data)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	mimeType, got, err := ParseDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, data, got)
}

func TestParseDataURIErrors(t *testing.T) {
	for _, uri := range []string{
		"not a data uri",
		"data:;base64,AAAA",
		"data:image/png,AAAA",
		"data:image/png;base64,***",
	} {
		_, _, err := ParseDataURI(uri)
		assert.Error(t, err, uri)
	}
}

func TestResolveImageSources(t *testing.T) {
	ctx := context.Background()
	data := pngBytes(t)

	got, mimeType, err := ResolveImage(ctx, EncodeDataURI("image/png", data))
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, "image/png", mimeType)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, browserUserAgent, r.Header.Get("User-Agent"))
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	got, mimeType, err = ResolveImage(ctx, srv.URL+"/swatch.png")
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, "image/png", mimeType)

	_, _, err = ResolveImage(ctx, srv.URL+"/missing.png")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "local.png")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	got, mimeType, err = ResolveImage(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, "image/png", mimeType)

	_, _, err = ResolveImage(ctx, "")
	assert.Error(t, err)
}

func TestPublishImageInline(t *testing.T) {
	require.False(t, S3Enabled())
	data := pngBytes(t)

	ref, err := PublishImage(context.Background(), data, "image/png", "uploads")
	require.NoError(t, err)
	assert.Equal(t, EncodeDataURI("image/png", data), ref)
}

func TestS3Refs(t *testing.T) {
	ref := S3Ref("generated_images/a.png")
	assert.Equal(t, "s3://generated_images/a.png", ref)

	key, ok := S3KeyFromRef(ref)
	assert.True(t, ok)
	assert.Equal(t, "generated_images/a.png", key)

	_, ok = S3KeyFromRef("https://example.com/a.png")
	assert.False(t, ok)
	_, ok = S3KeyFromRef("s3://")
	assert.False(t, ok)

	assert.Equal(t, "data:image/png;base64,AA==", PresignImageRef(context.Background(), "data:image/png;base64,AA=="))
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".png", extensionFor("image/png"))
	assert.Equal(t, ".webp", extensionFor("image/webp"))
	assert.Equal(t, ".jpg", extensionFor("image/jpeg"))
}

package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

// ErrNotImage is returned for uploads that do not decode as a supported image
var ErrNotImage = errors.New("file is not a supported image")

const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var imageHTTPClient = &http.Client{Timeout: 30 * time.Second}

// ValidateImage checks that data is a JPEG, PNG, GIF or WebP image and
// returns its MIME type
func ValidateImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrNotImage
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return "image/" + format, nil
}

// EncodeDataURI renders image bytes as a displayable data URI
func EncodeDataURI(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// ParseDataURI splits a base64 data URI into its MIME type and payload
func ParseDataURI(uri string) (string, []byte, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:") {
		return "", nil, fmt.Errorf("invalid data URL")
	}
	meta := strings.TrimPrefix(header, "data:")
	mimeType, params, _ := strings.Cut(meta, ";")
	if mimeType == "" {
		return "", nil, fmt.Errorf("could not parse MIME type from data URL")
	}
	if params != "base64" {
		return "", nil, fmt.Errorf("data URL is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("invalid data URL payload: %w", err)
	}
	return mimeType, data, nil
}

// ResolveImage loads the bytes behind an image reference: a data URI, an
// s3:// reference, an http(s) URL or a local file path.
func ResolveImage(ctx context.Context, ref string) ([]byte, string, error) {
	switch {
	case ref == "":
		return nil, "", fmt.Errorf("empty image reference")
	case strings.HasPrefix(ref, "data:"):
		mimeType, data, err := ParseDataURI(ref)
		return data, mimeType, err
	case strings.HasPrefix(ref, s3RefPrefix):
		key, _ := S3KeyFromRef(ref)
		data, mimeType, err := DownloadFromS3(ctx, key)
		if err != nil {
			return nil, "", err
		}
		return data, contentTypeOr(mimeType, data), nil
	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		data, mimeType, err := fetchImage(ctx, ref)
		if err != nil {
			return nil, "", fmt.Errorf("could not access the garment image at %s: %w", ref, err)
		}
		return data, contentTypeOr(mimeType, data), nil
	default:
		data, err := os.ReadFile(ref)
		if err != nil {
			return nil, "", err
		}
		return data, http.DetectContentType(data), nil
	}
}

// PublishImage stores a generated or uploaded image and returns its
// reference: an s3:// reference when a bucket is configured, otherwise an
// inline data URI.
func PublishImage(ctx context.Context, data []byte, mimeType, folder string) (string, error) {
	if !S3Enabled() {
		return EncodeDataURI(mimeType, data), nil
	}
	objectKey := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), extensionFor(mimeType))
	if _, err := UploadFileToS3(ctx, bytes.NewReader(data), objectKey, mimeType); err != nil {
		return "", err
	}
	return S3Ref(objectKey), nil
}

func fetchImage(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := imageHTTPClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to fetch image, status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func contentTypeOr(mimeType string, data []byte) string {
	if mimeType != "" && mimeType != "application/octet-stream" {
		return mimeType
	}
	return http.DetectContentType(data)
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}

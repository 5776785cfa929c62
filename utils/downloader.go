package utils

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// mirrorConcurrency bounds parallel downloads from a single shop
const mirrorConcurrency = 5

// MirrorImagesToS3 downloads garment images from URLs and stores them in S3
// so later generation calls do not depend on the shop's hosting.
// Returns a map of Original URL -> s3:// reference; failed URLs are skipped.
func MirrorImagesToS3(ctx context.Context, urls []string, folderPrefix string) map[string]string {
	urlToRef := make(map[string]string)
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(mirrorConcurrency)

	for i, url := range urls {
		if url == "" {
			continue
		}
		g.Go(func() error {
			objectKey := fmt.Sprintf("%s/%s", folderPrefix, mirrorFilename(i, url))
			if err := mirrorOne(ctx, url, objectKey); err != nil {
				Logger.Warn("mirroring image failed", zap.String("url", url), zap.Error(err))
				return nil
			}

			mu.Lock()
			urlToRef[url] = S3Ref(objectKey)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return urlToRef
}

// mirrorFilename derives a unique object name from the image URL
func mirrorFilename(i int, url string) string {
	filename := filepath.Base(url)
	if before, _, ok := strings.Cut(filename, "?"); ok {
		filename = before
	}
	if filename == "" || filename == "." || filename == "/" || len(filename) > 255 {
		filename = fmt.Sprintf("image_%d.jpg", i)
	}
	return fmt.Sprintf("%d_%s", time.Now().UnixNano(), filename)
}

func mirrorOne(ctx context.Context, url, objectKey string) error {
	data, contentType, err := fetchImage(ctx, url)
	if err != nil {
		return err
	}
	mimeType, err := ValidateImage(data)
	if err != nil {
		return err
	}
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		contentType = mimeType
	}
	_, err = UploadFileToS3(ctx, bytes.NewReader(data), objectKey, contentType)
	return err
}

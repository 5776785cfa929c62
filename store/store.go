// Package store persists session records as opaque blobs under string keys.
// Each backend enforces the same size quota so a record saved on one can be
// moved to another.
package store

import (
	"errors"
	"fmt"
)

// ErrQuotaExceeded is returned when a record is larger than the backend accepts
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// DefaultMaxRecordBytes is used when no quota is configured
const DefaultMaxRecordBytes = 15 << 20

func checkSize(key string, blob []byte, limit int) error {
	if limit > 0 && len(blob) > limit {
		return fmt.Errorf("%w: record %s is %d bytes, limit is %d", ErrQuotaExceeded, key, len(blob), limit)
	}
	return nil
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return DefaultMaxRecordBytes
	}
	return limit
}

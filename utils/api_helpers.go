package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RespondJSON sends a JSON response with the given status code and payload.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already sent, so the failure can only be logged
		Logger.Error("encoding JSON response", zap.Error(err))
	}
}

// RespondError sends a JSON error response and logs the error to the provided logger.
// If logger is nil, it goes straight to the structured logger.
func RespondError(w http.ResponseWriter, logger *strings.Builder, message string, status int) {
	if logger != nil {
		AddToLogMessage(logger, message)
	} else {
		Logger.Warn(message, zap.Int("status", status))
	}
	RespondJSON(w, status, map[string]string{"error": message})
}

// PresignImageRefs turns stored image references into URLs a client can
// display. data: URIs and http(s) URLs are kept as is; s3:// references are
// presigned, falling back to the original reference if signing fails.
func PresignImageRefs(ctx context.Context, refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, PresignImageRef(ctx, ref))
	}
	return out
}

// PresignImageRef is the single-reference form of PresignImageRefs
func PresignImageRef(ctx context.Context, ref string) string {
	key, ok := S3KeyFromRef(ref)
	if !ok {
		return ref
	}
	url, err := GetPresignedURL(ctx, key)
	if err != nil {
		return ref
	}
	return url
}

// LatencyMiddleware logs the duration of each request
func LatencyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		Logger.Info("request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("latency", time.Since(start)),
		)
	})
}

// CORSMiddleware allows browser clients from any origin
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

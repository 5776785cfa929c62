package utils

import (
	"errors"
	"fmt"
	"strings"
)

// FriendlyMessage converts an error from a generation or persistence call
// into the message shown to the user, prefixed with what was attempted.
func FriendlyMessage(err error, attempted string) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrBlocked):
		return fmt.Sprintf("%s. The request was blocked by the safety filters; try a different photo or garment.", attempted)
	case errors.Is(err, ErrQuota):
		return fmt.Sprintf("%s. Quota exceeded. Please try again later.", attempted)
	case errors.Is(err, ErrNoImage):
		return fmt.Sprintf("%s. The AI model did not return an image. Please try again.", attempted)
	case errors.Is(err, ErrNotImage):
		return fmt.Sprintf("%s. Please upload a JPEG, PNG, GIF or WebP image.", attempted)
	}
	msg := err.Error()
	if strings.Contains(msg, "Unsupported MIME type") {
		return fmt.Sprintf("%s. The image format is not supported. Please use PNG, JPEG or WebP.", attempted)
	}
	return fmt.Sprintf("%s. %s", attempted, msg)
}

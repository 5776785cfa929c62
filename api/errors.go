package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/raushankrgupta/fitly-atelier/session"
	"github.com/raushankrgupta/fitly-atelier/store"
	"github.com/raushankrgupta/fitly-atelier/utils"
)

// statusFor maps session errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrNoSavedSession):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidInput),
		errors.Is(err, session.ErrInvalidPose),
		errors.Is(err, session.ErrInvalidLayer),
		errors.Is(err, session.ErrNotEditable),
		errors.Is(err, session.ErrNoModel),
		errors.Is(err, utils.ErrNotImage):
		return http.StatusBadRequest
	case errors.Is(err, utils.ErrBlocked):
		return http.StatusUnprocessableEntity
	case errors.Is(err, utils.ErrQuota):
		return http.StatusTooManyRequests
	case errors.Is(err, store.ErrQuotaExceeded):
		return http.StatusInsufficientStorage
	case errors.Is(err, session.ErrCorruptRecord):
		return http.StatusUnprocessableEntity
	}

	var gerr *session.GenerationError
	if errors.As(err, &gerr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondSessionError(w http.ResponseWriter, logs *strings.Builder, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		utils.AddToLogMessage(logs, "Error: "+errorDetail(err))
	}
	utils.RespondError(w, logs, err.Error(), status)
}

// errorDetail includes the wrapped cause hidden by user-facing messages
func errorDetail(err error) string {
	if u := errors.Unwrap(err); u != nil && u.Error() != err.Error() {
		return err.Error() + ": " + u.Error()
	}
	return err.Error()
}

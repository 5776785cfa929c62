package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/raushankrgupta/fitly-atelier/session"
	"github.com/raushankrgupta/fitly-atelier/utils"
)

// SaveHandler persists the session
func (s *Server) SaveHandler(w http.ResponseWriter, r *http.Request, sess *session.Session, logs *strings.Builder) {
	if err := sess.Save(r.Context()); err != nil {
		respondSessionError(w, logs, err)
		return
	}
	utils.AddToLogMessage(logs, "Session saved")
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"message":  "Session saved",
		"saved_at": time.Now().UTC().Format(time.RFC3339),
	})
}

// LoadHandler restores the session from its saved record
func (s *Server) LoadHandler(w http.ResponseWriter, r *http.Request, sess *session.Session, logs *strings.Builder) {
	if err := sess.Load(r.Context()); err != nil {
		respondSessionError(w, logs, err)
		return
	}
	utils.AddToLogMessage(logs, "Session loaded")
	utils.RespondJSON(w, http.StatusOK, stateView(r.Context(), sess.Snapshot()))
}

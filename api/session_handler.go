package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/raushankrgupta/fitly-atelier/models"
	"github.com/raushankrgupta/fitly-atelier/session"
	"github.com/raushankrgupta/fitly-atelier/utils"
	"go.uber.org/zap"
)

// uploadsFolder is the S3 prefix user uploads are stored under
const uploadsFolder = "uploads"

// CreateSessionHandler starts a session from an uploaded photo and turns it
// into the digital twin
func (s *Server) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Create Session API]")

	ref, err := readUploadedImage(r, "photo")
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, utils.FriendlyMessage(err, "Invalid photo"), http.StatusBadRequest)
		return
	}

	sess := s.registry.Create()
	utils.AddToLogMessage(&logMessageBuilder, "Session: "+sess.ID())

	ctx, cancel := s.generationContext(r)
	defer cancel()
	if err := sess.CreateModel(ctx, ref); err != nil {
		s.registry.Remove(sess.ID())
		respondSessionError(w, &logMessageBuilder, err)
		return
	}

	s.respondCreated(w, r, &logMessageBuilder, sess)
}

// CreateFromBaseRequest carries an already normalized model image
type CreateFromBaseRequest struct {
	Image string `json:"image"`
}

// CreateFromBaseHandler starts a session from an image that is already a
// studio model photo
func (s *Server) CreateFromBaseHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Create Session From Base API]")

	var req CreateFromBaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.Image == "" {
		utils.RespondError(w, &logMessageBuilder, "image is required", http.StatusBadRequest)
		return
	}

	sess := s.registry.Create()
	if err := sess.FinalizeBaseModel(req.Image); err != nil {
		s.registry.Remove(sess.ID())
		respondSessionError(w, &logMessageBuilder, err)
		return
	}
	s.respondCreated(w, r, &logMessageBuilder, sess)
}

func (s *Server) respondCreated(w http.ResponseWriter, r *http.Request, logs *strings.Builder, sess *session.Session) {
	resp := stateView(r.Context(), sess.Snapshot())
	if utils.SessionTokensEnabled() {
		token, err := utils.GenerateSessionToken(sess.ID())
		if err != nil {
			utils.RespondError(w, logs, "Failed to issue session token", http.StatusInternalServerError)
			return
		}
		resp.Token = token
	}
	utils.AddToLogMessage(logs, "Session created: "+sess.ID())
	utils.RespondJSON(w, http.StatusCreated, resp)
}

// GetSessionHandler returns the session state
func (s *Server) GetSessionHandler(w http.ResponseWriter, r *http.Request, sess *session.Session, logs *strings.Builder) {
	utils.RespondJSON(w, http.StatusOK, stateView(r.Context(), sess.Snapshot()))
}

// StartOverHandler clears the session, its saved record and its gallery
func (s *Server) StartOverHandler(w http.ResponseWriter, r *http.Request, sess *session.Session, logs *strings.Builder) {
	if err := sess.StartOver(r.Context()); err != nil {
		respondSessionError(w, logs, err)
		return
	}
	if s.gallery != nil {
		if err := s.gallery.DeleteSession(r.Context(), sess.ID()); err != nil {
			utils.Logger.Warn("clearing gallery failed", zap.String("session_id", sess.ID()), zap.Error(err))
		}
	}
	s.registry.Remove(sess.ID())
	utils.AddToLogMessage(logs, "Session cleared")
	w.WriteHeader(http.StatusNoContent)
}

// readUploadedImage validates the multipart image in field and publishes it
func readUploadedImage(r *http.Request, field string) (string, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", fmt.Errorf("error parsing form data: %w", err)
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", fmt.Errorf("%s file is required", field)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return "", fmt.Errorf("error reading %s: %w", header.Filename, err)
	}
	if len(data) > maxUploadBytes {
		return "", errors.New("file is larger than 10 MB")
	}

	mimeType, err := utils.ValidateImage(data)
	if err != nil {
		return "", err
	}
	return utils.PublishImage(r.Context(), data, mimeType, uploadsFolder)
}

// decodeJSON reads the request body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, logs *strings.Builder, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		utils.RespondError(w, logs, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

// targetOrDefault parses an optional target from a request
func targetOrDefault(raw string) (models.ClothingTarget, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return models.ParseTarget(raw)
}

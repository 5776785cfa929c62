package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/raushankrgupta/fitly-atelier/models"
	"github.com/raushankrgupta/fitly-atelier/session"
	"github.com/raushankrgupta/fitly-atelier/utils"
)

// ApplyGarmentRequest names a catalog garment by id, or carries a garment
// of its own with an optional image source overriding its URL
type ApplyGarmentRequest struct {
	GarmentID string          `json:"garment_id"`
	Garment   *models.Garment `json:"garment"`
	Source    string          `json:"source"`
	Target    string          `json:"target"`
}

// ApplyGarmentHandler layers a garment onto the model. Multipart requests
// upload a new garment image alongside name, category and target fields.
func (s *Server) ApplyGarmentHandler(w http.ResponseWriter, r *http.Request, sess *session.Session, logs *strings.Builder) {
	var (
		garment models.Garment
		source  string
		target  models.ClothingTarget
		err     error
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		garment, target, err = uploadedGarment(r)
		if err != nil {
			utils.RespondError(w, logs, utils.FriendlyMessage(err, "Invalid garment"), http.StatusBadRequest)
			return
		}
	} else {
		var req ApplyGarmentRequest
		if !decodeJSON(w, r, logs, &req) {
			return
		}
		target, err = targetOrDefault(req.Target)
		if err != nil {
			utils.RespondError(w, logs, err.Error(), http.StatusBadRequest)
			return
		}
		switch {
		case req.Garment != nil:
			garment = *req.Garment
			source = req.Source
		case req.GarmentID != "":
			g, ok := sess.Catalog().Get(req.GarmentID)
			if !ok {
				utils.RespondError(w, logs, "Garment not found in wardrobe", http.StatusNotFound)
				return
			}
			garment = g
		default:
			utils.RespondError(w, logs, "garment_id or garment is required", http.StatusBadRequest)
			return
		}
	}

	utils.AddToLogMessage(logs, fmt.Sprintf("Garment: %s, Target: %s", garment.ID, target))

	ctx, cancel := s.generationContext(r)
	defer cancel()
	if err := sess.ApplyGarment(ctx, source, garment, target); err != nil {
		respondSessionError(w, logs, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, stateView(r.Context(), sess.Snapshot()))
}

// uploadedGarment builds a custom garment from a multipart upload
func uploadedGarment(r *http.Request) (models.Garment, models.ClothingTarget, error) {
	ref, err := readUploadedImage(r, "file")
	if err != nil {
		return models.Garment{}, "", err
	}

	category := models.CategoryShirt
	if raw := r.FormValue("category"); raw != "" {
		if category, err = models.ParseCategory(raw); err != nil {
			return models.Garment{}, "", err
		}
	}
	target, err := targetOrDefault(r.FormValue("target"))
	if err != nil {
		return models.Garment{}, "", err
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = "Custom " + string(category)
	}
	garmentType := models.GarmentProduct
	if category == models.CategoryFabric {
		garmentType = models.GarmentFabric
	}
	return models.Garment{
		ID:       "custom-" + uuid.New().String(),
		Name:     name,
		URL:      ref,
		Type:     garmentType,
		Category: category,
	}, target, nil
}

// UndoHandler steps back one layer
func (s *Server) UndoHandler(w http.ResponseWriter, r *http.Request, sess *session.Session, logs *strings.Builder) {
	if err := sess.RemoveLastGarment(); err != nil {
		respondSessionError(w, logs, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, stateView(r.Context(), sess.Snapshot()))
}

// RemoveJacketHandler adds a layer with the jacket taken off
func (s *Server) RemoveJacketHandler(w http.ResponseWriter, r *http.Request, sess *session.Session, logs *strings.Builder) {
	ctx, cancel := s.generationContext(r)
	defer cancel()
	if err := sess.RemoveJacket(ctx); err != nil {
		respondSessionError(w, logs, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, stateView(r.Context(), sess.Snapshot()))
}

type EditLayerRequest struct {
	LayerIndex *int `json:"layer_index"`
}

// EditLayerHandler selects, or deselects, a layer for replacement
func (s *Server) EditLayerHandler(w http.ResponseWriter, r *http.Request, sess *session.Session, logs *strings.Builder) {
	var req EditLayerRequest
	if !decodeJSON(w, r, logs, &req) {
		return
	}
	if req.LayerIndex == nil {
		utils.RespondError(w, logs, "layer_index is required", http.StatusBadRequest)
		return
	}
	if err := sess.EditLayer(*req.LayerIndex); err != nil {
		respondSessionError(w, logs, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, stateView(r.Context(), sess.Snapshot()))
}

// CancelEditHandler clears the layer selection
func (s *Server) CancelEditHandler(w http.ResponseWriter, r *http.Request, sess *session.Session, logs *strings.Builder) {
	if err := sess.CancelEdit(); err != nil {
		respondSessionError(w, logs, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, stateView(r.Context(), sess.Snapshot()))
}

type SetTargetRequest struct {
	Target string `json:"target"`
}

func (s *Server) SetTargetHandler(w http.ResponseWriter, r *http.Request, sess *session.Session, logs *strings.Builder) {
	var req SetTargetRequest
	if !decodeJSON(w, r, logs, &req) {
		return
	}
	if err := sess.SetTarget(models.ClothingTarget(req.Target)); err != nil {
		respondSessionError(w, logs, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"active_target": string(sess.Target())})
}

type SetNotesRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) SetNotesHandler(w http.ResponseWriter, r *http.Request, sess *session.Session, logs *strings.Builder) {
	var req SetNotesRequest
	if !decodeJSON(w, r, logs, &req) {
		return
	}
	sess.SetNotes(req.Notes)
	utils.RespondJSON(w, http.StatusOK, map[string]string{"tailor_notes": req.Notes})
}

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/raushankrgupta/fitly-atelier/models"
	"github.com/raushankrgupta/fitly-atelier/scrapers"
	"github.com/raushankrgupta/fitly-atelier/session"
	"github.com/raushankrgupta/fitly-atelier/utils"
)

// GetCatalogHandler lists the wardrobe, optionally filtered by ?category=
func (s *Server) GetCatalogHandler(w http.ResponseWriter, r *http.Request, sess *session.Session, logs *strings.Builder) {
	items := sess.Catalog().Items()
	if raw := r.URL.Query().Get("category"); raw != "" {
		category, err := models.ParseCategory(raw)
		if err != nil {
			utils.RespondError(w, logs, err.Error(), http.StatusBadRequest)
			return
		}
		items = sess.Catalog().ByCategory(category)
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"items":       presignGarments(r.Context(), items),
		"active_ids":  sess.ActiveGarmentIDs(),
		"total_items": len(items),
	})
}

// UploadGarmentHandler adds an uploaded garment image to the wardrobe
// without applying it
func (s *Server) UploadGarmentHandler(w http.ResponseWriter, r *http.Request, sess *session.Session, logs *strings.Builder) {
	garment, _, err := uploadedGarment(r)
	if err != nil {
		utils.RespondError(w, logs, utils.FriendlyMessage(err, "Invalid garment"), http.StatusBadRequest)
		return
	}
	sess.Catalog().Add(garment)
	utils.AddToLogMessage(logs, "Garment uploaded: "+garment.ID)
	utils.RespondJSON(w, http.StatusCreated, presignGarment(r.Context(), garment))
}

type ImportGarmentRequest struct {
	URL      string `json:"url"`
	Category string `json:"category"`
}

// ImportGarmentHandler reads a shop's product page into the wardrobe
func (s *Server) ImportGarmentHandler(w http.ResponseWriter, r *http.Request, sess *session.Session, logs *strings.Builder) {
	var req ImportGarmentRequest
	if !decodeJSON(w, r, logs, &req) {
		return
	}
	if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		utils.RespondError(w, logs, "A product page url is required", http.StatusBadRequest)
		return
	}

	var category models.Category
	if req.Category != "" {
		c, err := models.ParseCategory(req.Category)
		if err != nil {
			utils.RespondError(w, logs, err.Error(), http.StatusBadRequest)
			return
		}
		category = c
	}

	utils.AddToLogMessage(logs, fmt.Sprintf("Importing URL: %s", req.URL))

	// Headless rendering of a product page can take a while
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 3*time.Minute)
	defer cancel()

	garment, product, err := s.importGarment(ctx, req.URL, category)
	if err != nil {
		utils.AddToLogMessage(logs, fmt.Sprintf("Import failed: %v", err))
		status := http.StatusBadGateway
		if errors.Is(err, scrapers.ErrNoProductImage) {
			status = http.StatusUnprocessableEntity
		}
		utils.RespondError(w, logs, "Could not import garment: "+err.Error(), status)
		return
	}

	sess.Catalog().Add(garment)
	utils.AddToLogMessage(logs, "Import successful: "+garment.ID)
	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"garment": presignGarment(r.Context(), garment),
		"product": product,
	})
}

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/raushankrgupta/fitly-atelier/models"
	"github.com/raushankrgupta/fitly-atelier/session"
	"github.com/raushankrgupta/fitly-atelier/store"
	"github.com/raushankrgupta/fitly-atelier/utils"
)

// maxGalleryPage bounds ?page= so page offsets cannot overflow
const maxGalleryPage = 100000

// GalleryHandler lists the images generated in the session, newest first
func (s *Server) GalleryHandler(w http.ResponseWriter, r *http.Request, sess *session.Session, logs *strings.Builder) {
	page := 1
	limit := 10

	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = min(p, maxGalleryPage)
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}

	if s.gallery == nil {
		utils.RespondJSON(w, http.StatusOK, store.GalleryPage{Images: []models.TryOn{}, CurrentPage: page})
		return
	}

	result, err := s.gallery.List(r.Context(), sess.ID(), page, limit)
	if err != nil {
		utils.AddToLogMessage(logs, "Gallery query failed: "+err.Error())
		utils.RespondError(w, logs, "Failed to fetch data", http.StatusInternalServerError)
		return
	}

	for i := range result.Images {
		result.Images[i].GeneratedImageURL = utils.PresignImageRef(r.Context(), result.Images[i].GeneratedImageURL)
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/raushankrgupta/fitly-atelier/config"
	"github.com/raushankrgupta/fitly-atelier/models"
	"github.com/raushankrgupta/fitly-atelier/scrapers"
	"github.com/raushankrgupta/fitly-atelier/session"
	"github.com/raushankrgupta/fitly-atelier/store"
	"github.com/raushankrgupta/fitly-atelier/utils"
)

// maxUploadBytes bounds photo and garment uploads
const maxUploadBytes = 10 << 20

// Gallery lists the images generated for a session
type Gallery interface {
	List(ctx context.Context, sessionID string, page, limit int) (store.GalleryPage, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// Server exposes the try-on sessions over HTTP
type Server struct {
	registry *session.Registry
	gallery  Gallery

	sendEmail         func(toName, toEmail, subject, textContent, htmlContent string) error
	importGarment     func(ctx context.Context, url string, category models.Category) (models.Garment, *models.Product, error)
	generationTimeout time.Duration
}

// NewServer wires the handlers to registry. gallery may be nil.
func NewServer(registry *session.Registry, gallery Gallery) *Server {
	timeout := config.GenerationTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Server{
		registry:          registry,
		gallery:           gallery,
		sendEmail:         utils.SendEmail,
		importGarment:     scrapers.ImportGarment,
		generationTimeout: timeout,
	}
}

// Routes builds the HTTP handler with CORS and request logging applied
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /poses", s.ListPosesHandler)
	mux.HandleFunc("POST /sessions", s.CreateSessionHandler)
	mux.HandleFunc("POST /sessions/base", s.CreateFromBaseHandler)

	mux.HandleFunc("GET /sessions/{id}", s.withSession("Get Session", s.GetSessionHandler))
	mux.HandleFunc("DELETE /sessions/{id}", s.withSession("Start Over", s.StartOverHandler))
	mux.HandleFunc("POST /sessions/{id}/garments", s.withSession("Apply Garment", s.ApplyGarmentHandler))
	mux.HandleFunc("POST /sessions/{id}/undo", s.withSession("Undo", s.UndoHandler))
	mux.HandleFunc("POST /sessions/{id}/pose", s.withSession("Select Pose", s.SelectPoseHandler))
	mux.HandleFunc("POST /sessions/{id}/remove-jacket", s.withSession("Remove Jacket", s.RemoveJacketHandler))
	mux.HandleFunc("POST /sessions/{id}/edit", s.withSession("Edit Layer", s.EditLayerHandler))
	mux.HandleFunc("DELETE /sessions/{id}/edit", s.withSession("Cancel Edit", s.CancelEditHandler))
	mux.HandleFunc("PUT /sessions/{id}/target", s.withSession("Set Target", s.SetTargetHandler))
	mux.HandleFunc("PUT /sessions/{id}/notes", s.withSession("Set Notes", s.SetNotesHandler))
	mux.HandleFunc("POST /sessions/{id}/save", s.withSession("Save Session", s.SaveHandler))
	mux.HandleFunc("POST /sessions/{id}/load", s.withSession("Load Session", s.LoadHandler))
	mux.HandleFunc("GET /sessions/{id}/catalog", s.withSession("Get Catalog", s.GetCatalogHandler))
	mux.HandleFunc("POST /sessions/{id}/catalog", s.withSession("Upload Garment", s.UploadGarmentHandler))
	mux.HandleFunc("POST /sessions/{id}/catalog/import", s.withSession("Import Garment", s.ImportGarmentHandler))
	mux.HandleFunc("GET /sessions/{id}/gallery", s.withSession("Gallery", s.GalleryHandler))
	mux.HandleFunc("POST /sessions/{id}/share", s.withSession("Share With Tailor", s.ShareHandler))

	return utils.CORSMiddleware(utils.LatencyMiddleware(mux))
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session, logs *strings.Builder)

// withSession resolves the {id} path value to a live session, checking the
// session handle when tokens are enabled, and owns the request log
func (s *Server) withSession(name string, next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var logMessageBuilder strings.Builder
		defer utils.FlushLogMessage(&logMessageBuilder)
		utils.AddToLogMessage(&logMessageBuilder, "["+name+" API]")

		id := r.PathValue("id")
		if utils.SessionTokensEnabled() {
			tokenID, err := sessionIDFromRequest(r)
			if err != nil || tokenID != id {
				utils.RespondError(w, &logMessageBuilder, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}

		sess, err := s.registry.Get(r.Context(), id)
		if err != nil {
			respondSessionError(w, &logMessageBuilder, err)
			return
		}
		utils.AddToLogMessage(&logMessageBuilder, "Session: "+id)
		next(w, r, sess, &logMessageBuilder)
	}
}

func sessionIDFromRequest(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		token = header
	}
	return utils.ValidateSessionToken(strings.TrimSpace(token))
}

// generationContext outlives the client connection so a generation that
// has started still lands in the session
func (s *Server) generationContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(r.Context()), s.generationTimeout)
}

package api

import (
	"net/http"
	"strings"

	"github.com/raushankrgupta/fitly-atelier/models"
	"github.com/raushankrgupta/fitly-atelier/session"
	"github.com/raushankrgupta/fitly-atelier/utils"
)

// ListPosesHandler returns the pose instructions in index order
func (s *Server) ListPosesHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string][]string{"poses": models.PoseInstructions})
}

type SelectPoseRequest struct {
	PoseIndex *int `json:"pose_index"`
}

// SelectPoseHandler switches the displayed pose, rendering it if needed
func (s *Server) SelectPoseHandler(w http.ResponseWriter, r *http.Request, sess *session.Session, logs *strings.Builder) {
	var req SelectPoseRequest
	if !decodeJSON(w, r, logs, &req) {
		return
	}
	if req.PoseIndex == nil {
		utils.RespondError(w, logs, "pose_index is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := s.generationContext(r)
	defer cancel()
	if err := sess.SelectPose(ctx, *req.PoseIndex); err != nil {
		respondSessionError(w, logs, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, stateView(r.Context(), sess.Snapshot()))
}

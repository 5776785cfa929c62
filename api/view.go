package api

import (
	"context"

	"github.com/raushankrgupta/fitly-atelier/models"
	"github.com/raushankrgupta/fitly-atelier/session"
	"github.com/raushankrgupta/fitly-atelier/utils"
)

// SessionResponse is the session state with displayable image URLs
type SessionResponse struct {
	session.State
	Token string `json:"token,omitempty"`
}

func stateView(ctx context.Context, st session.State) SessionResponse {
	st.ModelImageURL = utils.PresignImageRef(ctx, st.ModelImageURL)
	st.DisplayImage = utils.PresignImageRef(ctx, st.DisplayImage)
	for i := range st.History {
		st.History[i] = presignLayer(ctx, st.History[i])
	}
	return SessionResponse{State: st}
}

// presignLayer expects a layer the caller owns
func presignLayer(ctx context.Context, l models.OutfitLayer) models.OutfitLayer {
	for pose, ref := range l.PoseImages {
		l.PoseImages[pose] = utils.PresignImageRef(ctx, ref)
	}
	if gs, ok := l.Step.(models.GarmentStep); ok {
		gs.Garment = presignGarment(ctx, gs.Garment)
		l.Step = gs
	}
	return l
}

func presignGarment(ctx context.Context, g models.Garment) models.Garment {
	g.URL = utils.PresignImageRef(ctx, g.URL)
	return g
}

func presignGarments(ctx context.Context, items []models.Garment) []models.Garment {
	out := make([]models.Garment, len(items))
	for i, g := range items {
		out[i] = presignGarment(ctx, g)
	}
	return out
}

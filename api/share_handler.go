package api

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/raushankrgupta/fitly-atelier/config"
	"github.com/raushankrgupta/fitly-atelier/session"
	"github.com/raushankrgupta/fitly-atelier/utils"
)

type ShareRequest struct {
	TailorName  string `json:"tailor_name"`
	TailorEmail string `json:"tailor_email"`
	Message     string `json:"message"`
}

// ShareHandler emails the current look and tailor notes to the tailor
func (s *Server) ShareHandler(w http.ResponseWriter, r *http.Request, sess *session.Session, logs *strings.Builder) {
	var req ShareRequest
	if !decodeJSON(w, r, logs, &req) {
		return
	}
	if req.TailorEmail == "" {
		req.TailorEmail = config.TailorEmail
	}
	if req.TailorEmail == "" {
		utils.RespondError(w, logs, "tailor_email is required", http.StatusBadRequest)
		return
	}
	if req.TailorName == "" {
		req.TailorName = "Tailor"
	}

	st := sess.Snapshot()
	if len(st.History) == 0 {
		utils.RespondError(w, logs, "Nothing to share yet", http.StatusBadRequest)
		return
	}

	text, htmlBody := shareContent(st, req.Message, utils.PresignImageRef(r.Context(), st.DisplayImage))
	subject := fmt.Sprintf("Bespoke look %s", st.ID[:min(8, len(st.ID))])

	if err := s.sendEmail(req.TailorName, req.TailorEmail, subject, text, htmlBody); err != nil {
		utils.AddToLogMessage(logs, fmt.Sprintf("Email failed: %v", err))
		utils.RespondError(w, logs, "Failed to send email to tailor", http.StatusBadGateway)
		return
	}

	utils.AddToLogMessage(logs, "Shared with "+req.TailorEmail)
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Look shared with your tailor"})
}

// shareContent renders the email; inline data URIs are left out since mail
// clients do not display them
func shareContent(st session.State, message, imageURL string) (string, string) {
	var text, body strings.Builder

	fmt.Fprintf(&text, "Outfit (%d layers):\n", st.CurrentIndex)
	body.WriteString("<h2>Bespoke look</h2><ol>")
	for _, layer := range st.History[1 : st.CurrentIndex+1] {
		fmt.Fprintf(&text, "- %s\n", layer.Label())
		fmt.Fprintf(&body, "<li>%s</li>", html.EscapeString(layer.Label()))
	}
	body.WriteString("</ol>")

	if st.Notes != "" {
		fmt.Fprintf(&text, "\nTailor notes:\n%s\n", st.Notes)
		fmt.Fprintf(&body, "<h3>Tailor notes</h3><p>%s</p>", html.EscapeString(st.Notes))
	}
	if message != "" {
		fmt.Fprintf(&text, "\nMessage:\n%s\n", message)
		fmt.Fprintf(&body, "<h3>Message</h3><p>%s</p>", html.EscapeString(message))
	}
	if strings.HasPrefix(imageURL, "http") {
		fmt.Fprintf(&text, "\nLook: %s\n", imageURL)
		fmt.Fprintf(&body, `<p><img src="%s" alt="Current look" width="400"></p>`, html.EscapeString(imageURL))
	}
	return text.String(), body.String()
}

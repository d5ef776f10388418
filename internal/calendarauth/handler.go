package calendarauth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wolfman30/clinic-booking/internal/http/middleware"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

// Handler serves the operator authorization endpoints.
type Handler struct {
	service    *Service
	successURL string
	logger     *logging.Logger
}

// NewHandler creates the handler. successURL, when set, is where the operator
// lands after a successful callback; otherwise a JSON body is returned.
func NewHandler(service *Service, successURL string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, successURL: successURL, logger: logger}
}

// HandleConnect starts the consent flow.
// GET /admin/calendar/connect
func (h *Handler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.service.Begin(r.Context())
	if errors.Is(err, ErrNotConfigured) {
		http.Error(w, `{"error": "google calendar is not configured"}`, http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		h.logger.Error("failed to start calendar oauth", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	operator := "unknown"
	if claims, ok := middleware.AdminClaimsFromContext(r.Context()); ok && claims.Subject != "" {
		operator = claims.Subject
	}
	h.logger.Info("initiating google calendar oauth", "operator", operator)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// HandleCallback redeems the authorization code.
// GET /oauth/google/callback?code=...&state=...
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if errParam := q.Get("error"); errParam != "" {
		h.logger.Warn("google oauth denied", "error", errParam)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": errParam})
		return
	}
	code, state := q.Get("code"), q.Get("state")
	if code == "" || state == "" {
		http.Error(w, `{"error": "missing code or state"}`, http.StatusBadRequest)
		return
	}

	err := h.service.Complete(r.Context(), state, code)
	switch {
	case errors.Is(err, ErrInvalidState):
		h.logger.Warn("google oauth state rejected")
		http.Error(w, `{"error": "invalid or expired state"}`, http.StatusBadRequest)
		return
	case errors.Is(err, ErrNotConfigured):
		http.Error(w, `{"error": "google calendar is not configured"}`, http.StatusServiceUnavailable)
		return
	case err != nil:
		h.logger.Error("google oauth callback failed", "error", err)
		http.Error(w, `{"error": "token exchange failed"}`, http.StatusInternalServerError)
		return
	}

	if h.successURL != "" {
		http.Redirect(w, r, h.successURL, http.StatusFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Google Calendar connected successfully",
	})
}

// HandleStatus reports the connection state.
// GET /admin/calendar/status
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Status())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

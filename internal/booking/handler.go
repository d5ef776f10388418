package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wolfman30/clinic-booking/pkg/logging"
)

// Handler exposes appointment submission over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// CreateAppointment handles POST /api/appointments.
func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	confirmation, err := h.service.Confirm(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, confirmation)
}

// SendEmail handles POST /api/send-email with display-formatted date and time.
func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	if err := h.service.SendConfirmationEmail(r.Context(), req); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			h.writeError(w, err)
			return
		}
		h.logger.Error("send-email failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "Failed to send email",
			"details": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Email sent successfully"})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "invalid request",
			"fields": verr.Fields,
		})
	case errors.Is(err, ErrDelivery):
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":     "Failed to send email",
			"details":   err.Error(),
			"retryable": true,
		})
	default:
		h.logger.Error("appointment request failed", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

package availability

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wolfman30/clinic-booking/pkg/logging"
)

// Handler serves day availability over HTTP.
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

// GetAvailability handles GET /api/availability?date=YYYY-MM-DD.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, `{"error": "date is required"}`, http.StatusBadRequest)
		return
	}
	day, err := h.service.ParseDay(date)
	if err != nil {
		http.Error(w, `{"error": "date must be YYYY-MM-DD"}`, http.StatusBadRequest)
		return
	}

	result, err := h.service.ForDay(r.Context(), day)
	if errors.Is(err, ErrPastDate) {
		http.Error(w, `{"error": "date is in the past"}`, http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("availability lookup failed", "date", date, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("failed to encode availability", "error", err)
	}
}

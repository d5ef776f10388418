package agenda

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-booking/internal/availability"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

// Handler serves agenda views over HTTP.
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

// GetMonthEvents handles GET /api/calendar/events/{year}/{month}.
func (h *Handler) GetMonthEvents(w http.ResponseWriter, r *http.Request) {
	year, month, ok := monthParams(w, r)
	if !ok {
		return
	}
	events, err := h.service.MonthEvents(r.Context(), year, month)
	if err != nil {
		h.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// GetMonth handles GET /api/agenda/{year}/{month}.
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	year, month, ok := monthParams(w, r)
	if !ok {
		return
	}
	grid, err := h.service.Month(r.Context(), year, month)
	if err != nil {
		h.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

// GetDay handles GET /admin/agenda/day/{date}.
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	day, err := time.ParseInLocation(availability.DateLayout, date, h.service.cfg.Location)
	if err != nil {
		http.Error(w, `{"error": "date must be YYYY-MM-DD"}`, http.StatusBadRequest)
		return
	}
	view, err := h.service.Day(r.Context(), day)
	if err != nil {
		h.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetFeed handles GET /admin/agenda/{year}/{month}.ics.
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	year, month, ok := monthParams(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.service.WriteFeed(r.Context(), &buf, year, month); err != nil {
		h.upstreamError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="agenda-%04d-%02d.ics"`, year, int(month)))
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) upstreamError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidMonth) {
		http.Error(w, `{"error": "invalid year or month"}`, http.StatusBadRequest)
		return
	}
	h.logger.Error("agenda request failed", "error", err)
	http.Error(w, `{"error": "calendar unavailable"}`, http.StatusBadGateway)
}

func monthParams(w http.ResponseWriter, r *http.Request) (int, time.Month, bool) {
	year, errY := strconv.Atoi(chi.URLParam(r, "year"))
	month, errM := strconv.Atoi(chi.URLParam(r, "month"))
	if errY != nil || errM != nil {
		http.Error(w, `{"error": "invalid year or month"}`, http.StatusBadRequest)
		return 0, 0, false
	}
	return year, time.Month(month), true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

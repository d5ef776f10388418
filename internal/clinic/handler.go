package clinic

import (
	"encoding/json"
	"net/http"

	"github.com/wolfman30/clinic-booking/pkg/logging"
)

// Handler serves the public clinic profile.
type Handler struct {
	profile *Profile
	logger  *logging.Logger
}

// NewHandler creates a new clinic profile HTTP handler.
func NewHandler(profile *Profile, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if profile == nil {
		profile = DefaultProfile()
	}
	return &Handler{profile: profile, logger: logger}
}

// GetProfile returns landing page content and the slot roster.
// GET /api/site
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=300")
	if err := json.NewEncoder(w).Encode(h.profile); err != nil {
		h.logger.Error("failed to encode clinic profile", "error", err)
	}
}

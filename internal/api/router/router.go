package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/clinic-booking/internal/agenda"
	"github.com/wolfman30/clinic-booking/internal/availability"
	"github.com/wolfman30/clinic-booking/internal/booking"
	"github.com/wolfman30/clinic-booking/internal/calendarauth"
	"github.com/wolfman30/clinic-booking/internal/clinic"
	httpmiddleware "github.com/wolfman30/clinic-booking/internal/http/middleware"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	ClinicHandler       *clinic.Handler
	AvailabilityHandler *availability.Handler
	BookingHandler      *booking.Handler
	AgendaHandler       *agenda.Handler
	CalendarOAuth       *calendarauth.Handler
	AdminAuthSecret     string
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string

	// Per-IP limit on booking submissions. Zero disables limiting.
	RateLimitPerSecond float64
	RateLimitBurst     int

	// TrustProxyHeaders rewrites RemoteAddr from X-Forwarded-For/X-Real-Ip.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	r.Group(func(public chi.Router) {
		public.Get("/health", health)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.CalendarOAuth != nil {
			public.Get("/oauth/google/callback", cfg.CalendarOAuth.HandleCallback)
		}

		public.Route("/api", func(api chi.Router) {
			if cfg.ClinicHandler != nil {
				api.Get("/site", cfg.ClinicHandler.GetProfile)
			}
			if cfg.AvailabilityHandler != nil {
				api.Get("/availability", cfg.AvailabilityHandler.GetAvailability)
			}
			if cfg.AgendaHandler != nil {
				api.Get("/calendar/events/{year}/{month}", cfg.AgendaHandler.GetMonthEvents)
				api.Get("/agenda/{year}/{month}", cfg.AgendaHandler.GetMonth)
			}
			if cfg.BookingHandler != nil {
				api.Group(func(submit chi.Router) {
					if cfg.RateLimitPerSecond > 0 {
						submit.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
					}
					submit.Post("/appointments", cfg.BookingHandler.CreateAppointment)
					submit.Post("/send-email", cfg.BookingHandler.SendEmail)
				})
			}
		})
	})

	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			if cfg.CalendarOAuth != nil {
				admin.Get("/calendar/connect", cfg.CalendarOAuth.HandleConnect)
				admin.Get("/calendar/status", cfg.CalendarOAuth.HandleStatus)
			}
			if cfg.AgendaHandler != nil {
				admin.Get("/agenda/day/{date}", cfg.AgendaHandler.GetDay)
				admin.Get("/agenda/{year}/{month}.ics", cfg.AgendaHandler.GetFeed)
			}
		})
	}

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

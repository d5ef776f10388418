package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/clinic-booking/internal/agenda"
	"github.com/wolfman30/clinic-booking/internal/api/router"
	"github.com/wolfman30/clinic-booking/internal/app/bootstrap"
	"github.com/wolfman30/clinic-booking/internal/availability"
	"github.com/wolfman30/clinic-booking/internal/booking"
	"github.com/wolfman30/clinic-booking/internal/calendar"
	"github.com/wolfman30/clinic-booking/internal/calendarauth"
	"github.com/wolfman30/clinic-booking/internal/clinic"
	appconfig "github.com/wolfman30/clinic-booking/internal/config"
	"github.com/wolfman30/clinic-booking/internal/notify"
	"github.com/wolfman30/clinic-booking/internal/observability/metrics"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

func main() {
	if err := appconfig.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}
	cfg := appconfig.Load()

	logger := logging.NewWithWriter(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	logger.Info("starting clinic booking API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app, err := buildApp(context.Background(), cfg, logger, reg)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.close()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	if err := app.booking.Wait(ctx); err != nil {
		logger.Warn("calendar mirrors still running at shutdown", "error", err)
	}

	logger.Info("server stopped")
}

type application struct {
	handler  http.Handler
	booking  *booking.Service
	calendar *calendar.GoogleClient
	closers  []func()
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, reg *prometheus.Registry) (*application, error) {
	app := &application{}

	profile, err := clinic.LoadProfile(cfg.SiteProfilePath)
	if err != nil {
		return nil, err
	}
	roster, err := profile.Roster()
	if err != nil {
		return nil, err
	}
	loc, err := profile.Location()
	if err != nil {
		return nil, err
	}

	bookingMetrics := metrics.NewBookingMetrics(reg)

	pool := bootstrap.ConnectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool != nil {
		app.closers = append(app.closers, pool.Close)
	}
	tokens, err := bootstrap.BuildTokenStore(cfg, pool)
	if err != nil {
		return nil, err
	}
	oauthCfg := bootstrap.BuildOAuthConfig(cfg)
	calendarClient := bootstrap.BuildCalendarClient(cfg, oauthCfg, tokens, loc, logger)
	if err := calendarClient.Initialize(ctx); err != nil {
		// The operator can re-authorize through /admin/calendar/connect.
		logger.Warn("google calendar initialization failed", "error", err)
	}
	app.calendar = calendarClient

	var states calendarauth.StateStore = calendarauth.NewMemoryStateStore()
	if redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true); redisClient != nil {
		states = calendarauth.NewRedisStateStore(redisClient)
		app.closers = append(app.closers, func() { _ = redisClient.Close() })
	}
	oauthService := calendarauth.NewService(oauthCfg, tokens, calendarClient, states, logger)

	sender, err := bootstrap.BuildEmailSender(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	mailer := notify.NewMailer(sender, notify.MailerConfig{
		ClinicName:   profile.Name,
		Practitioner: profile.Practitioner,
		AdminEmail:   cfg.AdminEmail,
		Location:     loc,
	}, logger, bookingMetrics)

	availabilityService := availability.NewService(calendar.BusySource{Client: calendarClient}, roster, loc, logger, bookingMetrics)
	app.booking = booking.NewService(mailer, calendarClient, booking.Config{
		Roster:        roster,
		Location:      loc,
		MirrorTimeout: cfg.CalendarMirrorTimeout,
	}, logger, bookingMetrics)
	agendaService := agenda.NewService(calendarClient, agenda.Config{
		Location:     loc,
		StartHour:    profile.AgendaStart,
		EndHour:      profile.AgendaEnd,
		ClinicName:   profile.Name,
		Practitioner: profile.Practitioner,
	}, logger)

	if cfg.AdminJWTSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET not set; admin endpoints disabled")
	}

	app.handler = router.New(&router.Config{
		Logger:              logger,
		ClinicHandler:       clinic.NewHandler(profile, logger),
		AvailabilityHandler: availability.NewHandler(availabilityService, logger),
		BookingHandler:      booking.NewHandler(app.booking, logger),
		AgendaHandler:       agenda.NewHandler(agendaService, logger),
		CalendarOAuth:       calendarauth.NewHandler(oauthService, cfg.CalendarOAuthSuccessURL, logger),
		AdminAuthSecret:     cfg.AdminJWTSecret,
		MetricsHandler:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  cfg.AllowedOrigins,
		RateLimitPerSecond:  cfg.RateLimitPerSecond,
		RateLimitBurst:      cfg.RateLimitBurst,
		TrustProxyHeaders:   cfg.TrustProxyHeaders,
	})
	return app, nil
}

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	appconfig "github.com/wolfman30/clinic-booking/internal/config"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

func testConfig(t *testing.T) *appconfig.Config {
	t.Helper()
	return &appconfig.Config{
		Env:                "development",
		EmailProvider:      "auto",
		CalendarTokenFile:  filepath.Join(t.TempDir(), "tokens.json"),
		GoogleCalendarID:   "primary",
		AllowedOrigins:     []string{"*"},
		RateLimitPerSecond: 1,
		RateLimitBurst:     5,
	}
}

func TestBuildAppServesHealthAndMetrics(t *testing.T) {
	app, err := buildApp(context.Background(), testConfig(t), logging.New("error"), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("buildApp: %v", err)
	}
	defer app.close()

	rr := httptest.NewRecorder()
	app.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	site := httptest.NewRecorder()
	app.handler.ServeHTTP(site, httptest.NewRequest(http.MethodGet, "/api/site", nil))
	if site.Code != http.StatusOK || !strings.Contains(site.Body.String(), "Mente Novedosa") {
		t.Fatalf("expected site profile, got %d %s", site.Code, site.Body.String())
	}

	body := `{"name":"Ana","email":"ana@example.com","phone":"5512345678","date":"lunes","time":"09:00 AM"}`
	send := httptest.NewRecorder()
	app.handler.ServeHTTP(send, httptest.NewRequest(http.MethodPost, "/api/send-email", strings.NewReader(body)))
	if send.Code != http.StatusOK {
		t.Fatalf("expected stub send to succeed, got %d %s", send.Code, send.Body.String())
	}

	metricsRR := httptest.NewRecorder()
	app.handler.ServeHTTP(metricsRR, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if metricsRR.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", metricsRR.Code)
	}
	if !strings.Contains(metricsRR.Body.String(), "clinic_booking_email_sent_total") {
		t.Fatalf("expected email counter to be exported")
	}
	if app.calendar.IsAuthenticated() {
		t.Fatalf("calendar must stay unauthenticated without credentials")
	}
}

func TestBuildAppRejectsBadProfile(t *testing.T) {
	cfg := testConfig(t)
	cfg.SiteProfilePath = filepath.Join(t.TempDir(), "site.toml")
	if err := os.WriteFile(cfg.SiteProfilePath, []byte("unknown_key = 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := buildApp(context.Background(), cfg, logging.New("error"), prometheus.NewRegistry()); err == nil {
		t.Fatalf("expected error for unknown profile keys")
	}
}

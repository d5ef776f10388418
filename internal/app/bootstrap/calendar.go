package bootstrap

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/oauth2"

	"github.com/wolfman30/clinic-booking/internal/calendar"
	appconfig "github.com/wolfman30/clinic-booking/internal/config"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

// BuildTokenStore selects where the calendar OAuth token lives. Without
// CALENDAR_TOKEN_STORE, production reads the refresh token from the
// environment and other environments use a local file.
func BuildTokenStore(cfg *appconfig.Config, pool *pgxpool.Pool) (calendar.TokenStore, error) {
	kind := cfg.CalendarTokenStore
	if kind == "" {
		kind = calendar.DefaultStoreKind(cfg.Env)
	}
	switch kind {
	case calendar.StoreEnv:
		return calendar.NewEnvTokenStore(cfg.GoogleRefreshToken), nil
	case calendar.StoreFile:
		return calendar.NewFileTokenStore(cfg.CalendarTokenFile), nil
	case calendar.StorePostgres:
		if pool == nil {
			return nil, fmt.Errorf("bootstrap: postgres token store requires DATABASE_URL")
		}
		return calendar.NewPostgresTokenStore(pool, cfg.GoogleCalendarID), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown CALENDAR_TOKEN_STORE %q", kind)
	}
}

// BuildOAuthConfig returns nil when Google client credentials are missing.
func BuildOAuthConfig(cfg *appconfig.Config) *oauth2.Config {
	return calendar.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
}

// BuildCalendarClient constructs the Google Calendar client. Call Initialize
// on the result to load credentials.
func BuildCalendarClient(cfg *appconfig.Config, oauthCfg *oauth2.Config, store calendar.TokenStore, loc *time.Location, logger *logging.Logger) *calendar.GoogleClient {
	return calendar.NewGoogleClient(oauthCfg, store, calendar.GoogleConfig{
		CalendarID:  cfg.GoogleCalendarID,
		SendUpdates: cfg.GoogleSendUpdates,
		Location:    loc,
	}, logger)
}

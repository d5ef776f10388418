package bootstrap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-booking/internal/calendar"
	appconfig "github.com/wolfman30/clinic-booking/internal/config"
	"github.com/wolfman30/clinic-booking/internal/notify"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

func TestBuildRedisClient(t *testing.T) {
	logger := logging.New("error")
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{}, logger, true))

	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logger, true)
	require.NotNil(t, client)
	require.NoError(t, client.Ping(context.Background()).Err())

	addr := mr.Addr()
	mr.Close()
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: addr}, logger, true))
}

func TestConnectPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	if pool := ConnectPostgresPool(context.Background(), "", logging.New("error")); pool != nil {
		t.Fatalf("expected nil pool for empty URL")
	}
}

func TestBuildTokenStore(t *testing.T) {
	tests := []struct {
		name    string
		cfg     appconfig.Config
		want    any
		wantErr bool
	}{
		{"production defaults to env", appconfig.Config{Env: "production"}, &calendar.EnvTokenStore{}, false},
		{"development defaults to file", appconfig.Config{Env: "development", CalendarTokenFile: filepath.Join(t.TempDir(), "t.json")}, &calendar.FileTokenStore{}, false},
		{"explicit env", appconfig.Config{Env: "development", CalendarTokenStore: "env"}, &calendar.EnvTokenStore{}, false},
		{"postgres without pool", appconfig.Config{CalendarTokenStore: "postgres"}, nil, true},
		{"unknown", appconfig.Config{CalendarTokenStore: "s3"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := BuildTokenStore(&tt.cfg, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, store)
		})
	}
}

func TestBuildCalendarClientWithoutCredentials(t *testing.T) {
	cfg := &appconfig.Config{GoogleCalendarID: "primary"}
	oauthCfg := BuildOAuthConfig(cfg)
	assert.Nil(t, oauthCfg)

	client := BuildCalendarClient(cfg, oauthCfg, calendar.NewEnvTokenStore(""), time.UTC, logging.New("error"))
	require.NoError(t, client.Initialize(context.Background()))
	assert.False(t, client.IsAuthenticated())
}

func TestBuildEmailSender(t *testing.T) {
	logger := logging.New("error")
	ctx := context.Background()

	sender, err := BuildEmailSender(ctx, &appconfig.Config{EmailProvider: "auto"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &notify.StubEmailSender{}, sender)

	sender, err = BuildEmailSender(ctx, &appconfig.Config{
		EmailProvider:  "auto",
		SendGridAPIKey: "SG.test",
		EmailFromEmail: "citas@mentenovedosa.com",
	}, logger)
	require.NoError(t, err)
	assert.IsType(t, &notify.SendGridSender{}, sender)

	_, err = BuildEmailSender(ctx, &appconfig.Config{EmailProvider: "sendgrid"}, logger)
	assert.Error(t, err)

	_, err = BuildEmailSender(ctx, &appconfig.Config{EmailProvider: "pigeon"}, logger)
	assert.Error(t, err)
}

func TestBuildEmailSenderSES(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	sender, err := BuildEmailSender(context.Background(), &appconfig.Config{
		EmailProvider:       "ses",
		EmailFromEmail:      "citas@mentenovedosa.com",
		AWSRegion:           "us-east-1",
		AWSAccessKeyID:      "test",
		AWSSecretAccessKey:  "test",
		AWSEndpointOverride: "http://localhost:4566",
	}, logging.New("error"))
	require.NoError(t, err)
	assert.IsType(t, &notify.SESSender{}, sender)
}

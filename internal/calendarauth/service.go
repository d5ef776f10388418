// Package calendarauth runs the one-time operator authorization that lets the
// server act on the clinic's Google Calendar.
package calendarauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"golang.org/x/oauth2"

	"github.com/wolfman30/clinic-booking/internal/calendar"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

var tracer = otel.Tracer("clinic.internal.calendarauth")

var (
	ErrNotConfigured = errors.New("calendarauth: google oauth client not configured")
	ErrInvalidState  = errors.New("calendarauth: invalid or expired state")
	ErrMissingCode   = errors.New("calendarauth: authorization code required")
)

// Reloader is the calendar client that picks up a newly stored token.
type Reloader interface {
	Initialize(ctx context.Context) error
	IsAuthenticated() bool
}

// Status describes the calendar connection.
type Status struct {
	Configured    bool `json:"configured"`
	Authenticated bool `json:"authenticated"`
}

// Service issues authorization URLs and redeems codes into stored tokens.
type Service struct {
	oauth  *oauth2.Config
	tokens calendar.TokenStore
	client Reloader
	states StateStore
	logger *logging.Logger
}

// NewService builds the authorization service. oauthCfg may be nil when no
// Google client credentials are configured.
func NewService(oauthCfg *oauth2.Config, tokens calendar.TokenStore, client Reloader, states StateStore, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if states == nil {
		states = NewMemoryStateStore()
	}
	return &Service{oauth: oauthCfg, tokens: tokens, client: client, states: states, logger: logger}
}

// Status reports whether the calendar is configured and authenticated.
func (s *Service) Status() Status {
	st := Status{Configured: s.oauth != nil && s.tokens != nil}
	if s.client != nil {
		st.Authenticated = s.client.IsAuthenticated()
	}
	return st
}

// Begin issues a state and returns the consent URL. Offline access with
// forced consent makes Google return a refresh token every time.
func (s *Service) Begin(ctx context.Context) (string, error) {
	if s.oauth == nil || s.tokens == nil {
		return "", ErrNotConfigured
	}
	state, err := newState()
	if err != nil {
		return "", err
	}
	if err := s.states.Put(ctx, state, StateTTL); err != nil {
		return "", err
	}
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// Complete validates state and redeems code.
func (s *Service) Complete(ctx context.Context, state, code string) error {
	ok, err := s.states.Consume(ctx, state)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidState
	}
	return s.Redeem(ctx, code)
}

// Redeem exchanges code for a token, stores it and reloads the calendar
// client. The CLI uses it directly after the operator pastes the code.
func (s *Service) Redeem(ctx context.Context, code string) error {
	ctx, span := tracer.Start(ctx, "calendarauth.redeem")
	defer span.End()

	if s.oauth == nil || s.tokens == nil {
		return ErrNotConfigured
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrMissingCode
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("calendarauth: exchange code: %w", err)
	}
	if token.RefreshToken == "" {
		s.logger.Warn("google returned no refresh token; access will lapse when the token expires")
	}
	if err := s.tokens.Save(ctx, token); err != nil {
		span.RecordError(err)
		return fmt.Errorf("calendarauth: save token: %w", err)
	}
	if s.client != nil {
		if err := s.client.Initialize(ctx); err != nil {
			span.RecordError(err)
			return fmt.Errorf("calendarauth: reload calendar client: %w", err)
		}
	}
	s.logger.Info("google calendar authorized", "expiry", token.Expiry)
	return nil
}

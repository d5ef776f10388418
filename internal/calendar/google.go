package calendar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/wolfman30/clinic-booking/pkg/logging"
)

var tracer = otel.Tracer("clinic.internal.calendar")

const dateOnlyLayout = "2006-01-02"

// NewOAuthConfig builds the OAuth2 client config for Google Calendar.
// It returns nil when client credentials are missing.
func NewOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	if clientID == "" || clientSecret == "" {
		return nil
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gcal.CalendarEventsScope},
	}
}

// GoogleConfig tunes the Google Calendar client.
type GoogleConfig struct {
	CalendarID  string
	SendUpdates string
	Location    *time.Location
	// Endpoint overrides the API base URL (tests, proxies).
	Endpoint string
}

// GoogleClient talks to Google Calendar v3 with a token from a TokenStore.
type GoogleClient struct {
	oauth  *oauth2.Config
	store  TokenStore
	cfg    GoogleConfig
	logger *logging.Logger

	mu      sync.RWMutex
	service *gcal.Service
}

// NewGoogleClient constructs an unauthenticated client; call Initialize to load credentials.
func NewGoogleClient(oauthCfg *oauth2.Config, store TokenStore, cfg GoogleConfig, logger *logging.Logger) *GoogleClient {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.CalendarID == "" {
		cfg.CalendarID = "primary"
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &GoogleClient{oauth: oauthCfg, store: store, cfg: cfg, logger: logger}
}

// Initialize loads the stored token and builds an authenticated service.
// Missing configuration or token leaves the client unauthenticated without error.
func (c *GoogleClient) Initialize(ctx context.Context) error {
	if c.oauth == nil || c.store == nil {
		c.logger.Info("google calendar not configured; calendar features disabled")
		c.setService(nil)
		return nil
	}

	token, err := c.store.Load(ctx)
	if errors.Is(err, ErrTokenNotFound) {
		c.logger.Info("no google calendar token stored; operator authorization required")
		c.setService(nil)
		return nil
	}
	if err != nil {
		c.setService(nil)
		return fmt.Errorf("calendar: load token: %w", err)
	}

	source := oauth2.ReuseTokenSource(token, &persistingTokenSource{
		base:   c.oauth.TokenSource(context.Background(), token),
		store:  c.store,
		last:   token.AccessToken,
		logger: c.logger,
	})
	opts := []option.ClientOption{option.WithHTTPClient(oauth2.NewClient(context.Background(), source))}
	if c.cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.cfg.Endpoint))
	}
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		c.setService(nil)
		return fmt.Errorf("calendar: create service: %w", err)
	}
	c.setService(svc)
	c.logger.Info("google calendar client authenticated", "calendar_id", c.cfg.CalendarID)
	return nil
}

// IsAuthenticated reports whether Initialize produced a usable service.
func (c *GoogleClient) IsAuthenticated() bool {
	return c.getService() != nil
}

// ListEvents returns single (expanded) events intersecting [timeMin, timeMax)
// ordered by start. An unauthenticated client returns an empty list.
func (c *GoogleClient) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]Event, error) {
	svc := c.getService()
	if svc == nil {
		return []Event{}, nil
	}
	ctx, span := tracer.Start(ctx, "calendar.list_events")
	defer span.End()
	span.SetAttributes(
		attribute.String("calendar.time_min", timeMin.Format(time.RFC3339)),
		attribute.String("calendar.time_max", timeMax.Format(time.RFC3339)),
	)

	var events []Event
	pageToken := ""
	for {
		call := svc.Events.List(c.cfg.CalendarID).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("calendar: list events: %w", err)
		}
		for _, item := range resp.Items {
			ev, err := c.fromGoogle(item)
			if err != nil {
				c.logger.Warn("skipping calendar event with unreadable times", "event_id", item.Id, "error", err)
				continue
			}
			events = append(events, ev)
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}
	if events == nil {
		events = []Event{}
	}
	return events, nil
}

// CreateEvent inserts an appointment event with the patient as attendee.
func (c *GoogleClient) CreateEvent(ctx context.Context, in EventInput) (*Event, error) {
	svc := c.getService()
	if svc == nil {
		return nil, ErrNotAuthenticated
	}
	ctx, span := tracer.Start(ctx, "calendar.create_event")
	defer span.End()

	tz := c.cfg.Location.String()
	event := &gcal.Event{
		Summary:     in.Title,
		Description: in.Description,
		Start: &gcal.EventDateTime{
			DateTime: in.Start.In(c.cfg.Location).Format(time.RFC3339),
			TimeZone: tz,
		},
		End: &gcal.EventDateTime{
			DateTime: in.End.In(c.cfg.Location).Format(time.RFC3339),
			TimeZone: tz,
		},
	}
	if in.AttendeeEmail != "" {
		event.Attendees = []*gcal.EventAttendee{{Email: in.AttendeeEmail}}
	}

	call := svc.Events.Insert(c.cfg.CalendarID, event).Context(ctx)
	if in.VideoCall {
		event.ConferenceData = &gcal.ConferenceData{
			CreateRequest: &gcal.CreateConferenceRequest{
				RequestId:             uuid.NewString(),
				ConferenceSolutionKey: &gcal.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		}
		call = call.ConferenceDataVersion(1)
	}
	if c.cfg.SendUpdates != "" {
		call = call.SendUpdates(c.cfg.SendUpdates)
	}

	created, err := call.Do()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("calendar: insert event: %w", err)
	}
	out, err := c.fromGoogle(created)
	if err != nil {
		return nil, fmt.Errorf("calendar: decode created event: %w", err)
	}
	return &out, nil
}

func (c *GoogleClient) fromGoogle(item *gcal.Event) (Event, error) {
	ev := Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Status:      item.Status,
		Transparent: item.Transparency == "transparent",
		HTMLLink:    item.HtmlLink,
		MeetLink:    item.HangoutLink,
	}
	if len(item.Attendees) > 0 && item.Attendees[0] != nil {
		ev.Attendee = item.Attendees[0].Email
	}

	start, allDay, err := parseEventTime(item.Start, c.cfg.Location)
	if err != nil {
		return Event{}, fmt.Errorf("start: %w", err)
	}
	ev.Start, ev.AllDay = start, allDay

	if item.End == nil || (item.End.DateTime == "" && item.End.Date == "") {
		if allDay {
			ev.End = start.AddDate(0, 0, 1)
		} else {
			ev.End = start.Add(time.Hour)
		}
		return ev, nil
	}
	end, _, err := parseEventTime(item.End, c.cfg.Location)
	if err != nil {
		return Event{}, fmt.Errorf("end: %w", err)
	}
	ev.End = end
	return ev, nil
}

// parseEventTime reads a date-time or, for all-day events, a date at local midnight.
func parseEventTime(dt *gcal.EventDateTime, loc *time.Location) (time.Time, bool, error) {
	if dt == nil {
		return time.Time{}, false, errors.New("missing time")
	}
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return time.Time{}, false, err
		}
		return t.In(loc), false, nil
	}
	if dt.Date != "" {
		t, err := time.ParseInLocation(dateOnlyLayout, dt.Date, loc)
		if err != nil {
			return time.Time{}, true, err
		}
		return t, true, nil
	}
	return time.Time{}, false, errors.New("missing time")
}

func (c *GoogleClient) setService(svc *gcal.Service) {
	c.mu.Lock()
	c.service = svc
	c.mu.Unlock()
}

func (c *GoogleClient) getService() *gcal.Service {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.service
}

// persistingTokenSource writes refreshed tokens back to the store.
type persistingTokenSource struct {
	base   oauth2.TokenSource
	store  TokenStore
	logger *logging.Logger

	mu   sync.Mutex
	last string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := p.base.Token()
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if token.AccessToken != p.last {
		p.last = token.AccessToken
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.store.Save(ctx, token); err != nil {
			p.logger.Warn("failed to persist refreshed calendar token", "error", err)
		} else {
			p.logger.Debug("persisted refreshed calendar token", "expiry", token.Expiry)
		}
	}
	return token, nil
}

var _ Client = (*GoogleClient)(nil)

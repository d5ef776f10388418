// Package agenda renders the clinic's calendar for the public month view and
// the practitioner's day view.
package agenda

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/wolfman30/clinic-booking/internal/calendar"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

var tracer = otel.Tracer("clinic.internal.agenda")

// ErrInvalidMonth is returned for a month outside 1..12 or an unreasonable year.
var ErrInvalidMonth = errors.New("agenda: invalid month")

// EventLister is the read side of the calendar client.
type EventLister interface {
	ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]calendar.Event, error)
}

// Config carries the clinic details the views need.
type Config struct {
	Location     *time.Location
	StartHour    int
	EndHour      int
	ClinicName   string
	Practitioner string
}

// Service builds agenda views from calendar events.
type Service struct {
	events EventLister
	cfg    Config
	now    func() time.Time
	logger *logging.Logger
}

func NewService(events EventLister, cfg Config, logger *logging.Logger) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.StartHour <= 0 && cfg.EndHour <= 0 {
		cfg.StartHour, cfg.EndHour = 8, 17
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{events: events, cfg: cfg, now: time.Now, logger: logger}
}

// WithClock overrides the clock used for the today flag and time marker.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// PublicEvent is a busy block with no personal data.
type PublicEvent struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	AllDay bool      `json:"all_day"`
}

// MonthEvents returns the month's busy blocks.
func (s *Service) MonthEvents(ctx context.Context, year int, month time.Month) ([]PublicEvent, error) {
	events, err := s.monthEvents(ctx, year, month)
	if err != nil {
		return nil, err
	}
	out := make([]PublicEvent, 0, len(events))
	for _, ev := range events {
		if ev.Transparent || ev.Status == "cancelled" {
			continue
		}
		out = append(out, PublicEvent{Start: ev.Start, End: ev.End, AllDay: ev.AllDay})
	}
	return out, nil
}

// WriteFeed writes the month as an iCalendar document.
func (s *Service) WriteFeed(ctx context.Context, w io.Writer, year int, month time.Month) error {
	events, err := s.monthEvents(ctx, year, month)
	if err != nil {
		return err
	}
	return calendar.EncodeICS(w, calendar.FeedMeta{
		ProductID:   fmt.Sprintf("-//%s//Agenda//ES", s.cfg.ClinicName),
		Name:        fmt.Sprintf("%s %04d-%02d", s.cfg.ClinicName, year, int(month)),
		Description: s.cfg.Practitioner,
		Location:    s.cfg.Location,
		Stamp:       s.now(),
	}, events)
}

func (s *Service) monthEvents(ctx context.Context, year int, month time.Month) ([]calendar.Event, error) {
	start, end, err := s.monthBounds(year, month)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, start, end)
}

func (s *Service) list(ctx context.Context, start, end time.Time) ([]calendar.Event, error) {
	ctx, span := tracer.Start(ctx, "agenda.list_events")
	defer span.End()

	if s.events == nil {
		return nil, nil
	}
	events, err := s.events.ListEvents(ctx, start, end)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("agenda: list events: %w", err)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
	return events, nil
}

func (s *Service) monthBounds(year int, month time.Month) (time.Time, time.Time, error) {
	if month < time.January || month > time.December || year < 2000 || year > 2100 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %d-%d", ErrInvalidMonth, year, int(month))
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, s.cfg.Location)
	return start, start.AddDate(0, 1, 0), nil
}

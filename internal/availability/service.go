package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/clinic-booking/internal/observability/metrics"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

var tracer = otel.Tracer("clinic.internal.availability")

// DateLayout is the wire format of a day identifier.
const DateLayout = "2006-01-02"

var (
	// ErrPastDate is returned for days before today in the clinic's timezone.
	ErrPastDate = errors.New("availability: date is in the past")
	// ErrInvalidDate is returned when a day identifier cannot be parsed.
	ErrInvalidDate = errors.New("availability: invalid date")
)

// BusySource supplies the busy intervals intersecting [start, end).
type BusySource interface {
	BusyIntervals(ctx context.Context, start, end time.Time) ([]Interval, error)
}

// Result is the availability of one day.
type Result struct {
	Date     string   `json:"date"`
	Slots    []string `json:"slots"`
	FailOpen bool     `json:"fail_open"`
}

// Service answers day queries against the clinic roster.
type Service struct {
	source  BusySource
	roster  Roster
	loc     *time.Location
	now     func() time.Time
	logger  *logging.Logger
	metrics *metrics.BookingMetrics
}

// NewService builds the availability service. A nil source means no calendar
// is configured and every day is fully available.
func NewService(source BusySource, roster Roster, loc *time.Location, logger *logging.Logger, m *metrics.BookingMetrics) *Service {
	if len(roster) == 0 {
		panic("availability: roster required")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		source:  source,
		roster:  roster,
		loc:     loc,
		now:     time.Now,
		logger:  logger,
		metrics: m,
	}
}

// WithClock overrides the clock used for past-date checks.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Roster returns the configured roster.
func (s *Service) Roster() Roster { return s.roster }

// Location returns the clinic timezone.
func (s *Service) Location() *time.Location { return s.loc }

// Today returns midnight of the current day in the clinic timezone.
func (s *Service) Today() time.Time {
	return DayBounds(s.now().In(s.loc)).Start
}

// ParseDay parses a YYYY-MM-DD identifier in the clinic timezone.
func (s *Service) ParseDay(date string) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, date, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return day, nil
}

// ForDay returns the roster slots still free on day. When the upstream fetch
// fails the full roster is returned with FailOpen set.
func (s *Service) ForDay(ctx context.Context, day time.Time) (Result, error) {
	bounds := DayBounds(day.In(s.loc))
	ctx, span := tracer.Start(ctx, "availability.for_day")
	defer span.End()
	span.SetAttributes(attribute.String("clinic.date", bounds.Start.Format(DateLayout)))

	if bounds.Start.Before(s.Today()) {
		return Result{}, ErrPastDate
	}

	result := Result{Date: bounds.Start.Format(DateLayout)}
	if s.source == nil {
		result.Slots = s.roster.Labels()
		return result, nil
	}

	started := time.Now()
	busy, err := s.source.BusyIntervals(ctx, bounds.Start, bounds.End)
	s.metrics.ObserveUpstreamLatency("calendar.busy", time.Since(started).Seconds())
	if err != nil {
		span.RecordError(err)
		s.logger.Warn("busy interval fetch failed; treating day as fully available",
			"date", result.Date,
			"error", err,
		)
		s.metrics.ObserveAvailability("fail_open")
		result.Slots = s.roster.Labels()
		result.FailOpen = true
		return result, nil
	}

	free := Available(bounds.Start, s.roster, busy)
	result.Slots = make([]string, len(free))
	for i, slot := range free {
		result.Slots[i] = slot.Label
	}
	s.metrics.ObserveAvailability("calendar")
	s.logger.Debug("availability computed", "date", result.Date, "busy", len(busy), "free", len(free))
	return result, nil
}

package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/clinic-booking/internal/availability"
	"github.com/wolfman30/clinic-booking/internal/calendar"
	"github.com/wolfman30/clinic-booking/internal/locale"
	"github.com/wolfman30/clinic-booking/internal/notify"
	"github.com/wolfman30/clinic-booking/internal/observability/metrics"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

var tracer = otel.Tracer("clinic.internal.booking")

// Mailer sends the patient confirmation and the clinic's copy.
type Mailer interface {
	SendConfirmation(ctx context.Context, appt notify.Appointment) error
	NotifyAdmin(ctx context.Context, appt notify.Appointment) error
}

// EventCreator mirrors appointments into the external calendar.
type EventCreator interface {
	CreateEvent(ctx context.Context, in calendar.EventInput) (*calendar.Event, error)
}

// Mirroring states reported in Confirmation.CalendarMirroring.
const (
	MirrorQueued   = "queued"
	MirrorDisabled = "disabled"
)

// Config holds the clinic-specific inputs of the booking service.
type Config struct {
	Roster        availability.Roster
	Location      *time.Location
	MirrorTimeout time.Duration
}

// Service confirms appointment requests.
type Service struct {
	mailer  Mailer
	events  EventCreator
	cfg     Config
	now     func() time.Time
	logger  *logging.Logger
	metrics *metrics.BookingMetrics

	wg sync.WaitGroup
}

// NewService constructs a booking service. events may be nil when no calendar
// is configured.
func NewService(mailer Mailer, events EventCreator, cfg Config, logger *logging.Logger, m *metrics.BookingMetrics) *Service {
	if mailer == nil {
		panic("booking: mailer required")
	}
	if len(cfg.Roster) == 0 {
		panic("booking: roster required")
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.MirrorTimeout <= 0 {
		cfg.MirrorTimeout = 15 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{mailer: mailer, events: events, cfg: cfg, now: time.Now, logger: logger, metrics: m}
}

// WithClock overrides the clock used for past-date checks.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Confirm validates req, sends the confirmation email and queues the calendar
// mirror. Only the confirmation email can fail the request.
func (s *Service) Confirm(ctx context.Context, req Request) (*Confirmation, error) {
	ctx, span := tracer.Start(ctx, "booking.confirm")
	defer span.End()

	req.Contact = req.Contact.Normalize()
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	start, slot, err := s.validate(req)
	if err != nil {
		s.metrics.ObserveBooking("invalid")
		return nil, err
	}
	reference := uuid.NewString()
	span.SetAttributes(
		attribute.String("clinic.booking_ref", reference),
		attribute.String("clinic.date", req.Date),
		attribute.String("clinic.slot", slot.Label),
	)

	appt := notify.Appointment{
		Reference: reference,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Date:      locale.LongDate(start),
		Time:      slot.Label,
		Service:   strings.TrimSpace(req.Service),
		VideoCall: req.VideoCall,
		Start:     start,
		End:       start.Add(availability.SlotDuration),
	}

	if err := s.mailer.SendConfirmation(ctx, appt); err != nil {
		span.RecordError(err)
		s.metrics.ObserveBooking("delivery_failed")
		s.logger.Error("confirmation email failed", "reference", reference, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	s.notifyAdmin(ctx, appt)

	mirroring := s.mirror(ctx, appt)
	s.metrics.ObserveBooking("confirmed")
	s.logger.Info("appointment confirmed",
		"reference", reference,
		"date", req.Date,
		"slot", slot.Label,
		"calendar_mirroring", mirroring,
	)

	return &Confirmation{
		Reference:         reference,
		Status:            "confirmed",
		Date:              req.Date,
		DateDisplay:       appt.Date,
		Time:              slot.Label,
		Email:             req.Email,
		CalendarMirroring: mirroring,
	}, nil
}

// EmailRequest is the display-formatted confirmation payload accepted by
// POST /api/send-email.
type EmailRequest struct {
	Contact
	Date string `json:"date" validate:"required,max=100"`
	Time string `json:"time" validate:"required,max=20"`
}

// SendConfirmationEmail sends the confirmation and admin copy for an already
// formatted date and time. No calendar event is created.
func (s *Service) SendConfirmationEmail(ctx context.Context, req EmailRequest) error {
	req.Contact = req.Contact.Normalize()
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	verr := &ValidationError{}
	checkStruct(req, verr)
	if err := verr.orNil(); err != nil {
		return err
	}

	appt := notify.Appointment{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Date:  req.Date,
		Time:  req.Time,
	}
	if err := s.mailer.SendConfirmation(ctx, appt); err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	s.notifyAdmin(ctx, appt)
	return nil
}

// Wait blocks until queued calendar mirrors finish or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) validate(req Request) (time.Time, availability.Slot, error) {
	verr := &ValidationError{}
	checkStruct(req, verr)

	var day time.Time
	if _, bad := verr.Fields["date"]; !bad {
		d, err := time.ParseInLocation(availability.DateLayout, req.Date, s.cfg.Location)
		if err != nil {
			verr.add("date", "La fecha no es válida")
		} else {
			day = d
		}
	}

	var slot availability.Slot
	if _, bad := verr.Fields["time"]; !bad {
		if found, ok := s.cfg.Roster.Lookup(req.Time); ok {
			slot = found
		} else {
			verr.add("time", "El horario no está disponible")
		}
	}

	var start time.Time
	if !day.IsZero() {
		now := s.now().In(s.cfg.Location)
		if day.Before(availability.DayBounds(now).Start) {
			verr.add("date", "La fecha ya pasó")
		} else if slot.Label != "" {
			start = slot.Start(day)
			if !start.After(now) {
				verr.add("time", "El horario ya pasó")
			}
		}
	}

	if err := verr.orNil(); err != nil {
		return time.Time{}, availability.Slot{}, err
	}
	return start, slot, nil
}

func (s *Service) notifyAdmin(ctx context.Context, appt notify.Appointment) {
	if err := s.mailer.NotifyAdmin(ctx, appt); err != nil {
		s.logger.Warn("admin copy email failed", "reference", appt.Reference, "error", err)
	}
}

type authChecker interface {
	IsAuthenticated() bool
}

// mirror creates the calendar event in the background. Its outcome is only logged.
func (s *Service) mirror(ctx context.Context, appt notify.Appointment) string {
	if s.events == nil {
		s.metrics.ObserveMirror("disabled")
		return MirrorDisabled
	}
	if checker, ok := s.events.(authChecker); ok && !checker.IsAuthenticated() {
		s.metrics.ObserveMirror("disabled")
		return MirrorDisabled
	}

	input := calendar.EventInput{
		Title:         fmt.Sprintf("Cita: %s", appt.Name),
		Description:   mirrorDescription(appt),
		Start:         appt.Start,
		End:           appt.End,
		AttendeeEmail: appt.Email,
		VideoCall:     appt.VideoCall,
	}
	detached := context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(detached, s.cfg.MirrorTimeout)
		defer cancel()

		started := time.Now()
		created, err := s.events.CreateEvent(ctx, input)
		s.metrics.ObserveUpstreamLatency("calendar.insert", time.Since(started).Seconds())
		switch {
		case errors.Is(err, calendar.ErrNotAuthenticated):
			s.metrics.ObserveMirror("disabled")
			s.logger.Info("calendar mirroring skipped: not authenticated", "reference", appt.Reference)
		case err != nil:
			s.metrics.ObserveMirror("failed")
			s.logger.Warn("calendar mirroring failed", "reference", appt.Reference, "error", err)
		default:
			s.metrics.ObserveMirror("created")
			s.logger.Info("calendar event created",
				"reference", appt.Reference,
				"event_id", created.ID,
				"link", created.HTMLLink,
			)
		}
	}()
	return MirrorQueued
}

func mirrorDescription(appt notify.Appointment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Paciente: %s\n", appt.Name)
	fmt.Fprintf(&b, "Correo: %s\n", appt.Email)
	fmt.Fprintf(&b, "Teléfono: %s\n", appt.Phone)
	if appt.Service != "" {
		fmt.Fprintf(&b, "Servicio: %s\n", appt.Service)
	}
	fmt.Fprintf(&b, "Referencia: %s", appt.Reference)
	return b.String()
}

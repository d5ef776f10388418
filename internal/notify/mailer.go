package notify

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/clinic-booking/internal/calendar"
	"github.com/wolfman30/clinic-booking/internal/observability/metrics"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

// DefaultFromName is the sender display name when none is configured.
const DefaultFromName = "Mente Novedosa"

// Appointment is what the confirmation emails describe. Date and Time are
// display strings; Start/End are set when the booking has a concrete instant
// and enable the calendar invite.
type Appointment struct {
	Reference string
	Name      string
	Email     string
	Phone     string
	Date      string
	Time      string
	Service   string
	VideoCall bool
	Start     time.Time
	End       time.Time
}

// MailerConfig identifies the clinic in outgoing mail.
type MailerConfig struct {
	ClinicName   string
	Practitioner string
	AdminEmail   string
	Location     *time.Location
}

// Mailer renders and sends appointment emails.
type Mailer struct {
	sender  EmailSender
	cfg     MailerConfig
	logger  *logging.Logger
	metrics *metrics.BookingMetrics
}

func NewMailer(sender EmailSender, cfg MailerConfig, logger *logging.Logger, m *metrics.BookingMetrics) *Mailer {
	if logger == nil {
		logger = logging.Default()
	}
	if sender == nil {
		sender = NewStubEmailSender(logger)
	}
	if cfg.ClinicName == "" {
		cfg.ClinicName = DefaultFromName
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Mailer{sender: sender, cfg: cfg, logger: logger, metrics: m}
}

// SendConfirmation mails the patient. Errors are returned for the caller to
// surface as a retryable failure.
func (m *Mailer) SendConfirmation(ctx context.Context, appt Appointment) error {
	html, text, err := confirmationTemplates.render(m.data(appt))
	if err != nil {
		return err
	}
	msg := EmailMessage{
		To:      appt.Email,
		ToName:  appt.Name,
		Subject: fmt.Sprintf("Confirmación de Cita - %s", m.cfg.ClinicName),
		Body:    text,
		HTML:    html,
	}
	if !appt.Start.IsZero() {
		invite, err := m.invite(appt)
		if err != nil {
			m.logger.Warn("failed to build calendar invite", "error", err, "reference", appt.Reference)
		} else {
			msg.Attachments = append(msg.Attachments, Attachment{
				Filename:    "cita.ics",
				ContentType: "text/calendar; charset=utf-8",
				Content:     invite,
			})
		}
	}

	started := time.Now()
	err = m.sender.Send(ctx, msg)
	m.metrics.ObserveUpstreamLatency("email.confirmation", time.Since(started).Seconds())
	m.metrics.ObserveEmail("confirmation", err == nil)
	if err != nil {
		return fmt.Errorf("notify: send confirmation: %w", err)
	}
	return nil
}

// NotifyAdmin mails the clinic inbox a copy of the booking. It is a no-op
// when no admin address is configured.
func (m *Mailer) NotifyAdmin(ctx context.Context, appt Appointment) error {
	if strings.TrimSpace(m.cfg.AdminEmail) == "" {
		return nil
	}
	html, text, err := adminTemplates.render(m.data(appt))
	if err != nil {
		return err
	}
	err = m.sender.Send(ctx, EmailMessage{
		To:      m.cfg.AdminEmail,
		ToName:  m.cfg.Practitioner,
		Subject: fmt.Sprintf("Nueva Cita Agendada: %s", appt.Name),
		Body:    text,
		HTML:    html,
	})
	m.metrics.ObserveEmail("admin_copy", err == nil)
	if err != nil {
		return fmt.Errorf("notify: send admin copy: %w", err)
	}
	return nil
}

func (m *Mailer) data(appt Appointment) templateData {
	return templateData{
		Clinic:    m.cfg.ClinicName,
		Name:      appt.Name,
		Email:     appt.Email,
		Phone:     appt.Phone,
		Date:      appt.Date,
		Time:      appt.Time,
		Service:   appt.Service,
		Reference: appt.Reference,
		VideoCall: appt.VideoCall,
	}
}

func (m *Mailer) invite(appt Appointment) ([]byte, error) {
	end := appt.End
	if end.IsZero() {
		end = appt.Start.Add(time.Hour)
	}
	uid := appt.Reference
	if uid == "" {
		uid = fmt.Sprintf("%d", appt.Start.Unix())
	}
	summary := fmt.Sprintf("Cita - %s", m.cfg.ClinicName)
	if m.cfg.Practitioner != "" {
		summary = fmt.Sprintf("Cita con %s", m.cfg.Practitioner)
	}

	var buf bytes.Buffer
	err := calendar.EncodeICS(&buf, calendar.FeedMeta{
		ProductID: fmt.Sprintf("-//%s//Citas//ES", m.cfg.ClinicName),
		Name:      m.cfg.ClinicName,
		Location:  m.cfg.Location,
	}, []calendar.Event{{
		ID:          uid + "@citas",
		Summary:     summary,
		Description: appt.Service,
		Start:       appt.Start,
		End:         end,
	}})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

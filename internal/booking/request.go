// Package booking confirms appointment requests: it validates them, sends the
// patient's confirmation email and mirrors the appointment into the calendar.
package booking

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ConfirmationDisplayDelay is how long the confirmation view stays up before
// the flow returns to the landing page.
const ConfirmationDisplayDelay = 3 * time.Second

// ErrDelivery marks a failed confirmation email; the request may be retried.
var ErrDelivery = errors.New("booking: confirmation delivery failed")

// Contact is the patient's contact details.
type Contact struct {
	Name  string `json:"name" validate:"required,max=120"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,phone"`
}

// Request is an appointment submission.
type Request struct {
	Contact
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string `json:"time" validate:"required"` // slot label, e.g. "09:00 AM"
	Service   string `json:"service,omitempty" validate:"omitempty,max=120"`
	VideoCall bool   `json:"video_call,omitempty"`
}

// Confirmation is returned once the confirmation email has been accepted.
type Confirmation struct {
	Reference         string `json:"reference"`
	Status            string `json:"status"`
	Date              string `json:"date"`
	DateDisplay       string `json:"date_display"`
	Time              string `json:"time"`
	Email             string `json:"email"`
	CalendarMirroring string `json:"calendar_mirroring"`
}

// ValidationError lists invalid fields with a user-facing message each.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("booking: invalid request: %s", strings.Join(names, ", "))
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Normalize trims whitespace from every field.
func (c Contact) Normalize() Contact {
	return Contact{
		Name:  strings.TrimSpace(c.Name),
		Email: strings.TrimSpace(c.Email),
		Phone: strings.TrimSpace(c.Phone),
	}
}

func (c Contact) validate(verr *ValidationError) {
	checkStruct(c, verr)
}

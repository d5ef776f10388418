package booking

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/clinic-booking/internal/availability"
)

// State is a step of the booking form.
type State int

const (
	StateIdle State = iota
	StateDateChosen
	StateSlotsLoading
	StateSlotsReady
	StateDetailsEntered
	StateSubmitting
	StateSucceeded
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:           "idle",
	StateDateChosen:     "date_chosen",
	StateSlotsLoading:   "slots_loading",
	StateSlotsReady:     "slots_ready",
	StateDetailsEntered: "details_entered",
	StateSubmitting:     "submitting",
	StateSucceeded:      "succeeded",
	StateFailed:         "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrInvalidTransition is returned when an action is not allowed in the current state.
var ErrInvalidTransition = errors.New("booking: invalid flow transition")

// Backend is what the flow talks to: availability and confirmation.
type Backend interface {
	AvailableSlots(ctx context.Context, date string) (availability.Result, error)
	Confirm(ctx context.Context, req Request) (*Confirmation, error)
}

// Flow is one patient's in-memory booking session. It is not safe for
// concurrent use.
type Flow struct {
	backend  Backend
	fallback []string
	now      func() time.Time

	state        State
	date         string
	slots        []string
	failOpen     bool
	slot         string
	contact      Contact
	service      string
	videoCall    bool
	confirmation *Confirmation
	lastErr      error
}

// NewFlow starts a session. roster is shown when availability cannot be loaded.
func NewFlow(backend Backend, roster []string) *Flow {
	return &Flow{backend: backend, fallback: append([]string(nil), roster...), now: time.Now}
}

// WithClock sets the clock used to reject past days. Its location is the
// clinic timezone.
func (f *Flow) WithClock(now func() time.Time) *Flow {
	f.now = now
	return f
}

func (f *Flow) State() State                { return f.state }
func (f *Flow) Date() string                { return f.date }
func (f *Flow) Slots() []string             { return append([]string(nil), f.slots...) }
func (f *Flow) FailOpen() bool              { return f.failOpen }
func (f *Flow) Slot() string                { return f.slot }
func (f *Flow) Confirmation() *Confirmation { return f.confirmation }
func (f *Flow) Err() error                  { return f.lastErr }

// ChooseDate selects a day (YYYY-MM-DD) and clears any chosen slot.
func (f *Flow) ChooseDate(date string) error {
	if f.state == StateSubmitting || f.state == StateSucceeded {
		return fmt.Errorf("%w: choose date while %s", ErrInvalidTransition, f.state)
	}
	now := f.now()
	day, err := time.ParseInLocation(availability.DateLayout, date, now.Location())
	if err != nil {
		verr := &ValidationError{}
		verr.add("date", "La fecha no es válida")
		return verr
	}
	if day.Before(availability.DayBounds(now).Start) {
		return pastDateError()
	}
	f.date = date
	f.slot = ""
	f.slots = nil
	f.failOpen = false
	f.lastErr = nil
	f.state = StateDateChosen
	return nil
}

// LoadSlots fetches the day's free slots. An upstream failure falls back to
// the full roster; a refused date returns a *ValidationError and the flow
// goes back to Idle.
func (f *Flow) LoadSlots(ctx context.Context) error {
	if f.state != StateDateChosen {
		return fmt.Errorf("%w: load slots while %s", ErrInvalidTransition, f.state)
	}
	f.state = StateSlotsLoading
	result, err := f.backend.AvailableSlots(ctx, f.date)
	if verr := rejectedDate(err); verr != nil {
		f.date = ""
		f.state = StateIdle
		return verr
	}
	if err != nil {
		f.slots = append([]string(nil), f.fallback...)
		f.failOpen = true
	} else {
		f.slots = result.Slots
		f.failOpen = result.FailOpen
	}
	f.state = StateSlotsReady
	return nil
}

func pastDateError() *ValidationError {
	verr := &ValidationError{}
	verr.add("date", "La fecha ya pasó")
	return verr
}

// rejectedDate maps a backend refusal of the date itself to a validation
// error. Anything else is an upstream failure and returns nil.
func rejectedDate(err error) *ValidationError {
	if err == nil {
		return nil
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	if errors.Is(err, availability.ErrPastDate) {
		return pastDateError()
	}
	if errors.Is(err, availability.ErrInvalidDate) {
		verr = &ValidationError{}
		verr.add("date", "La fecha no es válida")
		return verr
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 &&
		apiErr.Status != http.StatusRequestTimeout && apiErr.Status != http.StatusTooManyRequests {
		verr = &ValidationError{}
		if strings.Contains(apiErr.Message, "past") {
			verr.add("date", "La fecha ya pasó")
		} else {
			verr.add("date", "La fecha no es válida")
		}
		return verr
	}
	return nil
}

func (f *Flow) editable() bool {
	return f.state == StateSlotsReady || f.state == StateDetailsEntered || f.state == StateFailed
}

// SelectSlot picks one of the loaded slots.
func (f *Flow) SelectSlot(label string) error {
	if !f.editable() {
		return fmt.Errorf("%w: select slot while %s", ErrInvalidTransition, f.state)
	}
	for _, s := range f.slots {
		if s == label {
			f.slot = label
			f.advance()
			return nil
		}
	}
	verr := &ValidationError{}
	verr.add("time", "El horario no está disponible")
	return verr
}

// EnterDetails records the contact fields and optional extras.
func (f *Flow) EnterDetails(c Contact, service string, videoCall bool) error {
	if !f.editable() {
		return fmt.Errorf("%w: enter details while %s", ErrInvalidTransition, f.state)
	}
	f.contact = c.Normalize()
	f.service = service
	f.videoCall = videoCall
	f.advance()
	return nil
}

func (f *Flow) advance() {
	if f.slot != "" && f.contact != (Contact{}) {
		f.state = StateDetailsEntered
		return
	}
	if f.state != StateFailed {
		f.state = StateSlotsReady
	}
}

// Submit validates locally, then sends the request. A validation error leaves
// the state unchanged; a backend error moves to StateFailed with the form
// still editable.
func (f *Flow) Submit(ctx context.Context) error {
	if f.state == StateSubmitting || f.state == StateSucceeded {
		return fmt.Errorf("%w: submit while %s", ErrInvalidTransition, f.state)
	}
	verr := &ValidationError{}
	if f.date == "" || f.slot == "" {
		if f.date == "" {
			verr.add("date", "Por favor selecciona una fecha y horario")
		}
		if f.slot == "" {
			verr.add("time", "Por favor selecciona una fecha y horario")
		}
	}
	f.contact.validate(verr)
	if err := verr.orNil(); err != nil {
		return err
	}

	f.state = StateSubmitting
	confirmation, err := f.backend.Confirm(ctx, Request{
		Contact:   f.contact,
		Date:      f.date,
		Time:      f.slot,
		Service:   f.service,
		VideoCall: f.videoCall,
	})
	if err != nil {
		f.lastErr = err
		f.state = StateFailed
		return err
	}
	f.confirmation = confirmation
	f.lastErr = nil
	f.state = StateSucceeded
	return nil
}

// Finish leaves the confirmation view and resets the session to Idle.
func (f *Flow) Finish() error {
	if f.state != StateSucceeded {
		return fmt.Errorf("%w: finish while %s", ErrInvalidTransition, f.state)
	}
	*f = Flow{backend: f.backend, fallback: f.fallback, now: f.now}
	return nil
}

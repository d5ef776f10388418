// Package calendar is the clinic's view of the external calendar provider:
// listing busy events and mirroring confirmed appointments.
package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/wolfman30/clinic-booking/internal/availability"
)

// ErrNotAuthenticated is returned by writes when no OAuth token is available.
var ErrNotAuthenticated = errors.New("calendar: client not authenticated")

// Client is the calendar collaborator. Initialize (re)loads credentials and
// may be called again after an operator completes OAuth.
type Client interface {
	Initialize(ctx context.Context) error
	IsAuthenticated() bool
	ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]Event, error)
	CreateEvent(ctx context.Context, in EventInput) (*Event, error)
}

// Event is a calendar entry reduced to what the clinic needs.
type Event struct {
	ID          string    `json:"id,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	AllDay      bool      `json:"all_day"`
	Transparent bool      `json:"-"`
	Attendee    string    `json:"attendee,omitempty"`
	HTMLLink    string    `json:"html_link,omitempty"`
	MeetLink    string    `json:"meet_link,omitempty"`
}

// Interval returns the event's span as a busy interval.
func (e Event) Interval() availability.Interval {
	return availability.Interval{Start: e.Start, End: e.End}
}

// EventInput describes an appointment to mirror into the calendar.
type EventInput struct {
	Title         string
	Description   string
	Start         time.Time
	End           time.Time
	AttendeeEmail string
	VideoCall     bool
}

// BusyIntervals converts events into busy intervals, skipping events marked
// as free time or cancelled.
func BusyIntervals(events []Event) []availability.Interval {
	out := make([]availability.Interval, 0, len(events))
	for _, e := range events {
		if e.Transparent || e.Status == "cancelled" {
			continue
		}
		if !e.End.After(e.Start) {
			continue
		}
		out = append(out, e.Interval())
	}
	return out
}

// BusySource adapts a Client to availability.BusySource.
type BusySource struct {
	Client Client
}

// BusyIntervals lists events in [start, end) and returns their busy spans.
func (s BusySource) BusyIntervals(ctx context.Context, start, end time.Time) ([]availability.Interval, error) {
	events, err := s.Client.ListEvents(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return BusyIntervals(events), nil
}

var _ availability.BusySource = BusySource{}

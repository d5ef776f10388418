package agenda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/clinic-booking/internal/availability"
	"github.com/wolfman30/clinic-booking/internal/calendar"
	"github.com/wolfman30/clinic-booking/internal/locale"
)

// Appointment statuses shown in the day view.
const (
	StatusConfirmed = "confirmed"
	StatusPending   = "pending"
	StatusCancelled = "cancelled"
)

// Appointment is a calendar event as shown to the practitioner.
type Appointment struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Status    string    `json:"status"`
	Link      string    `json:"link,omitempty"`
	MeetLink  string    `json:"meet_link,omitempty"`
}

// HourRow is one hour of the timeline.
type HourRow struct {
	Hour         int           `json:"hour"`
	Label        string        `json:"label"`
	Period       string        `json:"period"`
	Appointments []Appointment `json:"appointments"`
}

// TimeMarker positions the current time on the timeline.
type TimeMarker struct {
	Percent float64 `json:"percent"`
	Time    string  `json:"time"`
}

// DayView is the practitioner's timeline for one day.
type DayView struct {
	Date    string        `json:"date"`
	Title   string        `json:"title"`
	IsToday bool          `json:"is_today"`
	Total   int           `json:"total"`
	AllDay  []Appointment `json:"all_day"`
	Rows    []HourRow     `json:"rows"`
	Now     *TimeMarker   `json:"now,omitempty"`
}

// Day builds the hourly timeline. Events starting outside the working hours
// land in the first or last row.
func (s *Service) Day(ctx context.Context, day time.Time) (DayView, error) {
	bounds := availability.DayBounds(day.In(s.cfg.Location))
	events, err := s.list(ctx, bounds.Start, bounds.End)
	if err != nil {
		return DayView{}, err
	}

	now := s.now().In(s.cfg.Location)
	view := DayView{
		Date:    bounds.Start.Format(availability.DateLayout),
		IsToday: bounds.Start.Equal(availability.DayBounds(now).Start),
		AllDay:  []Appointment{},
	}
	view.Title = dayTitle(bounds.Start, view.IsToday)

	for h := s.cfg.StartHour; h <= s.cfg.EndHour; h++ {
		label := locale.Clock12(time.Date(2000, 1, 1, h, 0, 0, 0, time.UTC))
		view.Rows = append(view.Rows, HourRow{
			Hour:         h,
			Label:        label[:5],
			Period:       label[6:],
			Appointments: []Appointment{},
		})
	}

	for _, ev := range events {
		if (!ev.End.IsZero() && !ev.End.After(bounds.Start)) || !ev.Start.Before(bounds.End) {
			continue
		}
		appt := s.toAppointment(ev)
		view.Total++
		if ev.AllDay {
			view.AllDay = append(view.AllDay, appt)
			continue
		}
		// Events carried over from the previous night land in the first row.
		idx := 0
		if !ev.Start.Before(bounds.Start) {
			idx = ev.Start.In(s.cfg.Location).Hour() - s.cfg.StartHour
		}
		if idx < 0 {
			idx = 0
		}
		if idx >= len(view.Rows) {
			idx = len(view.Rows) - 1
		}
		view.Rows[idx].Appointments = append(view.Rows[idx].Appointments, appt)
	}

	if view.IsToday {
		view.Now = s.marker(now)
	}
	return view, nil
}

func (s *Service) marker(now time.Time) *TimeMarker {
	span := (s.cfg.EndHour + 1 - s.cfg.StartHour) * 60
	elapsed := (now.Hour()-s.cfg.StartHour)*60 + now.Minute()
	if elapsed < 0 || elapsed >= span {
		return nil
	}
	return &TimeMarker{
		Percent: float64(elapsed) / float64(span) * 100,
		Time:    locale.Clock12(now),
	}
}

func (s *Service) toAppointment(ev calendar.Event) Appointment {
	title := strings.TrimSpace(ev.Summary)
	if title == "" {
		title = "Ocupado"
	}
	return Appointment{
		ID:        ev.ID,
		Title:     title,
		Start:     ev.Start,
		End:       ev.End,
		StartTime: ev.Start.In(s.cfg.Location).Format("15:04"),
		EndTime:   ev.End.In(s.cfg.Location).Format("15:04"),
		Status:    appointmentStatus(ev.Status),
		Link:      ev.HTMLLink,
		MeetLink:  ev.MeetLink,
	}
}

func appointmentStatus(googleStatus string) string {
	switch googleStatus {
	case "tentative":
		return StatusPending
	case "cancelled":
		return StatusCancelled
	default:
		return StatusConfirmed
	}
}

// dayTitle renders "Hoy, 10 de marzo" or "Martes, 10 de marzo".
func dayTitle(day time.Time, today bool) string {
	rest := fmt.Sprintf("%d de %s", day.Day(), locale.MonthName(day.Month()))
	if today {
		return "Hoy, " + rest
	}
	weekday := locale.WeekdayName(day.Weekday())
	return strings.ToUpper(weekday[:1]) + weekday[1:] + ", " + rest
}

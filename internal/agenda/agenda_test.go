package agenda

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-booking/internal/calendar"
)

type fakeLister struct {
	events   []calendar.Event
	err      error
	min, max time.Time
}

func (f *fakeLister) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]calendar.Event, error) {
	f.min, f.max = timeMin, timeMax
	if f.err != nil {
		return nil, f.err
	}
	var out []calendar.Event
	for _, ev := range f.events {
		if ev.Start.Before(timeMax) && ev.End.After(timeMin) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func at(day, h, m int) time.Time {
	return time.Date(2026, time.March, day, h, m, 0, 0, time.UTC)
}

func newTestAgenda(lister EventLister, now time.Time) *Service {
	svc := NewService(lister, Config{
		Location:     time.UTC,
		StartHour:    8,
		EndHour:      17,
		ClinicName:   "Mente Novedosa",
		Practitioner: "Psicóloga Rut Ordoñez",
	}, nil)
	return svc.WithClock(func() time.Time { return now })
}

func sampleEvents() []calendar.Event {
	return []calendar.Event{
		{ID: "a", Summary: "Cita: Ana", Status: "confirmed", Start: at(10, 9, 0), End: at(10, 10, 0), HTMLLink: "https://cal/a"},
		{ID: "b", Summary: "Cita: Luis", Status: "tentative", Start: at(10, 13, 30), End: at(10, 14, 30)},
		{ID: "c", Summary: "", Start: at(10, 7, 0), End: at(10, 7, 30)},
		{ID: "d", Summary: "Supervisión", Start: at(10, 19, 0), End: at(10, 20, 0)},
		{ID: "e", Summary: "Congreso", AllDay: true, Start: at(10, 0, 0), End: at(11, 0, 0)},
		{ID: "f", Summary: "Cita: Eva", Status: "cancelled", Start: at(12, 9, 0), End: at(12, 10, 0)},
		{ID: "g", Summary: "Bloqueo", Transparent: true, Start: at(20, 9, 0), End: at(20, 10, 0)},
	}
}

func TestMonthGrid(t *testing.T) {
	lister := &fakeLister{events: sampleEvents()}
	svc := newTestAgenda(lister, at(10, 7, 0))

	grid, err := svc.Month(context.Background(), 2026, time.March)
	require.NoError(t, err)

	assert.Equal(t, "Marzo 2026", grid.Title)
	assert.Equal(t, []string{"D", "L", "M", "M", "J", "V", "S"}, grid.Weekdays)
	assert.Equal(t, at(1, 0, 0), lister.min)
	assert.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), lister.max)
	require.Len(t, grid.Cells, 35)
	assert.False(t, grid.Unavailable)

	first := grid.Cells[0]
	assert.Equal(t, 1, first.Day)
	assert.True(t, first.InMonth)
	assert.True(t, first.Weekend)
	assert.Equal(t, "Disponible", first.Label)

	tenth := grid.Cells[9]
	assert.Equal(t, "2026-03-10", tenth.Date)
	assert.True(t, tenth.Today)
	assert.Equal(t, 5, tenth.Count)
	assert.Equal(t, "5 cita(s) programada(s)", tenth.Label)

	assert.Zero(t, grid.Cells[11].Count, "cancelled events are not counted")

	last := grid.Cells[34]
	assert.Equal(t, 4, last.Day)
	assert.False(t, last.InMonth)
	assert.Empty(t, last.Label)
}

func TestMonthGridPadding(t *testing.T) {
	svc := newTestAgenda(nil, at(10, 7, 0))

	grid, err := svc.Month(context.Background(), 2026, time.January)
	require.NoError(t, err)
	require.Len(t, grid.Cells, 35)
	assert.Equal(t, "Enero 2026", grid.Title)

	for i, day := range []int{28, 29, 30, 31} {
		assert.Equal(t, day, grid.Cells[i].Day)
		assert.False(t, grid.Cells[i].InMonth)
	}
	assert.Equal(t, 1, grid.Cells[4].Day)
	assert.True(t, grid.Cells[4].InMonth)
	assert.Equal(t, "2026-01-01", grid.Cells[4].Date)
}

func TestMonthGridUpstreamFailure(t *testing.T) {
	svc := newTestAgenda(&fakeLister{err: errors.New("503")}, at(10, 7, 0))

	grid, err := svc.Month(context.Background(), 2026, time.March)
	require.NoError(t, err)
	assert.True(t, grid.Unavailable)
	assert.Len(t, grid.Cells, 35)
	assert.Equal(t, "Disponible", grid.Cells[9].Label)
}

func TestMonthRejectsInvalidMonth(t *testing.T) {
	svc := newTestAgenda(nil, at(10, 7, 0))
	_, err := svc.Month(context.Background(), 2026, time.Month(13))
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestMonthEventsArePublic(t *testing.T) {
	svc := newTestAgenda(&fakeLister{events: sampleEvents()}, at(10, 7, 0))

	events, err := svc.MonthEvents(context.Background(), 2026, time.March)
	require.NoError(t, err)
	require.Len(t, events, 5)
	assert.Equal(t, PublicEvent{Start: at(10, 0, 0), End: at(11, 0, 0), AllDay: true}, events[0])
	assert.Equal(t, at(10, 7, 0), events[1].Start)
}

func TestMonthEventsWithoutCalendar(t *testing.T) {
	svc := newTestAgenda(nil, at(10, 7, 0))
	events, err := svc.MonthEvents(context.Background(), 2026, time.March)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NotNil(t, events)
}

func TestDayView(t *testing.T) {
	svc := newTestAgenda(&fakeLister{events: sampleEvents()}, at(10, 10, 30))

	view, err := svc.Day(context.Background(), at(10, 0, 0))
	require.NoError(t, err)

	assert.Equal(t, "2026-03-10", view.Date)
	assert.Equal(t, "Hoy, 10 de marzo", view.Title)
	assert.True(t, view.IsToday)
	assert.Equal(t, 5, view.Total)
	require.Len(t, view.AllDay, 1)
	assert.Equal(t, "Congreso", view.AllDay[0].Title)

	require.Len(t, view.Rows, 10)
	assert.Equal(t, "08:00", view.Rows[0].Label)
	assert.Equal(t, "AM", view.Rows[0].Period)
	assert.Equal(t, "05:00", view.Rows[9].Label)
	assert.Equal(t, "PM", view.Rows[9].Period)

	require.Len(t, view.Rows[0].Appointments, 1)
	assert.Equal(t, "Ocupado", view.Rows[0].Appointments[0].Title)

	nine := view.Rows[1].Appointments
	require.Len(t, nine, 1)
	assert.Equal(t, "Cita: Ana", nine[0].Title)
	assert.Equal(t, "09:00", nine[0].StartTime)
	assert.Equal(t, "10:00", nine[0].EndTime)
	assert.Equal(t, StatusConfirmed, nine[0].Status)

	require.Len(t, view.Rows[5].Appointments, 1)
	assert.Equal(t, StatusPending, view.Rows[5].Appointments[0].Status)
	require.Len(t, view.Rows[9].Appointments, 1)
	assert.Equal(t, "Supervisión", view.Rows[9].Appointments[0].Title)

	require.NotNil(t, view.Now)
	assert.InDelta(t, 25.0, view.Now.Percent, 0.001)
	assert.Equal(t, "10:30 AM", view.Now.Time)
}

func TestDayViewOvernightEventShownInFirstRow(t *testing.T) {
	events := []calendar.Event{
		{ID: "n", Summary: "Guardia", Status: "confirmed", Start: at(9, 23, 0), End: at(10, 10, 0)},
		{ID: "y", Summary: "Ayer", Start: at(9, 15, 0), End: at(9, 16, 0)},
	}
	svc := newTestAgenda(&fakeLister{events: events}, at(10, 10, 30))

	view, err := svc.Day(context.Background(), at(10, 0, 0))
	require.NoError(t, err)

	assert.Equal(t, 1, view.Total)
	require.Len(t, view.Rows[0].Appointments, 1)
	assert.Equal(t, "Guardia", view.Rows[0].Appointments[0].Title)
	assert.Equal(t, "10:00", view.Rows[0].Appointments[0].EndTime)
}

func TestDayViewOtherDay(t *testing.T) {
	svc := newTestAgenda(&fakeLister{}, at(10, 10, 30))

	view, err := svc.Day(context.Background(), at(14, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "Sábado, 14 de marzo", view.Title)
	assert.False(t, view.IsToday)
	assert.Nil(t, view.Now)
	assert.Zero(t, view.Total)
}

func TestDayViewMarkerOutsideHours(t *testing.T) {
	svc := newTestAgenda(&fakeLister{}, at(10, 18, 5))
	view, err := svc.Day(context.Background(), at(10, 0, 0))
	require.NoError(t, err)
	assert.Nil(t, view.Now)
}

func TestDayViewUpstreamError(t *testing.T) {
	svc := newTestAgenda(&fakeLister{err: errors.New("timeout")}, at(10, 7, 0))
	_, err := svc.Day(context.Background(), at(10, 0, 0))
	assert.Error(t, err)
}

func TestWriteFeed(t *testing.T) {
	svc := newTestAgenda(&fakeLister{events: sampleEvents()}, at(10, 7, 0))

	var buf strings.Builder
	require.NoError(t, svc.WriteFeed(context.Background(), &buf, 2026, time.March))
	out := buf.String()
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "Mente Novedosa")
	assert.Contains(t, out, "SUMMARY:Cita: Ana")
	assert.Equal(t, 7, strings.Count(out, "BEGIN:VEVENT"))
}

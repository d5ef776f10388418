package agenda

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAgendaRouter(lister EventLister) http.Handler {
	h := NewHandler(newTestAgenda(lister, at(10, 10, 30)), nil)
	r := chi.NewRouter()
	r.Get("/api/calendar/events/{year}/{month}", h.GetMonthEvents)
	r.Get("/api/agenda/{year}/{month}", h.GetMonth)
	r.Get("/admin/agenda/day/{date}", h.GetDay)
	r.Get("/admin/agenda/{year}/{month}.ics", h.GetFeed)
	return r
}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandlerMonthEvents(t *testing.T) {
	router := newAgendaRouter(&fakeLister{events: sampleEvents()})

	rec := serve(router, "/api/calendar/events/2026/3")
	require.Equal(t, http.StatusOK, rec.Code)
	var events []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 5)
	assert.NotContains(t, events[0], "summary")
	assert.Contains(t, events[0], "all_day")
}

func TestHandlerMonthGrid(t *testing.T) {
	rec := serve(newAgendaRouter(&fakeLister{events: sampleEvents()}), "/api/agenda/2026/3")
	require.Equal(t, http.StatusOK, rec.Code)

	var grid MonthGrid
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grid))
	assert.Equal(t, "Marzo 2026", grid.Title)
	assert.Len(t, grid.Cells, 35)
}

func TestHandlerDay(t *testing.T) {
	router := newAgendaRouter(&fakeLister{events: sampleEvents()})

	rec := serve(router, "/admin/agenda/day/2026-03-10")
	require.Equal(t, http.StatusOK, rec.Code)
	var view DayView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 5, view.Total)

	assert.Equal(t, http.StatusBadRequest, serve(router, "/admin/agenda/day/10-03-2026").Code)
}

func TestHandlerFeed(t *testing.T) {
	rec := serve(newAgendaRouter(&fakeLister{events: sampleEvents()}), "/admin/agenda/2026/3.ics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "agenda-2026-03.ics")
	assert.Contains(t, rec.Body.String(), "BEGIN:VCALENDAR")
}

func TestHandlerErrors(t *testing.T) {
	router := newAgendaRouter(&fakeLister{err: errors.New("upstream")})

	assert.Equal(t, http.StatusBadRequest, serve(router, "/api/calendar/events/2026/13").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, "/api/agenda/abc/3").Code)
	assert.Equal(t, http.StatusBadGateway, serve(router, "/api/calendar/events/2026/3").Code)
	assert.Equal(t, http.StatusBadGateway, serve(router, "/admin/agenda/2026/3.ics").Code)
	assert.Equal(t, http.StatusOK, serve(router, "/api/agenda/2026/3").Code)
}

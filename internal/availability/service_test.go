package availability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-booking/internal/observability/metrics"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

type stubBusySource struct {
	busy       []Interval
	err        error
	start, end time.Time
	calls      int
}

func (s *stubBusySource) BusyIntervals(ctx context.Context, start, end time.Time) ([]Interval, error) {
	s.calls++
	s.start, s.end = start, end
	return s.busy, s.err
}

func newTestService(source BusySource) *Service {
	roster := MustParseRoster("09:00 AM", "10:00 AM", "11:00 AM")
	m := metrics.NewBookingMetrics(prometheus.NewRegistry())
	svc := NewService(source, roster, time.UTC, logging.Default(), m)
	return svc.WithClock(func() time.Time { return at(7, 0) })
}

func TestServiceForDayFiltersBusy(t *testing.T) {
	source := &stubBusySource{busy: []Interval{{Start: at(10, 0), End: at(11, 0)}}}
	svc := newTestService(source)

	result, err := svc.ForDay(context.Background(), at(12, 0))
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", result.Date)
	assert.Equal(t, []string{"09:00 AM", "11:00 AM"}, result.Slots)
	assert.False(t, result.FailOpen)
	assert.Equal(t, testDay, source.start)
	assert.Equal(t, testDay.AddDate(0, 0, 1), source.end)
}

func TestServiceForDayFailsOpen(t *testing.T) {
	source := &stubBusySource{err: errors.New("dial tcp: connection refused")}
	svc := newTestService(source)

	result, err := svc.ForDay(context.Background(), testDay)
	require.NoError(t, err)
	assert.True(t, result.FailOpen)
	assert.Equal(t, []string{"09:00 AM", "10:00 AM", "11:00 AM"}, result.Slots)
}

func TestServiceForDayWithoutSource(t *testing.T) {
	svc := newTestService(nil)

	result, err := svc.ForDay(context.Background(), testDay.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, "2026-03-13", result.Date)
	assert.Len(t, result.Slots, 3)
}

func TestServiceForDayRejectsPastDates(t *testing.T) {
	source := &stubBusySource{}
	svc := newTestService(source)

	_, err := svc.ForDay(context.Background(), testDay.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrPastDate)
	assert.Zero(t, source.calls)
}

func TestServiceParseDay(t *testing.T) {
	svc := newTestService(nil)

	day, err := svc.ParseDay("2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, testDay, day)

	_, err = svc.ParseDay("10/03/2026")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestHandlerGetAvailability(t *testing.T) {
	source := &stubBusySource{busy: []Interval{{Start: at(9, 0), End: at(10, 0)}}}
	handler := NewHandler(newTestService(source), logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/availability?date=2026-03-10", nil)
	rr := httptest.NewRecorder()
	handler.GetAvailability(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var result Result
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
	assert.Equal(t, []string{"10:00 AM", "11:00 AM"}, result.Slots)
}

func TestHandlerGetAvailabilityBadRequests(t *testing.T) {
	handler := NewHandler(newTestService(nil), nil)

	for _, target := range []string{
		"/api/availability",
		"/api/availability?date=tomorrow",
		"/api/availability?date=2026-03-01",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rr := httptest.NewRecorder()
		handler.GetAvailability(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code, target)
	}
}

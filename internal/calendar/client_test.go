package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBusyIntervalsSkipsFreeAndCancelled(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	events := []Event{
		{ID: "busy", Start: base, End: base.Add(time.Hour)},
		{ID: "free", Start: base, End: base.Add(time.Hour), Transparent: true},
		{ID: "gone", Start: base, End: base.Add(time.Hour), Status: "cancelled"},
		{ID: "zero", Start: base, End: base},
	}
	busy := BusyIntervals(events)
	assert.Len(t, busy, 1)
	assert.Equal(t, base, busy[0].Start)
}

package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return time.Date(2026, time.March, 10, hour, minute, 0, 0, time.UTC)
}

func labels(slots []Slot) []string {
	return Roster(slots).Labels()
}

func TestOverlapsHalfOpenBoundaries(t *testing.T) {
	slot := Interval{Start: at(9, 0), End: at(10, 0)}

	assert.False(t, Overlaps(slot, Interval{Start: at(10, 0), End: at(11, 0)}), "adjacent after")
	assert.False(t, Overlaps(slot, Interval{Start: at(8, 0), End: at(9, 0)}), "adjacent before")
	assert.True(t, Overlaps(slot, Interval{Start: at(9, 30), End: at(9, 45)}), "contained")
	assert.True(t, Overlaps(slot, Interval{Start: at(8, 30), End: at(9, 1)}), "straddles start")
	assert.True(t, Overlaps(slot, Interval{Start: at(7, 0), End: at(12, 0)}), "covers")
}

func TestAvailableEmptyBusyReturnsRoster(t *testing.T) {
	roster := MustParseRoster("08:00 AM", "09:00 AM", "01:00 PM", "05:00 PM")
	got := Available(testDay, roster, nil)
	assert.Equal(t, roster.Labels(), labels(got))
}

func TestAvailableExactMatchExcluded(t *testing.T) {
	roster := MustParseRoster("09:00 AM", "10:00 AM")
	got := Available(testDay, roster, []Interval{{Start: at(9, 0), End: at(10, 0)}})
	assert.Equal(t, []string{"10:00 AM"}, labels(got))
}

func TestAvailableScenario(t *testing.T) {
	roster := MustParseRoster("09:00 AM", "10:00 AM", "11:00 AM")
	got := Available(testDay, roster, []Interval{{Start: at(10, 0), End: at(11, 0)}})
	assert.Equal(t, []string{"09:00 AM", "11:00 AM"}, labels(got))
}

func TestAvailableKeepsRosterOrder(t *testing.T) {
	roster := MustParseRoster("03:00 PM", "09:00 AM", "11:00 AM")
	got := Available(testDay, roster, []Interval{{Start: at(11, 15), End: at(11, 30)}})
	assert.Equal(t, []string{"03:00 PM", "09:00 AM"}, labels(got))
}

func TestAvailableDisjointBusyKeepsSlot(t *testing.T) {
	roster := MustParseRoster("09:00 AM")
	busy := []Interval{
		{Start: at(7, 0), End: at(9, 0)},
		{Start: at(10, 0), End: at(12, 0)},
		{Start: at(9, 0).AddDate(0, 0, 1), End: at(10, 0).AddDate(0, 0, 1)},
	}
	assert.Equal(t, []string{"09:00 AM"}, labels(Available(testDay, roster, busy)))
}

func TestAvailableUsesDayLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Mexico_City")
	require.NoError(t, err)
	day := time.Date(2026, time.March, 10, 0, 0, 0, 0, loc)
	roster := MustParseRoster("09:00 AM", "10:00 AM")

	// 15:00 UTC is 09:00 in Mexico City (UTC-6).
	busy := []Interval{{Start: time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC), End: time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)}}
	assert.Equal(t, []string{"10:00 AM"}, labels(Available(day, roster, busy)))
}

func TestAvailableDeterministic(t *testing.T) {
	roster := MustParseRoster("09:00 AM", "10:00 AM", "11:00 AM", "12:00 PM")
	busy := []Interval{{Start: at(10, 30), End: at(11, 30)}}
	first := labels(Available(testDay, roster, busy))
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, labels(Available(testDay, roster, busy)))
	}
}

func TestDayBounds(t *testing.T) {
	b := DayBounds(at(15, 42))
	assert.Equal(t, testDay, b.Start)
	assert.Equal(t, testDay.AddDate(0, 0, 1), b.End)
}

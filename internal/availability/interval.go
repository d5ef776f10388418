package availability

import "time"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether two half-open intervals intersect.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// DayBounds returns [midnight, next midnight) of day in day's location.
func DayBounds(day time.Time) Interval {
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	return Interval{Start: start, End: start.AddDate(0, 0, 1)}
}

// Available returns the roster slots, in roster order, whose one-hour window
// on day overlaps none of busy.
func Available(day time.Time, roster Roster, busy []Interval) []Slot {
	out := make([]Slot, 0, len(roster))
	for _, slot := range roster {
		window := slot.Window(day)
		free := true
		for _, b := range busy {
			if Overlaps(window, b) {
				free = false
				break
			}
		}
		if free {
			out = append(out, slot)
		}
	}
	return out
}

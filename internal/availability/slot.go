package availability

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// SlotDuration is the window every slot occupies, starting at its time of day.
const SlotDuration = time.Hour

var slotLayouts = []string{"03:04 PM", "3:04 PM", "15:04"}

// Slot is a candidate appointment start time from the day's roster.
type Slot struct {
	Label  string
	Hour   int
	Minute int
}

// ParseSlot parses labels such as "09:00 AM" or "14:30".
func ParseSlot(label string) (Slot, error) {
	normalized := normalizeLabel(label)
	if normalized == "" {
		return Slot{}, errors.New("availability: empty slot label")
	}
	for _, layout := range slotLayouts {
		t, err := time.Parse(layout, normalized)
		if err == nil {
			return Slot{Label: strings.TrimSpace(label), Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return Slot{}, fmt.Errorf("availability: invalid slot label %q", label)
}

// Start returns the slot's start instant on day, in day's location.
func (s Slot) Start(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, s.Hour, s.Minute, 0, 0, day.Location())
}

// Window returns [start, start+1h) on day.
func (s Slot) Window(day time.Time) Interval {
	start := s.Start(day)
	return Interval{Start: start, End: start.Add(SlotDuration)}
}

func (s Slot) minuteOfDay() int {
	return s.Hour*60 + s.Minute
}

// Roster is the ordered, immutable list of candidate slots for a business day.
type Roster []Slot

// ParseRoster parses labels in their declared order. Duplicate times are rejected.
func ParseRoster(labels []string) (Roster, error) {
	if len(labels) == 0 {
		return nil, errors.New("availability: roster is empty")
	}
	seen := make(map[int]string, len(labels))
	roster := make(Roster, 0, len(labels))
	for _, label := range labels {
		slot, err := ParseSlot(label)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[slot.minuteOfDay()]; ok {
			return nil, fmt.Errorf("availability: slot %q duplicates %q", label, prev)
		}
		seen[slot.minuteOfDay()] = label
		roster = append(roster, slot)
	}
	return roster, nil
}

// MustParseRoster is ParseRoster for static rosters; it panics on error.
func MustParseRoster(labels ...string) Roster {
	r, err := ParseRoster(labels)
	if err != nil {
		panic(err)
	}
	return r
}

// Labels returns the slot labels in roster order.
func (r Roster) Labels() []string {
	out := make([]string, len(r))
	for i, s := range r {
		out[i] = s.Label
	}
	return out
}

// Lookup finds a slot by label, tolerating case and spacing differences.
func (r Roster) Lookup(label string) (Slot, bool) {
	want, err := ParseSlot(label)
	if err != nil {
		return Slot{}, false
	}
	for _, s := range r {
		if s.minuteOfDay() == want.minuteOfDay() {
			return s, true
		}
	}
	return Slot{}, false
}

func normalizeLabel(label string) string {
	return strings.ToUpper(strings.Join(strings.Fields(label), " "))
}

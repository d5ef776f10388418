package calendar

import (
	"io"
	"time"

	"github.com/soh335/ical"
)

// FeedMeta describes an iCalendar document.
type FeedMeta struct {
	ProductID   string
	Name        string
	Description string
	Location    *time.Location
	Stamp       time.Time
}

// EncodeICS writes events as an iCalendar (RFC 5545) document.
func EncodeICS(w io.Writer, meta FeedMeta, events []Event) error {
	loc := meta.Location
	if loc == nil {
		loc = time.UTC
	}
	stamp := meta.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}
	tz := loc.String()

	cal := ical.NewBasicVCalendar()
	cal.PRODID = meta.ProductID
	cal.VERSION = "2.0"
	cal.NAME = meta.Name
	cal.X_WR_CALNAME = meta.Name
	cal.DESCRIPTION = meta.Description
	cal.X_WR_CALDESC = meta.Description
	cal.TIMEZONE_ID = tz
	cal.X_WR_TIMEZONE = tz
	cal.CALSCALE = "GREGORIAN"
	cal.METHOD = "PUBLISH"

	for _, ev := range events {
		cal.VComponent = append(cal.VComponent, &ical.VEvent{
			UID:         ev.ID,
			DTSTAMP:     stamp.In(loc),
			DTSTART:     ev.Start.In(loc),
			DTEND:       ev.End.In(loc),
			SUMMARY:     ev.Summary,
			DESCRIPTION: ev.Description,
			TZID:        tz,
			AllDay:      ev.AllDay,
		})
	}
	return cal.Encode(w)
}

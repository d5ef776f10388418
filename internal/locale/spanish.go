// Package locale renders dates the way the clinic's Spanish-speaking
// patients read them (es-MX long form).
package locale

import (
	"fmt"
	"strings"
	"time"
)

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var weekdayNames = [...]string{
	"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado",
}

// WeekdayInitials is the header row of a Sunday-first month grid.
var WeekdayInitials = []string{"D", "L", "M", "M", "J", "V", "S"}

// MonthName returns the lowercase Spanish month name.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// MonthTitle returns e.g. "Enero 2026".
func MonthTitle(year int, m time.Month) string {
	name := MonthName(m)
	if name == "" {
		return ""
	}
	return fmt.Sprintf("%s%s %d", strings.ToUpper(name[:1]), name[1:], year)
}

// WeekdayName returns the lowercase Spanish weekday name.
func WeekdayName(d time.Weekday) string {
	return weekdayNames[d]
}

// LongDate formats t as "sábado, 4 de enero de 2026".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%s, %d de %s de %d", WeekdayName(t.Weekday()), t.Day(), MonthName(t.Month()), t.Year())
}

// Clock12 formats t as "09:00 AM".
func Clock12(t time.Time) string {
	return t.Format("03:04 PM")
}

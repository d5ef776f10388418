package agenda

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfman30/clinic-booking/internal/availability"
	"github.com/wolfman30/clinic-booking/internal/locale"
)

// DayCell is one square of the month grid.
type DayCell struct {
	Day     int    `json:"day"`
	Date    string `json:"date"`
	InMonth bool   `json:"in_month"`
	Today   bool   `json:"today"`
	Weekend bool   `json:"weekend"`
	Count   int    `json:"count"`
	Label   string `json:"label,omitempty"`
}

// MonthGrid is a Sunday-first month calendar padded to whole weeks.
type MonthGrid struct {
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	Title       string    `json:"title"`
	Weekdays    []string  `json:"weekdays"`
	Cells       []DayCell `json:"cells"`
	Unavailable bool      `json:"calendar_unavailable"`
}

// Month builds the grid with per-day appointment counts. An upstream failure
// yields a grid without counts and Unavailable set.
func (s *Service) Month(ctx context.Context, year int, month time.Month) (MonthGrid, error) {
	first, next, err := s.monthBounds(year, month)
	if err != nil {
		return MonthGrid{}, err
	}
	grid := MonthGrid{
		Year:     year,
		Month:    int(month),
		Title:    locale.MonthTitle(year, month),
		Weekdays: locale.WeekdayInitials,
	}

	counts := make(map[int]int)
	events, err := s.list(ctx, first, next)
	if err != nil {
		s.logger.Warn("agenda month without calendar data", "year", year, "month", int(month), "error", err)
		grid.Unavailable = true
	}
	for _, ev := range events {
		if ev.Status == "cancelled" {
			continue
		}
		start := ev.Start.In(s.cfg.Location)
		if start.Year() == year && start.Month() == month {
			counts[start.Day()]++
		}
	}

	today := availability.DayBounds(s.now().In(s.cfg.Location)).Start
	lead := int(first.Weekday())
	cursor := first.AddDate(0, 0, -lead)
	daysInMonth := next.AddDate(0, 0, -1).Day()
	total := (lead + daysInMonth + 6) / 7 * 7

	for i := 0; i < total; i++ {
		day := cursor.AddDate(0, 0, i)
		cell := DayCell{
			Day:     day.Day(),
			Date:    day.Format(availability.DateLayout),
			InMonth: day.Month() == month,
			Weekend: day.Weekday() == time.Sunday || day.Weekday() == time.Saturday,
		}
		if cell.InMonth {
			cell.Today = day.Equal(today)
			cell.Count = counts[day.Day()]
			cell.Label = countLabel(cell.Count)
		}
		grid.Cells = append(grid.Cells, cell)
	}
	return grid, nil
}

func countLabel(n int) string {
	if n == 0 {
		return "Disponible"
	}
	return fmt.Sprintf("%d cita(s) programada(s)", n)
}

package locale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLongDate(t *testing.T) {
	day := time.Date(2026, time.January, 3, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "sábado, 3 de enero de 2026", LongDate(day))

	day = time.Date(2025, time.September, 17, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "miércoles, 17 de septiembre de 2025", LongDate(day))
}

func TestMonthTitle(t *testing.T) {
	assert.Equal(t, "Enero 2026", MonthTitle(2026, time.January))
	assert.Equal(t, "Diciembre 2025", MonthTitle(2025, time.December))
	assert.Equal(t, "", MonthTitle(2025, time.Month(13)))
}

func TestClock12(t *testing.T) {
	assert.Equal(t, "09:00 AM", Clock12(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, "05:30 PM", Clock12(time.Date(2026, 1, 1, 17, 30, 0, 0, time.UTC)))
}

package calendar

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeICS(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	err := EncodeICS(&buf, FeedMeta{
		ProductID: "-//Mente Novedosa//Agenda//ES",
		Name:      "Agenda",
		Stamp:     start,
	}, []Event{{ID: "abc@clinic", Summary: "Cita: Ana", Start: start, End: start.Add(time.Hour)}})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "BEGIN:VEVENT")
	assert.Contains(t, out, "UID:abc@clinic")
	assert.Contains(t, out, "SUMMARY:Cita: Ana")
	assert.Contains(t, out, "END:VCALENDAR")
}

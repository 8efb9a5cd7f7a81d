package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motorsportcal/internal/schedule"
)

func feed(events ...string) []byte {
	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//EN\r\n")
	for _, ev := range events {
		b.WriteString("BEGIN:VEVENT\r\n")
		b.WriteString(ev)
		b.WriteString("END:VEVENT\r\n")
	}
	b.WriteString("END:VCALENDAR\r\n")
	return []byte(b.String())
}

func TestParseSessionsExtractsFields(t *testing.T) {
	body := feed(
		"UID:1\r\nSUMMARY:Bahrain Grand Prix - Race\r\nLOCATION:Bahrain\r\n" +
			"DTSTART:20240302T150000Z\r\nDTEND:20240302T170000Z\r\n",
	)

	sessions, err := ParseSessions("formula1", body, 2024)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	got := sessions[0]
	assert.Equal(t, "Bahrain Grand Prix - Race", got.Summary)
	assert.Equal(t, "Bahrain", got.Location)
	assert.Equal(t, time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC), got.Start.UTC())
	assert.Equal(t, time.Date(2024, 3, 2, 17, 0, 0, 0, time.UTC), got.End.UTC())
}

func TestParseSessionsFiltersByYear(t *testing.T) {
	body := feed(
		"UID:1\r\nSUMMARY:Old Race\r\nDTSTART:20231105T140000Z\r\nDTEND:20231105T160000Z\r\n",
		"UID:2\r\nSUMMARY:New Race\r\nDTSTART:20240302T150000Z\r\nDTEND:20240302T170000Z\r\n",
	)

	sessions, err := ParseSessions("formula1", body, 2024)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "New Race", sessions[0].Summary)
}

func TestParseSessionsSkipsIncompleteEvents(t *testing.T) {
	body := feed(
		"UID:1\r\nDTSTART:20240302T150000Z\r\nDTEND:20240302T170000Z\r\n",
		"UID:2\r\nSUMMARY:No Start\r\nDTEND:20240302T170000Z\r\n",
		"UID:3\r\nSUMMARY:Complete\r\nDTSTART:20240302T150000Z\r\nDTEND:20240302T170000Z\r\n",
	)

	sessions, err := ParseSessions("formula1", body, 2024)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Complete", sessions[0].Summary)
}

func TestParseSessionsMalformedCalendar(t *testing.T) {
	_, err := ParseSessions("formula1", []byte("this is not a calendar"), 2024)

	var malformed *schedule.MalformedSourceError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "formula1", malformed.Source)
}

func TestParseSessionsExpandsRecurrence(t *testing.T) {
	body := feed(
		"UID:1\r\nSUMMARY:Weekly Session\r\nRRULE:FREQ=WEEKLY;COUNT=3\r\n" +
			"DTSTART:20240603T100000Z\r\nDTEND:20240603T110000Z\r\n",
	)

	sessions, err := ParseSessions("wec", body, 2024)
	require.NoError(t, err)
	require.Len(t, sessions, 3)

	for i, s := range sessions {
		wantStart := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC).Add(time.Duration(i) * 7 * 24 * time.Hour)
		assert.Equal(t, wantStart, s.Start.UTC())
		assert.Equal(t, time.Hour, s.End.Sub(s.Start))
	}
}

func TestParseSessionsRecurrenceClippedToYear(t *testing.T) {
	// Weekly from late December; only the first occurrence falls in 2024.
	body := feed(
		"UID:1\r\nSUMMARY:Year Boundary\r\nRRULE:FREQ=WEEKLY;COUNT=4\r\n" +
			"DTSTART:20241230T100000Z\r\nDTEND:20241230T110000Z\r\n",
	)

	sessions, err := ParseSessions("wec", body, 2024)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 2024, sessions[0].Start.Year())
}

func TestParseSessionsLFOnlyInput(t *testing.T) {
	crlf := feed(
		"UID:1\r\nSUMMARY:Race\r\nDTSTART:20240302T150000Z\r\nDTEND:20240302T170000Z\r\n",
	)
	lf := []byte(strings.ReplaceAll(string(crlf), "\r\n", "\n"))

	sessions, err := ParseSessions("formula1", lf, 2024)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

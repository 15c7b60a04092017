package calendar

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/schedule"
)

func strPtr(s string) *string { return &s }

func newCodec() *Codec {
	return NewCodec(&core.Config{AppName: "Chuo"})
}

func TestCodec_roundTrip(t *testing.T) {
	updated := time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC)
	events := []schedule.Event{
		{
			ID:          "a",
			Title:       "Dean's seminar",
			Description: "Room change, bring ID",
			Venue:       "Hall1",
			Category:    schedule.CategorySeminar,
			Status:      schedule.StatusScheduled,
			StartDate:   "2024-03-01",
			EndDate:     "2024-03-01",
			StartTime:   strPtr("10:00"),
			EndTime:     strPtr("11:30"),
			UpdatedAt:   updated,
		},
		{
			ID:         "b",
			Title:      "Book fair",
			Venue:      "Library",
			Category:   schedule.CategoryOther,
			Status:     schedule.StatusCancelled,
			StartDate:  "2024-03-02",
			EndDate:    "2024-03-03",
			Recurrence: "FREQ=WEEKLY;COUNT=3",
			UpdatedAt:  updated,
		},
	}

	codec := newCodec()
	var buf bytes.Buffer
	require.NoError(t, codec.Encode(&buf, events))

	out := buf.String()
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "PRODID:-//Chuo//Events//EN")
	assert.Contains(t, out, "DTSTART:20240301T100000Z")
	assert.Contains(t, out, "DTEND:20240301T113000Z")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20240302")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20240304", "all-day DTEND is exclusive")
	assert.Contains(t, out, "RRULE:FREQ=WEEKLY;COUNT=3")
	assert.Contains(t, out, "STATUS:CANCELLED")

	decoded, err := codec.Decode(&buf)
	require.NoError(t, err)
	want := []schedule.NewEvent{
		{
			Title:       "Dean's seminar",
			Description: "Room change, bring ID",
			Venue:       "Hall1",
			Category:    schedule.CategorySeminar,
			Status:      schedule.StatusScheduled,
			StartDate:   "2024-03-01",
			EndDate:     "2024-03-01",
			StartTime:   strPtr("10:00"),
			EndTime:     strPtr("11:30"),
		},
		{
			Title:      "Book fair",
			Venue:      "Library",
			Category:   schedule.CategoryOther,
			Status:     schedule.StatusCancelled,
			StartDate:  "2024-03-02",
			EndDate:    "2024-03-03",
			Recurrence: "FREQ=WEEKLY;COUNT=3",
		},
	}
	assert.Equal(t, want, decoded)
}

func TestCodec_Encode_empty(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, ErrNoEvents, newCodec().Encode(&buf, nil))
	assert.Zero(t, buf.Len())
}

func TestCodec_Encode_occurrence(t *testing.T) {
	occ := schedule.Event{
		ID:         "a",
		Title:      "Staff meeting",
		Venue:      "Boardroom",
		StartDate:  "2024-03-11",
		EndDate:    "2024-03-11",
		StartTime:  strPtr("09:00"),
		EndTime:    strPtr("10:00"),
		Recurrence: "FREQ=WEEKLY",
		Occurrence: "2024-03-11",
	}
	var buf bytes.Buffer
	require.NoError(t, newCodec().Encode(&buf, []schedule.Event{occ}))
	assert.Contains(t, buf.String(), "UID:a-2024-03-11")
	assert.NotContains(t, buf.String(), "RRULE", "occurrences are exported as single events")
}

func TestCodec_Decode(t *testing.T) {
	ics := strings.ReplaceAll(`BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Other//Calendar//EN
BEGIN:VEVENT
UID:1
DTSTAMP:20240101T000000Z
SUMMARY:Sports day
LOCATION:Field
CATEGORIES:SPORTS,OUTDOOR
DTSTART;VALUE=DATE:20240315
DTEND;VALUE=DATE:20240316
END:VEVENT
BEGIN:VEVENT
UID:2
DTSTAMP:20240101T000000Z
SUMMARY:Draft talk
LOCATION:Hall2
STATUS:TENTATIVE
CATEGORIES:keynote
DTSTART:20240316T140000Z
END:VEVENT
BEGIN:VEVENT
UID:3
DTSTAMP:20240101T000000Z
SUMMARY:No start
LOCATION:Hall2
END:VEVENT
BEGIN:VTODO
UID:4
DTSTAMP:20240101T000000Z
SUMMARY:Not an event
END:VTODO
END:VCALENDAR
`, "\n", "\r\n")

	events, err := newCodec().Decode(strings.NewReader(ics))
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, schedule.NewEvent{
		Title:     "Sports day",
		Venue:     "Field",
		Category:  schedule.CategorySports,
		Status:    schedule.StatusScheduled,
		StartDate: "2024-03-15",
		EndDate:   "2024-03-15",
	}, events[0])

	assert.Equal(t, schedule.NewEvent{
		Title:     "Draft talk",
		Venue:     "Hall2",
		Category:  schedule.CategoryOther,
		Status:    schedule.StatusDraft,
		StartDate: "2024-03-16",
		EndDate:   "2024-03-16",
		StartTime: strPtr("14:00"),
	}, events[1])
}

func TestCodec_Decode_invalid(t *testing.T) {
	_, err := newCodec().Decode(strings.NewReader("BEGIN:VCALENDAR\r\nthis is not ical\r\n"))
	assert.Error(t, err)
}

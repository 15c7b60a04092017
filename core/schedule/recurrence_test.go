package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(date string) time.Time {
	t, _ := time.Parse("2006-01-02", date)
	return t
}

func TestEvent_Occurrences(t *testing.T) {
	weekly := item("W", "Hall1", "2024-03-04", "2024-03-04", "10:00", "11:00")
	weekly.Recurrence = "FREQ=WEEKLY;COUNT=4"

	t.Run("weekly rule", func(t *testing.T) {
		got, err := weekly.Occurrences(day("2024-03-01"), day("2024-04-30"))
		require.NoError(t, err)

		dates := make([]string, 0, len(got))
		for _, occ := range got {
			dates = append(dates, occ.StartDate)
			assert.Equal(t, occ.StartDate, occ.EndDate)
			assert.Equal(t, occ.StartDate, occ.Occurrence)
			assert.Equal(t, "W", occ.ID)
			assert.Equal(t, "10:00", *occ.StartTime)
		}
		assert.Equal(t, []string{"2024-03-04", "2024-03-11", "2024-03-18", "2024-03-25"}, dates)
	})

	t.Run("window cuts occurrences", func(t *testing.T) {
		got, err := weekly.Occurrences(day("2024-03-10"), day("2024-03-20"))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "2024-03-11", got[0].StartDate)
		assert.Equal(t, "2024-03-18", got[1].StartDate)
	})

	t.Run("multi-day span is kept", func(t *testing.T) {
		evt := item("M", "Hall1", "2024-03-01", "2024-03-02", "", "")
		evt.Recurrence = "RRULE:FREQ=MONTHLY;COUNT=2"
		got, err := evt.Occurrences(day("2024-01-01"), day("2024-12-31"))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "2024-04-01", got[1].StartDate)
		assert.Equal(t, "2024-04-02", got[1].EndDate)
	})

	t.Run("non-recurring", func(t *testing.T) {
		evt := item("N", "Hall1", "2024-03-01", "", "10:00", "11:00")
		got, err := evt.Occurrences(day("2024-03-01"), day("2024-03-02"))
		require.NoError(t, err)
		assert.Equal(t, []Event{evt}, got)

		got, err = evt.Occurrences(day("2024-03-02"), day("2024-03-03"))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("invalid rule", func(t *testing.T) {
		evt := weekly
		evt.Recurrence = "FREQ=SOMETIMES"
		_, err := evt.Occurrences(day("2024-03-01"), day("2024-04-30"))
		assert.Error(t, err)
	})

	t.Run("invalid start", func(t *testing.T) {
		evt := weekly
		evt.StartDate = "someday"
		_, err := evt.Occurrences(day("2024-03-01"), day("2024-04-30"))
		assert.Equal(t, errInvalidStart, err)
	})
}

func TestEndOfDay(t *testing.T) {
	end, ok := endOfDay("2024-03-01")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC), end)

	_, ok = endOfDay("")
	assert.False(t, ok)
}

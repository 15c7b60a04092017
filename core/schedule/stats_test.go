package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	withStatus := func(evt Event, status, category string, att *Attendance) Event {
		evt.Status = status
		evt.Category = category
		evt.Attendance = att
		return evt
	}
	events := []Event{
		withStatus(item("A", "Hall1", "2024-03-01", "", "", ""), StatusCompleted, CategorySeminar, &Attendance{Registered: 40, Attended: 30}),
		withStatus(item("B", "Hall1", "2024-03-10", "", "", ""), StatusScheduled, CategorySeminar, nil),
		withStatus(item("C", "Hall2", "2024-03-05", "", "", ""), StatusDraft, CategorySports, nil),
		withStatus(item("D", "Hall2", "2024-03-05", "", "", ""), StatusCancelled, CategoryOther, nil),
		withStatus(item("E", "Hall2", "2024-02-01", "", "", ""), StatusCompleted, CategoryWorkshop, &Attendance{Registered: 20, Attended: 15}),
	}

	got := ComputeStats(events, "2024-03-05")
	assert.Equal(t, 5, got.Total)
	assert.Equal(t, 2, got.Upcoming)
	assert.Equal(t, map[string]int{StatusCompleted: 2, StatusScheduled: 1, StatusDraft: 1, StatusCancelled: 1}, got.ByStatus)
	assert.Equal(t, map[string]int{CategorySeminar: 2, CategorySports: 1, CategoryOther: 1, CategoryWorkshop: 1}, got.ByCategory)
	assert.Equal(t, 60, got.Registered)
	assert.Equal(t, 45, got.Attended)
	assert.Equal(t, 75.0, got.AttendanceRate)
}

func TestComputeStats_empty(t *testing.T) {
	got := ComputeStats(nil, "2024-03-05")
	assert.Equal(t, Stats{ByStatus: map[string]int{}, ByCategory: map[string]int{}}, got)
}

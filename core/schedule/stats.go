package schedule

import "math"

type Stats struct {
	Total          int            `json:"total"`
	Upcoming       int            `json:"upcoming"`
	ByStatus       map[string]int `json:"by_status"`
	ByCategory     map[string]int `json:"by_category"`
	Registered     int            `json:"registered"`
	Attended       int            `json:"attended"`
	AttendanceRate float64        `json:"attendance_rate"` // percent, 2 decimals
}

// ComputeStats aggregates events; today (YYYY-MM-DD) decides what is upcoming.
func ComputeStats(events []Event, today string) Stats {
	stats := Stats{
		Total:      len(events),
		ByStatus:   make(map[string]int),
		ByCategory: make(map[string]int),
	}
	for _, evt := range events {
		stats.ByStatus[evt.Status]++
		stats.ByCategory[evt.Category]++

		if evt.DateKey() >= today && (evt.Status == StatusScheduled || evt.Status == StatusDraft) {
			stats.Upcoming++
		}
		if evt.Attendance != nil {
			stats.Registered += evt.Attendance.Registered
			stats.Attended += evt.Attendance.Attended
		}
	}
	if stats.Registered > 0 {
		rate := float64(stats.Attended) / float64(stats.Registered) * 100
		stats.AttendanceRate = math.Round(rate*100) / 100
	}
	return stats
}

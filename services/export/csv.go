package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core/scholarship"
	"github.com/trezcool/chuo/core/schedule"
)

// ContentType of every CSV export.
const ContentType = "text/csv; charset=utf-8"

var (
	eventHeader = []string{
		"id", "title", "venue", "category", "status", "organizer", "capacity",
		"start_date", "end_date", "start_time", "end_time", "recurrence",
		"registered", "attended", "created_at",
	}
	scholarshipHeader = []string{
		"id", "student_id", "student_name", "program", "kind", "category", "amount",
		"academic_year", "status", "awarded_on", "remarks", "created_at",
	}
	conflictHeader = []string{
		"date", "venue", "event_a_id", "event_a_title", "event_a_time",
		"event_b_id", "event_b_title", "event_b_time",
	}
)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func writeAll(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "writing header")
	}
	if err := writer.WriteAll(rows); err != nil {
		return errors.Wrap(err, "writing rows")
	}
	return nil
}

// Events writes one row per event; attendance columns stay blank until recorded.
func Events(w io.Writer, events []schedule.Event) error {
	rows := make([][]string, 0, len(events))
	for _, evt := range events {
		var registered, attended string
		if evt.Attendance != nil {
			registered = strconv.Itoa(evt.Attendance.Registered)
			attended = strconv.Itoa(evt.Attendance.Attended)
		}
		rows = append(rows, []string{
			evt.ID, evt.Title, evt.Venue, evt.Category, evt.Status, evt.Organizer,
			strconv.Itoa(evt.Capacity), evt.StartDate, evt.EndDate,
			deref(evt.StartTime), deref(evt.EndTime), evt.Recurrence,
			registered, attended, evt.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return writeAll(w, eventHeader, rows)
}

// Scholarships writes one row per record. Amounts are in minor units.
func Scholarships(w io.Writer, records []scholarship.Scholarship) error {
	rows := make([][]string, 0, len(records))
	for _, s := range records {
		rows = append(rows, []string{
			s.ID, s.StudentID, s.StudentName, s.Program, s.Kind, s.Category,
			strconv.FormatInt(s.Amount, 10), s.AcademicYear, s.Status, deref(s.AwardedOn),
			s.Remarks, s.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return writeAll(w, scholarshipHeader, rows)
}

// Conflicts writes one row per clashing pair.
func Conflicts(w io.Writer, conflicts []schedule.Conflict) error {
	rows := make([][]string, 0, len(conflicts))
	for _, c := range conflicts {
		rows = append(rows, []string{
			c.Date, c.Venue,
			c.A.ID, c.A.Title, schedule.Span(c.A),
			c.B.ID, c.B.Title, schedule.Span(c.B),
		})
	}
	return writeAll(w, conflictHeader, rows)
}

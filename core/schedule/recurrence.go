package schedule

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/teambition/rrule-go"

	"github.com/trezcool/chuo/core"
)

var errInvalidStart = errors.New("event start is not a valid date and time")

func parseRRule(rule string) (*rrule.RRule, error) {
	return rrule.StrToRRule(strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:"))
}

// Occurrences expands a recurring event into dated copies whose start falls within
// [from, to]. Copies keep the event's times and day span; their Occurrence is set to
// their start date. A non-recurring event is returned as is when it starts in the window.
func (e Event) Occurrences(from, to time.Time) ([]Event, error) {
	start, ok := e.Start()
	if !ok {
		return nil, errInvalidStart
	}
	if !e.IsRecurring() {
		if start.Before(from) || start.After(to) {
			return nil, nil
		}
		return []Event{e}, nil
	}

	r, err := parseRRule(e.Recurrence)
	if err != nil {
		return nil, errors.Wrap(err, "parsing recurrence rule")
	}
	r.DTStart(start)

	var span int // days between start and end dates
	if endDate, err := time.Parse(core.DateLayout, datePart(e.EndDate)); err == nil {
		span = int(endDate.Sub(time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)).Hours() / 24)
	}

	times := r.Between(from, to, true)
	occurrences := make([]Event, 0, len(times))
	for _, t := range times {
		occ := e
		occ.StartDate = t.Format(core.DateLayout)
		occ.EndDate = t.AddDate(0, 0, span).Format(core.DateLayout)
		occ.Occurrence = occ.StartDate
		occurrences = append(occurrences, occ)
	}
	return occurrences, nil
}

// startOfDay parses a YYYY-MM-DD date as midnight UTC.
func startOfDay(date string) (time.Time, bool) {
	t, err := time.Parse(core.DateLayout, date)
	return t, err == nil
}

// endOfDay parses a YYYY-MM-DD date as its last second, UTC.
func endOfDay(date string) (time.Time, bool) {
	t, ok := startOfDay(date)
	if !ok {
		return t, false
	}
	return t.Add(24*time.Hour - time.Second), true
}

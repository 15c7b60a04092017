package schedule

import "time"

// Conflict is a pair of events held at the same venue whose times overlap.
type Conflict struct {
	A     Event  `json:"event_a"`
	B     Event  `json:"event_b"`
	Date  string `json:"date"`
	Venue string `json:"venue"`
}

// Involves reports whether the event with the given id takes part in the clash.
func (c Conflict) Involves(id string) bool {
	return c.A.ID == id || c.B.ID == id
}

type bounds struct {
	start, end time.Time
	ok         bool
}

func boundsOf(e Event) bounds {
	start, okStart := e.Start()
	end, okEnd := e.End()
	return bounds{start: start, end: end, ok: okStart && okEnd}
}

// overlaps is the half-open interval test: touching endpoints do not overlap.
// Unparsable bounds never overlap anything.
func (b bounds) overlaps(o bounds) bool {
	if !b.ok || !o.ok {
		return false
	}
	return b.start.Before(o.end) && o.start.Before(b.end)
}

// DetectConflicts returns every pair of events sharing a start date and a venue
// whose [start, end) intervals overlap.
//
// Events are only compared against events starting on the same date, so a multi-day
// event is never checked against events starting on its later days.
// Each pair is reported once, in input order; an event taking part in several clashes
// is reported once per clash. The function holds no state and never fails.
func DetectConflicts(events []Event) []Conflict {
	conflicts := make([]Conflict, 0)

	var dates []string
	groups := make(map[string][]int)
	for i, evt := range events {
		key := evt.DateKey()
		if _, ok := groups[key]; !ok {
			dates = append(dates, key)
		}
		groups[key] = append(groups[key], i)
	}

	bnds := make([]bounds, len(events))
	for i, evt := range events {
		bnds[i] = boundsOf(evt)
	}

	for _, date := range dates {
		idxs := groups[date]
		for x := 0; x < len(idxs); x++ {
			i := idxs[x]
			for y := x + 1; y < len(idxs); y++ {
				j := idxs[y]
				if events[i].Venue != events[j].Venue {
					continue
				}
				if bnds[i].overlaps(bnds[j]) {
					conflicts = append(conflicts, Conflict{
						A:     events[i],
						B:     events[j],
						Date:  date,
						Venue: events[i].Venue,
					})
				}
			}
		}
	}
	return conflicts
}

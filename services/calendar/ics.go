package calendar

import (
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/schedule"
)

// ErrNoEvents is returned when encoding an empty calendar, which iCalendar does not allow.
var ErrNoEvents = errors.New("no events to export")

// iCalendar STATUS values
const (
	statusTentative = "TENTATIVE"
	statusConfirmed = "CONFIRMED"
	statusCancelled = "CANCELLED"
)

// Codec converts events to and from iCalendar streams.
// Clock times are read and written in Location.
type Codec struct {
	ProdID   string
	Location *time.Location
}

func NewCodec(conf *core.Config) *Codec {
	return &Codec{
		ProdID:   "-//" + conf.AppName + "//Events//EN",
		Location: time.UTC,
	}
}

func (c *Codec) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// Encode writes events as a single VCALENDAR. Events without times are exported as all-day events.
func (c *Codec) Encode(w io.Writer, events []schedule.Event) error {
	if len(events) == 0 {
		return ErrNoEvents
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, c.ProdID)
	cal.Props.SetText(ical.PropVersion, "2.0")

	for _, evt := range events {
		comp, err := c.toComponent(evt)
		if err != nil {
			return errors.Wrapf(err, "encoding event %s", evt.ID)
		}
		cal.Children = append(cal.Children, comp)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return errors.Wrap(err, "writing calendar")
	}
	return nil
}

func (c *Codec) toComponent(evt schedule.Event) (*ical.Component, error) {
	loc := c.loc()
	stamp := evt.UpdatedAt
	if stamp.IsZero() {
		stamp = time.Now()
	}

	ie := ical.NewEvent()
	uid := evt.ID
	if evt.Occurrence != "" {
		uid += "-" + evt.Occurrence
	}
	ie.Props.SetText(ical.PropUID, uid)
	ie.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	ie.Props.SetText(ical.PropSummary, evt.Title)
	ie.Props.SetText(ical.PropLocation, evt.Venue)
	if evt.Description != "" {
		ie.Props.SetText(ical.PropDescription, evt.Description)
	}
	if evt.Category != "" {
		ie.Props.SetText(ical.PropCategories, evt.Category)
	}
	ie.Props.SetText(ical.PropStatus, toICalStatus(evt.Status))

	start, ok := evt.Start()
	if !ok {
		return nil, errors.New("invalid start date or time")
	}
	end, ok := evt.End()
	if !ok {
		return nil, errors.New("invalid end date or time")
	}
	if evt.StartTime == nil && evt.EndTime == nil {
		ie.Props.SetDate(ical.PropDateTimeStart, dateIn(start, loc))
		// DTEND of an all-day event is exclusive
		ie.Props.SetDate(ical.PropDateTimeEnd, dateIn(end, loc).AddDate(0, 0, 1))
	} else {
		ie.Props.SetDateTime(ical.PropDateTimeStart, inLocation(start, loc))
		ie.Props.SetDateTime(ical.PropDateTimeEnd, inLocation(end, loc))
	}

	if evt.Recurrence != "" && evt.Occurrence == "" {
		prop := ical.NewProp(ical.PropRecurrenceRule)
		prop.Value = evt.Recurrence
		ie.Props.Set(prop)
	}
	return ie.Component, nil
}

func dateIn(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// inLocation reinterprets the wall clock of t (parsed as UTC) in loc.
func inLocation(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc)
}

// Decode reads every VEVENT of every VCALENDAR in r. Events without DTSTART are skipped.
// The returned payloads are cleaned but not validated.
func (c *Codec) Decode(r io.Reader) ([]schedule.NewEvent, error) {
	events := make([]schedule.NewEvent, 0)
	dec := ical.NewDecoder(r)
	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading calendar")
		}

		for _, comp := range cal.Children {
			if comp.Name != ical.CompEvent {
				continue
			}
			ne, ok, err := c.fromComponent(comp)
			if err != nil {
				return nil, err
			}
			if ok {
				events = append(events, ne)
			}
		}
	}
	return events, nil
}

func (c *Codec) fromComponent(comp *ical.Component) (schedule.NewEvent, bool, error) {
	loc := c.loc()
	startProp := comp.Props.Get(ical.PropDateTimeStart)
	if startProp == nil {
		return schedule.NewEvent{}, false, nil
	}

	var ne schedule.NewEvent
	var err error
	if ne.Title, err = comp.Props.Text(ical.PropSummary); err != nil {
		return ne, false, errors.Wrap(err, "reading SUMMARY")
	}
	if ne.Venue, err = comp.Props.Text(ical.PropLocation); err != nil {
		return ne, false, errors.Wrap(err, "reading LOCATION")
	}
	if ne.Description, err = comp.Props.Text(ical.PropDescription); err != nil {
		return ne, false, errors.Wrap(err, "reading DESCRIPTION")
	}
	if cats, err := comp.Props.Text(ical.PropCategories); err == nil && cats != "" {
		category := strings.ToLower(strings.TrimSpace(strings.Split(cats, ",")[0]))
		if contains(schedule.Categories, category) {
			ne.Category = category
		}
	}
	if status, err := comp.Props.Text(ical.PropStatus); err == nil {
		ne.Status = fromICalStatus(status)
	}
	if rule := comp.Props.Get(ical.PropRecurrenceRule); rule != nil {
		ne.Recurrence = rule.Value
	}

	start, err := startProp.DateTime(loc)
	if err != nil {
		return ne, false, errors.Wrap(err, "reading DTSTART")
	}
	start = start.In(loc)
	allDay := startProp.ValueType() == ical.ValueDate
	ne.StartDate = start.Format(core.DateLayout)
	if !allDay {
		st := start.Format(core.ClockLayout)
		ne.StartTime = &st
	}

	if endProp := comp.Props.Get(ical.PropDateTimeEnd); endProp != nil {
		end, err := endProp.DateTime(loc)
		if err != nil {
			return ne, false, errors.Wrap(err, "reading DTEND")
		}
		end = end.In(loc)
		if allDay {
			if end.After(start) {
				end = end.AddDate(0, 0, -1)
			}
			ne.EndDate = end.Format(core.DateLayout)
		} else {
			ne.EndDate = end.Format(core.DateLayout)
			et := end.Format(core.ClockLayout)
			ne.EndTime = &et
		}
	}

	ne.Clean()
	return ne, true, nil
}

func toICalStatus(status string) string {
	switch status {
	case schedule.StatusCancelled:
		return statusCancelled
	case schedule.StatusDraft:
		return statusTentative
	default:
		return statusConfirmed
	}
}

func fromICalStatus(status string) string {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case statusCancelled:
		return schedule.StatusCancelled
	case statusTentative:
		return schedule.StatusDraft
	default:
		return schedule.StatusScheduled
	}
}

func contains(values []string, val string) bool {
	for _, v := range values {
		if v == val {
			return true
		}
	}
	return false
}

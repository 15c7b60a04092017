package schedule

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/chuo/core"
)

// Full-day bounds substituted for missing clock times.
const (
	DayStart = "00:00"
	DayEnd   = "23:59"
)

// Statuses
const (
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Categories
const (
	CategorySeminar    = "seminar"
	CategoryWorkshop   = "workshop"
	CategoryConference = "conference"
	CategoryCultural   = "cultural"
	CategorySports     = "sports"
	CategoryMeeting    = "meeting"
	CategoryOther      = "other"
)

var (
	Statuses   = []string{StatusDraft, StatusScheduled, StatusCompleted, StatusCancelled}
	Categories = []string{
		CategorySeminar, CategoryWorkshop, CategoryConference, CategoryCultural,
		CategorySports, CategoryMeeting, CategoryOther,
	}

	compositeLayout = core.DateLayout + " " + core.ClockLayout
)

// Attendance is only known once an event has been held.
type Attendance struct {
	Registered int `json:"registered" validate:"gte=0"`
	Attended   int `json:"attended" validate:"gte=0"`
}

// Event is a time-bounded item held at a venue.
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Venue       string      `json:"venue"`
	Category    string      `json:"category,omitempty"`
	Status      string      `json:"status,omitempty"`
	Organizer   string      `json:"organizer,omitempty"`
	Capacity    int         `json:"capacity,omitempty"`
	StartDate   string      `json:"start_date"`
	EndDate     string      `json:"end_date,omitempty"`
	StartTime   *string     `json:"start_time,omitempty"` // HH:MM; nil means 00:00
	EndTime     *string     `json:"end_time,omitempty"`   // HH:MM; nil means 23:59
	Recurrence  string      `json:"recurrence,omitempty"` // RFC 5545 RRULE
	Occurrence  string      `json:"occurrence,omitempty"` // set on expanded occurrences only
	Attendance  *Attendance `json:"attendance,omitempty"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at"` // UTC
}

// datePart returns the date-only part of an ISO date or datetime string.
func datePart(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= len(core.DateLayout) && core.IsDate(s[:len(core.DateLayout)]) {
		return s[:len(core.DateLayout)]
	}
	return s
}

// normalizeClock zero-pads valid clock times ("9:05" -> "09:05") so they compare as strings.
func normalizeClock(t *string) *string {
	if t == nil {
		return nil
	}
	if parsed, err := time.Parse(core.ClockLayout, *t); err == nil {
		c := parsed.Format(core.ClockLayout)
		return &c
	}
	return t
}

func clockOr(t *string, def string) string {
	if t == nil {
		return def
	}
	if c := strings.TrimSpace(*t); c != "" {
		return c
	}
	return def
}

// DateKey is the calendar date the event is grouped under: the date part of StartDate.
func (e Event) DateKey() string {
	return datePart(e.StartDate)
}

// Start composes StartDate and StartTime. ok is false when they do not form a valid instant.
func (e Event) Start() (time.Time, bool) {
	t, err := time.Parse(compositeLayout, e.DateKey()+" "+clockOr(e.StartTime, DayStart))
	return t, err == nil
}

// End composes EndDate (StartDate when blank) and EndTime.
func (e Event) End() (time.Time, bool) {
	date := datePart(e.EndDate)
	if date == "" {
		date = e.DateKey()
	}
	t, err := time.Parse(compositeLayout, date+" "+clockOr(e.EndTime, DayEnd))
	return t, err == nil
}

func (e Event) IsRecurring() bool { return strings.TrimSpace(e.Recurrence) != "" }

// NewEvent contains information needed to create a new Event.
type NewEvent struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Venue       string  `json:"venue" validate:"required,max=100"`
	Category    string  `json:"category" validate:"omitempty,oneof=seminar workshop conference cultural sports meeting other"`
	Status      string  `json:"status" validate:"omitempty,oneof=draft scheduled completed cancelled"`
	Organizer   string  `json:"organizer" validate:"max=100"`
	Capacity    int     `json:"capacity" validate:"gte=0"`
	StartDate   string  `json:"start_date" validate:"required,date"`
	EndDate     string  `json:"end_date" validate:"omitempty,date"`
	StartTime   *string `json:"start_time" validate:"omitempty,clock"`
	EndTime     *string `json:"end_time" validate:"omitempty,clock"`
	Recurrence  string  `json:"recurrence" validate:"omitempty,rrule"`
}

func (ne *NewEvent) Clean() {
	ne.Title = core.CleanString(ne.Title)
	ne.Description = core.CleanString(ne.Description)
	ne.Venue = core.CleanString(ne.Venue)
	ne.Category = core.CleanString(ne.Category, true /* lower */)
	ne.Status = core.CleanString(ne.Status, true /* lower */)
	ne.Organizer = core.CleanString(ne.Organizer)
	ne.StartDate = core.CleanString(ne.StartDate)
	ne.EndDate = core.CleanString(ne.EndDate)
	ne.StartTime = normalizeClock(core.CleanStringPtr(ne.StartTime))
	ne.EndTime = normalizeClock(core.CleanStringPtr(ne.EndTime))
	ne.Recurrence = strings.TrimPrefix(core.CleanString(ne.Recurrence), "RRULE:")

	if ne.Category == "" {
		ne.Category = CategoryOther
	}
	if ne.Status == "" {
		ne.Status = StatusScheduled
	}
	if ne.EndDate == "" {
		ne.EndDate = ne.StartDate
	}
}

func (ne *NewEvent) Validate(validate *validator.Validate) error {
	ne.Clean()
	return validate.Struct(ne)
}

// UpdateEvent replaces every editable field of an existing Event.
type UpdateEvent struct {
	NewEvent
	Attendance *Attendance `json:"attendance"`
}

func (ue *UpdateEvent) Validate(validate *validator.Validate) error {
	ue.Clean()
	return validate.Struct(ue)
}

type QueryFilter struct {
	Search     string   `query:"search"`
	Venue      string   `query:"venue"`
	Categories []string `query:"category"`
	Statuses   []string `query:"status"`
	From       string   `query:"from"` // start date >= From
	To         string   `query:"to"`   // start date <= To
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Venue = core.CleanString(qf.Venue)
	qf.From = datePart(qf.From)
	qf.To = datePart(qf.To)
}

// IsEmpty reports whether qf sets no field; a nil filter is empty.
func (qf *QueryFilter) IsEmpty() bool {
	return qf == nil || (qf.Search == "" && qf.Venue == "" && len(qf.Categories) == 0 && len(qf.Statuses) == 0 &&
		qf.From == "" && qf.To == "")
}

// Match applies AND on the set filter fields.
// Search does a case-insensitive match on one of Title, Venue, Organizer or Description.
func (qf *QueryFilter) Match(e Event) bool {
	if qf == nil {
		return true
	}
	if qf.Search != "" {
		s := strings.ToLower(qf.Search)
		if !(strings.Contains(strings.ToLower(e.Title), s) ||
			strings.Contains(strings.ToLower(e.Venue), s) ||
			strings.Contains(strings.ToLower(e.Organizer), s) ||
			strings.Contains(strings.ToLower(e.Description), s)) {
			return false
		}
	}
	if qf.Venue != "" && e.Venue != qf.Venue {
		return false
	}
	if len(qf.Categories) > 0 && !contains(qf.Categories, e.Category) {
		return false
	}
	if len(qf.Statuses) > 0 && !contains(qf.Statuses, e.Status) {
		return false
	}
	if qf.From != "" && e.DateKey() < qf.From {
		return false
	}
	if qf.To != "" && e.DateKey() > qf.To {
		return false
	}
	return true
}

// ConflictFilter narrows a clash detection pass to a date range and/or a venue.
type ConflictFilter struct {
	From  string `query:"from" json:"from" validate:"omitempty,date"`
	To    string `query:"to" json:"to" validate:"omitempty,date"`
	Venue string `query:"venue" json:"venue"`
}

func (cf *ConflictFilter) Clean() {
	cf.From = core.CleanString(cf.From)
	cf.To = core.CleanString(cf.To)
	cf.Venue = core.CleanString(cf.Venue)
}

func (cf *ConflictFilter) Validate(validate *validator.Validate) error {
	cf.Clean()
	return validate.Struct(cf)
}

// Includes reports whether date falls within the filter's inclusive range.
func (cf ConflictFilter) Includes(date string) bool {
	if cf.From != "" && date < cf.From {
		return false
	}
	if cf.To != "" && date > cf.To {
		return false
	}
	return true
}

func contains(values []string, val string) bool {
	for _, v := range values {
		if v == val {
			return true
		}
	}
	return false
}

// OrderingColumns maps the fields events can be ordered by to their storage columns.
var OrderingColumns = map[string]string{
	"title":      "title",
	"venue":      "venue",
	"category":   "category",
	"status":     "status",
	"organizer":  "organizer",
	"start_date": "start_date",
	"end_date":   "end_date",
	"start_time": "start_time",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// DefaultOrdering lists events chronologically.
var DefaultOrdering = []core.DBOrdering{
	{Field: "start_date", Ascending: true},
	{Field: "start_time", Ascending: true},
}

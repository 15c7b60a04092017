package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/chuo/core/scholarship"
	"github.com/trezcool/chuo/core/schedule"
	"github.com/trezcool/chuo/services/logger"
	"github.com/trezcool/chuo/storage/database"
)

// PrepareDB opens a migrated in-memory sqlite database, closed when the test ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db, logsvc.NewNopLogger()); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

// EventOpt adjusts an event before it is stored.
type EventOpt func(evt *schedule.Event)

func WithTimes(start, end string) EventOpt {
	return func(evt *schedule.Event) {
		if start != "" {
			evt.StartTime = &start
		}
		if end != "" {
			evt.EndTime = &end
		}
	}
}

func WithStatus(status string) EventOpt {
	return func(evt *schedule.Event) { evt.Status = status }
}

func WithRecurrence(rule string) EventOpt {
	return func(evt *schedule.Event) { evt.Recurrence = rule }
}

func WithCreatedAt(t time.Time) EventOpt {
	return func(evt *schedule.Event) {
		evt.CreatedAt = t.UTC()
		evt.UpdatedAt = t.UTC()
	}
}

func CreateEvent(t *testing.T, repo schedule.Repository, title, venue, date string, opts ...EventOpt) schedule.Event {
	t.Helper()
	tstamp := time.Now().UTC()
	evt := schedule.Event{
		Title:     title,
		Venue:     venue,
		Category:  schedule.CategoryOther,
		Status:    schedule.StatusScheduled,
		StartDate: date,
		EndDate:   date,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	for _, opt := range opts {
		opt(&evt)
	}
	evt, err := repo.CreateEvent(context.Background(), evt)
	if err != nil {
		t.Fatalf("CreateEvent() failed: %v", err)
	}
	return evt
}

func CreateScholarship(
	t *testing.T,
	repo scholarship.Repository,
	studentID, name, kind, year, status string,
	amount int64,
	createdAt ...time.Time,
) scholarship.Scholarship {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	s := scholarship.Scholarship{
		StudentID:    studentID,
		StudentName:  name,
		Kind:         kind,
		AcademicYear: year,
		Status:       status,
		Amount:       amount,
		CreatedAt:    tstamp,
		UpdatedAt:    tstamp,
	}
	if s.IsAwarded() {
		awarded := tstamp.Format("2006-01-02")
		s.AwardedOn = &awarded
	}
	s, err := repo.CreateScholarship(context.Background(), s)
	if err != nil {
		t.Fatalf("CreateScholarship() failed: %v", err)
	}
	return s
}

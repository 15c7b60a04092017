package inmemdb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/schedule"
)

type eventRepository struct {
	db *eventTable
}

var _ schedule.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *DB) schedule.Repository {
	return &eventRepository{db: db.event}
}

func (repo *eventRepository) CreateEvent(_ context.Context, evt schedule.Event) (schedule.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	evt.ID = uuid.New().String()
	evt.Occurrence = ""
	repo.db.table[evt.ID] = &evt
	return evt, nil
}

func (repo *eventRepository) GetEvent(_ context.Context, id string) (schedule.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if evt, ok := repo.db.table[id]; ok {
		return *evt, nil
	}
	return schedule.Event{}, schedule.ErrNotFound
}

func (repo *eventRepository) QueryEvents(_ context.Context, filter *schedule.QueryFilter, ordering []core.DBOrdering) ([]schedule.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	events := make([]schedule.Event, 0, len(repo.db.table))
	for _, evt := range repo.db.table {
		if filter.Match(*evt) {
			events = append(events, *evt)
		}
	}

	ordering = core.CleanOrdering(ordering, schedule.OrderingColumns)
	if len(ordering) == 0 {
		ordering = schedule.DefaultOrdering
	}
	// map iteration order is random: settle ties on ID
	ordering = append(ordering, core.DBOrdering{Field: "id", Ascending: true})
	orderBy(len(events), ordering,
		func(i, j int, column string) int { return compareEvents(events[i], events[j], column) },
		func(i, j int) { events[i], events[j] = events[j], events[i] },
	)
	return events, nil
}

func (repo *eventRepository) UpdateEvent(_ context.Context, evt schedule.Event) (schedule.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[evt.ID]; !ok {
		return schedule.Event{}, schedule.ErrNotFound
	}
	evt.Occurrence = ""
	repo.db.table[evt.ID] = &evt
	return evt, nil
}

func (repo *eventRepository) DeleteEvents(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func compareEvents(a, b schedule.Event, column string) int {
	switch column {
	case "id":
		return compareStrings(a.ID, b.ID)
	case "title":
		return compareStrings(a.Title, b.Title)
	case "venue":
		return compareStrings(a.Venue, b.Venue)
	case "category":
		return compareStrings(a.Category, b.Category)
	case "status":
		return compareStrings(a.Status, b.Status)
	case "organizer":
		return compareStrings(a.Organizer, b.Organizer)
	case "start_date":
		return compareStrings(a.StartDate, b.StartDate)
	case "end_date":
		return compareStrings(a.EndDate, b.EndDate)
	case "start_time":
		return compareStrings(clock(a.StartTime), clock(b.StartTime))
	case "created_at":
		return compareTimes(a.CreatedAt, b.CreatedAt)
	case "updated_at":
		return compareTimes(a.UpdatedAt, b.UpdatedAt)
	}
	return 0
}

func clock(t *string) string {
	if t == nil {
		return schedule.DayStart
	}
	return *t
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

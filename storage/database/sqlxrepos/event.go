package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/schedule"
)

const eventColumns = "id, title, description, venue, category, status, organizer, capacity, " +
	"start_date, end_date, start_time, end_time, recurrence, registered, attended, created_at, updated_at"

// eventRow is the storage form of schedule.Event.
type eventRow struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Description string      `db:"description"`
	Venue       string      `db:"venue"`
	Category    string      `db:"category"`
	Status      string      `db:"status"`
	Organizer   string      `db:"organizer"`
	Capacity    int         `db:"capacity"`
	StartDate   string      `db:"start_date"`
	EndDate     string      `db:"end_date"`
	StartTime   null.String `db:"start_time"`
	EndTime     null.String `db:"end_time"`
	Recurrence  string      `db:"recurrence"`
	Registered  null.Int    `db:"registered"`
	Attended    null.Int    `db:"attended"`
	CreatedAt   string      `db:"created_at"`
	UpdatedAt   string      `db:"updated_at"`
}

type eventRepository struct {
	db *sqlx.DB
}

var _ schedule.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *sqlx.DB) schedule.Repository {
	return &eventRepository{db: db}
}

func (repo eventRepository) toRow(evt schedule.Event) eventRow {
	row := eventRow{
		ID:          evt.ID,
		Title:       evt.Title,
		Description: evt.Description,
		Venue:       evt.Venue,
		Category:    evt.Category,
		Status:      evt.Status,
		Organizer:   evt.Organizer,
		Capacity:    evt.Capacity,
		StartDate:   evt.StartDate,
		EndDate:     evt.EndDate,
		StartTime:   null.StringFromPtr(evt.StartTime),
		EndTime:     null.StringFromPtr(evt.EndTime),
		Recurrence:  evt.Recurrence,
		CreatedAt:   formatTime(evt.CreatedAt),
		UpdatedAt:   formatTime(evt.UpdatedAt),
	}
	if evt.Attendance != nil {
		row.Registered = null.IntFrom(evt.Attendance.Registered)
		row.Attended = null.IntFrom(evt.Attendance.Attended)
	}
	return row
}

func (repo eventRepository) fromRow(row eventRow) schedule.Event {
	evt := schedule.Event{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Venue:       row.Venue,
		Category:    row.Category,
		Status:      row.Status,
		Organizer:   row.Organizer,
		Capacity:    row.Capacity,
		StartDate:   row.StartDate,
		EndDate:     row.EndDate,
		StartTime:   row.StartTime.Ptr(),
		EndTime:     row.EndTime.Ptr(),
		Recurrence:  row.Recurrence,
		CreatedAt:   parseTime(row.CreatedAt),
		UpdatedAt:   parseTime(row.UpdatedAt),
	}
	if row.Registered.Valid || row.Attended.Valid {
		evt.Attendance = &schedule.Attendance{Registered: row.Registered.Int, Attended: row.Attended.Int}
	}
	return evt
}

// trapNoRowsErr maps sql "no rows" err to schedule.ErrNotFound
func (repo eventRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return schedule.ErrNotFound
	}
	return wrapErr(err, msg)
}

func (repo eventRepository) CreateEvent(ctx context.Context, evt schedule.Event) (schedule.Event, error) {
	evt.ID = uuid.New().String()
	evt.Occurrence = ""
	q := "INSERT INTO events (" + eventColumns + ") VALUES (" + namedParams(eventColumns) + ")"
	row := repo.toRow(evt)
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return schedule.Event{}, wrapErr(err, "inserting event")
	}
	return repo.fromRow(row), nil
}

func (repo eventRepository) GetEvent(ctx context.Context, id string) (schedule.Event, error) {
	if _, err := uuid.Parse(id); err != nil {
		return schedule.Event{}, schedule.ErrNotFound
	}
	var row eventRow
	q := repo.db.Rebind("SELECT " + eventColumns + " FROM events WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return schedule.Event{}, repo.trapNoRowsErr(err, "finding event by ID")
	}
	return repo.fromRow(row), nil
}

func (repo eventRepository) QueryEvents(ctx context.Context, filter *schedule.QueryFilter, ordering []core.DBOrdering) ([]schedule.Event, error) {
	var where []string
	var args []interface{}

	if !filter.IsEmpty() {
		// events with Title, Venue, Organizer or Description matching the search keyword
		if filter.Search != "" {
			val := "%" + strings.ToLower(filter.Search) + "%"
			where = append(where, "(LOWER(title) LIKE ? OR LOWER(venue) LIKE ? OR LOWER(organizer) LIKE ? OR LOWER(description) LIKE ?)")
			args = append(args, val, val, val, val)
		}
		if filter.Venue != "" {
			where = append(where, "venue = ?")
			args = append(args, filter.Venue)
		}
		if len(filter.Categories) > 0 {
			where = append(where, "category IN (?)")
			args = append(args, filter.Categories)
		}
		if len(filter.Statuses) > 0 {
			where = append(where, "status IN (?)")
			args = append(args, filter.Statuses)
		}
		// start dates may carry a time part: compare their date part
		if filter.From != "" {
			where = append(where, "SUBSTR(start_date, 1, 10) >= ?")
			args = append(args, filter.From)
		}
		if filter.To != "" {
			where = append(where, "SUBSTR(start_date, 1, 10) <= ?")
			args = append(args, filter.To)
		}
	}

	q := "SELECT " + eventColumns + " FROM events"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += orderClause(ordering, schedule.OrderingColumns, schedule.DefaultOrdering, map[string]string{
		"start_time": "COALESCE(start_time, '" + schedule.DayStart + "')",
	})

	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "expanding query args")
	}
	var rows []eventRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, wrapErr(err, "querying events")
	}

	events := make([]schedule.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, repo.fromRow(row))
	}
	return events, nil
}

func (repo eventRepository) UpdateEvent(ctx context.Context, evt schedule.Event) (schedule.Event, error) {
	evt.Occurrence = ""
	q := "UPDATE events SET " + namedAssignments(eventColumns, "id", "created_at") + " WHERE id = :id"
	row := repo.toRow(evt)
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return schedule.Event{}, wrapErr(err, "updating event")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return schedule.Event{}, schedule.ErrNotFound
	}
	return repo.fromRow(row), nil
}

func (repo eventRepository) DeleteEvents(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In("DELETE FROM events WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "expanding query args")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return wrapErr(err, "deleting events")
	}
	return nil
}

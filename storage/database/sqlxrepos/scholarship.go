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
	"github.com/trezcool/chuo/core/scholarship"
)

const scholarshipColumns = "id, student_id, student_name, program, kind, category, amount, " +
	"academic_year, status, awarded_on, remarks, created_at, updated_at"

type scholarshipRow struct {
	ID           string      `db:"id"`
	StudentID    string      `db:"student_id"`
	StudentName  string      `db:"student_name"`
	Program      string      `db:"program"`
	Kind         string      `db:"kind"`
	Category     string      `db:"category"`
	Amount       int64       `db:"amount"`
	AcademicYear string      `db:"academic_year"`
	Status       string      `db:"status"`
	AwardedOn    null.String `db:"awarded_on"`
	Remarks      string      `db:"remarks"`
	CreatedAt    string      `db:"created_at"`
	UpdatedAt    string      `db:"updated_at"`
}

type scholarshipRepository struct {
	db *sqlx.DB
}

var _ scholarship.Repository = (*scholarshipRepository)(nil) // interface compliance check

func NewScholarshipRepository(db *sqlx.DB) scholarship.Repository {
	return &scholarshipRepository{db: db}
}

func (repo scholarshipRepository) toRow(s scholarship.Scholarship) scholarshipRow {
	return scholarshipRow{
		ID:           s.ID,
		StudentID:    s.StudentID,
		StudentName:  s.StudentName,
		Program:      s.Program,
		Kind:         s.Kind,
		Category:     s.Category,
		Amount:       s.Amount,
		AcademicYear: s.AcademicYear,
		Status:       s.Status,
		AwardedOn:    null.StringFromPtr(s.AwardedOn),
		Remarks:      s.Remarks,
		CreatedAt:    formatTime(s.CreatedAt),
		UpdatedAt:    formatTime(s.UpdatedAt),
	}
}

func (repo scholarshipRepository) fromRow(row scholarshipRow) scholarship.Scholarship {
	return scholarship.Scholarship{
		ID:           row.ID,
		StudentID:    row.StudentID,
		StudentName:  row.StudentName,
		Program:      row.Program,
		Kind:         row.Kind,
		Category:     row.Category,
		Amount:       row.Amount,
		AcademicYear: row.AcademicYear,
		Status:       row.Status,
		AwardedOn:    row.AwardedOn.Ptr(),
		Remarks:      row.Remarks,
		CreatedAt:    parseTime(row.CreatedAt),
		UpdatedAt:    parseTime(row.UpdatedAt),
	}
}

func (repo scholarshipRepository) CreateScholarship(ctx context.Context, s scholarship.Scholarship) (scholarship.Scholarship, error) {
	s.ID = uuid.New().String()
	q := "INSERT INTO scholarships (" + scholarshipColumns + ") VALUES (" + namedParams(scholarshipColumns) + ")"
	row := repo.toRow(s)
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return scholarship.Scholarship{}, wrapErr(err, "inserting scholarship")
	}
	return repo.fromRow(row), nil
}

func (repo scholarshipRepository) GetScholarship(ctx context.Context, id string) (scholarship.Scholarship, error) {
	if _, err := uuid.Parse(id); err != nil {
		return scholarship.Scholarship{}, scholarship.ErrNotFound
	}
	var row scholarshipRow
	q := repo.db.Rebind("SELECT " + scholarshipColumns + " FROM scholarships WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return scholarship.Scholarship{}, scholarship.ErrNotFound
		}
		return scholarship.Scholarship{}, wrapErr(err, "finding scholarship by ID")
	}
	return repo.fromRow(row), nil
}

func (repo scholarshipRepository) QueryScholarships(
	ctx context.Context,
	filter *scholarship.QueryFilter,
	ordering []core.DBOrdering,
) ([]scholarship.Scholarship, error) {
	var where []string
	var args []interface{}

	if !filter.IsEmpty() {
		if filter.Search != "" {
			val := "%" + strings.ToLower(filter.Search) + "%"
			where = append(where, "(LOWER(student_id) LIKE ? OR LOWER(student_name) LIKE ? OR LOWER(program) LIKE ? OR LOWER(category) LIKE ?)")
			args = append(args, val, val, val, val)
		}
		if len(filter.Kinds) > 0 {
			where = append(where, "kind IN (?)")
			args = append(args, filter.Kinds)
		}
		if len(filter.Statuses) > 0 {
			where = append(where, "status IN (?)")
			args = append(args, filter.Statuses)
		}
		if filter.AcademicYear != "" {
			where = append(where, "academic_year = ?")
			args = append(args, filter.AcademicYear)
		}
		if filter.Program != "" {
			where = append(where, "program = ?")
			args = append(args, filter.Program)
		}
	}

	q := "SELECT " + scholarshipColumns + " FROM scholarships"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += orderClause(ordering, scholarship.OrderingColumns, scholarship.DefaultOrdering, map[string]string{
		"awarded_on": "COALESCE(awarded_on, '')",
	})

	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "expanding query args")
	}
	var rows []scholarshipRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, wrapErr(err, "querying scholarships")
	}

	records := make([]scholarship.Scholarship, 0, len(rows))
	for _, row := range rows {
		records = append(records, repo.fromRow(row))
	}
	return records, nil
}

func (repo scholarshipRepository) UpdateScholarship(ctx context.Context, s scholarship.Scholarship) (scholarship.Scholarship, error) {
	q := "UPDATE scholarships SET " + namedAssignments(scholarshipColumns, "id", "created_at") + " WHERE id = :id"
	row := repo.toRow(s)
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return scholarship.Scholarship{}, wrapErr(err, "updating scholarship")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return scholarship.Scholarship{}, scholarship.ErrNotFound
	}
	return repo.fromRow(row), nil
}

func (repo scholarshipRepository) DeleteScholarships(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In("DELETE FROM scholarships WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "expanding query args")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return wrapErr(err, "deleting scholarships")
	}
	return nil
}

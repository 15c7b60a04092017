package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/scholarship"
)

type scholarshipRepository struct {
	db *scholarshipTable
}

var _ scholarship.Repository = (*scholarshipRepository)(nil) // interface compliance check

func NewScholarshipRepository(db *DB) scholarship.Repository {
	return &scholarshipRepository{db: db.scholarship}
}

func (repo *scholarshipRepository) CreateScholarship(_ context.Context, s scholarship.Scholarship) (scholarship.Scholarship, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	s.ID = uuid.New().String()
	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *scholarshipRepository) GetScholarship(_ context.Context, id string) (scholarship.Scholarship, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return *s, nil
	}
	return scholarship.Scholarship{}, scholarship.ErrNotFound
}

func (repo *scholarshipRepository) QueryScholarships(
	_ context.Context,
	filter *scholarship.QueryFilter,
	ordering []core.DBOrdering,
) ([]scholarship.Scholarship, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]scholarship.Scholarship, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		if filter.Match(*s) {
			records = append(records, *s)
		}
	}

	ordering = core.CleanOrdering(ordering, scholarship.OrderingColumns)
	if len(ordering) == 0 {
		ordering = scholarship.DefaultOrdering
	}
	// map iteration order is random: settle ties on ID
	ordering = append(ordering, core.DBOrdering{Field: "id", Ascending: true})
	orderBy(len(records), ordering,
		func(i, j int, column string) int { return compareScholarships(records[i], records[j], column) },
		func(i, j int) { records[i], records[j] = records[j], records[i] },
	)
	return records, nil
}

func (repo *scholarshipRepository) UpdateScholarship(_ context.Context, s scholarship.Scholarship) (scholarship.Scholarship, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[s.ID]; !ok {
		return scholarship.Scholarship{}, scholarship.ErrNotFound
	}
	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *scholarshipRepository) DeleteScholarships(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func compareScholarships(a, b scholarship.Scholarship, column string) int {
	switch column {
	case "id":
		return compareStrings(a.ID, b.ID)
	case "student_id":
		return compareStrings(a.StudentID, b.StudentID)
	case "student_name":
		return compareStrings(a.StudentName, b.StudentName)
	case "program":
		return compareStrings(a.Program, b.Program)
	case "kind":
		return compareStrings(a.Kind, b.Kind)
	case "amount":
		switch {
		case a.Amount < b.Amount:
			return -1
		case a.Amount > b.Amount:
			return 1
		}
		return 0
	case "academic_year":
		return compareStrings(a.AcademicYear, b.AcademicYear)
	case "status":
		return compareStrings(a.Status, b.Status)
	case "awarded_on":
		var x, y string
		if a.AwardedOn != nil {
			x = *a.AwardedOn
		}
		if b.AwardedOn != nil {
			y = *b.AwardedOn
		}
		return compareStrings(x, y)
	case "created_at":
		return compareTimes(a.CreatedAt, b.CreatedAt)
	case "updated_at":
		return compareTimes(a.UpdatedAt, b.UpdatedAt)
	}
	return 0
}

package scholarship

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core"
)

var (
	// errors
	ErrNotFound = errors.New("scholarship not found")
)

type (
	Repository interface {
		CreateScholarship(ctx context.Context, s Scholarship) (Scholarship, error)
		GetScholarship(ctx context.Context, id string) (Scholarship, error)
		// QueryScholarships applies QueryFilter.Match semantics; a nil filter returns every record.
		QueryScholarships(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Scholarship, error)
		UpdateScholarship(ctx context.Context, s Scholarship) (Scholarship, error)
		DeleteScholarships(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo    Repository
		nowFunc func() time.Time
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, nowFunc: time.Now}
}

func (svc *Service) Create(ctx context.Context, ns NewScholarship) (Scholarship, error) {
	now := svc.nowFunc().UTC()
	s := Scholarship{
		StudentID:    ns.StudentID,
		StudentName:  ns.StudentName,
		Program:      ns.Program,
		Kind:         ns.Kind,
		Category:     ns.Category,
		Amount:       ns.Amount,
		AcademicYear: ns.AcademicYear,
		Status:       ns.Status,
		AwardedOn:    ns.AwardedOn,
		Remarks:      ns.Remarks,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s, err := svc.repo.CreateScholarship(ctx, s)
	if err != nil {
		return Scholarship{}, errors.Wrap(err, "creating scholarship")
	}
	return s, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Scholarship, error) {
	return svc.repo.GetScholarship(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Scholarship, error) {
	return svc.repo.QueryScholarships(ctx, filter, ordering)
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateScholarship) (Scholarship, error) {
	orig, err := svc.repo.GetScholarship(ctx, id)
	if err != nil {
		return Scholarship{}, err
	}
	s := Scholarship{
		ID:           orig.ID,
		StudentID:    us.StudentID,
		StudentName:  us.StudentName,
		Program:      us.Program,
		Kind:         us.Kind,
		Category:     us.Category,
		Amount:       us.Amount,
		AcademicYear: us.AcademicYear,
		Status:       us.Status,
		AwardedOn:    us.AwardedOn,
		Remarks:      us.Remarks,
		CreatedAt:    orig.CreatedAt,
		UpdatedAt:    svc.nowFunc().UTC(),
	}
	s, err = svc.repo.UpdateScholarship(ctx, s)
	if err != nil {
		return Scholarship{}, errors.Wrap(err, "updating scholarship")
	}
	return s, nil
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteScholarships(ctx, ids...)
}

func (svc *Service) Stats(ctx context.Context, filter *QueryFilter) (Stats, error) {
	records, err := svc.repo.QueryScholarships(ctx, filter, nil)
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying scholarships")
	}
	return ComputeStats(records), nil
}

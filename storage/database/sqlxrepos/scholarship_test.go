package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/scholarship"
	"github.com/trezcool/chuo/storage/database/inmem"
	"github.com/trezcool/chuo/storage/database/sqlxrepos"
	"github.com/trezcool/chuo/tests"
)

func scholarshipRepos(t *testing.T) map[string]scholarship.Repository {
	return map[string]scholarship.Repository{
		"sqlx":  sqlxrepos.NewScholarshipRepository(testutil.PrepareDB(t)),
		"inmem": inmemdb.NewScholarshipRepository(inmemdb.Open()),
	}
}

func TestScholarshipRepository(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)

	for name, repo := range scholarshipRepos(t) {
		t.Run(name, func(t *testing.T) {
			a := testutil.CreateScholarship(t, repo, "S001", "Amani Juma", scholarship.KindScholarship, "2024-25", scholarship.StatusApproved, 50000, t0)
			b := testutil.CreateScholarship(t, repo, "S002", "Baraka Otieno", scholarship.KindConcession, "2024-25", scholarship.StatusApplied, 20000, t0.Add(time.Hour))
			c := testutil.CreateScholarship(t, repo, "S003", "Chausiku Mwangi", scholarship.KindScholarship, "2023-24", scholarship.StatusApplied, 30000, t0.Add(2*time.Hour))

			got, err := repo.GetScholarship(ctx, a.ID)
			require.NoError(t, err)
			assert.Equal(t, a, got)
			require.NotNil(t, got.AwardedOn)
			assert.Equal(t, "2024-09-01", *got.AwardedOn)

			_, err = repo.GetScholarship(ctx, "not-a-uuid")
			assert.Equal(t, scholarship.ErrNotFound, err)

			ids := func(records []scholarship.Scholarship) []string {
				res := make([]string, 0, len(records))
				for _, s := range records {
					res = append(res, s.ID)
				}
				return res
			}
			tests := []struct {
				name     string
				filter   *scholarship.QueryFilter
				ordering []core.DBOrdering
				want     []string
			}{
				{name: "latest first", want: []string{c.ID, b.ID, a.ID}},
				{name: "empty filter", filter: &scholarship.QueryFilter{Kinds: []string{}}, want: []string{c.ID, b.ID, a.ID}},
				{name: "search", filter: &scholarship.QueryFilter{Search: "mwangi"}, want: []string{c.ID}},
				{name: "kind", filter: &scholarship.QueryFilter{Kinds: []string{scholarship.KindScholarship}}, want: []string{c.ID, a.ID}},
				{name: "status", filter: &scholarship.QueryFilter{Statuses: []string{scholarship.StatusApplied}}, want: []string{c.ID, b.ID}},
				{name: "academic year", filter: &scholarship.QueryFilter{AcademicYear: "2024-25"}, want: []string{b.ID, a.ID}},
				{name: "by amount", ordering: []core.DBOrdering{{Field: "amount", Ascending: true}}, want: []string{b.ID, c.ID, a.ID}},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					records, err := repo.QueryScholarships(ctx, tt.filter, tt.ordering)
					require.NoError(t, err)
					assert.Equal(t, tt.want, ids(records))
				})
			}

			b.Status = scholarship.StatusRejected
			b.Remarks = "incomplete application"
			updated, err := repo.UpdateScholarship(ctx, b)
			require.NoError(t, err)
			got, err = repo.GetScholarship(ctx, b.ID)
			require.NoError(t, err)
			assert.Equal(t, updated, got)
			assert.Equal(t, "incomplete application", got.Remarks)

			require.NoError(t, repo.DeleteScholarships(ctx, a.ID, b.ID))
			records, err := repo.QueryScholarships(ctx, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, []string{c.ID}, ids(records))
		})
	}
}

package sqlxrepos

import (
	"database/sql"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/chuo/core"
)

func Test_wrapErr(t *testing.T) {
	err := wrapErr(sql.ErrConnDone, "querying events")
	assert.True(t, core.IsShutdown(err))
	assert.True(t, core.IsShutdown(errors.Wrap(err, "detecting clashes")))
	assert.Equal(t, "querying events: "+sql.ErrConnDone.Error(), err.Error())

	err = wrapErr(errors.New("syntax error"), "querying events")
	assert.False(t, core.IsShutdown(err))
	assert.Equal(t, "querying events: syntax error", err.Error())
}

func Test_orderClause(t *testing.T) {
	allowed := map[string]string{"title": "title", "date": "start_date", "start_time": "start_time"}
	def := []core.DBOrdering{{Field: "start_date"}}
	exprs := map[string]string{"start_time": "COALESCE(start_time, '00:00')"}

	tests := []struct {
		name     string
		ordering []core.DBOrdering
		want     string
	}{
		{name: "default", want: " ORDER BY start_date DESC, id ASC"},
		{name: "unknown field", ordering: []core.DBOrdering{{Field: "lol", Ascending: true}}, want: " ORDER BY start_date DESC, id ASC"},
		{name: "mapped", ordering: []core.DBOrdering{{Field: "date", Ascending: true}}, want: " ORDER BY start_date ASC, id ASC"},
		{
			name:     "expression",
			ordering: []core.DBOrdering{{Field: "title", Ascending: true}, {Field: "start_time"}},
			want:     " ORDER BY title ASC, COALESCE(start_time, '00:00') DESC, id ASC",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, orderClause(tt.ordering, allowed, def, exprs))
		})
	}
}

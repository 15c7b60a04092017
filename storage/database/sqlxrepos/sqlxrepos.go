// Package sqlxrepos implements the domain repositories on top of sqlx, for postgres and sqlite alike.
// Timestamps are stored as fixed-width UTC text so both engines order them the same way.
package sqlxrepos

import (
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core"
)

const timestampLayout = "2006-01-02T15:04:05.000000Z"

// wrapErr adds context to err; a closed connection becomes a shutdown error.
func wrapErr(err error, msg string) error {
	if errors.Is(err, sql.ErrConnDone) {
		return core.NewShutdownError(msg + ": " + err.Error())
	}
	return errors.Wrap(err, msg)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t.UTC()
}

func splitColumns(columns string) []string {
	cols := strings.Split(columns, ",")
	for i, c := range cols {
		cols[i] = strings.TrimSpace(c)
	}
	return cols
}

// namedParams turns "a, b" into ":a, :b".
func namedParams(columns string) string {
	cols := splitColumns(columns)
	for i, c := range cols {
		cols[i] = ":" + c
	}
	return strings.Join(cols, ", ")
}

// namedAssignments turns "a, b" into "a = :a, b = :b", leaving out the excluded columns.
func namedAssignments(columns string, exclude ...string) string {
	cols := splitColumns(columns)
	assignments := make([]string, 0, len(cols))
	for _, c := range cols {
		skip := false
		for _, e := range exclude {
			if c == e {
				skip = true
				break
			}
		}
		if !skip {
			assignments = append(assignments, c+" = :"+c)
		}
	}
	return strings.Join(assignments, ", ")
}

// orderClause whitelists ordering against allowed, falls back to def and settles ties on id.
// exprs overrides the SQL expression used for a column.
func orderClause(ordering []core.DBOrdering, allowed map[string]string, def []core.DBOrdering, exprs map[string]string) string {
	ordering = core.CleanOrdering(ordering, allowed)
	if len(ordering) == 0 {
		ordering = def
	}
	orderList := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		if expr, ok := exprs[ord.Field]; ok {
			ord.Field = expr
		}
		orderList = append(orderList, ord.String())
	}
	orderList = append(orderList, "id ASC")
	return " ORDER BY " + strings.Join(orderList, ", ")
}

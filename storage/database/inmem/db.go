package inmemdb

import (
	"sort"
	"sync"

	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/scholarship"
	"github.com/trezcool/chuo/core/schedule"
)

type (
	DB struct {
		event       *eventTable
		scholarship *scholarshipTable
	}

	eventTable struct {
		sync.RWMutex
		table map[string]*schedule.Event
	}

	scholarshipTable struct {
		sync.RWMutex
		table map[string]*scholarship.Scholarship
	}
)

func Open() *DB {
	return &DB{
		event:       &eventTable{table: make(map[string]*schedule.Event)},
		scholarship: &scholarshipTable{table: make(map[string]*scholarship.Scholarship)},
	}
}

// Reset drops every record.
func (db *DB) Reset() {
	db.event.Lock()
	db.event.table = make(map[string]*schedule.Event)
	db.event.Unlock()

	db.scholarship.Lock()
	db.scholarship.table = make(map[string]*scholarship.Scholarship)
	db.scholarship.Unlock()
}

// compareFunc returns <0, 0 or >0 when the i-th record sorts before, with or after the j-th one on a column.
type compareFunc func(i, j int, column string) int

// orderBy sorts n records on the given orderings, ties falling through to the next ordering.
// Unknown columns compare equal.
func orderBy(n int, ordering []core.DBOrdering, cmp compareFunc, swap func(i, j int)) {
	if len(ordering) == 0 {
		return
	}
	sort.Stable(sorter{n: n, less: func(i, j int) bool {
		for _, ord := range ordering {
			c := cmp(i, j, ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	}, swap: swap})
}

type sorter struct {
	n    int
	less func(i, j int) bool
	swap func(i, j int)
}

func (s sorter) Len() int           { return s.n }
func (s sorter) Less(i, j int) bool { return s.less(i, j) }
func (s sorter) Swap(i, j int)      { s.swap(i, j) }

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

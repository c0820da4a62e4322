package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type row struct {
	name    string
	views   int
	created time.Time
	extra   any
}

func newRowRegistry() *Registry[row] {
	r := NewRegistry[row]()
	r.Register("name", func(x row) any { return x.name }, nil)
	r.Register("views", func(x row) any { return x.views }, nil)
	r.Register("created", func(x row) any { return x.created }, nil)
	r.Register("extra", func(x row) any { return x.extra }, nil)
	r.Register("boom", func(x row) any { panic("bad extractor") }, nil)
	return r
}

func names(rows []row) []string {
	out := make([]string, len(rows))
	for i, x := range rows {
		out[i] = x.name
	}
	return out
}

func TestSortIdentityWhenNoColumn(t *testing.T) {
	r := newRowRegistry()
	in := []row{{name: "b"}, {name: "a"}}

	assert.Equal(t, []string{"b", "a"}, names(r.Sort(in, SortState{})))
	assert.Equal(t, []string{"b", "a"}, names(r.Sort(in, SortState{ColumnKey: "name"})))
	assert.Equal(t, []string{"b", "a"}, names(r.Sort(in, SortState{ColumnKey: "unknown", Direction: DirectionAscending})))
}

func TestSortStringsCaseInsensitive(t *testing.T) {
	r := newRowRegistry()
	in := []row{{name: "banana"}, {name: "Apple"}, {name: "cherry"}}

	out := r.Sort(in, SortState{ColumnKey: "name", Direction: DirectionAscending})
	assert.Equal(t, []string{"Apple", "banana", "cherry"}, names(out))

	out = r.Sort(in, SortState{ColumnKey: "name", Direction: DirectionDescending})
	assert.Equal(t, []string{"cherry", "banana", "Apple"}, names(out))

	// Input order untouched.
	assert.Equal(t, []string{"banana", "Apple", "cherry"}, names(in))
}

func TestSortNumbersAndTimestamps(t *testing.T) {
	r := newRowRegistry()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	in := []row{
		{name: "a", views: 30, created: base.Add(2 * time.Hour)},
		{name: "b", views: 5, created: base},
		{name: "c", views: 12, created: base.Add(time.Hour)},
	}

	out := r.Sort(in, SortState{ColumnKey: "views", Direction: DirectionAscending})
	assert.Equal(t, []string{"b", "c", "a"}, names(out))

	out = r.Sort(in, SortState{ColumnKey: "created", Direction: DirectionDescending})
	assert.Equal(t, []string{"a", "c", "b"}, names(out))
}

func TestSortIsStableOnTies(t *testing.T) {
	r := newRowRegistry()
	in := []row{
		{name: "first", views: 7},
		{name: "second", views: 7},
		{name: "third", views: 7},
	}

	out := r.Sort(in, SortState{ColumnKey: "views", Direction: DirectionAscending})
	assert.Equal(t, []string{"first", "second", "third"}, names(out))

	out = r.Sort(in, SortState{ColumnKey: "views", Direction: DirectionDescending})
	assert.Equal(t, []string{"first", "second", "third"}, names(out))
}

func TestInvalidValuesSortAsMaximum(t *testing.T) {
	r := newRowRegistry()
	in := []row{
		{name: "nilval", extra: nil},
		{name: "small", extra: 1},
		{name: "big", extra: 9},
	}

	out := r.Sort(in, SortState{ColumnKey: "extra", Direction: DirectionAscending})
	assert.Equal(t, []string{"small", "big", "nilval"}, names(out))

	out = r.Sort(in, SortState{ColumnKey: "extra", Direction: DirectionDescending})
	assert.Equal(t, []string{"nilval", "big", "small"}, names(out))
}

func TestPanickingExtractorDoesNotAbortSort(t *testing.T) {
	r := newRowRegistry()
	in := []row{{name: "a"}, {name: "b"}}

	assert.NotPanics(t, func() {
		out := r.Sort(in, SortState{ColumnKey: "boom", Direction: DirectionAscending})
		assert.Len(t, out, 2)
		// All keys invalid: stable sort keeps server order.
		assert.Equal(t, []string{"a", "b"}, names(out))
	})
}

func TestCustomComparator(t *testing.T) {
	r := NewRegistry[row]()
	// Order by name length instead of collation.
	r.Register("name", func(x row) any { return x.name }, func(a, b any) int {
		return len(a.(string)) - len(b.(string))
	})

	in := []row{{name: "ccc"}, {name: "a"}, {name: "bb"}}
	out := r.Sort(in, SortState{ColumnKey: "name", Direction: DirectionAscending})
	assert.Equal(t, []string{"a", "bb", "ccc"}, names(out))
}

func TestDefaultCompareMixedTypesFallBackToFormatting(t *testing.T) {
	assert.Equal(t, 0, DefaultCompare("10", "10"))
	assert.Negative(t, DefaultCompare(int32(3), int64(8)))
	assert.Positive(t, DefaultCompare(uint(9), 2.5))
	// Unknown type pairs still produce a total order.
	assert.NotPanics(t, func() {
		DefaultCompare(struct{ A int }{1}, "x")
	})
}

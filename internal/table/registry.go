// Package table is the shared engine behind every sortable, paginated admin
// list. A Registry maps column keys to extractors and comparators and sorts
// the currently displayed page; Pages tracks page/pageSize/total and keeps
// the page number inside valid bounds.
package table

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	DirectionAscending  = "ascending"
	DirectionDescending = "descending"
)

// SortState with an empty ColumnKey means identity ordering: the server's
// return order is preserved as-is.
type SortState struct {
	ColumnKey string
	Direction string
}

type CompareFunc func(a, b any) int

type column[T any] struct {
	extract func(T) any
	compare CompareFunc
}

type Registry[T any] struct {
	columns map[string]column[T]
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		columns: map[string]column[T]{},
	}
}

// Register associates a column key with a value extractor and an optional
// comparator. Pass nil to use the default comparator (collated strings,
// numeric difference, timestamp difference).
func (r *Registry[T]) Register(key string, extract func(T) any, compare CompareFunc) {
	if compare == nil {
		compare = DefaultCompare
	}
	r.columns[key] = column[T]{extract: extract, compare: compare}
}

// Sort returns a new slice ordered by the registered comparator for the sort
// state's column. An empty column key (or an unregistered one) returns the
// input unchanged. The sort is stable: rows with equal keys keep their
// relative server order. A panicking extractor or an unusable extracted value
// makes that row compare as the maximum key instead of failing the whole
// page.
func (r *Registry[T]) Sort(items []T, state SortState) []T {
	if state.ColumnKey == "" || state.Direction == "" {
		return items
	}

	col, ok := r.columns[state.ColumnKey]
	if !ok {
		return items
	}

	keys := make([]sortKey, len(items))
	for i, item := range items {
		keys[i] = extractKey(col.extract, item)
	}

	out := make([]T, len(items))
	idx := make([]int, len(items))
	copy(out, items)
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(i, j int) bool {
		c := compareKeys(keys[idx[i]], keys[idx[j]], col.compare)
		if state.Direction == DirectionDescending {
			c = -c
		}
		return c < 0
	})

	for i, from := range idx {
		out[i] = items[from]
	}

	return out
}

type sortKey struct {
	value   any
	invalid bool
}

func extractKey[T any](extract func(T) any, item T) (key sortKey) {
	defer func() {
		if recover() != nil {
			key = sortKey{invalid: true}
		}
	}()

	v := extract(item)
	if v == nil {
		return sortKey{invalid: true}
	}
	return sortKey{value: v}
}

// Invalid keys sort after every valid key (ascending); the direction flip in
// Sort puts them first when descending.
func compareKeys(a, b sortKey, compare CompareFunc) int {
	switch {
	case a.invalid && b.invalid:
		return 0
	case a.invalid:
		return 1
	case b.invalid:
		return -1
	}
	return compare(a.value, b.value)
}

// The collator is shared; collate.Collator is not safe for concurrent use.
var (
	collMu   sync.Mutex
	collator = collate.New(language.English, collate.IgnoreCase)
)

// DefaultCompare orders strings by locale-aware collation, numbers by value
// and timestamps by instant. Mismatched or unknown types fall back to their
// formatted representation so the ordering stays total.
func DefaultCompare(a, b any) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			collMu.Lock()
			defer collMu.Unlock()
			return collator.CompareString(av, bv)
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	default:
		if af, aok := asFloat(a); aok {
			if bf, bok := asFloat(b); bok {
				switch {
				case af < bf:
					return -1
				case af > bf:
					return 1
				default:
					return 0
				}
			}
		}
	}

	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

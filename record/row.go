package record

import (
	"maps"
	"slices"
)

// Row maps field names to values for a single record.
type Row map[string]any

// Key holds the primary key fields of a row.
type Key map[string]any

// Filter selects rows by field equality. All entries must match. A nil or empty
// filter matches every row.
type Filter map[string]any

// Clone returns a copy of the row. Byte slices and the maps and slices of
// KindAny values are copied as well so a caller cannot mutate cached state
// through them.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = cloneAny(v)
	}
	return out
}

// Merge returns a copy of the row with every field in patch applied on top.
func (r Row) Merge(patch Row) Row {
	out := r.Clone()
	if out == nil {
		out = make(Row, len(patch))
	}
	maps.Copy(out, patch)
	return out
}

// Fields returns the row field names in sorted order.
func (r Row) Fields() []string {
	return slices.Sorted(maps.Keys(r))
}

// Filter converts the key into an equality filter.
func (k Key) Filter() Filter {
	if k == nil {
		return nil
	}
	return Filter(maps.Clone(k))
}

// Match reports whether every filter entry equals the row's value.
func (f Filter) Match(row Row) bool {
	for field, want := range f {
		got, ok := row[field]
		if !ok {
			if want == nil {
				continue
			}
			return false
		}
		if !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

// Fields returns the filter field names in sorted order.
func (f Filter) Fields() []string {
	return slices.Sorted(maps.Keys(f))
}

// IsAll reports whether the filter selects every row.
func (f Filter) IsAll() bool {
	return len(f) == 0
}

// Package selection partitions a table's columns into available and selected
// attributes.
package selection

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrNotAvailable is returned when selecting an attribute that is not in
	// the available set.
	ErrNotAvailable = errors.New("attribute is not available")

	// ErrNotSelected is returned when unselecting an attribute that is not in
	// the selected set.
	ErrNotSelected = errors.New("attribute is not selected")
)

// Selection is an immutable pair of disjoint, ordered attribute sets.
// Every attribute it knows about lives in exactly one of the two sets.
type Selection struct {
	available []string
	selected  []string
}

// New returns a selection with every schema column available.
func New(schema []string) Selection {
	return Selection{available: dedupe(schema)}
}

// WithSelected returns a selection whose selected set is exactly attrs.
// attrs may name columns the schema no longer has; they stay selected and
// render as blank cells. The remaining schema columns are available.
func WithSelected(schema, attrs []string) Selection {
	selected := dedupe(attrs)
	available := make([]string, 0, len(schema))
	for _, col := range dedupe(schema) {
		if !slices.Contains(selected, col) {
			available = append(available, col)
		}
	}
	return Selection{available: available, selected: selected}
}

// Available returns the available attributes in order.
func (s Selection) Available() []string { return slices.Clone(s.available) }

// Selected returns the selected attributes in order.
func (s Selection) Selected() []string { return slices.Clone(s.selected) }

// IsSelected reports whether attr is in the selected set.
func (s Selection) IsSelected(attr string) bool { return slices.Contains(s.selected, attr) }

// Len returns the total number of attributes across both sets.
func (s Selection) Len() int { return len(s.available) + len(s.selected) }

// Select moves attr from available to the end of selected.
func (s Selection) Select(attr string) (Selection, error) {
	i := slices.Index(s.available, attr)
	if i < 0 {
		return s, fmt.Errorf("%w: %s", ErrNotAvailable, attr)
	}
	return Selection{
		available: slices.Delete(slices.Clone(s.available), i, i+1),
		selected:  append(slices.Clone(s.selected), attr),
	}, nil
}

// Unselect moves attr from selected to the end of available.
func (s Selection) Unselect(attr string) (Selection, error) {
	i := slices.Index(s.selected, attr)
	if i < 0 {
		return s, fmt.Errorf("%w: %s", ErrNotSelected, attr)
	}
	return Selection{
		available: append(slices.Clone(s.available), attr),
		selected:  slices.Delete(slices.Clone(s.selected), i, i+1),
	}, nil
}

// SelectAll moves every available attribute to the end of selected.
func (s Selection) SelectAll() Selection {
	return Selection{selected: append(slices.Clone(s.selected), s.available...)}
}

// ClearAll moves every selected attribute to the end of available.
func (s Selection) ClearAll() Selection {
	return Selection{available: append(slices.Clone(s.available), s.selected...)}
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

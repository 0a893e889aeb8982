package session

import (
	"strings"

	"github.com/aidanlsb/tabula/internal/aggregate"
	"github.com/aidanlsb/tabula/internal/apperr"
	"github.com/aidanlsb/tabula/internal/chart"
	"github.com/aidanlsb/tabula/internal/filter"
	"github.com/aidanlsb/tabula/internal/selection"
)

// Command is a named state transition. Apply must not modify its input; an
// error means the transition is rejected and nothing changes.
type Command struct {
	Name  string
	Apply func(State) (State, error)
}

// SelectAttr moves each attr, in order, to the end of the selected set.
// Either every attr moves or none does.
func SelectAttr(attrs ...string) Command {
	return Command{Name: "select", Apply: func(st State) (State, error) {
		sel := st.Selection
		for _, attr := range attrs {
			var err error
			if sel, err = sel.Select(attr); err != nil {
				return st, apperr.Invalid("attribute", "%w", err)
			}
		}
		return withSelection(st, sel), nil
	}}
}

// UnselectAttr moves each attr back to the end of the available set, all
// or nothing.
func UnselectAttr(attrs ...string) Command {
	return Command{Name: "unselect", Apply: func(st State) (State, error) {
		sel := st.Selection
		for _, attr := range attrs {
			var err error
			if sel, err = sel.Unselect(attr); err != nil {
				return st, apperr.Invalid("attribute", "%w", err)
			}
		}
		return withSelection(st, sel), nil
	}}
}

// SelectAll selects every attribute.
func SelectAll() Command {
	return Command{Name: "select-all", Apply: func(st State) (State, error) {
		return withSelection(st, st.Selection.SelectAll()), nil
	}}
}

// ClearAll unselects every attribute.
func ClearAll() Command {
	return Command{Name: "clear-all", Apply: func(st State) (State, error) {
		return withSelection(st, st.Selection.ClearAll()), nil
	}}
}

// ApplyFilter replaces the active filter and clears any grouping.
func ApplyFilter(spec filter.Spec) Command {
	return Command{Name: "filter", Apply: func(st State) (State, error) {
		if err := requireTable(st); err != nil {
			return st, err
		}
		if err := spec.Validate(); err != nil {
			return st, err
		}
		st.Filter = &spec
		st.Filtered = filter.Apply(st.Rows, &spec)
		st.GroupField, st.Groups = "", nil
		return st, nil
	}}
}

// ClearFilter drops the active filter. An active grouping is recomputed over
// the raw rows.
func ClearFilter() Command {
	return Command{Name: "clear-filter", Apply: func(st State) (State, error) {
		st.Filter, st.Filtered = nil, nil
		return regroup(st), nil
	}}
}

// ApplyGroup groups the active rows by field.
func ApplyGroup(field string) Command {
	return Command{Name: "group", Apply: func(st State) (State, error) {
		field = strings.TrimSpace(field)
		if err := requireTable(st); err != nil {
			return st, err
		}
		groups, err := aggregate.Group(st.Active(), field, st.Selection.Selected())
		if err != nil {
			return st, err
		}
		st.GroupField, st.Groups = field, groups
		return st, nil
	}}
}

// ClearGroup returns to the ungrouped view.
func ClearGroup() Command {
	return Command{Name: "clear-group", Apply: func(st State) (State, error) {
		st.GroupField, st.Groups = "", nil
		return st, nil
	}}
}

// SetChart sets the chart kind and, when field is not empty, the charted field.
// The field must be selected.
func SetChart(kind chart.Kind, field string) Command {
	return Command{Name: "chart", Apply: func(st State) (State, error) {
		if kind != "" {
			k, err := chart.ParseKind(string(kind))
			if err != nil {
				return st, err
			}
			st.ChartKind = k
		}
		if field != "" {
			if !st.Selection.IsSelected(field) {
				return st, apperr.Invalid("chart", "field %q is not selected", field)
			}
			st.ChartField = field
		}
		return st, nil
	}}
}

func requireTable(st State) error {
	if st.Table == "" {
		return apperr.Invalid("table", "no table selected")
	}
	return nil
}

// withSelection installs sel. Aggregates follow the new attributes, and a
// chart field that is no longer selected falls back to the default.
func withSelection(st State, sel selection.Selection) State {
	st.Selection = sel
	if st.ChartField != "" && !sel.IsSelected(st.ChartField) {
		st.ChartField = ""
	}
	return regroup(st)
}

// regroup recomputes an active grouping over the active rows, dropping it
// when there is nothing left to group.
func regroup(st State) State {
	if !st.Grouped() {
		return st
	}
	groups, err := aggregate.Group(st.Active(), st.GroupField, st.Selection.Selected())
	if err != nil {
		st.GroupField, st.Groups = "", nil
		return st
	}
	st.Groups = groups
	return st
}

// reapply rebuilds everything derived from st.Rows after the rows change.
func reapply(st State) State {
	if st.Filter != nil {
		st.Filtered = filter.Apply(st.Rows, st.Filter)
	}
	if st.ChartField != "" && !st.Selection.IsSelected(st.ChartField) {
		st.ChartField = ""
	}
	return regroup(st)
}

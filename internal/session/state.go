package session

import (
	"github.com/aidanlsb/tabula/internal/aggregate"
	"github.com/aidanlsb/tabula/internal/apperr"
	"github.com/aidanlsb/tabula/internal/chart"
	"github.com/aidanlsb/tabula/internal/export"
	"github.com/aidanlsb/tabula/internal/filter"
	"github.com/aidanlsb/tabula/internal/record"
	"github.com/aidanlsb/tabula/internal/selection"
	"github.com/aidanlsb/tabula/internal/source"
)

// DefaultMaxRows caps the rows a View carries.
const DefaultMaxRows = 1000

// State is an immutable snapshot of everything the user is looking at.
// Commands produce new States; slices held by a State are never modified
// after it is built.
type State struct {
	Tables    []string
	Relations []source.Relation

	Table     string
	Columns   []source.Column
	Selection selection.Selection
	Rows      []record.Record

	Filter   *filter.Spec
	Filtered []record.Record

	GroupField string
	Groups     []aggregate.GroupedRecord

	ChartKind  chart.Kind
	ChartField string

	Generation uint64
	Degraded   bool
}

// Grouped reports whether a grouping is active.
func (st State) Grouped() bool {
	return st.GroupField != ""
}

// Active returns the ungrouped rows in effect: the filtered rows while a
// filter is set, the raw rows otherwise.
func (st State) Active() []record.Record {
	if st.Filter != nil {
		return st.Filtered
	}
	return st.Rows
}

// FieldOptions lists the fields offered for filtering, grouping, and charting.
func (st State) FieldOptions() []string {
	return st.Selection.Selected()
}

// View is the table the user sees.
type View struct {
	Columns    []string        `json:"columns"`
	Rows       []record.Record `json:"rows"`
	Truncated  bool            `json:"truncated"`
	TotalCount int             `json:"total_count"`
	Grouped    bool            `json:"grouped,omitempty"`
}

// View renders st, keeping at most maxRows rows. Grouped records take
// precedence over filtered rows, which take precedence over raw rows.
func (st State) View(maxRows int) View {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	var v View
	if st.Grouped() {
		v.Grouped = true
		v.Columns = aggregate.Columns(st.Groups, st.GroupField)
		v.Rows = aggregate.Records(st.Groups)
	} else {
		v.Columns = st.Selection.Selected()
		if len(v.Columns) > 0 {
			v.Rows = st.Active()
		}
	}

	v.TotalCount = len(v.Rows)
	if len(v.Rows) > maxRows {
		v.Rows = v.Rows[:maxRows:maxRows]
		v.Truncated = true
	}
	return v
}

// ChartFieldOrDefault returns the chart field, falling back to the first
// selected attribute.
func (st State) ChartFieldOrDefault() string {
	if st.ChartField != "" {
		return st.ChartField
	}
	if sel := st.Selection.Selected(); len(sel) > 0 {
		return sel[0]
	}
	return ""
}

// Chart reduces the current view to a series. It is empty when there is
// nothing to draw.
func (st State) Chart() chart.Series {
	kind := st.ChartKind
	if kind == "" {
		kind = chart.Pie
	}
	if st.Grouped() {
		return chart.GroupedCounts(st.Groups, kind)
	}

	field := st.ChartFieldOrDefault()
	rows := st.Active()
	if len(rows) == 0 || field == "" {
		return chart.Series{Kind: kind, Field: field}
	}
	return chart.Distribution(rows, field, kind)
}

// Export is a serialized view ready to be written.
type Export struct {
	Filename string   `json:"filename"`
	Headers  []string `json:"headers"`
	Rows     int      `json:"rows"`
	Content  string   `json:"-"`
}

// Export serializes the full current view, ignoring the display cap.
// Grouped views use the keys of the first grouped record as headers;
// otherwise the selected attributes are the headers.
func (st State) Export() (Export, error) {
	if st.Table == "" {
		return Export{}, apperr.Invalid("table", "no table selected")
	}

	var rows []record.Record
	var headers []string
	if st.Grouped() {
		rows = aggregate.Records(st.Groups)
		if len(rows) > 0 {
			headers = rows[0].Keys()
		}
	} else {
		rows = st.Active()
		headers = st.Selection.Selected()
	}

	if len(rows) == 0 {
		return Export{}, apperr.Invalid("", "no data to export")
	}
	if len(headers) == 0 {
		return Export{}, apperr.Invalid("", "no attributes selected to export")
	}

	return Export{
		Filename: export.Filename(st.Table),
		Headers:  headers,
		Rows:     len(rows),
		Content:  export.Serialize(rows, headers),
	}, nil
}

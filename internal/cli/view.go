package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/aidanlsb/tabula/internal/apperr"
	"github.com/aidanlsb/tabula/internal/chart"
	"github.com/aidanlsb/tabula/internal/config"
	"github.com/aidanlsb/tabula/internal/filter"
	"github.com/aidanlsb/tabula/internal/session"
	"github.com/aidanlsb/tabula/internal/ui"
)

// viewOptions are the flags that shape a view: which columns, which rows,
// and how they are grouped and charted.
type viewOptions struct {
	selects    []string
	all        bool
	filter     string
	group      string
	chart      string
	chartField string
	limit      int
}

func (o *viewOptions) register(fs *pflag.FlagSet) {
	fs.StringSliceVar(&o.selects, "select", nil, "Columns to select (comma-separated or repeated)")
	fs.BoolVar(&o.all, "all", false, "Select every column")
	o.registerShape(fs)
}

func (o *viewOptions) registerShape(fs *pflag.FlagSet) {
	fs.StringVar(&o.filter, "filter", "", "Filter rows: field:operator:value (equals, contains, greater, less)")
	fs.StringVar(&o.group, "group", "", "Group rows by a selected field")
}

func (o *viewOptions) registerDisplay(fs *pflag.FlagSet) {
	fs.StringVar(&o.chart, "chart", "", "Draw a distribution chart: pie or bar")
	fs.StringVar(&o.chartField, "chart-field", "", "Field to chart (defaults to the first selected column)")
	fs.IntVar(&o.limit, "limit", 0, "Show at most this many rows")
}

// load makes table current and replays the options onto the session.
// Without --select or --all every column is selected.
func (o *viewOptions) load(ctx context.Context, sess *session.Session, table string) error {
	spin := newSpinner(fmt.Sprintf("Loading %s", table))
	spin.Start()
	err := sess.SelectTable(ctx, table)
	spin.Stop()
	if err != nil {
		return err
	}
	return o.apply(sess)
}

func (o *viewOptions) apply(sess *session.Session) error {
	attrs := splitList(o.selects)
	switch {
	case o.all || len(attrs) == 0:
		if err := sess.SelectAll(); err != nil {
			return err
		}
	default:
		if err := sess.SelectAttr(attrs...); err != nil {
			return err
		}
	}

	return o.shape(sess)
}

// shape applies the filter, grouping, and chart options.
func (o *viewOptions) shape(sess *session.Session) error {
	if strings.TrimSpace(o.filter) != "" {
		spec, err := filter.ParseExpr(o.filter)
		if err != nil {
			return err
		}
		if err := sess.ApplyFilter(spec); err != nil {
			return err
		}
	}
	if strings.TrimSpace(o.group) != "" {
		if err := sess.ApplyGroup(strings.TrimSpace(o.group)); err != nil {
			return err
		}
	}
	if o.chart != "" || o.chartField != "" {
		kind := chart.Pie
		if o.chart != "" {
			k, err := chart.ParseKind(o.chart)
			if err != nil {
				return err
			}
			kind = k
		}
		if err := sess.SetChart(kind, strings.TrimSpace(o.chartField)); err != nil {
			return err
		}
	}
	return nil
}

func (o *viewOptions) wantsChart() bool {
	return o.chart != "" || o.chartField != ""
}

// splitList flattens repeated and comma-separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// viewResult is the JSON shape of a rendered view.
type viewResult struct {
	Table    string        `json:"table"`
	Selected []string      `json:"selected"`
	Filter   *filter.Spec  `json:"filter,omitempty"`
	Group    string        `json:"group,omitempty"`
	View     session.View  `json:"view"`
	Chart    *chart.Series `json:"chart,omitempty"`
}

func buildViewResult(sess *session.Session, limit int, withChart bool) viewResult {
	st := sess.State()
	view := limitView(sess.View(), limit)
	res := viewResult{
		Table:    st.Table,
		Selected: st.Selection.Selected(),
		Filter:   st.Filter,
		Group:    st.GroupField,
		View:     view,
	}
	if withChart {
		series := sess.Chart()
		res.Chart = &series
	}
	return res
}

func limitView(v session.View, limit int) session.View {
	if limit > 0 && len(v.Rows) > limit {
		v.Rows = v.Rows[:limit:limit]
		v.Truncated = true
	}
	return v
}

// printView writes the current view in the active output mode.
func printView(sess *session.Session, limit int, withChart bool) {
	res := buildViewResult(sess, limit, withChart)
	degraded := sess.State().Degraded

	if isJSONOutput() {
		var warnings []Warning
		if degraded {
			warnings = append(warnings, degradedWarning())
		}
		if res.View.Truncated {
			warnings = append(warnings, Warning{
				Code:    WarnTruncated,
				Message: fmt.Sprintf("showing %d of %d rows", len(res.View.Rows), res.View.TotalCount),
			})
		}
		outputSuccessWithWarnings(res, warnings, &Meta{
			Count:     len(res.View.Rows),
			Total:     res.View.TotalCount,
			Truncated: res.View.Truncated,
			Degraded:  degraded,
		})
		return
	}

	if degraded {
		printDegraded()
	}
	fmt.Print(renderView(res))
}

func renderView(res viewResult) string {
	var sb strings.Builder
	unit := "rows"
	if res.View.Grouped {
		unit = "groups"
	}
	fmt.Fprintf(&sb, "%s %s\n", ui.AccentBold.Render(res.Table), ui.Hint(ui.Count(res.View.TotalCount, strings.TrimSuffix(unit, "s"), unit)))
	if res.Filter != nil {
		fmt.Fprintf(&sb, "%s\n", ui.Hint("filter: "+res.Filter.String()))
	}
	if res.Group != "" {
		fmt.Fprintf(&sb, "%s\n", ui.Hint("grouped by: "+res.Group))
	}
	sb.WriteString("\n")

	if len(res.View.Columns) == 0 {
		sb.WriteString(ui.Hint("No columns selected.") + "\n")
	} else if len(res.View.Rows) == 0 {
		sb.WriteString(ui.Hint("No rows match.") + "\n")
	} else {
		tbl := ui.NewDataTable(ui.NewDisplayContext(), res.View.Columns)
		for _, row := range res.View.Rows {
			cells := make([]string, len(res.View.Columns))
			for i, col := range res.View.Columns {
				cells[i] = row.Get(col).String()
			}
			tbl.AddRow(cells...)
		}
		tbl.SetTotal(res.View.TotalCount)
		sb.WriteString(tbl.Render())
	}

	if res.Chart != nil {
		sb.WriteString("\n")
		sb.WriteString(renderChart(*res.Chart))
	}
	return sb.String()
}

func renderChart(series chart.Series) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", ui.Header(series.Title()), ui.Hint("("+string(series.Kind)+")"))
	if len(series.Points) == 0 {
		sb.WriteString(ui.Hint("Nothing to chart.") + "\n")
		return sb.String()
	}
	display := ui.NewDisplayContext()
	if !display.IsTTY {
		total := series.Total()
		for _, p := range series.Points {
			sb.WriteString("  " + ui.Tooltip(p, total) + "\n")
		}
		return sb.String()
	}
	sb.WriteString(ui.RenderBars(series, display))
	return sb.String()
}

func degradedWarning() Warning {
	return Warning{
		Code:    WarnDegraded,
		Message: "data source unavailable; showing sample data",
	}
}

func printDegraded() {
	fmt.Fprintln(os.Stderr, ui.Warning("Data source unavailable; showing sample data."))
}

func newSpinner(message string) *ui.Spinner {
	s := ui.NewSpinner(message)
	if isJSONOutput() {
		s.Disable()
	}
	return s
}

// plural formats n with the matching noun, e.g. "3 rows".
func plural(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}

// resolveTable returns the table argument, or the last table used.
func resolveTable(args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}
	state, err := config.LoadState(resolvedStatePath)
	if err == nil && state.LastTable != "" {
		return state.LastTable, nil
	}
	return "", apperr.Invalid("table", "table name is required")
}

// rememberTable records table as the last one used. Failures are logged only.
func rememberTable(table string) {
	state, err := config.LoadState(resolvedStatePath)
	if err != nil {
		logger.Debug().Err(err).Msg("failed to load state")
		return
	}
	if !state.Remember(table) {
		return
	}
	if err := config.SaveState(resolvedStatePath, state); err != nil {
		logger.Debug().Err(err).Msg("failed to save state")
	}
}

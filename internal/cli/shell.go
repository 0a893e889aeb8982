package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/aidanlsb/tabula/internal/apperr"
	"github.com/aidanlsb/tabula/internal/chart"
	"github.com/aidanlsb/tabula/internal/export"
	"github.com/aidanlsb/tabula/internal/filter"
	"github.com/aidanlsb/tabula/internal/session"
	"github.com/aidanlsb/tabula/internal/shellquote"
	"github.com/aidanlsb/tabula/internal/source"
	"github.com/aidanlsb/tabula/internal/ui"
)

var errQuit = errors.New("quit")

const shellHelp = `Commands:
  tables                      list tables
  use <table>                 load a table (clears selection, filter, grouping)
  columns                     show selected and available columns
  select <col>...             select columns
  unselect <col>...           unselect columns
  all | none                  select or unselect every column
  filter <field> <op> <value> keep matching rows (op: equals, contains, greater, less)
  unfilter                    clear the filter
  group <field>               group the current rows by a selected field
  ungroup                     clear the grouping
  chart [pie|bar] [field]     draw the distribution of a field
  view [limit]                show the current view
  export [path] [--gzip]      write the full view as CSV
  save [name]                 save table and selection as a dataset
  datasets                    list saved datasets
  load <id|name>              load a saved dataset
  delete <id|name>            delete a saved dataset
  refresh                     reload the current table
  help                        show this help
  quit                        leave the shell
`

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Explore tables interactively",
	Long: `Start an interactive session. Commands share one exploration state, so a
selection, filter, or grouping stays in place until you change it.

Arguments are split like a shell: quote names that contain spaces.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			interactive := isatty.IsTerminal(os.Stdin.Fd())
			sh := newShell(a, os.Stdin, os.Stdout, interactive)
			return sh.run(cmd.Context())
		})
	},
}

type shell struct {
	app         *app
	in          io.Reader
	out         io.Writer
	interactive bool
}

func newShell(a *app, in io.Reader, out io.Writer, interactive bool) *shell {
	return &shell{
		app:         a,
		in:          in,
		out:         out,
		interactive: interactive,
	}
}

func (sh *shell) run(ctx context.Context) error {
	sess := sh.app.session
	if err := sess.Init(ctx); err != nil {
		return handleErr(err)
	}
	if sess.State().Degraded {
		fmt.Fprintln(sh.out, ui.Warning("Data source unavailable; showing sample data."))
	}
	if sh.interactive {
		fmt.Fprintf(sh.out, "%s %s\n", ui.AccentBold.Render("tabula"), ui.Hint("type 'help' for commands"))
	}

	scanner := bufio.NewScanner(sh.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		if sh.interactive {
			fmt.Fprint(sh.out, sh.prompt())
		}
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			return nil
		}

		words, err := shellquote.Split(scanner.Text())
		if err != nil {
			fmt.Fprintln(sh.out, ui.Error(err.Error()))
			continue
		}
		if len(words) == 0 {
			continue
		}

		if err := sh.exec(ctx, words[0], words[1:]); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			sh.printErr(err)
		}
	}
	return scanner.Err()
}

func (sh *shell) prompt() string {
	if table := sh.app.session.State().Table; table != "" {
		return ui.Accent.Render(table) + "> "
	}
	return "tabula> "
}

func (sh *shell) printErr(err error) {
	_, suggestion := classifyError(err)
	fmt.Fprintln(sh.out, ui.Error(err.Error()))
	if suggestion != "" {
		fmt.Fprintln(sh.out, ui.Hint(suggestion))
	}
}

func (sh *shell) exec(ctx context.Context, name string, args []string) error {
	sess := sh.app.session

	switch strings.ToLower(name) {
	case "quit", "exit", "q":
		return errQuit
	case "help", "?":
		fmt.Fprint(sh.out, shellHelp)
		return nil

	case "tables":
		st := sess.State()
		tbl := ui.NewTable(2)
		for _, t := range st.Tables {
			rel := ""
			if n := len(source.RelationsFor(st.Relations, t)); n > 0 {
				rel = ui.Hint(ui.Count(n, "relation", "relations"))
			}
			tbl.AddRow(ui.Name(t), rel)
		}
		fmt.Fprint(sh.out, tbl.String())
		return nil

	case "use", "table":
		if len(args) != 1 {
			return usageErr("use <table>")
		}
		spin := newSpinner(fmt.Sprintf("Loading %s", args[0]))
		spin.Start()
		err := sess.SelectTable(ctx, args[0])
		spin.Stop()
		if err != nil {
			return err
		}
		rememberTable(args[0])
		st := sess.State()
		if st.Degraded {
			fmt.Fprintln(sh.out, ui.Warning("Data source unavailable; showing sample data."))
		}
		fmt.Fprintf(sh.out, "%s %s\n", ui.Name(st.Table), ui.Hint(fmt.Sprintf("%s, %s", plural(len(st.Rows), "row", "rows"), plural(st.Selection.Len(), "column", "columns"))))
		var rels []string
		for _, rel := range source.RelationsFor(st.Relations, st.Table) {
			rels = append(rels, ui.Hint(rel.Describe(st.Table)))
		}
		fmt.Fprint(sh.out, ui.Bullets(rels...))
		return nil

	case "columns", "cols":
		st := sess.State()
		fmt.Fprintf(sh.out, "%s %s\n", ui.Header("selected:"), strings.Join(st.Selection.Selected(), ", "))
		fmt.Fprintf(sh.out, "%s %s\n", ui.Hint("available:"), strings.Join(st.Selection.Available(), ", "))
		return nil

	case "select", "add":
		if len(args) == 0 {
			return usageErr("select <col>...")
		}
		return sess.SelectAttr(splitList(args)...)

	case "unselect", "remove":
		if len(args) == 0 {
			return usageErr("unselect <col>...")
		}
		return sess.UnselectAttr(splitList(args)...)

	case "all":
		return sess.SelectAll()
	case "none":
		return sess.ClearAll()

	case "filter", "where":
		if len(args) == 1 {
			spec, err := filter.ParseExpr(args[0])
			if err != nil {
				return err
			}
			return sess.ApplyFilter(spec)
		}
		if len(args) < 3 {
			return fieldUsageErr("filter <field> <op> <value>", sess.State())
		}
		spec := filter.Spec{
			Field:    args[0],
			Operator: filter.ParseOperator(args[1]),
			Value:    strings.Join(args[2:], " "),
		}
		if !spec.Operator.Known() {
			fmt.Fprintln(sh.out, ui.Warning(fmt.Sprintf("unknown operator %q keeps every row", args[1])))
		}
		return sess.ApplyFilter(spec)
	case "unfilter":
		return sess.ClearFilter()

	case "group":
		if len(args) != 1 {
			return fieldUsageErr("group <field>", sess.State())
		}
		return sess.ApplyGroup(args[0])
	case "ungroup":
		return sess.ClearGroup()

	case "chart":
		kind := sess.State().ChartKind
		field := ""
		for _, arg := range args {
			if k, err := chart.ParseKind(arg); err == nil {
				kind = k
			} else {
				field = arg
			}
		}
		if err := sess.SetChart(kind, field); err != nil {
			return err
		}
		fmt.Fprint(sh.out, renderChart(sess.Chart()))
		return nil

	case "view", "show", "ls":
		limit := 0
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return usageErr("view [limit]")
			}
			limit = n
		}
		if sess.State().Table == "" {
			return apperr.Invalid("table", "no table selected (try 'use <table>')")
		}
		fmt.Fprint(sh.out, renderView(buildViewResult(sess, limit, false)))
		return nil

	case "export":
		exp, err := sess.Export()
		if err != nil {
			return err
		}
		path := exp.Filename
		compress := false
		for _, arg := range args {
			if arg == "--gzip" {
				compress = true
			} else {
				path = arg
			}
		}
		written, err := export.WriteFile(path, exp.Content, compress)
		if err != nil {
			return err
		}
		fmt.Fprintln(sh.out, ui.Successf("Exported %s to %s", plural(exp.Rows, "row", "rows"), written))
		return nil

	case "save":
		def, err := sess.SaveDataset(strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(sh.out, ui.Successf("Saved dataset %s %s", ui.Name(def.Name), ui.Hint(fmt.Sprintf("(id %d)", def.ID))))
		return nil

	case "datasets":
		defs := sess.Datasets()
		if len(defs) == 0 {
			fmt.Fprintln(sh.out, "No saved datasets.")
			return nil
		}
		tbl := ui.NewTable(3)
		for _, d := range defs {
			tbl.AddRow(ui.Hint(strconv.FormatInt(d.ID, 10)), ui.Name(d.Name), fmt.Sprintf("%s: %s", d.Table, strings.Join(d.Attributes, ", ")))
		}
		fmt.Fprint(sh.out, tbl.String())
		return nil

	case "load":
		if len(args) == 0 {
			return usageErr("load <id|name>")
		}
		def, err := sess.LoadDataset(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		rememberTable(def.Table)
		fmt.Fprintln(sh.out, ui.Successf("Loaded %s %s", ui.Name(def.Name), ui.Hint(fmt.Sprintf("(%s: %s)", def.Table, strings.Join(def.Attributes, ", ")))))
		return nil

	case "delete":
		if len(args) == 0 {
			return usageErr("delete <id|name>")
		}
		def, err := sess.DeleteDataset(strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(sh.out, ui.Successf("Deleted dataset %s", ui.Name(def.Name)))
		return nil

	case "refresh":
		table := sess.State().Table
		if table == "" {
			return sess.Refresh(ctx)
		}
		spin := newSpinner(fmt.Sprintf("Reloading %s", table))
		spin.Start()
		if err := sess.Refresh(ctx); err != nil {
			spin.Stop()
			return err
		}
		spin.StopWithCheck(fmt.Sprintf("Reloaded %s", table))
		return nil

	default:
		return fmt.Errorf("unknown command %q (type 'help' for commands)", name)
	}
}

func usageErr(usage string) error {
	return fmt.Errorf("usage: %s", usage)
}

// fieldUsageErr is usageErr plus the fields the command can act on.
func fieldUsageErr(usage string, st session.State) error {
	fields := st.FieldOptions()
	if len(fields) == 0 {
		return fmt.Errorf("usage: %s (select a column first)", usage)
	}
	return fmt.Errorf("usage: %s (fields: %s)", usage, strings.Join(fields, ", "))
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

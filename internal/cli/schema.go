package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/tabula/internal/record"
	"github.com/aidanlsb/tabula/internal/source"
	"github.com/aidanlsb/tabula/internal/ui"
)

var schemaHTML bool

type schemaResult struct {
	Table     string            `json:"table"`
	Columns   []source.Column   `json:"columns"`
	Relations []source.Relation `json:"relations"`
	Rows      int               `json:"rows"`
	Sample    *record.Record    `json:"sample,omitempty"`
}

var schemaCmd = &cobra.Command{
	Use:   "schema [table]",
	Short: "Describe a table's columns and relations",
	Long: `Show the columns of a table, how many rows it holds, its first row, and
the foreign-key relations it takes part in. Without a table, the last table used is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := resolveTable(args)
		if err != nil {
			return handleErr(err)
		}
		return withApp(cmd.Context(), func(a *app) error {
			ctx := cmd.Context()
			if err := a.session.Init(ctx); err != nil {
				return handleErr(err)
			}
			degraded := a.session.State().Degraded
			if err := a.session.SelectTable(ctx, table); err != nil {
				return handleErr(err)
			}
			rememberTable(table)

			st := a.session.State()
			degraded = degraded || st.Degraded
			res := schemaResult{
				Table:     st.Table,
				Columns:   st.Columns,
				Relations: source.RelationsFor(st.Relations, st.Table),
				Rows:      len(st.Rows),
			}
			if res.Relations == nil {
				res.Relations = []source.Relation{}
			}
			if len(st.Rows) > 0 {
				first := st.Rows[0].Clone()
				res.Sample = &first
			}

			if isJSONOutput() {
				var warnings []Warning
				if degraded {
					warnings = append(warnings, degradedWarning())
				}
				outputSuccessWithWarnings(res, warnings, &Meta{Count: len(res.Columns), Degraded: degraded})
				return nil
			}

			if degraded {
				printDegraded()
			}
			md := schemaMarkdown(res)
			if schemaHTML {
				html, err := ui.MarkdownHTML(md)
				if err != nil {
					return handleError(ErrInternal, err, "")
				}
				fmt.Print(html)
				return nil
			}
			display := ui.NewDisplayContext()
			if !display.IsTTY {
				fmt.Print(md)
				return nil
			}
			rendered, err := ui.RenderMarkdown(md, display.AvailableWidth(ui.MarkdownRenderMargin))
			if err != nil {
				fmt.Print(md)
				return nil
			}
			fmt.Print(rendered)
			return nil
		})
	},
}

// schemaMarkdown describes a table as a markdown document.
func schemaMarkdown(res schemaResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", res.Table)
	fmt.Fprintf(&sb, "%d rows, %d columns\n\n", res.Rows, len(res.Columns))

	sb.WriteString("| Column | Type |\n|---|---|\n")
	for _, col := range res.Columns {
		typ := col.Type
		if typ == "" {
			typ = "-"
		}
		fmt.Fprintf(&sb, "| %s | %s |\n", col.Name, typ)
	}

	if len(res.Relations) > 0 {
		sb.WriteString("\n## Relations\n\n")
		for _, rel := range res.Relations {
			fmt.Fprintf(&sb, "- %s\n", rel.Describe(res.Table))
		}
	}

	if res.Sample != nil {
		if raw, err := res.Sample.MarshalJSON(); err == nil {
			var pretty bytes.Buffer
			if json.Indent(&pretty, raw, "", "  ") == nil {
				fmt.Fprintf(&sb, "\n## First row\n\n```json\n%s\n```\n", pretty.String())
			}
		}
	}
	return sb.String()
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaHTML, "html", false, "Print the description as an HTML fragment")
	rootCmd.AddCommand(schemaCmd)
}

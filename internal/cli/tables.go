package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/tabula/internal/source"
	"github.com/aidanlsb/tabula/internal/ui"
)

type tableRow struct {
	Name      string `json:"name"`
	Relations int    `json:"relations"`
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables in the data source",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			if err := a.session.Init(cmd.Context()); err != nil {
				return handleErr(err)
			}
			st := a.session.State()

			rows := make([]tableRow, 0, len(st.Tables))
			for _, name := range st.Tables {
				rows = append(rows, tableRow{
					Name:      name,
					Relations: len(source.RelationsFor(st.Relations, name)),
				})
			}

			if isJSONOutput() {
				var warnings []Warning
				if st.Degraded {
					warnings = append(warnings, degradedWarning())
				}
				outputSuccessWithWarnings(map[string]interface{}{
					"source": a.sourceKind,
					"tables": rows,
				}, warnings, &Meta{Count: len(rows), Degraded: st.Degraded})
				return nil
			}

			if st.Degraded {
				printDegraded()
			}
			if len(rows) == 0 {
				fmt.Println("No tables found.")
				return nil
			}

			tbl := ui.NewTable(2)
			for _, row := range rows {
				rel := ""
				if row.Relations > 0 {
					rel = ui.Hint(ui.Count(row.Relations, "relation", "relations"))
				}
				tbl.AddRow(ui.Name(row.Name), rel)
			}
			fmt.Print(tbl.String())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}

package cli

import (
	"github.com/spf13/cobra"
)

var showOpts viewOptions

var showCmd = &cobra.Command{
	Use:   "show [table]",
	Short: "Show a table's rows, filtered, grouped, or charted",
	Long: `Load a table and print the current view.

The view is the grouped records when --group is set, otherwise the filtered
rows when --filter is set, otherwise every row. Without --select every
column is shown. At most ui.max_rows rows (default 1000) are displayed.

Examples:
  tabula show Customers --select CompanyName,City
  tabula show Orders --filter "EmployeeId:>:4" --group ShipCountry
  tabula show Products --chart bar --chart-field CategoryId`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := resolveTable(args)
		if err != nil {
			return handleErr(err)
		}
		return withApp(cmd.Context(), func(a *app) error {
			if err := showOpts.load(cmd.Context(), a.session, table); err != nil {
				return handleErr(err)
			}
			rememberTable(table)
			printView(a.session, showOpts.limit, showOpts.wantsChart())
			return nil
		})
	},
}

func init() {
	showOpts.register(showCmd.Flags())
	showOpts.registerDisplay(showCmd.Flags())
	rootCmd.AddCommand(showCmd)
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/tabula/internal/export"
	"github.com/aidanlsb/tabula/internal/ui"
)

var (
	exportOpts viewOptions
	exportOut  string
	exportGzip bool
)

type exportResult struct {
	Path    string   `json:"path,omitempty"`
	Headers []string `json:"headers"`
	Rows    int      `json:"rows"`
}

var exportCmd = &cobra.Command{
	Use:   "export [table]",
	Short: "Export the current view as CSV",
	Long: `Export the full view (not capped at the display limit) as CSV.

The file is named <table>_export.csv unless --out is given. Use --out - to
write to stdout and --gzip to compress the file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := resolveTable(args)
		if err != nil {
			return handleErr(err)
		}
		return withApp(cmd.Context(), func(a *app) error {
			if err := exportOpts.load(cmd.Context(), a.session, table); err != nil {
				return handleErr(err)
			}
			rememberTable(table)

			exp, err := a.session.Export()
			if err != nil {
				return handleErr(err)
			}

			if strings.TrimSpace(exportOut) == "-" {
				fmt.Println(exp.Content)
				return nil
			}

			path := exportOut
			if strings.TrimSpace(path) == "" {
				path = exp.Filename
			}
			written, err := export.WriteFile(path, exp.Content, exportGzip)
			if err != nil {
				return handleError(ErrFileWriteError, err, "")
			}

			if isJSONOutput() {
				outputSuccess(exportResult{Path: written, Headers: exp.Headers, Rows: exp.Rows}, &Meta{Count: exp.Rows})
				return nil
			}
			if a.session.State().Degraded {
				printDegraded()
			}
			fmt.Println(ui.Successf("Exported %s to %s", plural(exp.Rows, "row", "rows"), written))
			return nil
		})
	},
}

func init() {
	exportOpts.register(exportCmd.Flags())
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default <table>_export.csv, - for stdout)")
	exportCmd.Flags().BoolVar(&exportGzip, "gzip", false, "Compress the file with gzip (adds .gz)")
	rootCmd.AddCommand(exportCmd)
}

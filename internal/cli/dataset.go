package cli

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/tabula/internal/atomicfile"
	"github.com/aidanlsb/tabula/internal/datasets"
	"github.com/aidanlsb/tabula/internal/ui"
)

var (
	datasetSaveOpts  viewOptions
	datasetLoadOpts  viewOptions
	datasetExportOut string
)

var datasetCmd = &cobra.Command{
	Use:     "dataset",
	Aliases: []string{"datasets", "ds"},
	Short:   "Save and reload named column selections",
	Long: `A dataset is a saved (table, selected columns) pair. Loading one makes its
table current and selects exactly its columns, even ones the table no
longer has.`,
}

var datasetSaveCmd = &cobra.Command{
	Use:   "save <table> [name]",
	Short: "Save a table's column selection as a dataset",
	Long: `Save the columns chosen with --select (or every column with --all) under a
name. The name defaults to <table>_dataset.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		table := strings.TrimSpace(args[0])
		name := ""
		if len(args) > 1 {
			name = args[1]
		}
		return withApp(cmd.Context(), func(a *app) error {
			if err := datasetSaveOpts.load(cmd.Context(), a.session, table); err != nil {
				return handleErr(err)
			}
			def, err := a.session.SaveDataset(name)
			if err != nil {
				return handleErr(err)
			}
			rememberTable(table)

			if isJSONOutput() {
				outputSuccess(def, nil)
				return nil
			}
			fmt.Println(ui.Successf("Saved dataset %s %s", ui.Name(def.Name), ui.Hint(fmt.Sprintf("(id %d, %s)", def.ID, plural(len(def.Attributes), "column", "columns")))))
			return nil
		})
	},
}

var datasetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved datasets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			defs := a.session.Datasets()
			if isJSONOutput() {
				if defs == nil {
					defs = []datasets.Definition{}
				}
				outputSuccess(map[string]interface{}{"datasets": defs}, &Meta{Count: len(defs)})
				return nil
			}

			if len(defs) == 0 {
				fmt.Println("No saved datasets.")
				fmt.Println(ui.Hint("Save one with: tabula dataset save <table> <name> --select col1,col2"))
				return nil
			}

			tbl := ui.NewTable(4)
			for _, d := range defs {
				tbl.AddRow(
					ui.Hint(strconv.FormatInt(d.ID, 10)),
					ui.Name(d.Name),
					fmt.Sprintf("%s: %s", d.Table, strings.Join(d.Attributes, ", ")),
					ui.Hint(d.CreatedAt.Local().Format(time.DateTime)),
				)
			}
			fmt.Print(tbl.String())
			return nil
		})
	},
}

var datasetLoadCmd = &cobra.Command{
	Use:   "load <id|name>",
	Short: "Load a dataset and show its view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			spin := newSpinner("Loading dataset")
			spin.Start()
			def, err := a.session.LoadDataset(cmd.Context(), args[0])
			spin.Stop()
			if err != nil {
				return handleErr(err)
			}
			rememberTable(def.Table)

			if err := datasetLoadOpts.shape(a.session); err != nil {
				return handleErr(err)
			}
			printView(a.session, datasetLoadOpts.limit, datasetLoadOpts.wantsChart())
			return nil
		})
	},
}

var datasetDeleteCmd = &cobra.Command{
	Use:     "delete <id|name>",
	Aliases: []string{"rm"},
	Short:   "Delete a saved dataset",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			def, err := a.session.DeleteDataset(args[0])
			if err != nil {
				return handleErr(err)
			}
			if isJSONOutput() {
				outputSuccess(def, nil)
				return nil
			}
			fmt.Println(ui.Successf("Deleted dataset %s", ui.Name(def.Name)))
			return nil
		})
	},
}

var datasetExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every saved dataset as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			var buf bytes.Buffer
			if err := a.datasets.ExportYAML(&buf); err != nil {
				return handleErr(err)
			}

			if strings.TrimSpace(datasetExportOut) == "" {
				if isJSONOutput() {
					outputSuccess(map[string]interface{}{"yaml": buf.String()}, &Meta{Count: len(a.datasets.List())})
					return nil
				}
				fmt.Print(buf.String())
				return nil
			}

			if err := atomicfile.WriteFile(datasetExportOut, buf.Bytes(), 0o644); err != nil {
				return handleError(ErrFileWriteError, err, "")
			}
			if isJSONOutput() {
				outputSuccess(map[string]interface{}{"path": datasetExportOut}, &Meta{Count: len(a.datasets.List())})
				return nil
			}
			fmt.Println(ui.Successf("Wrote %s to %s", plural(len(a.datasets.List()), "dataset", "datasets"), datasetExportOut))
			return nil
		})
	},
}

var datasetImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import datasets from a YAML file (- for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return handleError(ErrFileReadError, err, "")
			}
			defer f.Close()
			in = f
		}

		return withApp(cmd.Context(), func(a *app) error {
			imported, err := a.datasets.ImportYAML(in)
			if err != nil {
				return handleErr(err)
			}
			if isJSONOutput() {
				if imported == nil {
					imported = []datasets.Definition{}
				}
				outputSuccess(map[string]interface{}{"datasets": imported}, &Meta{Count: len(imported)})
				return nil
			}
			fmt.Println(ui.Successf("Imported %s", plural(len(imported), "dataset", "datasets")))
			return nil
		})
	},
}

func init() {
	datasetSaveOpts.register(datasetSaveCmd.Flags())
	datasetLoadOpts.registerShape(datasetLoadCmd.Flags())
	datasetLoadOpts.registerDisplay(datasetLoadCmd.Flags())
	datasetExportCmd.Flags().StringVarP(&datasetExportOut, "out", "o", "", "Write to a file instead of stdout")

	datasetCmd.AddCommand(datasetSaveCmd)
	datasetCmd.AddCommand(datasetListCmd)
	datasetCmd.AddCommand(datasetLoadCmd)
	datasetCmd.AddCommand(datasetDeleteCmd)
	datasetCmd.AddCommand(datasetExportCmd)
	datasetCmd.AddCommand(datasetImportCmd)
	rootCmd.AddCommand(datasetCmd)
}

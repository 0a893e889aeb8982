package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/tabula/internal/config"
	"github.com/aidanlsb/tabula/internal/ui"
)

type sourceRow struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Target    string `json:"target,omitempty"`
	Fallback  bool   `json:"fallback"`
	IsDefault bool   `json:"is_default"`
	IsActive  bool   `json:"is_active"`
}

var (
	sourceAddKind       string
	sourceAddURL        string
	sourceAddPath       string
	sourceAddDSN        string
	sourceAddNoFallback bool
	sourceAddReplace    bool
	sourceAddUse        bool
)

type sourceContext struct {
	cfg        *config.Config
	state      *config.State
	configPath string
	statePath  string
}

func loadSourceContext() (*sourceContext, error) {
	loaded, path, err := loadGlobalConfigWithPath()
	if err != nil {
		return nil, err
	}
	statePath := config.ResolveStatePath(path, loaded)
	state, err := config.LoadState(statePath)
	if err != nil {
		return nil, err
	}
	return &sourceContext{cfg: loaded, state: state, configPath: path, statePath: statePath}, nil
}

func sourceRows(cfg *config.Config, state *config.State) []sourceRow {
	active := ""
	if state != nil {
		active = state.ActiveSource
	}
	rows := make([]sourceRow, 0, len(cfg.Sources))
	for _, name := range cfg.SourceNames() {
		s := cfg.Sources[name]
		rows = append(rows, sourceRow{
			Name:      name,
			Kind:      s.KindOrDefault(),
			Target:    sourceTarget(s),
			Fallback:  s.FallbackEnabled(),
			IsDefault: name == strings.TrimSpace(cfg.DefaultSource),
			IsActive:  name == active,
		})
	}
	return rows
}

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage named data sources",
	Long: `Named sources live under [sources.<name>] in config.toml. Pick one per
command with --source <name>, or make one active with 'tabula source use'.`,
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sources",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := loadSourceContext()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		rows := sourceRows(ctx.cfg, ctx.state)

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"default":        describeSource(ctx.cfg.Source),
				"default_source": strings.TrimSpace(ctx.cfg.DefaultSource),
				"active_source":  ctx.state.ActiveSource,
				"sources":        rows,
			}, &Meta{Count: len(rows)})
			return nil
		}

		fmt.Printf("   %-12s %s\n", "(default)", describeSource(ctx.cfg.Source))
		for _, row := range rows {
			prefix := "  "
			switch {
			case row.IsActive && row.IsDefault:
				prefix = ">*"
			case row.IsActive:
				prefix = "> "
			case row.IsDefault:
				prefix = " *"
			}
			fmt.Printf("%s %-12s %s\n", prefix, row.Name, describeSource(ctx.cfg.Sources[row.Name]))
		}
		if len(rows) > 0 {
			fmt.Println()
			fmt.Println(ui.Hint("> = active source (state)"))
			fmt.Println(ui.Hint("* = default source (config)"))
		}
		return nil
	},
}

var sourceAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a named source to config.toml",
	Example: `  tabula source add api --kind http --url https://localhost:7129
  tabula source add local --kind sqlite --path ./northwind.db
  tabula source add warehouse --kind postgres --dsn postgres://localhost/northwind`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(args[0])
		if name == "" || name == config.SourceSample {
			return handleErrorMsg(ErrConfigInvalid, fmt.Sprintf("invalid source name %q", args[0]), "")
		}

		ctx, err := loadSourceContext()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		if _, exists := ctx.cfg.Sources[name]; exists && !sourceAddReplace {
			return handleErrorMsg(ErrConfigInvalid, fmt.Sprintf("source '%s' already exists", name), "Use --replace to overwrite it")
		}

		sc := config.SourceConfig{
			Kind: strings.ToLower(strings.TrimSpace(sourceAddKind)),
			URL:  strings.TrimSpace(sourceAddURL),
			Path: strings.TrimSpace(sourceAddPath),
			DSN:  strings.TrimSpace(sourceAddDSN),
		}
		if sourceAddNoFallback {
			off := false
			sc.Fallback = &off
		}
		if err := sc.Validate(); err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		if ctx.cfg.Sources == nil {
			ctx.cfg.Sources = make(map[string]config.SourceConfig)
		}
		ctx.cfg.Sources[name] = sc
		if err := config.SaveTo(ctx.configPath, ctx.cfg); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if sourceAddUse {
			ctx.state.Use(name)
			if err := config.SaveState(ctx.statePath, ctx.state); err != nil {
				return handleError(ErrFileWriteError, err, "")
			}
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"name":   name,
				"source": sourceData(sc),
				"active": sourceAddUse,
			}, nil)
			return nil
		}
		fmt.Println(ui.Successf("Added source %s: %s", ui.Name(name), describeSource(sc)))
		return nil
	},
}

var sourceRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a named source from config.toml",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(args[0])
		ctx, err := loadSourceContext()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		if _, ok := ctx.cfg.Sources[name]; !ok {
			return handleErrorMsg(ErrSourceNotFound, fmt.Sprintf("source '%s' not found in config", name), "Run 'tabula source list' to see configured sources")
		}

		delete(ctx.cfg.Sources, name)
		clearedDefault := false
		if strings.TrimSpace(ctx.cfg.DefaultSource) == name {
			ctx.cfg.DefaultSource = ""
			clearedDefault = true
		}
		if err := config.SaveTo(ctx.configPath, ctx.cfg); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		clearedActive := false
		if ctx.state.ActiveSource == name {
			ctx.state.ActiveSource = ""
			if err := config.SaveState(ctx.statePath, ctx.state); err != nil {
				return handleError(ErrFileWriteError, err, "")
			}
			clearedActive = true
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"name":            name,
				"cleared_default": clearedDefault,
				"cleared_active":  clearedActive,
			}, nil)
			return nil
		}
		fmt.Println(ui.Successf("Removed source %s", ui.Name(name)))
		return nil
	},
}

var sourceUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Make a named source active (saved in state.toml)",
	Long:  `Make a named source active. Pass "default" to go back to the configured default.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(args[0])
		ctx, err := loadSourceContext()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		if name == "default" {
			name = ""
		} else if _, ok := ctx.cfg.Sources[name]; !ok {
			return handleErrorMsg(ErrSourceNotFound, fmt.Sprintf("source '%s' not found in config", name), "Run 'tabula source list' to see configured sources")
		}

		ctx.state.Use(name)
		if err := config.SaveState(ctx.statePath, ctx.state); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"active_source": name,
				"state_path":    ctx.statePath,
			}, nil)
			return nil
		}
		if name == "" {
			fmt.Println(ui.Success("Using the default source"))
		} else {
			fmt.Println(ui.Successf("Using source %s", ui.Name(name)))
		}
		return nil
	},
}

func init() {
	sourceAddCmd.Flags().StringVar(&sourceAddKind, "kind", config.SourceHTTP, "Source kind: http, sqlite, or postgres")
	sourceAddCmd.Flags().StringVar(&sourceAddURL, "url", "", "Base URL of the REST API (http)")
	sourceAddCmd.Flags().StringVar(&sourceAddPath, "path", "", "Database file (sqlite)")
	sourceAddCmd.Flags().StringVar(&sourceAddDSN, "dsn", "", "Connection string (postgres)")
	sourceAddCmd.Flags().BoolVar(&sourceAddNoFallback, "no-fallback", false, "Fail instead of using sample data when the source is unreachable")
	sourceAddCmd.Flags().BoolVar(&sourceAddReplace, "replace", false, "Overwrite an existing source with the same name")
	sourceAddCmd.Flags().BoolVar(&sourceAddUse, "use", false, "Make the new source active")

	sourceCmd.AddCommand(sourceListCmd)
	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceRemoveCmd)
	sourceCmd.AddCommand(sourceUseCmd)
	rootCmd.AddCommand(sourceCmd)
}

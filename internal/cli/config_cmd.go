package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/tabula/internal/config"
)

type globalConfigContext struct {
	cfg          *config.Config
	configPath   string
	statePath    string
	configExists bool
}

var (
	configSetDefaultSource string
	configSetStoreKind     string
	configSetStorePath     string
	configSetUIAccent      string
	configSetUICodeTheme   string
	configSetUIMaxRows     int
	configSetLogLevel      string
)

func loadGlobalConfigContext() (*globalConfigContext, error) {
	loaded, path, err := loadGlobalConfigWithPath()
	if err != nil {
		return nil, err
	}
	_, statErr := os.Stat(path)
	return &globalConfigContext{
		cfg:          loaded,
		configPath:   path,
		statePath:    config.ResolveStatePath(path, loaded),
		configExists: statErr == nil,
	}, nil
}

func configData(ctx *globalConfigContext) map[string]interface{} {
	sources := make(map[string]interface{}, len(ctx.cfg.Sources))
	for name, s := range ctx.cfg.Sources {
		sources[name] = sourceData(s)
	}

	return map[string]interface{}{
		"config_path":    ctx.configPath,
		"state_path":     ctx.statePath,
		"exists":         ctx.configExists,
		"default_source": strings.TrimSpace(ctx.cfg.DefaultSource),
		"log_level":      strings.TrimSpace(ctx.cfg.LogLevel),
		"source":         sourceData(ctx.cfg.Source),
		"sources":        sources,
		"store": map[string]interface{}{
			"kind": strings.TrimSpace(ctx.cfg.Store.Kind),
			"path": ctx.cfg.StorePath(ctx.configPath),
		},
		"ui": map[string]interface{}{
			"accent":     strings.TrimSpace(ctx.cfg.UI.Accent),
			"code_theme": strings.TrimSpace(ctx.cfg.UI.CodeTheme),
			"max_rows":   ctx.cfg.MaxRows(),
		},
	}
}

func sourceData(s config.SourceConfig) map[string]interface{} {
	data := map[string]interface{}{
		"kind":     s.KindOrDefault(),
		"fallback": s.FallbackEnabled(),
	}
	if s.URL != "" {
		data["url"] = s.URL
	}
	if s.Path != "" {
		data["path"] = s.Path
	}
	if s.DSN != "" {
		data["dsn"] = redactDSN(s.DSN)
	}
	return data
}

// redactDSN hides the password in a postgres URL.
func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	if i := strings.Index(creds, ":"); i >= 0 {
		return dsn[:scheme+3] + creds[:i] + ":***" + dsn[at:]
	}
	return dsn
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage global tabula configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config and state file locations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := loadGlobalConfigContext()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"config_path": ctx.configPath,
				"state_path":  ctx.statePath,
				"store_path":  ctx.cfg.StorePath(ctx.configPath),
				"exists":      ctx.configExists,
			}, nil)
			return nil
		}
		fmt.Printf("config: %s\n", ctx.configPath)
		fmt.Printf("state:  %s\n", ctx.statePath)
		fmt.Printf("store:  %s\n", ctx.cfg.StorePath(ctx.configPath))
		if !ctx.configExists {
			fmt.Println("(config file does not exist; run 'tabula config init')")
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default global config.toml if missing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		targetPath := config.ResolveConfigPath(configPath)
		if _, err := os.Stat(targetPath); err != nil && !os.IsNotExist(err) {
			return handleError(ErrFileReadError, err, "")
		}

		created, err := config.CreateDefault(targetPath)
		if err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"config_path": targetPath,
				"created":     created,
			}, nil)
			return nil
		}

		if created {
			fmt.Printf("Created config: %s\n", targetPath)
		} else {
			fmt.Printf("Config already exists: %s\n", targetPath)
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current global config.toml values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := loadGlobalConfigContext()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		data := configData(ctx)
		if isJSONOutput() {
			outputSuccess(data, nil)
			return nil
		}

		fmt.Printf("config: %s\n", ctx.configPath)
		if !ctx.configExists {
			fmt.Println("(file does not exist; showing defaults)")
		}
		src := ctx.cfg.Source
		fmt.Printf("source: %s\n", describeSource(src))
		if name := strings.TrimSpace(ctx.cfg.DefaultSource); name != "" {
			fmt.Printf("default_source: %s\n", name)
		}
		for _, name := range ctx.cfg.SourceNames() {
			fmt.Printf("sources.%s: %s\n", name, describeSource(ctx.cfg.Sources[name]))
		}
		storeKind := ctx.cfg.Store.Kind
		if storeKind == "" {
			storeKind = config.StoreFile
		}
		fmt.Printf("store: %s %s\n", storeKind, ctx.cfg.StorePath(ctx.configPath))
		if accent := strings.TrimSpace(ctx.cfg.UI.Accent); accent != "" {
			fmt.Printf("ui.accent: %s\n", accent)
		}
		if theme := strings.TrimSpace(ctx.cfg.UI.CodeTheme); theme != "" {
			fmt.Printf("ui.code_theme: %s\n", theme)
		}
		fmt.Printf("ui.max_rows: %d\n", ctx.cfg.MaxRows())
		if level := strings.TrimSpace(ctx.cfg.LogLevel); level != "" {
			fmt.Printf("log_level: %s\n", level)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set one or more global config.toml fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := loadGlobalConfigContext()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		flags := cmd.Flags()
		changed := false
		if flags.Changed("default-source") {
			name := strings.TrimSpace(configSetDefaultSource)
			if _, ok := ctx.cfg.Sources[name]; name != "" && !ok {
				return handleErrorMsg(ErrSourceNotFound, fmt.Sprintf("source '%s' not found in config", name), "Add it with 'tabula source add'")
			}
			ctx.cfg.DefaultSource = name
			changed = true
		}
		if flags.Changed("store-kind") {
			kind := strings.ToLower(strings.TrimSpace(configSetStoreKind))
			if kind != config.StoreFile && kind != config.StoreSQLite {
				return handleErrorMsg(ErrConfigInvalid, fmt.Sprintf("unknown store kind %q (expected file or sqlite)", configSetStoreKind), "")
			}
			ctx.cfg.Store.Kind = kind
			changed = true
		}
		if flags.Changed("store-path") {
			ctx.cfg.Store.Path = strings.TrimSpace(configSetStorePath)
			changed = true
		}
		if flags.Changed("ui-accent") {
			ctx.cfg.UI.Accent = strings.TrimSpace(configSetUIAccent)
			changed = true
		}
		if flags.Changed("ui-code-theme") {
			ctx.cfg.UI.CodeTheme = strings.TrimSpace(configSetUICodeTheme)
			changed = true
		}
		if flags.Changed("ui-max-rows") {
			if configSetUIMaxRows < 0 {
				return handleErrorMsg(ErrConfigInvalid, "ui.max_rows must be zero or positive", "")
			}
			ctx.cfg.UI.MaxRows = configSetUIMaxRows
			changed = true
		}
		if flags.Changed("log-level") {
			level := strings.ToLower(strings.TrimSpace(configSetLogLevel))
			switch level {
			case "", "debug", "info", "warn", "error", "off":
			default:
				return handleErrorMsg(ErrConfigInvalid, fmt.Sprintf("unknown log level %q", configSetLogLevel), "Use debug, info, warn, error, or off")
			}
			ctx.cfg.LogLevel = level
			changed = true
		}
		if !changed {
			return handleErrorMsg(ErrConfigInvalid, "no fields given", "Run 'tabula config set --help' to see settable fields")
		}

		if err := config.SaveTo(ctx.configPath, ctx.cfg); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}
		ctx.configExists = true

		if isJSONOutput() {
			outputSuccess(configData(ctx), nil)
			return nil
		}
		fmt.Printf("Updated config: %s\n", ctx.configPath)
		return nil
	},
}

// sourceTarget is the URL, file, or redacted DSN a source points at.
func sourceTarget(s config.SourceConfig) string {
	switch s.KindOrDefault() {
	case config.SourceHTTP:
		return s.URL
	case config.SourceSQLite:
		return s.Path
	case config.SourcePostgres:
		return redactDSN(s.DSN)
	}
	return ""
}

func describeSource(s config.SourceConfig) string {
	out := s.KindOrDefault()
	if target := sourceTarget(s); target != "" {
		out += " " + target
	}
	if !s.FallbackEnabled() {
		out += " (no fallback)"
	}
	return out
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)

	configSetCmd.Flags().StringVar(&configSetDefaultSource, "default-source", "", "Set default_source to a configured source name (empty clears it)")
	configSetCmd.Flags().StringVar(&configSetStoreKind, "store-kind", "", "Set store.kind (file|sqlite)")
	configSetCmd.Flags().StringVar(&configSetStorePath, "store-path", "", "Set store.path (absolute or relative to the config directory)")
	configSetCmd.Flags().StringVar(&configSetUIAccent, "ui-accent", "", "Set UI accent color (ANSI 0-255 or #RRGGBB)")
	configSetCmd.Flags().StringVar(&configSetUICodeTheme, "ui-code-theme", "", "Set markdown code theme name")
	configSetCmd.Flags().IntVar(&configSetUIMaxRows, "ui-max-rows", 0, "Set ui.max_rows (0 restores the default of 1000)")

	configSetCmd.Flags().StringVar(&configSetLogLevel, "log-level", "", "Set log_level (debug|info|warn|error|off)")

	rootCmd.AddCommand(configCmd)
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aidanlsb/tabula/internal/config"
	"github.com/aidanlsb/tabula/internal/logging"
	"github.com/aidanlsb/tabula/internal/ui"
)

var (
	// Global flags
	configPath string
	sourceName string
	verbose    bool

	// Resolved values
	resolvedConfigPath string
	resolvedStatePath  string
	cfg                *config.Config
	logger             = zerolog.Nop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tabula",
	Short: "Tabula - explore tables from the command line",
	Long: `Tabula lets you pick a table from a data source, choose columns, filter
and group rows, look at value distributions, export CSV, and save the
selection as a named dataset to reload later.

Sources can be a REST API, a SQLite file, or a PostgreSQL database. When a
source cannot be reached, tabula falls back to built-in sample data.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "completion", "help", "version":
			return nil
		}

		logger = logging.New(os.Stderr, verbose, !ui.ColorEnabled(os.Stderr))

		loaded, path, err := loadGlobalConfigWithPath()
		if err != nil {
			err = fmt.Errorf("failed to load config: %w", err)
			if isJSONOutput() {
				outputError(ErrConfigInvalid, err.Error(), "Run 'tabula config path' to locate the file")
				cmd.SilenceErrors = true
			}
			return err
		}
		cfg = loaded
		resolvedConfigPath = path
		resolvedStatePath = config.ResolveStatePath(resolvedConfigPath, cfg)
		if !verbose && strings.TrimSpace(cfg.LogLevel) != "" {
			logger = logger.Level(logging.ParseLevel(cfg.LogLevel))
		}

		ui.ConfigureTheme(cfg.UI.Accent)
		ui.ConfigureMarkdownCodeTheme(cfg.UI.CodeTheme)
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVarP(&sourceName, "source", "s", "", "Named source from config (or 'sample')")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for script use)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug details to stderr")
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	if cfg == nil {
		return &config.Config{}
	}
	return cfg
}

// loadGlobalConfigWithPath loads config.toml. A missing file yields the
// defaults, whether or not --config named it.
func loadGlobalConfigWithPath() (*config.Config, string, error) {
	resolvedPath := config.ResolveConfigPath(configPath)

	if strings.TrimSpace(configPath) == "" {
		loaded, err := config.Load()
		if err != nil {
			return nil, "", err
		}
		return loaded, resolvedPath, nil
	}

	if _, err := os.Stat(resolvedPath); os.IsNotExist(err) {
		return &config.Config{}, resolvedPath, nil
	}
	loaded, err := config.LoadFrom(resolvedPath)
	if err != nil {
		return nil, "", err
	}
	return loaded, resolvedPath, nil
}

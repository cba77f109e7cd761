// Package cli provides the command-line interface for the country table.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/JonMunkholm/countrytable/internal/config"
	"github.com/JonMunkholm/countrytable/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// configKey is used to store config in context.
type configKey struct{}

// loggerKey is used to store the command logger in context.
type loggerKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "countries",
		Short: "Browse the country dataset from the terminal",
		Long: `countries fetches the country dataset once and renders it as a table
with the same filtering, sorting and pagination as the web page.

Settings come from the environment (SOURCE_KIND, SOURCE_URL, DATABASE_URL, ...);
the persistent flags below override them.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "version" {
				return nil
			}

			cfg, err := loadConfig(cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			ctx = context.WithValue(ctx, loggerKey{}, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.String("source", "", "Dataset source (http|file|postgres)")
	pf.String("url", "", "Dataset URL for the http source")
	pf.String("file", "", "JSON snapshot path for the file source")
	pf.String("database-url", "", "PostgreSQL connection string")
	pf.Duration("fetch-timeout", 0, "Bound on the dataset fetch (0 for none)")
	pf.String("log-level", "", "Log level (debug|info|warn|error)")

	_ = rootCmd.RegisterFlagCompletionFunc("source", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.SourceHTTP, config.SourceFile, config.SourcePostgres}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(NewShowCommand())
	rootCmd.AddCommand(NewSyncCommand())
	rootCmd.AddCommand(NewVersionCommand(Version))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// loadConfig reads the environment configuration and applies the flags that
// were set explicitly, then validates the result.
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if flags.Changed("source") {
		cfg.Source.Kind, _ = flags.GetString("source")
	}
	if flags.Changed("url") {
		cfg.Source.URL, _ = flags.GetString("url")
	}
	if flags.Changed("file") {
		cfg.Source.File, _ = flags.GetString("file")
	}
	if flags.Changed("database-url") {
		cfg.Database.URL, _ = flags.GetString("database-url")
	}
	if flags.Changed("fetch-timeout") {
		cfg.Source.FetchTimeout, _ = flags.GetDuration("fetch-timeout")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return nil
}

// getLogger retrieves the command logger, falling back to the default.
func getLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

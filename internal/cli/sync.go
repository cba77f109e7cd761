package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/countrytable/internal/config"
	"github.com/JonMunkholm/countrytable/internal/source"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// errNoDatabaseURL is returned by sync without a target database.
var errNoDatabaseURL = errors.New("sync needs DATABASE_URL or --database-url")

// NewSyncCommand creates the sync command.
func NewSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Copy the dataset into PostgreSQL",
		Long: `Fetch the dataset from the http or file source and replace the snapshot
stored in PostgreSQL. The server reads that snapshot with SOURCE_KIND=postgres.`,
		Example: `  # Snapshot the public endpoint
  countries sync --database-url postgres://localhost/countries

  # Snapshot a local file
  countries sync --source file --file countries.json`,
		Args: cobra.NoArgs,
		RunE: runSync,
	}
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := GetConfig(ctx)
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}
	if strings.EqualFold(cfg.Source.Kind, config.SourcePostgres) {
		return fmt.Errorf("sync reads from the http or file source, not %s", cfg.Source.Kind)
	}
	if cfg.Database.URL == "" {
		return errNoDatabaseURL
	}
	logger := getLogger(ctx)

	f, err := source.NewFetcher(cfg.Source, nil)
	if err != nil {
		return err
	}
	start := time.Now()
	records, err := source.NewLoader(f, cfg.Source.FetchTimeout).WithLogger(logger).Load(ctx)
	if err != nil {
		return fmt.Errorf("fetch countries: %w", err)
	}
	logger.Info("fetched countries", "count", len(records), "took", time.Since(start))

	pool, err := source.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := source.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	n, err := store.Replace(ctx, records)
	if err != nil {
		return err
	}

	logger.Info("snapshot replaced", "table", source.TableName, "rows", n)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Synced %s countries into %s\n", humanize.Comma(n), source.TableName)
	return nil
}

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/countrytable/internal/config"
	"github.com/JonMunkholm/countrytable/internal/core"
	"github.com/JonMunkholm/countrytable/internal/country"
	"github.com/JonMunkholm/countrytable/internal/source"
	"github.com/JonMunkholm/countrytable/internal/table"
	"github.com/spf13/cobra"
)

// showOptions holds the flags of the show command.
type showOptions struct {
	filters []string
	sort    string
	dir     string
	page    int
	size    int
	output  string
}

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	opts := &showOptions{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Render one page of the country table",
		Long: `Fetch the dataset and render one page of the country table.

Filters match the start of a column value, ignoring case. Only name and
population sort; population sorts descending unless --dir is given.`,
		Example: `  # First page with the default size
  countries show

  # Countries whose name starts with "a", sorted by name
  countries show --filter name=a --sort name

  # Second page of African countries by population, 15 per page
  countries show --filter region=af --sort population --page 2 --size 15

  # Same page as Markdown, reading a local snapshot
  countries show --source file --file countries.json --output markdown`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShow(cmd, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.filters, "filter", "f", nil, "Column filter as column=value (repeatable)")
	cmd.Flags().StringVarP(&opts.sort, "sort", "s", "", "Column to sort by (name|population)")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "Sort direction (asc|desc)")
	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "Page number, starting at 1")
	cmd.Flags().IntVarP(&opts.size, "size", "n", 0, "Rows per page (0 for the configured default)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", formatTable, "Output format (table|json|csv|markdown)")

	_ = cmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return outputFormats, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("sort", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{country.ColName, country.ColPopulation}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runShow(cmd *cobra.Command, opts *showOptions) error {
	if !validFormat(opts.output) {
		return fmt.Errorf("unknown output format %q (want one of: %s)", opts.output, strings.Join(outputFormats, ", "))
	}

	ctx := cmd.Context()
	cfg := GetConfig(ctx)
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}
	cols := country.Columns()

	st, err := opts.state(cols)
	if err != nil {
		return err
	}

	loader, cleanup, err := openLoader(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	logger := getLogger(ctx)
	logger.Debug("fetching countries", "source", cfg.Source.Kind)
	if _, err := loader.Load(ctx); err != nil {
		return fmt.Errorf("%w: %w", core.ErrDataUnavailable, err)
	}

	svc := core.NewService(loader, cfg)
	page, applied, err := svc.Query(ctx, st)
	if err != nil {
		return err
	}
	if applied.Pagination.PageIndex != st.Pagination.PageIndex {
		logger.Info("page out of range, showing last page",
			"requested", st.Pagination.PageIndex+1, "shown", applied.Pagination.PageIndex+1)
	}

	return renderPage(cmd.OutOrStdout(), opts.output, cols, page)
}

// state converts the flags into a table state. Filters and sort must name
// known columns.
func (o *showOptions) state(cols table.Columns[country.Record]) (table.State, error) {
	var st table.State

	for _, raw := range o.filters {
		id, value, ok := strings.Cut(raw, "=")
		if !ok {
			return table.State{}, fmt.Errorf("filter %q: want column=value", raw)
		}
		id = strings.TrimSpace(id)
		c, found := cols.Lookup(id)
		if !found {
			return table.State{}, fmt.Errorf("filter %q: %w", id, table.ErrUnknownColumn)
		}
		if !c.Filterable {
			return table.State{}, fmt.Errorf("filter %q: column is not filterable", id)
		}
		st.Filters = st.Filters.Set(id, value)
	}

	if o.sort != "" {
		sd, err := table.NextSort(cols, nil, o.sort)
		if err != nil {
			return table.State{}, fmt.Errorf("sort %q: %w", o.sort, err)
		}
		if sd == nil {
			return table.State{}, fmt.Errorf("sort %q: column is not sortable", o.sort)
		}
		switch o.dir {
		case "":
		case string(table.Ascending), string(table.Descending):
			sd.Direction = table.Direction(o.dir)
		default:
			return table.State{}, fmt.Errorf("dir %q: want asc or desc", o.dir)
		}
		st.Sort = sd
	} else if o.dir != "" {
		return table.State{}, fmt.Errorf("--dir needs --sort")
	}

	if o.page < 1 {
		return table.State{}, fmt.Errorf("page %d: pages start at 1", o.page)
	}
	if o.size < 0 {
		return table.State{}, fmt.Errorf("size %d: %w", o.size, table.ErrInvalidPageSize)
	}
	st.Pagination = table.Pagination{PageIndex: o.page - 1, PageSize: o.size}
	return st, nil
}

// openLoader builds the loader for the configured source. The returned
// cleanup releases the database pool, if one was opened.
func openLoader(ctx context.Context, cfg *config.Config) (*source.Loader, func(), error) {
	cleanup := func() {}

	var db source.Querier
	if strings.EqualFold(cfg.Source.Kind, config.SourcePostgres) {
		pool, err := source.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		db = pool
		cleanup = pool.Close
	}

	f, err := source.NewFetcher(cfg.Source, db)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return source.NewLoader(f, cfg.Source.FetchTimeout).WithLogger(getLogger(ctx)), cleanup, nil
}

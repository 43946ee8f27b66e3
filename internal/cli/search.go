package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/jsonsearch/internal/ir"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Single bool
}

// SearchOutput is one page of search results.
type SearchOutput struct {
	Rows     []ir.Record `json:"rows"`
	Count    int64       `json:"count"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Pages    int64       `json:"pages"`
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search [search.json|-]",
		Short: "Run a search document against a database",
		Long: `Compile a JSON search document and run it, printing the requested page
together with the total count.

Example:
  jsonsearch search -d orders.yaml --driver sqlite --dsn shop.db search.json
  jsonsearch search -d orders.yaml --driver pgx --dsn postgres://localhost/shop --format json -`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Single, "single", false, "expect exactly one matching row, ignoring paging")

	return cmd
}

func runSearch(opts *SearchOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if opts.Driver == "" {
		return formatter.Fail(coded(ErrCodeInvalidConfig,
			errors.New("search needs a database (use --driver and --dsn)")))
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	srch, closeStore, err := buildSearch(ctx, opts.RootOptions, args, cmd.InOrStdin())
	if err != nil {
		return formatter.Fail(err)
	}
	defer closeStore()

	out := &SearchOutput{}
	if opts.Single {
		row, err := srch.FindSingle(ctx)
		if err != nil {
			return formatter.Fail(err)
		}
		out.Rows = []ir.Record{row}
		out.Count, out.PageSize, out.Pages = 1, 1, 1
	} else {
		res, err := srch.Result(ctx)
		if err != nil {
			return formatter.Fail(err)
		}
		out.Rows = res.Values
		out.Count = res.Count
		out.Page = res.Page
		out.PageSize = res.PageSize
		out.Pages = res.Pages()
	}
	formatter.VerboseLog("Fetched %s of %d", pluralize(len(out.Rows), "row"), out.Count)

	if formatter.Format == "json" {
		return formatter.Success(out)
	}

	renderRecords(formatter.Writer, out.Rows)
	fmt.Fprintf(formatter.Writer, "%s matched, page %d of %d (page size %d)\n",
		pluralize(int(out.Count), "row"), out.Page+1, max(out.Pages, 1), out.PageSize)
	return nil
}

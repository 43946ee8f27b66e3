package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/jsonsearch/internal/ir"
	"github.com/roach88/jsonsearch/internal/querysql"
)

// ParamOutput is one bound parameter of a compiled statement.
type ParamOutput struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
	Text  string          `json:"-"`
}

// StatementOutput is a compiled statement and its parameters in bind order.
type StatementOutput struct {
	SQL    string        `json:"sql"`
	Params []ParamOutput `json:"params"`
}

// CompileResult holds the statements compiled from one search document.
type CompileResult struct {
	Select   StatementOutput `json:"select"`
	Count    StatementOutput `json:"count"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [search.json|-]",
		Short: "Compile a search document to SQL",
		Long: `Compile a JSON search document into the select and count statements
it describes, without running them.

The document is read from the named file, or from stdin when the name is
"-" or omitted. Reference parameters are resolved against the database,
so searches that use them need --driver and --dsn.

Example:
  jsonsearch compile -d orders.yaml search.json
  echo '{"filter":[{"status":{"$eq":"A"}}]}' | jsonsearch compile -d orders.yaml`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runCompile(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	ctx, cancel := commandContext(cmd)
	defer cancel()

	srch, closeStore, err := buildSearch(ctx, opts, args, cmd.InOrStdin())
	if err != nil {
		return formatter.Fail(err)
	}
	defer closeStore()

	selectStmt, err := srch.CompileSelect()
	if err != nil {
		return formatter.Fail(err)
	}
	countStmt, err := srch.CompileCount()
	if err != nil {
		return formatter.Fail(err)
	}

	result := &CompileResult{Page: srch.Page(), PageSize: srch.PageSize()}
	if result.Select, err = newStatementOutput(selectStmt); err != nil {
		return formatter.Fail(err)
	}
	if result.Count, err = newStatementOutput(countStmt); err != nil {
		return formatter.Fail(err)
	}
	formatter.VerboseLog("Compiled %s", pluralize(len(result.Select.Params), "parameter"))

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	writeCompileResult(formatter.Writer, result)
	return nil
}

func newStatementOutput(frag *querysql.Fragment) (StatementOutput, error) {
	out := StatementOutput{SQL: frag.Text(), Params: []ParamOutput{}}
	for _, name := range frag.Names() {
		v, _ := frag.Param(name)
		raw, err := ir.MarshalValue(v)
		if err != nil {
			return StatementOutput{}, fmt.Errorf("marshaling parameter %s: %w", name, err)
		}
		out.Params = append(out.Params, ParamOutput{Name: name, Value: raw, Text: ir.Format(v)})
	}
	return out, nil
}

func writeCompileResult(w io.Writer, result *CompileResult) {
	fmt.Fprintln(w, "-- select --")
	fmt.Fprintln(w, result.Select.SQL)
	renderParams(w, result.Select.Params)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "-- count --")
	fmt.Fprintln(w, result.Count.SQL)
	renderParams(w, result.Count.Params)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "page %d, page size %d\n", result.Page, result.PageSize)
}

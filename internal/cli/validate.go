package cli

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/roach88/jsonsearch/internal/catalog"
)

// ParameterOutput describes one declared search parameter.
type ParameterOutput struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Type   string `json:"type"`
	Entity string `json:"entity,omitempty"`
}

// ValidationResult holds a validated definition summary.
type ValidationResult struct {
	Valid      bool              `json:"valid"`
	Name       string            `json:"name,omitempty"`
	From       string            `json:"from"`
	Distinct   bool              `json:"distinct"`
	PageSize   int               `json:"page_size"`
	Parameters []ParameterOutput `json:"parameters"`
	Entities   []string          `json:"entities,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a search definition",
		Long: `Load a search definition file and report the parameters it declares.

YAML and JSON definitions are decoded strictly; CUE definitions are
unified with the definition schema before decoding.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	def, err := loadDefinition(opts.Definition)
	if err != nil {
		return formatter.Fail(err)
	}
	cat, err := def.Catalog()
	if err != nil {
		return formatter.Fail(err)
	}
	formatter.VerboseLog("Loaded definition %s", opts.Definition)

	result := newValidationResult(def, cat)
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	writeValidationResult(formatter.Writer, result)
	return nil
}

func newValidationResult(def *catalog.Definition, cat *catalog.Catalog) *ValidationResult {
	result := &ValidationResult{
		Valid:      true,
		Name:       def.Name,
		From:       def.From,
		Distinct:   def.Distinct,
		PageSize:   def.EffectivePageSize(),
		Parameters: make([]ParameterOutput, 0, cat.Len()),
		Entities:   cat.Entities(),
	}
	for _, decl := range cat.Declarations() {
		result.Parameters = append(result.Parameters, ParameterOutput{
			Name:   decl.Name,
			Path:   decl.Path,
			Type:   decl.Type.String(),
			Entity: decl.Entity,
		})
	}
	return result
}

func writeValidationResult(w io.Writer, result *ValidationResult) {
	name := result.Name
	if name == "" {
		name = result.From
	}
	fmt.Fprintf(w, "✓ Definition %s is valid: %s\n\n",
		name, pluralize(len(result.Parameters), "parameter"))

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"name", "path", "type", "entity"})
	table.SetAutoFormatHeaders(false)
	for _, p := range result.Parameters {
		table.Append([]string{p.Name, p.Path, p.Type, p.Entity})
	}
	table.Render()
}

package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/jsonsearch/internal/ir"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Definition is the search definition file.
	// LoadScenario resolves it relative to the scenario file.
	Definition string `yaml:"definition"`

	// Setup holds SQL statements run against the fresh database before
	// any step.
	Setup []string `yaml:"setup,omitempty"`

	// Steps are the searches to run, in order. Every step starts from a
	// new search built from the definition.
	Steps []Step `yaml:"steps"`

	// Assertions validate the step results after all steps ran.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one search document and what it should produce.
type Step struct {
	// Search is the search document, written as YAML.
	Search map[string]any `yaml:"search"`

	// Expect specifies the expected outcome.
	// If nil, the step only has to succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Error is the expected search error code (e.g. "UNKNOWN_OPERATOR").
	// When set, the step must fail with it and the other fields are ignored.
	Error string `yaml:"error,omitempty"`

	// Select is the exact expected select statement.
	Select string `yaml:"select,omitempty"`

	// Total is the expected count.
	Total *int64 `yaml:"total,omitempty"`

	// Rows is the expected number of rows on the page.
	Rows *int `yaml:"rows,omitempty"`
}

// Assertion validates the result of one step.
type Assertion struct {
	// Type specifies the assertion type:
	// - "statement_contains": select statement contains Text
	// - "rows_order": rows carry Field values exactly as Values
	// - "row_contains": some row matches Expect (subset match)
	// - "total": count equals Count
	Type string `yaml:"type"`

	// Step is the 1-based step the assertion applies to.
	Step int `yaml:"step"`

	// Text is the expected statement fragment (statement_contains).
	Text string `yaml:"text,omitempty"`

	// Field and Values give the expected column sequence (rows_order).
	Field  string `yaml:"field,omitempty"`
	Values []any  `yaml:"values,omitempty"`

	// Expect contains expected column values (row_contains).
	Expect map[string]any `yaml:"expect,omitempty"`

	// Count is the expected count (total).
	Count int64 `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertStatementContains = "statement_contains"
	AssertRowsOrder         = "rows_order"
	AssertRowContains       = "row_contains"
	AssertTotal             = "total"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the definition path relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Definition != "" && !filepath.IsAbs(scenario.Definition) && basePath != "" {
		scenario.Definition = filepath.Join(basePath, scenario.Definition)
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario decodes scenario YAML without validating it.
// Unknown fields are rejected.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Definition == "" {
		return fmt.Errorf("definition is required")
	}
	if _, err := os.Stat(s.Definition); os.IsNotExist(err) {
		return fmt.Errorf("definition file not found: %s", s.Definition)
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Search == nil {
			return fmt.Errorf("steps[%d]: search is required (use {} for the empty search)", i)
		}
		if step.Expect != nil && step.Expect.Error != "" && !knownErrorCode(step.Expect.Error) {
			return fmt.Errorf("steps[%d].expect: unknown error code %q", i, step.Expect.Error)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, len(s.Steps)); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, steps int) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Step < 1 || a.Step > steps {
		return fmt.Errorf("assertions[%d]: step %d out of range 1..%d", index, a.Step, steps)
	}

	switch a.Type {
	case AssertStatementContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for statement_contains", index)
		}
	case AssertRowsOrder:
		if a.Field == "" {
			return fmt.Errorf("assertions[%d]: field is required for rows_order", index)
		}
	case AssertRowContains:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for row_contains", index)
		}
	case AssertTotal:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for total", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func knownErrorCode(code string) bool {
	switch ir.ErrorCode(code) {
	case ir.ErrCodeMalformedFilter, ir.ErrCodeMalformedDocument, ir.ErrCodeUnknownOperator,
		ir.ErrCodeUnknownSortDirection, ir.ErrCodeUnknownParameter, ir.ErrCodeOperatorValueMismatch,
		ir.ErrCodeOperatorRequiresValue, ir.ErrCodeArity, ir.ErrCodeValueParse,
		ir.ErrCodeReferenceNotFound, ir.ErrCodeUnsupportedType:
		return true
	}
	return false
}

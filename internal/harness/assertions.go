package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/jsonsearch/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string    // Assertion type for categorization
	Expected string    // Human-readable expected outcome
	Actual   string    // Human-readable actual outcome
	Trace    StepTrace // The step the assertion ran against
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s (step %d)\n", e.Type, e.Trace.Step)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Trace.Select != "" {
		fmt.Fprintf(&buf, "\nStatement:\n  %s\n", e.Trace.Select)
		for _, p := range e.Trace.Params {
			fmt.Fprintf(&buf, "  %s\n", p)
		}
	}
	return buf.String()
}

// evaluateAssertion dispatches one assertion against the step it names.
func evaluateAssertion(result *Result, a Assertion) error {
	trace, ok := result.Step(a.Step)
	if !ok {
		return fmt.Errorf("assertion %s: no step %d", a.Type, a.Step)
	}
	if trace.Error != "" {
		return &AssertionError{
			Type:     a.Type,
			Expected: "step to succeed",
			Actual:   "error " + trace.Error,
			Trace:    trace,
		}
	}

	switch a.Type {
	case AssertStatementContains:
		return assertStatementContains(trace, a)
	case AssertRowsOrder:
		return assertRowsOrder(trace, a)
	case AssertRowContains:
		return assertRowContains(trace, a)
	case AssertTotal:
		return assertTotal(trace, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertStatementContains(trace StepTrace, a Assertion) error {
	if strings.Contains(trace.Select, a.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertStatementContains,
		Expected: fmt.Sprintf("select containing %q", a.Text),
		Actual:   trace.Select,
		Trace:    trace,
	}
}

// assertRowsOrder checks the field column of the page, row by row.
func assertRowsOrder(trace StepTrace, a Assertion) error {
	actual := make([]string, len(trace.Rows))
	for i, row := range trace.Rows {
		actual[i] = cellText(row[a.Field])
	}
	expected := make([]string, len(a.Values))
	for i, v := range a.Values {
		expected[i] = cellText(v)
	}

	if slices.Equal(actual, expected) {
		return nil
	}
	return &AssertionError{
		Type:     AssertRowsOrder,
		Expected: fmt.Sprintf("%s = [%s]", a.Field, strings.Join(expected, ", ")),
		Actual:   fmt.Sprintf("%s = [%s]", a.Field, strings.Join(actual, ", ")),
		Trace:    trace,
	}
}

// assertRowContains checks that some row matches every expected column.
func assertRowContains(trace StepTrace, a Assertion) error {
	for _, row := range trace.Rows {
		if matchRow(row, a.Expect) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertRowContains,
		Expected: fmt.Sprintf("a row matching %v", a.Expect),
		Actual:   fmt.Sprintf("%d rows, none matching", len(trace.Rows)),
		Trace:    trace,
	}
}

func assertTotal(trace StepTrace, a Assertion) error {
	if trace.Total == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTotal,
		Expected: fmt.Sprintf("total %d", a.Count),
		Actual:   fmt.Sprintf("total %d", trace.Total),
		Trace:    trace,
	}
}

// matchRow reports whether row has every key of expect with an equal value.
// Values are compared by their text form so that YAML ints match driver
// int64s.
func matchRow(row ir.Record, expect map[string]any) bool {
	for key, want := range expect {
		got, ok := row[key]
		if !ok || cellText(got) != cellText(want) {
			return false
		}
	}
	return true
}

func cellText(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}

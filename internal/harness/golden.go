package harness

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders the statements and outcomes of a result as text,
// one block per step.
func Snapshot(name string, result *Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	for _, step := range result.Steps {
		fmt.Fprintf(&b, "-- step %d --\n", step.Step)
		if step.Error != "" {
			fmt.Fprintf(&b, "error: %s\n", step.Error)
			continue
		}
		fmt.Fprintf(&b, "select: %s\n", step.Select)
		for _, p := range step.Params {
			fmt.Fprintf(&b, "  %s\n", p)
		}
		fmt.Fprintf(&b, "count: %s\n", step.Count)
		fmt.Fprintf(&b, "total: %d, rows: %d\n", step.Total, len(step.Rows))
	}
	return []byte(b.String())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, Snapshot(scenarioName, result))
}

package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/jsonsearch/internal/catalog"
	"github.com/roach88/jsonsearch/internal/ir"
	"github.com/roach88/jsonsearch/internal/search"
	"github.com/roach88/jsonsearch/internal/store"
)

// Harness is the scenario execution engine. It owns one database for the
// duration of a scenario.
type Harness struct {
	store  *store.Store
	def    *catalog.Definition
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Load the search definition
//  2. Create the database and run the setup statements
//  3. Run every step, checking its expect clause
//  4. Evaluate the assertions against the step traces
//
// The returned error reports infrastructure failures (bad definition,
// failing setup SQL); search outcomes are reported in the Result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	def, err := catalog.Load(scenario.Definition)
	if err != nil {
		return nil, fmt.Errorf("failed to load definition: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	st, err := store.Open(ctx, store.Config{
		Driver:   "sqlite",
		DSN:      ":memory:",
		Entities: def.Entities,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{store: st, def: def, logger: logger}

	if err := h.executeSetup(ctx, scenario.Setup); err != nil {
		return nil, err
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		trace := h.executeStep(ctx, step)
		trace.Step = i + 1
		result.Steps = append(result.Steps, trace)
		checkExpect(result, trace, step.Expect)
	}

	for _, assertion := range scenario.Assertions {
		if err := evaluateAssertion(result, assertion); err != nil {
			result.AddError(err.Error())
		}
	}

	return result, nil
}

func (h *Harness) executeSetup(ctx context.Context, statements []string) error {
	for i, stmt := range statements {
		if _, err := h.store.DB().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("setup[%d] failed: %w", i, err)
		}
	}
	return nil
}

// executeStep runs one search. Failures are recorded on the trace.
func (h *Harness) executeStep(ctx context.Context, step Step) StepTrace {
	var trace StepTrace

	fail := func(err error) StepTrace {
		if code := ir.CodeOf(err); code != "" {
			trace.Error = string(code)
		} else {
			trace.Error = err.Error()
		}
		return trace
	}

	srch, err := search.FromDefinition(h.def, search.Options{
		Resolver: h.store,
		Executor: h.store,
		Logger:   h.logger,
	})
	if err != nil {
		return fail(err)
	}

	doc, err := ir.FromGo(step.Search)
	if err != nil {
		return fail(err)
	}
	if err := srch.Parse(ctx, doc); err != nil {
		return fail(err)
	}

	selectStmt, err := srch.CompileSelect()
	if err != nil {
		return fail(err)
	}
	countStmt, err := srch.CompileCount()
	if err != nil {
		return fail(err)
	}
	trace.Select = selectStmt.Text()
	trace.Count = countStmt.Text()
	for _, name := range selectStmt.Names() {
		v, _ := selectStmt.Param(name)
		trace.Params = append(trace.Params, name+" = "+ir.Format(v))
	}

	res, err := srch.Result(ctx)
	if err != nil {
		return fail(err)
	}
	trace.Rows = res.Values
	trace.Total = res.Count
	return trace
}

// checkExpect validates a step trace against its expect clause.
func checkExpect(result *Result, trace StepTrace, expect *ExpectClause) {
	if expect == nil {
		if trace.Error != "" {
			result.AddError(fmt.Sprintf("step %d: unexpected error %s", trace.Step, trace.Error))
		}
		return
	}

	if expect.Error != "" {
		if trace.Error != expect.Error {
			result.AddError(fmt.Sprintf("step %d: expected error %s, got %q", trace.Step, expect.Error, trace.Error))
		}
		return
	}
	if trace.Error != "" {
		result.AddError(fmt.Sprintf("step %d: unexpected error %s", trace.Step, trace.Error))
		return
	}

	if expect.Select != "" && trace.Select != expect.Select {
		result.AddError(fmt.Sprintf("step %d: select mismatch\n  expected: %s\n  actual:   %s",
			trace.Step, expect.Select, trace.Select))
	}
	if expect.Total != nil && trace.Total != *expect.Total {
		result.AddError(fmt.Sprintf("step %d: expected total %d, got %d", trace.Step, *expect.Total, trace.Total))
	}
	if expect.Rows != nil && len(trace.Rows) != *expect.Rows {
		result.AddError(fmt.Sprintf("step %d: expected %d rows, got %d", trace.Step, *expect.Rows, len(trace.Rows)))
	}
}

package harness

import "github.com/roach88/jsonsearch/internal/ir"

// StepTrace records what one scenario step produced.
type StepTrace struct {
	// Step is the 1-based step number.
	Step int `json:"step"`

	// Select and Count are the compiled statement texts.
	Select string `json:"select,omitempty"`
	Count  string `json:"count,omitempty"`

	// Params lists the select statement's parameters as name = value.
	Params []string `json:"params,omitempty"`

	// Rows holds the page the search returned.
	Rows []ir.Record `json:"rows,omitempty"`

	// Total is the count statement's result.
	Total int64 `json:"total"`

	// Error is the search error code, or the error text for other failures.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Steps has one entry per executed step, in order.
	Steps []StepTrace `json:"steps"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepTrace{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Step returns the trace of the 1-based step n.
func (r *Result) Step(n int) (StepTrace, bool) {
	if n < 1 || n > len(r.Steps) {
		return StepTrace{}, false
	}
	return r.Steps[n-1], true
}

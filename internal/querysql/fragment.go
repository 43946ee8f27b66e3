package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/jsonsearch/internal/ir"
)

// Fragment pairs statement text with the parameters it binds.
// The zero value is an empty fragment, the identity for Append.
type Fragment struct {
	text   strings.Builder
	params map[string]ir.Value
	names  []string
}

// NewFragment returns a fragment holding text.
func NewFragment(text string) *Fragment {
	f := &Fragment{}
	f.text.WriteString(text)
	return f
}

// WriteString appends raw statement text.
func (f *Fragment) WriteString(s string) *Fragment {
	f.text.WriteString(s)
	return f
}

// Bind writes :name and records its value.
// Binding a name twice is a name allocation bug and panics.
func (f *Fragment) Bind(name string, v ir.Value) *Fragment {
	f.addParam(name, v)
	f.text.WriteString(":")
	f.text.WriteString(name)
	return f
}

// Append appends o's text and merges its parameters.
func (f *Fragment) Append(o *Fragment) *Fragment {
	if o == nil {
		return f
	}
	f.text.WriteString(o.text.String())
	for _, name := range o.names {
		f.addParam(name, o.params[name])
	}
	return f
}

func (f *Fragment) addParam(name string, v ir.Value) {
	if _, dup := f.params[name]; dup {
		panic(fmt.Sprintf("querysql: parameter %q bound twice", name))
	}
	if f.params == nil {
		f.params = make(map[string]ir.Value)
	}
	f.params[name] = v
	f.names = append(f.names, name)
}

// Text returns the statement text.
func (f *Fragment) Text() string {
	return f.text.String()
}

// Params returns a copy of the bound parameters.
func (f *Fragment) Params() map[string]ir.Value {
	out := make(map[string]ir.Value, len(f.params))
	for k, v := range f.params {
		out[k] = v
	}
	return out
}

// Names returns the parameter names in the order they were bound.
func (f *Fragment) Names() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Param returns one bound value.
func (f *Fragment) Param(name string) (ir.Value, bool) {
	v, ok := f.params[name]
	return v, ok
}

// Empty reports whether the fragment has no text and no parameters.
func (f *Fragment) Empty() bool {
	return f == nil || (f.text.Len() == 0 && len(f.params) == 0)
}

// String returns the statement text.
func (f *Fragment) String() string {
	return f.Text()
}

// Statement is a compiled statement ready for execution.
// MaxResults and FirstResult describe the row window; MaxResults <= 0
// means no window.
type Statement struct {
	Text        string
	Params      map[string]ir.Value
	MaxResults  int
	FirstResult int
}

// Statement snapshots f as an unwindowed Statement.
func (f *Fragment) Statement() Statement {
	return Statement{Text: f.Text(), Params: f.Params()}
}

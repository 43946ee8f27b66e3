// Package catalog holds the parameter declarations a search is compiled
// against, and the definition files those declarations are loaded from.
package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/roach88/jsonsearch/internal/ir"
)

// ErrDuplicateParameter is returned by Declare when the name is already declared.
var ErrDuplicateParameter = errors.New("parameter already declared")

var (
	identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	pathRe  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
)

// Declaration describes one declared search field.
type Declaration struct {
	// Name is the field name used in filter and sort documents.
	Name string

	// Path is the column expression emitted into statement text.
	Path string

	// Type is the value type; for references it is the identifier type.
	Type ir.Type

	// Entity names the referenced entity. Empty for plain parameters.
	Entity string
}

// IsReference reports whether values of d are resolved to entities.
func (d Declaration) IsReference() bool {
	return d.Entity != ""
}

// Catalog maps declared field names to their declarations.
//
// A Catalog is populated before parsing and only read during compilation,
// so one Catalog may back concurrent compilations once declared.
type Catalog struct {
	decls map[string]Declaration
}

// New returns an empty Catalog.
func New() *Catalog {
	return &Catalog{decls: make(map[string]Declaration)}
}

// Declare adds a declaration. Declaring a name twice fails with
// ErrDuplicateParameter; use Replace to overwrite on purpose.
func (c *Catalog) Declare(name, path string, typ ir.Type, entity string) error {
	if _, ok := c.decls[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateParameter, name)
	}
	return c.Replace(name, path, typ, entity)
}

// Replace declares name, overwriting any earlier declaration.
func (c *Catalog) Replace(name, path string, typ ir.Type, entity string) error {
	if name == "" {
		return fmt.Errorf("parameter name must not be empty")
	}
	if name[0] == '$' {
		return fmt.Errorf("parameter name %q: names starting with $ are reserved for operators", name)
	}
	if !pathRe.MatchString(path) {
		return fmt.Errorf("parameter %q: invalid path %q", name, path)
	}
	if !typ.Valid() {
		return ir.WithField(&ir.Error{
			Code:    ir.ErrCodeUnsupportedType,
			Message: fmt.Sprintf("unsupported parameter type %q", typ),
		}, name)
	}
	if entity != "" && !identRe.MatchString(entity) {
		return fmt.Errorf("parameter %q: invalid entity name %q", name, entity)
	}
	c.decls[name] = Declaration{Name: name, Path: path, Type: typ, Entity: entity}
	return nil
}

// MustDeclare is like Declare but panics on error. Intended for tests and
// static setup.
func (c *Catalog) MustDeclare(name, path string, typ ir.Type, entity string) *Catalog {
	if err := c.Declare(name, path, typ, entity); err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the declaration for name.
func (c *Catalog) Lookup(name string) (Declaration, bool) {
	if c == nil {
		return Declaration{}, false
	}
	d, ok := c.decls[name]
	return d, ok
}

// Resolve returns the declaration for name or an UNKNOWN_PARAMETER error.
func (c *Catalog) Resolve(name string) (Declaration, error) {
	d, ok := c.Lookup(name)
	if !ok {
		return Declaration{}, ir.NewUnknownParameterError(name)
	}
	return d, nil
}

// Len returns the number of declarations.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.decls)
}

// Declarations returns all declarations sorted by name.
func (c *Catalog) Declarations() []Declaration {
	if c == nil {
		return nil
	}
	out := make([]Declaration, 0, len(c.decls))
	for _, d := range c.decls {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Entities returns the distinct referenced entity names, sorted.
func (c *Catalog) Entities() []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range c.Declarations() {
		if d.Entity != "" && !seen[d.Entity] {
			seen[d.Entity] = true
			out = append(out, d.Entity)
		}
	}
	return out
}

// ValidIdentifier reports whether s is a plain SQL identifier.
func ValidIdentifier(s string) bool {
	return identRe.MatchString(s)
}

package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/jsonsearch/internal/catalog"
	"github.com/roach88/jsonsearch/internal/filter"
	"github.com/roach88/jsonsearch/internal/ir"
)

// Compiler assembles select and count statements for one search source.
//
// A Compiler is read-only once configured. Each Compile call allocates its
// own parameter-name scope.
type Compiler struct {
	// Catalog resolves field names to column paths.
	Catalog *catalog.Catalog

	// From is the FROM clause, e.g. "orders o JOIN owners w ON w.id = o.owner_id".
	From string

	// Alias is the selected row alias. Empty selects *.
	Alias string

	// Distinct selects distinct rows and counts distinct keys.
	Distinct bool

	// Key is the column counted by distinct counts. Defaults to "id".
	Key string
}

// CompileSelect builds
//
//	SELECT [DISTINCT] <alias>.* FROM <from> [WHERE <filter>] [ORDER BY <sorts>]
func (c *Compiler) CompileSelect(root filter.Node, sorts []filter.Sort) (*Fragment, error) {
	where, err := c.CompileFilter(root)
	if err != nil {
		return nil, err
	}
	orderBy, err := c.CompileSorts(sorts)
	if err != nil {
		return nil, err
	}

	stmt := NewFragment("SELECT ")
	if c.Distinct {
		stmt.WriteString("DISTINCT ")
	}
	stmt.WriteString(c.projection())
	c.appendTail(stmt, where)
	if orderBy != "" {
		stmt.WriteString(" ORDER BY ").WriteString(orderBy)
	}
	return stmt, nil
}

// CompileCount builds
//
//	SELECT COUNT(*|DISTINCT <alias>.<key>) FROM <from> [WHERE <filter>]
//
// Sorting never applies to counts.
func (c *Compiler) CompileCount(root filter.Node) (*Fragment, error) {
	where, err := c.CompileFilter(root)
	if err != nil {
		return nil, err
	}

	stmt := NewFragment("SELECT ")
	if c.Distinct {
		stmt.WriteString("COUNT(DISTINCT ").WriteString(c.qualify(c.key())).WriteString(")")
	} else {
		stmt.WriteString("COUNT(*)")
	}
	c.appendTail(stmt, where)
	return stmt, nil
}

func (c *Compiler) appendTail(stmt, where *Fragment) {
	stmt.WriteString(" FROM ").WriteString(c.From)
	if !where.Empty() {
		stmt.WriteString(" WHERE ").Append(where)
	}
}

func (c *Compiler) projection() string {
	if c.Alias == "" {
		return "*"
	}
	return c.Alias + ".*"
}

func (c *Compiler) key() string {
	if c.Key == "" {
		return catalog.DefaultKey
	}
	return c.Key
}

func (c *Compiler) qualify(column string) string {
	if c.Alias == "" {
		return column
	}
	return c.Alias + "." + column
}

// CompileFilter compiles a filter tree in a fresh parameter-name scope.
// A nil root or a tree with no conditions yields an empty fragment. Nil
// nodes inside a group are skipped.
func (c *Compiler) CompileFilter(root filter.Node) (*Fragment, error) {
	return c.compileNode(root, NewAllocator())
}

func (c *Compiler) compileNode(n filter.Node, alloc *Allocator) (*Fragment, error) {
	switch node := n.(type) {
	case nil:
		return &Fragment{}, nil
	case *filter.Logical:
		if node == nil {
			return &Fragment{}, nil
		}
		return c.compileLogical(node, alloc)
	case *filter.Condition:
		if node == nil {
			return &Fragment{}, nil
		}
		return c.compileCondition(node, alloc)
	default:
		return nil, fmt.Errorf("unsupported filter node type: %T", n)
	}
}

// compileLogical emits "(" child { conj child } ")". Children that compile
// to nothing are skipped, and a group left with nothing is itself empty.
func (c *Compiler) compileLogical(l *filter.Logical, alloc *Allocator) (*Fragment, error) {
	var parts []*Fragment
	for _, child := range l.Children() {
		f, err := c.compileNode(child, alloc)
		if err != nil {
			return nil, err
		}
		if !f.Empty() {
			parts = append(parts, f)
		}
	}
	if len(parts) == 0 {
		return &Fragment{}, nil
	}

	out := NewFragment("(")
	for i, f := range parts {
		if i > 0 {
			out.WriteString(l.Conjunction.SQL())
		}
		out.Append(f)
	}
	return out.WriteString(")"), nil
}

func (c *Compiler) compileCondition(cond *filter.Condition, alloc *Allocator) (*Fragment, error) {
	decl, err := c.Catalog.Resolve(cond.Field)
	if err != nil {
		return nil, err
	}
	if err := cond.Validate(); err != nil {
		return nil, err
	}

	value := cond.Value
	if cond.Operator.Wildcard() {
		value = ir.WrapWildcard(value)
	}

	out := NewFragment(decl.Path)
	out.WriteString(" ").WriteString(cond.Operator.SQL())

	switch cond.Operator.Arity() {
	case filter.ArityNone:
		// IS [NOT] NULL binds nothing.
	case filter.ArityPair:
		pair := value.(ir.List)
		out.WriteString(" ").Bind(alloc.Allocate(cond.Field), pair[0])
		out.WriteString(" AND ").Bind(alloc.Allocate(cond.Field), pair[1])
	case filter.ArityList:
		out.WriteString(" (").Bind(alloc.Allocate(cond.Field), value).WriteString(")")
	default:
		out.WriteString(" ").Bind(alloc.Allocate(cond.Field), value)
	}
	return out, nil
}

// CompileSorts renders sort entries as "<path> ASC, <path> DESC".
// An empty list renders as "".
func (c *Compiler) CompileSorts(sorts []filter.Sort) (string, error) {
	parts := make([]string, 0, len(sorts))
	for _, s := range sorts {
		decl, err := c.Catalog.Resolve(s.Field)
		if err != nil {
			return "", err
		}
		parts = append(parts, decl.Path+" "+s.Direction.String())
	}
	return strings.Join(parts, ", "), nil
}

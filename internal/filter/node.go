package filter

import (
	"fmt"

	"github.com/roach88/jsonsearch/internal/ir"
)

// Node is a sealed interface over filter tree nodes.
// Only *Logical and *Condition implement it.
type Node interface {
	filterNode() // Sealed
}

// Logical is a group of child nodes joined by one conjunction.
// A group with no children contributes nothing to a statement.
type Logical struct {
	Conjunction Conjunction
	children    []Node
}

func (*Logical) filterNode() {}

// NewLogical returns an empty group.
func NewLogical(c Conjunction) *Logical {
	return &Logical{Conjunction: c}
}

// Condition compares one declared field using an operator.
// Value is nil for IS_NULL and IS_NOT_NULL.
type Condition struct {
	Field    string
	Operator Operator
	Value    ir.Value
}

func (*Condition) filterNode() {}

// NewCondition builds a condition and checks the value fits the operator.
func NewCondition(field string, op Operator, v ir.Value) (*Condition, error) {
	c := &Condition{Field: field, Operator: op, Value: v}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that the value shape matches the operator's arity.
func (c *Condition) Validate() error {
	if !c.Operator.Valid() {
		return ir.NewUnknownOperatorError(c.Field, c.Operator.String())
	}

	list, isList := c.Value.(ir.List)
	switch c.Operator.Arity() {
	case ArityNone:
		if c.Value != nil {
			return ir.NewOperatorValueMismatchError(c.Field, c.Operator.String(),
				fmt.Sprintf("operator %s takes no value", c.Operator))
		}
	case ArityOne:
		if c.Value == nil {
			return ir.NewOperatorValueMismatchError(c.Field, c.Operator.String(),
				fmt.Sprintf("operator %s requires a value", c.Operator))
		}
		if isList {
			return ir.NewOperatorValueMismatchError(c.Field, c.Operator.String(),
				fmt.Sprintf("operator %s takes a single value, got a list", c.Operator))
		}
	case ArityList:
		if c.Value == nil {
			return ir.NewOperatorValueMismatchError(c.Field, c.Operator.String(),
				fmt.Sprintf("operator %s requires a value", c.Operator))
		}
	case ArityPair:
		if c.Value == nil {
			return ir.NewOperatorValueMismatchError(c.Field, c.Operator.String(),
				fmt.Sprintf("operator %s requires a value", c.Operator))
		}
		if !isList {
			return ir.NewArityError(c.Field, c.Operator.String(), 2, 1)
		}
		if len(list) != 2 {
			return ir.NewArityError(c.Field, c.Operator.String(), 2, len(list))
		}
	}
	return nil
}

// Len returns the number of direct children.
func (l *Logical) Len() int {
	return len(l.children)
}

// Empty reports whether the group has no children.
func (l *Logical) Empty() bool {
	return len(l.children) == 0
}

// Children returns a copy of the direct children.
func (l *Logical) Children() []Node {
	out := make([]Node, len(l.children))
	copy(out, l.children)
	return out
}

// Conditions returns the direct children that are conditions.
func (l *Logical) Conditions() []*Condition {
	var out []*Condition
	for _, n := range l.children {
		if c, ok := n.(*Condition); ok {
			out = append(out, c)
		}
	}
	return out
}

// Add appends nodes to the group.
func (l *Logical) Add(nodes ...Node) *Logical {
	l.children = append(l.children, nodes...)
	return l
}

// Remove deletes the first child identical to n. It reports whether a
// child was removed.
func (l *Logical) Remove(n Node) bool {
	for i, child := range l.children {
		if child == n {
			l.children = append(l.children[:i], l.children[i+1:]...)
			return true
		}
	}
	return false
}

// Clear removes all children.
func (l *Logical) Clear() *Logical {
	l.children = nil
	return l
}

// And appends a nested AND group and returns it.
func (l *Logical) And() *Logical {
	g := NewLogical(And)
	l.children = append(l.children, g)
	return g
}

// Or appends a nested OR group and returns it.
func (l *Logical) Or() *Logical {
	g := NewLogical(Or)
	l.children = append(l.children, g)
	return g
}

func (l *Logical) condition(field string, op Operator, v ir.Value) *Logical {
	l.children = append(l.children, &Condition{Field: field, Operator: op, Value: v})
	return l
}

// Eq appends field = v.
func (l *Logical) Eq(field string, v ir.Value) *Logical { return l.condition(field, OpEq, v) }

// Neq appends field <> v.
func (l *Logical) Neq(field string, v ir.Value) *Logical { return l.condition(field, OpNeq, v) }

// Gt appends field > v.
func (l *Logical) Gt(field string, v ir.Value) *Logical { return l.condition(field, OpGt, v) }

// Gte appends field >= v.
func (l *Logical) Gte(field string, v ir.Value) *Logical { return l.condition(field, OpGte, v) }

// Lt appends field < v.
func (l *Logical) Lt(field string, v ir.Value) *Logical { return l.condition(field, OpLt, v) }

// Lte appends field <= v.
func (l *Logical) Lte(field string, v ir.Value) *Logical { return l.condition(field, OpLte, v) }

// Between appends field BETWEEN lo AND hi.
func (l *Logical) Between(field string, lo, hi ir.Value) *Logical {
	return l.condition(field, OpBetween, ir.List{lo, hi})
}

// NotBetween appends field NOT BETWEEN lo AND hi.
func (l *Logical) NotBetween(field string, lo, hi ir.Value) *Logical {
	return l.condition(field, OpNotBetween, ir.List{lo, hi})
}

// In appends field IN (values).
func (l *Logical) In(field string, values ...ir.Value) *Logical {
	return l.condition(field, OpIn, ir.List(values))
}

// NotIn appends field NOT IN (values).
func (l *Logical) NotIn(field string, values ...ir.Value) *Logical {
	return l.condition(field, OpNotIn, ir.List(values))
}

// Like appends field LIKE v.
func (l *Logical) Like(field string, v ir.Value) *Logical { return l.condition(field, OpLike, v) }

// NotLike appends field NOT LIKE v.
func (l *Logical) NotLike(field string, v ir.Value) *Logical {
	return l.condition(field, OpNotLike, v)
}

// LikeWildcard appends field LIKE %v%.
func (l *Logical) LikeWildcard(field string, v ir.Value) *Logical {
	return l.condition(field, OpLikeWildcard, v)
}

// NotLikeWildcard appends field NOT LIKE %v%.
func (l *Logical) NotLikeWildcard(field string, v ir.Value) *Logical {
	return l.condition(field, OpNotLikeWildcard, v)
}

// IsNull appends field IS NULL.
func (l *Logical) IsNull(field string) *Logical { return l.condition(field, OpIsNull, nil) }

// IsNotNull appends field IS NOT NULL.
func (l *Logical) IsNotNull(field string) *Logical { return l.condition(field, OpIsNotNull, nil) }

// Walk calls fn for n and every descendant, depth first in child order.
// Returning false from fn stops descent below that node.
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	if l, ok := n.(*Logical); ok {
		for _, child := range l.children {
			Walk(child, fn)
		}
	}
}

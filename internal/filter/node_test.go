package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jsonsearch/internal/ir"
)

func TestLogical_Builder(t *testing.T) {
	root := NewLogical(And)
	root.Eq("status", ir.Str("open")).Gte("age", ir.Int(18))

	or := root.Or()
	or.IsNull("owner").In("status", ir.Str("A"), ir.Str("B"))

	and := root.And()
	and.Between("age", ir.Int(1), ir.Int(9))

	assert.Equal(t, 4, root.Len())
	assert.Equal(t, Or, or.Conjunction)
	assert.Equal(t, And, and.Conjunction)

	conds := root.Conditions()
	require.Len(t, conds, 2)
	assert.Equal(t, &Condition{Field: "status", Operator: OpEq, Value: ir.Str("open")}, conds[0])
	assert.Equal(t, &Condition{Field: "age", Operator: OpGte, Value: ir.Int(18)}, conds[1])

	orConds := or.Conditions()
	require.Len(t, orConds, 2)
	assert.Nil(t, orConds[0].Value)
	assert.Equal(t, ir.List{ir.Str("A"), ir.Str("B")}, orConds[1].Value)

	assert.Equal(t, ir.List{ir.Int(1), ir.Int(9)}, and.Conditions()[0].Value)
}

func TestLogical_BuilderOperators(t *testing.T) {
	root := NewLogical(And).
		Neq("a", ir.Int(1)).
		Gt("a", ir.Int(1)).
		Lt("a", ir.Int(1)).
		Lte("a", ir.Int(1)).
		NotBetween("a", ir.Int(1), ir.Int(2)).
		NotIn("a", ir.Int(1)).
		Like("a", ir.Str("x")).
		NotLike("a", ir.Str("x")).
		LikeWildcard("a", ir.Str("x")).
		NotLikeWildcard("a", ir.Str("x")).
		IsNotNull("a")

	var ops []Operator
	for _, c := range root.Conditions() {
		ops = append(ops, c.Operator)
		assert.NoError(t, c.Validate(), c.Operator.String())
	}
	assert.Equal(t, []Operator{
		OpNeq, OpGt, OpLt, OpLte, OpNotBetween, OpNotIn,
		OpLike, OpNotLike, OpLikeWildcard, OpNotLikeWildcard, OpIsNotNull,
	}, ops)
}

func TestLogical_RemoveAndClear(t *testing.T) {
	root := NewLogical(And).Eq("a", ir.Int(1))
	nested := root.Or()
	root.Eq("b", ir.Int(2))

	children := root.Children()
	require.Len(t, children, 3)

	assert.True(t, root.Remove(nested))
	assert.False(t, root.Remove(nested), "already removed")
	assert.Equal(t, 2, root.Len())

	// Children returns a copy.
	children[0] = nil
	assert.NotNil(t, root.Children()[0])

	root.Clear()
	assert.True(t, root.Empty())
	assert.Empty(t, root.Conditions())
}

func TestCondition_Validate(t *testing.T) {
	tests := []struct {
		name  string
		op    Operator
		value ir.Value
		check func(error) bool
	}{
		{"null with value", OpIsNull, ir.Int(1), ir.IsOperatorValueMismatch},
		{"eq without value", OpEq, nil, ir.IsOperatorValueMismatch},
		{"eq with list", OpEq, ir.List{ir.Int(1)}, ir.IsOperatorValueMismatch},
		{"in without value", OpIn, nil, ir.IsOperatorValueMismatch},
		{"between without value", OpBetween, nil, ir.IsOperatorValueMismatch},
		{"between scalar", OpBetween, ir.Int(1), ir.IsArity},
		{"between one", OpBetween, ir.List{ir.Int(1)}, ir.IsArity},
		{"not between three", OpNotBetween, ir.List{ir.Int(1), ir.Int(2), ir.Int(3)}, ir.IsArity},
		{"unknown operator", Operator(42), ir.Int(1), ir.IsUnknownOperator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCondition("age", tt.op, tt.value)
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}

	c, err := NewCondition("age", OpIn, ir.Int(3))
	require.NoError(t, err)
	assert.Equal(t, ir.Int(3), c.Value, "IN accepts a scalar")
}

func TestWalk(t *testing.T) {
	root := NewLogical(And).Eq("a", ir.Int(1))
	root.Or().Eq("b", ir.Int(2)).IsNull("c")

	var fields []string
	Walk(root, func(n Node) bool {
		if c, ok := n.(*Condition); ok {
			fields = append(fields, c.Field)
		}
		return true
	})
	assert.Equal(t, []string{"a", "b", "c"}, fields)

	var visited int
	Walk(root, func(n Node) bool {
		visited++
		return n == Node(root)
	})
	assert.Equal(t, 3, visited, "root plus its two direct children")
}

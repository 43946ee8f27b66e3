package filter

import "fmt"

// Operator is a condition operator.
type Operator int

const (
	OpEq Operator = iota
	OpNeq
	OpGt
	OpGte
	OpLt
	OpLte
	OpBetween
	OpNotBetween
	OpIn
	OpNotIn
	OpLike
	OpNotLike
	OpLikeWildcard
	OpNotLikeWildcard
	OpIsNull
	OpIsNotNull
)

// Arity is the value shape an operator takes.
type Arity int

const (
	// ArityNone operators take no value.
	ArityNone Arity = iota
	// ArityOne operators take a single scalar.
	ArityOne
	// ArityList operators take a scalar or a list bound as one parameter.
	ArityList
	// ArityPair operators take a list of exactly two values.
	ArityPair
)

type operatorInfo struct {
	name  string
	token string
	sql   string
	arity Arity
}

var operators = [...]operatorInfo{
	OpEq:              {"EQ", "$eq", "=", ArityOne},
	OpNeq:             {"NEQ", "$neq", "<>", ArityOne},
	OpGt:              {"GT", "$gt", ">", ArityOne},
	OpGte:             {"GTE", "$gte", ">=", ArityOne},
	OpLt:              {"LT", "$lt", "<", ArityOne},
	OpLte:             {"LTE", "$lte", "<=", ArityOne},
	OpBetween:         {"BETWEEN", "$bt", "BETWEEN", ArityPair},
	OpNotBetween:      {"NOT_BETWEEN", "$nbt", "NOT BETWEEN", ArityPair},
	OpIn:              {"IN", "$in", "IN", ArityList},
	OpNotIn:           {"NOT_IN", "$nin", "NOT IN", ArityList},
	OpLike:            {"LIKE", "$lk", "LIKE", ArityOne},
	OpNotLike:         {"NOT_LIKE", "$nlk", "NOT LIKE", ArityOne},
	OpLikeWildcard:    {"LIKE_WILDCARD", "$lkw", "LIKE", ArityOne},
	OpNotLikeWildcard: {"NOT_LIKE_WILDCARD", "$nlkw", "NOT LIKE", ArityOne},
	OpIsNull:          {"IS_NULL", "$null", "IS NULL", ArityNone},
	OpIsNotNull:       {"IS_NOT_NULL", "$nnull", "IS NOT NULL", ArityNone},
}

var tokens = func() map[string]Operator {
	m := make(map[string]Operator, len(operators))
	for op, info := range operators {
		m[info.token] = Operator(op)
	}
	return m
}()

// LookupToken resolves a document operator token such as "$gte".
func LookupToken(token string) (Operator, bool) {
	op, ok := tokens[token]
	return op, ok
}

// Operators returns every operator in declaration order.
func Operators() []Operator {
	out := make([]Operator, len(operators))
	for i := range operators {
		out[i] = Operator(i)
	}
	return out
}

func (op Operator) info() operatorInfo {
	if op < 0 || int(op) >= len(operators) {
		return operatorInfo{name: fmt.Sprintf("Operator(%d)", int(op))}
	}
	return operators[op]
}

// Valid reports whether op is a known operator.
func (op Operator) Valid() bool {
	return op >= 0 && int(op) < len(operators)
}

// String returns the operator name, e.g. "NOT_BETWEEN".
func (op Operator) String() string { return op.info().name }

// Token returns the document token, e.g. "$nbt".
func (op Operator) Token() string { return op.info().token }

// SQL returns the operator text emitted into statements, e.g. "NOT BETWEEN".
func (op Operator) SQL() string { return op.info().sql }

// Arity returns the value shape op takes.
func (op Operator) Arity() Arity { return op.info().arity }

// RequiresValue reports whether op needs a value.
func (op Operator) RequiresValue() bool { return op.Arity() != ArityNone }

// Wildcard reports whether string values are wrapped as %value%.
func (op Operator) Wildcard() bool {
	return op == OpLikeWildcard || op == OpNotLikeWildcard
}

// Conjunction joins the children of a Logical group.
type Conjunction int

const (
	And Conjunction = iota
	Or
)

// String returns "AND" or "OR".
func (c Conjunction) String() string {
	if c == Or {
		return "OR"
	}
	return "AND"
}

// Token returns "$and" or "$or".
func (c Conjunction) Token() string {
	if c == Or {
		return "$or"
	}
	return "$and"
}

// SQL returns the separator emitted between children.
func (c Conjunction) SQL() string {
	return " " + c.String() + " "
}

// LookupConjunction resolves "$and" or "$or".
func LookupConjunction(token string) (Conjunction, bool) {
	switch token {
	case "$and":
		return And, true
	case "$or":
		return Or, true
	}
	return And, false
}

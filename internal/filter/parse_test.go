package filter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jsonsearch/internal/catalog"
	"github.com/roach88/jsonsearch/internal/ir"
)

func testCatalog() *catalog.Catalog {
	return catalog.New().
		MustDeclare("age", "p.age", ir.TypeInt, "").
		MustDeclare("status", "p.status", ir.TypeString, "").
		MustDeclare("born", "p.born", ir.TypeDate, "").
		MustDeclare("owner", "p.owner_id", ir.TypeInt, "owner")
}

func testParser(t *testing.T) *Parser {
	t.Helper()
	owners := map[int64]ir.Record{7: {"id": int64(7), "name": "ada"}}
	resolver := ir.ResolverFunc(func(_ context.Context, entity string, id ir.Value) (ir.Record, error) {
		return owners[int64(id.(ir.Int))], nil
	})
	return NewParser(testCatalog(), ir.NewCoercer(resolver))
}

func parseFilter(t *testing.T, p *Parser, src string) (*Logical, error) {
	t.Helper()
	doc, err := ir.ParseDocument([]byte(src))
	require.NoError(t, err)
	return p.ParseFilter(context.Background(), doc)
}

func TestParseFilter_Conditions(t *testing.T) {
	p := testParser(t)

	root, err := parseFilter(t, p, `[
		{"age": {"$gte": "18"}},
		{"age": {"$lt": 65}},
		{"status": {"$in": ["A", "B"]}},
		{"born": {"$bt": ["2000-01-01", "2000-12-31"]}},
		{"status": "$null"},
		{"status": {"$nnull": null}},
		{"status": {"$lkw": "ann"}}
	]`)
	require.NoError(t, err)
	assert.Equal(t, And, root.Conjunction)

	day := func(s string) ir.Value {
		d, err := time.Parse(ir.DateLayout, s)
		require.NoError(t, err)
		return ir.Date(d)
	}

	want := []*Condition{
		{Field: "age", Operator: OpGte, Value: ir.Int(18)},
		{Field: "age", Operator: OpLt, Value: ir.Int(65)},
		{Field: "status", Operator: OpIn, Value: ir.List{ir.Str("A"), ir.Str("B")}},
		{Field: "born", Operator: OpBetween, Value: ir.List{day("2000-01-01"), day("2000-12-31")}},
		{Field: "status", Operator: OpIsNull},
		{Field: "status", Operator: OpIsNotNull},
		// Wildcards are applied when compiling, not when parsing.
		{Field: "status", Operator: OpLikeWildcard, Value: ir.Str("ann")},
	}
	assert.Equal(t, want, root.Conditions())
}

func TestParseFilter_NestedGroups(t *testing.T) {
	p := testParser(t)

	root, err := parseFilter(t, p, `[
		{"$or": [
			{"status": {"$in": ["A", "B"]}},
			{"owner": {"$eq": "7"}},
			{"$and": [{"age": {"$gt": 1}}, {"age": {"$lt": 9}}]}
		]},
		{"$and": []}
	]`)
	require.NoError(t, err)
	require.Equal(t, 2, root.Len())

	or, ok := root.Children()[0].(*Logical)
	require.True(t, ok)
	assert.Equal(t, Or, or.Conjunction)
	require.Equal(t, 3, or.Len())

	owner := or.Conditions()[1]
	assert.Equal(t, ir.EntityRef{
		Entity: "owner",
		ID:     ir.Int(7),
		Record: ir.Record{"id": int64(7), "name": "ada"},
	}, owner.Value)

	inner, ok := or.Children()[2].(*Logical)
	require.True(t, ok)
	assert.Equal(t, And, inner.Conjunction)
	assert.Equal(t, 2, inner.Len())

	empty, ok := root.Children()[1].(*Logical)
	require.True(t, ok)
	assert.True(t, empty.Empty())
}

func TestParseFilter_Errors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(error) bool
		field string
	}{
		{"not an array", `{"age": {"$eq": 1}}`, ir.IsMalformedFilter, ""},
		{"element not an object", `[1]`, ir.IsMalformedFilter, ""},
		{"element with two keys", `[{"age": {"$eq": 1}, "status": "$null"}]`, ir.IsMalformedFilter, ""},
		{"element with no keys", `[{}]`, ir.IsMalformedFilter, ""},
		{"nested group not an array", `[{"$or": {"age": {"$eq": 1}}}]`, ir.IsMalformedFilter, ""},
		{"unknown field", `[{"height": {"$eq": 1}}]`, ir.IsUnknownParameter, "height"},
		{"unknown field in nested group", `[{"$and": [{"$or": [{"height": "$null"}]}]}]`, ir.IsUnknownParameter, "height"},
		{"unknown operator", `[{"age": {"$bogus": 1}}]`, ir.IsUnknownOperator, "age"},
		{"unknown operator nested", `[{"$or": [{"age": {"$bogus": 1}}]}]`, ir.IsUnknownOperator, "age"},
		{"unknown bare token", `[{"age": "$bogus"}]`, ir.IsUnknownOperator, "age"},
		{"legacy token without dollar", `[{"status": {"nlkw": "x"}}]`, ir.IsUnknownOperator, "status"},
		{"bare token needing a value", `[{"age": "$eq"}]`, ir.IsOperatorRequiresValue, "age"},
		{"bare number", `[{"age": 18}]`, ir.IsMalformedFilter, "age"},
		{"bare array", `[{"age": [18]}]`, ir.IsMalformedFilter, "age"},
		{"operator object with two keys", `[{"age": {"$gt": 1, "$lt": 2}}]`, ir.IsMalformedFilter, "age"},
		{"nested object value", `[{"age": {"$eq": {"x": 1}}}]`, ir.IsMalformedFilter, "age"},
		{"nested array element", `[{"age": {"$in": [[1]]}}]`, ir.IsMalformedFilter, "age"},
		{"value for null operator", `[{"age": {"$null": 1}}]`, ir.IsOperatorValueMismatch, "age"},
		{"null for value operator", `[{"age": {"$eq": null}}]`, ir.IsOperatorValueMismatch, "age"},
		{"list for scalar operator", `[{"age": {"$eq": [1, 2]}}]`, ir.IsOperatorValueMismatch, "age"},
		{"between with one value", `[{"age": {"$bt": [1]}}]`, ir.IsArity, "age"},
		{"between with scalar", `[{"age": {"$nbt": 1}}]`, ir.IsArity, "age"},
		{"value does not parse", `[{"age": {"$eq": "old"}}]`, ir.IsValueParse, "age"},
		{"list element does not parse", `[{"born": {"$in": ["2000-01-01", "yesterday"]}}]`, ir.IsValueParse, "born"},
		{"reference not found", `[{"owner": {"$eq": "8"}}]`, ir.IsReferenceNotFound, "owner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParser(t)
			root, err := parseFilter(t, p, tt.src)
			require.Error(t, err)
			assert.Nil(t, root)
			assert.True(t, tt.check(err), "got %v", err)

			var e *ir.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.field, e.Field)
		})
	}
}

func TestParseInto_LeavesGroupOnError(t *testing.T) {
	p := testParser(t)
	group := NewLogical(And).Eq("age", ir.Int(1))

	doc, err := ir.ParseDocument([]byte(`[{"status": "$null"}, {"age": {"$bogus": 1}}]`))
	require.NoError(t, err)

	err = p.ParseInto(context.Background(), group, doc)
	require.Error(t, err)
	assert.Equal(t, 1, group.Len())

	doc, err = ir.ParseDocument([]byte(`[{"status": "$null"}]`))
	require.NoError(t, err)
	require.NoError(t, p.ParseInto(context.Background(), group, doc))
	assert.Equal(t, 2, group.Len())
}

func TestParseFilter_ReferenceWithoutResolver(t *testing.T) {
	p := NewParser(testCatalog(), nil)
	doc, err := ir.ParseDocument([]byte(`[{"owner": {"$eq": "7"}}]`))
	require.NoError(t, err)

	_, err = p.ParseFilter(context.Background(), doc)
	assert.ErrorIs(t, err, ir.ErrNoResolver)
}

func TestParseSorts(t *testing.T) {
	p := testParser(t)

	doc, err := ir.ParseDocument([]byte(`[{"age": "ASC"}, {"status": "DESC"}]`))
	require.NoError(t, err)
	sorts, err := p.ParseSorts(doc)
	require.NoError(t, err)
	assert.Equal(t, []Sort{{Field: "age", Direction: Asc}, {Field: "status", Direction: Desc}}, sorts)

	tests := []struct {
		name  string
		src   string
		check func(error) bool
	}{
		{"not an array", `{"age": "ASC"}`, ir.IsMalformedDocument},
		{"element not an object", `["age"]`, ir.IsMalformedDocument},
		{"two keys", `[{"age": "ASC", "status": "DESC"}]`, ir.IsMalformedDocument},
		{"unknown field", `[{"height": "ASC"}]`, ir.IsUnknownParameter},
		{"lower case direction", `[{"age": "asc"}]`, ir.IsUnknownSortDirection},
		{"numeric direction", `[{"age": 1}]`, ir.IsUnknownSortDirection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ir.ParseDocument([]byte(tt.src))
			require.NoError(t, err)
			_, err = p.ParseSorts(doc)
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}
}

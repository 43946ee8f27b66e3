package filter

import (
	"context"
	"fmt"

	"github.com/roach88/jsonsearch/internal/catalog"
	"github.com/roach88/jsonsearch/internal/ir"
)

// Parser turns document sections into filter trees and sort lists.
//
// Every field is resolved against Catalog as it is met; an undeclared
// field fails the parse immediately. Values are coerced through Coercer,
// which may perform reference lookups.
type Parser struct {
	Catalog *catalog.Catalog
	Coercer *ir.Coercer
}

// NewParser returns a Parser over cat. A nil coercer handles everything
// but reference parameters.
func NewParser(cat *catalog.Catalog, coercer *ir.Coercer) *Parser {
	if coercer == nil {
		coercer = ir.NewCoercer(nil)
	}
	return &Parser{Catalog: cat, Coercer: coercer}
}

// ParseFilter parses a filter section into a new root AND group.
func (p *Parser) ParseFilter(ctx context.Context, doc ir.Node) (*Logical, error) {
	root := NewLogical(And)
	if err := p.ParseInto(ctx, root, doc); err != nil {
		return nil, err
	}
	return root, nil
}

// ParseInto parses a filter section and appends its nodes to group.
// group is left untouched when parsing fails.
func (p *Parser) ParseInto(ctx context.Context, group *Logical, doc ir.Node) error {
	nodes, err := p.parseGroup(ctx, doc)
	if err != nil {
		return err
	}
	group.Add(nodes...)
	return nil
}

func (p *Parser) parseGroup(ctx context.Context, doc ir.Node) ([]Node, error) {
	arr, ok := doc.(ir.Array)
	if !ok {
		return nil, ir.NewMalformedFilterError("",
			fmt.Sprintf("expected filter group to be an array, got %s", ir.KindOf(doc)))
	}

	nodes := make([]Node, 0, len(arr))
	for i, elem := range arr {
		obj, ok := elem.(ir.Object)
		if !ok {
			return nil, ir.NewMalformedFilterError("",
				fmt.Sprintf("expected filter element %d to be an object, got %s", i, ir.KindOf(elem)))
		}
		key, value, ok := obj.Single()
		if !ok {
			return nil, ir.NewMalformedFilterError("",
				fmt.Sprintf("expected filter element %d to have a single key, got %d", i, len(obj)))
		}

		if conj, ok := LookupConjunction(key); ok {
			children, err := p.parseGroup(ctx, value)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, NewLogical(conj).Add(children...))
			continue
		}

		cond, err := p.parseCondition(ctx, key, value)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, cond)
	}
	return nodes, nil
}

func (p *Parser) parseCondition(ctx context.Context, field string, doc ir.Node) (*Condition, error) {
	decl, err := p.Catalog.Resolve(field)
	if err != nil {
		return nil, err
	}

	switch v := doc.(type) {
	case ir.String:
		// Bare operator form: {"field": "$null"}.
		op, ok := LookupToken(string(v))
		if !ok {
			return nil, ir.NewUnknownOperatorError(field, string(v))
		}
		if op.RequiresValue() {
			return nil, ir.NewOperatorRequiresValueError(field, op.String())
		}
		return &Condition{Field: field, Operator: op}, nil

	case ir.Object:
		token, payload, ok := v.Single()
		if !ok {
			return nil, ir.NewMalformedFilterError(field,
				fmt.Sprintf("expected condition to have a single operator, got %d keys", len(v)))
		}
		op, ok := LookupToken(token)
		if !ok {
			return nil, ir.NewUnknownOperatorError(field, token)
		}
		if _, isNull := payload.(ir.Null); !isNull && !op.RequiresValue() {
			return nil, ir.NewOperatorValueMismatchError(field, op.String(),
				fmt.Sprintf("operator %s takes no value", op))
		}
		value, err := p.parseValue(ctx, decl, payload)
		if err != nil {
			return nil, err
		}
		return NewCondition(field, op, value)

	default:
		return nil, ir.NewMalformedFilterError(field,
			fmt.Sprintf("expected condition to be an operator object or token, got %s", ir.KindOf(doc)))
	}
}

// parseValue coerces an operator payload. Null means no value; arrays are
// coerced element-wise into a List.
func (p *Parser) parseValue(ctx context.Context, decl catalog.Declaration, doc ir.Node) (ir.Value, error) {
	switch v := doc.(type) {
	case ir.Null:
		return nil, nil
	case ir.Array:
		list := make(ir.List, len(v))
		for i, elem := range v {
			raw, ok := ir.Text(elem)
			if !ok {
				return nil, ir.NewMalformedFilterError(decl.Name,
					fmt.Sprintf("expected value %d to be a scalar, got %s", i, ir.KindOf(elem)))
			}
			val, err := p.Coercer.Coerce(ctx, raw, decl.Type, decl.Entity)
			if err != nil {
				return nil, ir.WithField(err, decl.Name)
			}
			list[i] = val
		}
		return list, nil
	default:
		raw, ok := ir.Text(doc)
		if !ok {
			return nil, ir.NewMalformedFilterError(decl.Name,
				fmt.Sprintf("expected value to be a scalar or array, got %s", ir.KindOf(doc)))
		}
		val, err := p.Coercer.Coerce(ctx, raw, decl.Type, decl.Entity)
		if err != nil {
			return nil, ir.WithField(err, decl.Name)
		}
		return val, nil
	}
}

// ParseSorts parses a sort section: an array of {field: "ASC"|"DESC"}.
func (p *Parser) ParseSorts(doc ir.Node) ([]Sort, error) {
	arr, ok := doc.(ir.Array)
	if !ok {
		return nil, ir.NewMalformedDocumentError(
			fmt.Sprintf("expected sort to be an array, got %s", ir.KindOf(doc)))
	}

	sorts := make([]Sort, 0, len(arr))
	for i, elem := range arr {
		obj, ok := elem.(ir.Object)
		if !ok {
			return nil, ir.NewMalformedDocumentError(
				fmt.Sprintf("expected sort element %d to be an object, got %s", i, ir.KindOf(elem)))
		}
		field, value, ok := obj.Single()
		if !ok {
			return nil, ir.NewMalformedDocumentError(
				fmt.Sprintf("expected sort element %d to have a single key, got %d", i, len(obj)))
		}
		if _, err := p.Catalog.Resolve(field); err != nil {
			return nil, err
		}
		token, _ := value.(ir.String)
		dir, ok := ParseDirection(string(token))
		if !ok {
			text, _ := ir.Text(value)
			return nil, ir.NewUnknownSortDirectionError(field, text)
		}
		sorts = append(sorts, Sort{Field: field, Direction: dir})
	}
	return sorts, nil
}

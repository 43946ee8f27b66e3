package ir

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// DateLayout is the textual form of TypeDate values.
const DateLayout = "2006-01-02"

// Wildcard is the character wrapped around values of the wildcard LIKE operators.
const Wildcard = "%"

// ErrNoResolver is returned when a reference parameter is coerced by a
// Coercer that has no Resolver.
var ErrNoResolver = errors.New("no resolver configured for reference parameters")

// Resolver looks up an entity by its identifier.
//
// FindByID returns a nil Record and a nil error when no entity has the
// identifier. Errors are reserved for lookup failures.
type Resolver interface {
	FindByID(ctx context.Context, entity string, id Value) (Record, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, entity string, id Value) (Record, error)

// FindByID calls f.
func (f ResolverFunc) FindByID(ctx context.Context, entity string, id Value) (Record, error) {
	return f(ctx, entity, id)
}

// Coercer turns raw document scalars into typed Values.
// A Coercer without a Resolver handles every parameter except references.
type Coercer struct {
	Resolver Resolver
}

// NewCoercer returns a Coercer resolving references through r (which may be nil).
func NewCoercer(r Resolver) *Coercer {
	return &Coercer{Resolver: r}
}

// Coerce parses raw as t. When entity is non-empty the parameter is a
// reference: raw is parsed as the entity's identifier type t and resolved
// through the Resolver into an EntityRef.
func (c *Coercer) Coerce(ctx context.Context, raw string, t Type, entity string) (Value, error) {
	v, err := ParseValue(raw, t)
	if err != nil {
		return nil, err
	}
	if entity == "" {
		return v, nil
	}
	if c == nil || c.Resolver == nil {
		return nil, fmt.Errorf("entity %s: %w", entity, ErrNoResolver)
	}
	rec, err := c.Resolver.FindByID(ctx, entity, v)
	if err != nil {
		return nil, fmt.Errorf("resolve %s %s: %w", entity, Format(v), err)
	}
	if rec == nil {
		return nil, NewReferenceNotFoundError(entity, v)
	}
	return EntityRef{Entity: entity, ID: v, Record: rec}, nil
}

// ParseValue parses raw as t without reference resolution.
func ParseValue(raw string, t Type) (Value, error) {
	switch t {
	case TypeString:
		return Str(norm.NFC.String(raw)), nil
	case TypeInt:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, NewValueParseError(raw, t, err)
		}
		return Int(n), nil
	case TypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, NewValueParseError(raw, t, err)
		}
		return Float(f), nil
	case TypeBool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, NewValueParseError(raw, t, err)
		}
		return Boolean(b), nil
	case TypeDate:
		d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.UTC)
		if err != nil {
			return nil, NewValueParseError(raw, t, err)
		}
		return Date(d), nil
	case TypeDateTime:
		ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
		if err != nil {
			return nil, NewValueParseError(raw, t, err)
		}
		return DateTime(ts), nil
	case TypeUUID:
		u, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, NewValueParseError(raw, t, err)
		}
		return UUID(u), nil
	default:
		return nil, &Error{
			Code:    ErrCodeUnsupportedType,
			Message: fmt.Sprintf("unsupported parameter type %q", t),
		}
	}
}

// WrapWildcard wraps a string value as %value%. Any other value is returned
// unchanged; lists are wrapped element-wise.
func WrapWildcard(v Value) Value {
	switch val := v.(type) {
	case Str:
		return Str(Wildcard + string(val) + Wildcard)
	case List:
		out := make(List, len(val))
		for i, elem := range val {
			out[i] = WrapWildcard(elem)
		}
		return out
	default:
		return v
	}
}

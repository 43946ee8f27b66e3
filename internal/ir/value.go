package ir

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Value is a sealed interface over coerced parameter values.
// Values are tagged once, at coercion time; consumers switch on the
// concrete type and never inspect type names.
type Value interface {
	irValue() // Sealed
}

// Int is an integer value.
type Int int64

func (Int) irValue() {}

// Float is a floating point value.
type Float float64

func (Float) irValue() {}

// Str is a string value.
type Str string

func (Str) irValue() {}

// Boolean is a boolean value.
type Boolean bool

func (Boolean) irValue() {}

// Date is a calendar date at midnight UTC.
type Date time.Time

func (Date) irValue() {}

// DateTime is an instant.
type DateTime time.Time

func (DateTime) irValue() {}

// UUID is a UUID value.
type UUID uuid.UUID

func (UUID) irValue() {}

// Record is a row or entity read from the data source, keyed by column.
type Record map[string]any

// EntityRef is a reference parameter resolved through a Resolver.
// ID is the coerced identifier; Record is what the lookup returned.
type EntityRef struct {
	Entity string
	ID     Value
	Record Record
}

func (EntityRef) irValue() {}

// List is an element-wise coerced list, bound as one parameter.
type List []Value

func (List) irValue() {}

// Native converts v to a plain Go value suitable for a database driver or
// for JSON output. Entity references yield their identifier and lists yield
// a []any.
func Native(v Value) any {
	switch val := v.(type) {
	case nil:
		return nil
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Str:
		return string(val)
	case Boolean:
		return bool(val)
	case Date:
		return time.Time(val)
	case DateTime:
		return time.Time(val)
	case UUID:
		return uuid.UUID(val).String()
	case EntityRef:
		return Native(val.ID)
	case List:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Native(elem)
		}
		return out
	default:
		return nil
	}
}

// Format renders v for human-readable output.
func Format(v Value) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case Str:
		return strconv.Quote(string(val))
	case Boolean:
		return strconv.FormatBool(bool(val))
	case Date:
		return time.Time(val).Format(DateLayout)
	case DateTime:
		return time.Time(val).Format(time.RFC3339Nano)
	case UUID:
		return uuid.UUID(val).String()
	case EntityRef:
		return fmt.Sprintf("%s(%s)", val.Entity, Format(val.ID))
	case List:
		s := "["
		for i, elem := range val {
			if i > 0 {
				s += ", "
			}
			s += Format(elem)
		}
		return s + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// MarshalValue renders v as JSON. Dates keep the date layout, entity
// references marshal as {"entity": ..., "id": ...}.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case Date:
		return json.Marshal(time.Time(val).Format(DateLayout))
	case EntityRef:
		return json.Marshal(map[string]any{"entity": val.Entity, "id": Native(val.ID)})
	case List:
		raw := make([]json.RawMessage, len(val))
		for i, elem := range val {
			b, err := MarshalValue(elem)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			raw[i] = b
		}
		return json.Marshal(raw)
	default:
		return json.Marshal(Native(v))
	}
}

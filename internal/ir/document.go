package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Node is a sealed interface over the shapes a search document can take.
// Only Object, Array, String, Number, Bool, and Null implement it.
type Node interface {
	docNode() // Sealed
}

// Object is a JSON object.
// Use Keys() for deterministic iteration.
type Object map[string]Node

func (Object) docNode() {}

// Array is a JSON array.
type Array []Node

func (Array) docNode() {}

// String is a JSON string.
type String string

func (String) docNode() {}

// Number is a JSON number kept as its literal text so that coercion sees
// exactly what the caller wrote.
type Number string

func (Number) docNode() {}

// Bool is a JSON boolean.
type Bool bool

func (Bool) docNode() {}

// Null is a JSON null.
type Null struct{}

func (Null) docNode() {}

// Keys returns the object keys in sorted order.
func (o Object) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Single returns the only entry of a single-key object.
// ok is false when the object has zero or several keys.
func (o Object) Single() (key string, value Node, ok bool) {
	if len(o) != 1 {
		return "", nil, false
	}
	for k, v := range o {
		return k, v, true
	}
	return "", nil, false
}

// IsScalar reports whether n is a string, number, or bool.
func IsScalar(n Node) bool {
	switch n.(type) {
	case String, Number, Bool:
		return true
	default:
		return false
	}
}

// Text returns the textual form of a scalar node.
// Strings yield their content, numbers their literal, booleans "true"/"false".
func Text(n Node) (string, bool) {
	switch v := n.(type) {
	case String:
		return string(v), true
	case Number:
		return string(v), true
	case Bool:
		if v {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}

// KindOf names the shape of n for error messages.
func KindOf(n Node) string {
	switch n.(type) {
	case Object:
		return "object"
	case Array:
		return "array"
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Null, nil:
		return "null"
	default:
		return fmt.Sprintf("%T", n)
	}
}

// ParseDocument decodes JSON bytes into a Node.
// Trailing content after the first value is rejected.
func ParseDocument(data []byte) (Node, error) {
	return ReadDocument(bytes.NewReader(data))
}

// ReadDocument decodes one JSON value from r into a Node.
func ReadDocument(r io.Reader) (Node, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, NewMalformedDocumentError(fmt.Sprintf("invalid JSON: %v", err))
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, NewMalformedDocumentError("unexpected content after JSON value")
	}
	return convertNode(raw)
}

// FromGo converts a decoded Go value (as produced by encoding/json or yaml.v3
// into an any) into a Node.
func FromGo(v any) (Node, error) {
	return convertNode(v)
}

func convertNode(v any) (Node, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case json.Number:
		return Number(val.String()), nil
	case int:
		return Number(fmt.Sprintf("%d", val)), nil
	case int64:
		return Number(fmt.Sprintf("%d", val)), nil
	case uint64:
		return Number(fmt.Sprintf("%d", val)), nil
	case float64:
		return Number(fmt.Sprintf("%v", val)), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			n, err := convertNode(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = n
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			n, err := convertNode(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = n
		}
		return obj, nil
	default:
		return nil, NewMalformedDocumentError(fmt.Sprintf("unsupported document value %T", v))
	}
}

package ir

import (
	"fmt"
	"strings"
)

// Type is the declared value type of a search parameter.
type Type string

const (
	TypeInt      Type = "int"
	TypeFloat    Type = "float"
	TypeString   Type = "string"
	TypeBool     Type = "bool"
	TypeDate     Type = "date"     // YYYY-MM-DD
	TypeDateTime Type = "datetime" // RFC 3339
	TypeUUID     Type = "uuid"
)

var typeAliases = map[string]Type{
	"int":       TypeInt,
	"integer":   TypeInt,
	"long":      TypeInt,
	"float":     TypeFloat,
	"double":    TypeFloat,
	"decimal":   TypeFloat,
	"string":    TypeString,
	"text":      TypeString,
	"bool":      TypeBool,
	"boolean":   TypeBool,
	"date":      TypeDate,
	"datetime":  TypeDateTime,
	"timestamp": TypeDateTime,
	"uuid":      TypeUUID,
}

// ParseType resolves a type name from a definition file.
// Names are case-insensitive and a few common synonyms are accepted.
func ParseType(s string) (Type, error) {
	t, ok := typeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", &Error{
			Code:    ErrCodeUnsupportedType,
			Message: fmt.Sprintf("unsupported parameter type %q", s),
		}
	}
	return t, nil
}

// Valid reports whether t is one of the declared type tags.
func (t Type) Valid() bool {
	switch t {
	case TypeInt, TypeFloat, TypeString, TypeBool, TypeDate, TypeDateTime, TypeUUID:
		return true
	}
	return false
}

func (t Type) String() string {
	return string(t)
}

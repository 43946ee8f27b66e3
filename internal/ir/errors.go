package ir

import (
	"errors"
	"fmt"
)

// Error is a compilation error: the search document, the filter tree, or a
// parameter value could not be turned into a statement.
//
// Compilation errors are fail-fast. Any Error aborts the whole compile call
// and no partial fragment is returned.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Field is the filter or sort field the error concerns, when known.
	Field string

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes compilation errors.
type ErrorCode string

const (
	// ErrCodeMalformedFilter indicates a structural violation in the filter section.
	ErrCodeMalformedFilter ErrorCode = "MALFORMED_FILTER"

	// ErrCodeMalformedDocument indicates the search document itself is not well formed.
	ErrCodeMalformedDocument ErrorCode = "MALFORMED_DOCUMENT"

	// ErrCodeUnknownOperator indicates an operator token outside the token table.
	ErrCodeUnknownOperator ErrorCode = "UNKNOWN_OPERATOR"

	// ErrCodeUnknownSortDirection indicates a sort direction other than ASC or DESC.
	ErrCodeUnknownSortDirection ErrorCode = "UNKNOWN_SORT_DIRECTION"

	// ErrCodeUnknownParameter indicates a field that is not declared in the catalog.
	ErrCodeUnknownParameter ErrorCode = "UNKNOWN_PARAMETER"

	// ErrCodeOperatorValueMismatch indicates a value where none is allowed or the reverse.
	ErrCodeOperatorValueMismatch ErrorCode = "OPERATOR_VALUE_MISMATCH"

	// ErrCodeOperatorRequiresValue indicates a bare operator token that needs a value.
	ErrCodeOperatorRequiresValue ErrorCode = "OPERATOR_REQUIRES_VALUE"

	// ErrCodeArity indicates a BETWEEN value list whose length is not 2.
	ErrCodeArity ErrorCode = "ARITY"

	// ErrCodeValueParse indicates a scalar that does not match the declared type.
	ErrCodeValueParse ErrorCode = "VALUE_PARSE"

	// ErrCodeReferenceNotFound indicates a reference lookup that returned nothing.
	ErrCodeReferenceNotFound ErrorCode = "REFERENCE_NOT_FOUND"

	// ErrCodeUnsupportedType indicates a declared type outside the known type tags.
	ErrCodeUnsupportedType ErrorCode = "UNSUPPORTED_TYPE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithField records field on err when err is an *Error without one.
// Other errors are returned untouched.
func WithField(err error, field string) error {
	var e *Error
	if errors.As(err, &e) && e.Field == "" {
		e.Field = field
	}
	return err
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCompileError reports whether err is (or wraps) a compilation error.
func IsCompileError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

func hasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsMalformedFilter reports whether err is a MALFORMED_FILTER error.
func IsMalformedFilter(err error) bool { return hasCode(err, ErrCodeMalformedFilter) }

// IsMalformedDocument reports whether err is a MALFORMED_DOCUMENT error.
func IsMalformedDocument(err error) bool { return hasCode(err, ErrCodeMalformedDocument) }

// IsUnknownOperator reports whether err is an UNKNOWN_OPERATOR error.
func IsUnknownOperator(err error) bool { return hasCode(err, ErrCodeUnknownOperator) }

// IsUnknownSortDirection reports whether err is an UNKNOWN_SORT_DIRECTION error.
func IsUnknownSortDirection(err error) bool { return hasCode(err, ErrCodeUnknownSortDirection) }

// IsUnknownParameter reports whether err is an UNKNOWN_PARAMETER error.
func IsUnknownParameter(err error) bool { return hasCode(err, ErrCodeUnknownParameter) }

// IsOperatorValueMismatch reports whether err is an OPERATOR_VALUE_MISMATCH error.
func IsOperatorValueMismatch(err error) bool { return hasCode(err, ErrCodeOperatorValueMismatch) }

// IsOperatorRequiresValue reports whether err is an OPERATOR_REQUIRES_VALUE error.
func IsOperatorRequiresValue(err error) bool { return hasCode(err, ErrCodeOperatorRequiresValue) }

// IsArity reports whether err is an ARITY error.
func IsArity(err error) bool { return hasCode(err, ErrCodeArity) }

// IsValueParse reports whether err is a VALUE_PARSE error.
func IsValueParse(err error) bool { return hasCode(err, ErrCodeValueParse) }

// IsReferenceNotFound reports whether err is a REFERENCE_NOT_FOUND error.
func IsReferenceNotFound(err error) bool { return hasCode(err, ErrCodeReferenceNotFound) }

// NewMalformedFilterError creates an Error for a filter shape violation.
func NewMalformedFilterError(field, message string) *Error {
	return &Error{Code: ErrCodeMalformedFilter, Message: message, Field: field}
}

// NewMalformedDocumentError creates an Error for a bad search document.
func NewMalformedDocumentError(message string) *Error {
	return &Error{Code: ErrCodeMalformedDocument, Message: message}
}

// NewUnknownOperatorError creates an Error for an unrecognised operator token.
func NewUnknownOperatorError(field, token string) *Error {
	return &Error{
		Code:    ErrCodeUnknownOperator,
		Message: fmt.Sprintf("unknown operator %q", token),
		Field:   field,
		Details: map[string]string{"token": token},
	}
}

// NewUnknownSortDirectionError creates an Error for a bad sort direction.
func NewUnknownSortDirectionError(field, direction string) *Error {
	return &Error{
		Code:    ErrCodeUnknownSortDirection,
		Message: fmt.Sprintf("unknown sort direction %q, expected ASC or DESC", direction),
		Field:   field,
		Details: map[string]string{"direction": direction},
	}
}

// NewUnknownParameterError creates an Error for an undeclared field.
func NewUnknownParameterError(field string) *Error {
	return &Error{
		Code:    ErrCodeUnknownParameter,
		Message: fmt.Sprintf("parameter %q is not declared", field),
		Field:   field,
	}
}

// NewOperatorValueMismatchError creates an Error for an operator given the
// wrong kind of value.
func NewOperatorValueMismatchError(field, operator, message string) *Error {
	return &Error{
		Code:    ErrCodeOperatorValueMismatch,
		Message: message,
		Field:   field,
		Details: map[string]string{"operator": operator},
	}
}

// NewOperatorRequiresValueError creates an Error for a bare operator token
// whose operator needs a value.
func NewOperatorRequiresValueError(field, operator string) *Error {
	return &Error{
		Code:    ErrCodeOperatorRequiresValue,
		Message: fmt.Sprintf("operator %s requires a value", operator),
		Field:   field,
		Details: map[string]string{"operator": operator},
	}
}

// NewArityError creates an Error for a value list of the wrong length.
func NewArityError(field, operator string, want, got int) *Error {
	return &Error{
		Code:    ErrCodeArity,
		Message: fmt.Sprintf("operator %s requires %d values, got %d", operator, want, got),
		Field:   field,
		Details: map[string]string{
			"operator": operator,
			"want":     fmt.Sprintf("%d", want),
			"got":      fmt.Sprintf("%d", got),
		},
	}
}

// NewValueParseError creates an Error for text that does not parse as t.
func NewValueParseError(raw string, t Type, cause error) *Error {
	e := &Error{
		Code:    ErrCodeValueParse,
		Message: fmt.Sprintf("cannot parse %q as %s", raw, t),
		Details: map[string]string{"type": string(t)},
	}
	if cause != nil {
		e.Details["cause"] = cause.Error()
	}
	return e
}

// NewReferenceNotFoundError creates an Error for a failed reference lookup.
func NewReferenceNotFoundError(entity string, id Value) *Error {
	return &Error{
		Code:    ErrCodeReferenceNotFound,
		Message: fmt.Sprintf("%s with id %s not found", entity, Format(id)),
		Details: map[string]string{"entity": entity},
	}
}

// ExecError wraps any failure raised by the query-execution collaborator.
// Compilation errors are never wrapped in an ExecError.
type ExecError struct {
	// Op names the execution surface that failed: find, find_single, count.
	Op  string
	Err error
}

// Error implements the error interface.
func (e *ExecError) Error() string {
	return fmt.Sprintf("execution error (%s): %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ExecError) Unwrap() error {
	return e.Err
}

// WrapExec wraps err in an ExecError for op. Compilation errors and nil are
// returned unchanged, as are errors that are already ExecErrors.
func WrapExec(op string, err error) error {
	if err == nil || IsCompileError(err) {
		return err
	}
	var ee *ExecError
	if errors.As(err, &ee) {
		return err
	}
	return &ExecError{Op: op, Err: err}
}

// IsExecError reports whether err is (or wraps) an ExecError.
func IsExecError(err error) bool {
	var ee *ExecError
	return errors.As(err, &ee)
}

var (
	// ErrNoResult is returned by single-row execution when no row matches.
	ErrNoResult = errors.New("no result")

	// ErrNonUnique is returned by single-row execution when several rows match.
	ErrNonUnique = errors.New("more than one result")
)

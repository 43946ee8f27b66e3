// Package ir provides the shared representation types for jsonsearch.
//
// It holds the document tagged union that search documents are parsed from,
// the closed value variant that coerced parameter values are bound as, the
// declared type tags, the value coercer with its reference resolver
// collaborator, and the error taxonomy used across the compiler.
//
// All other internal packages import ir; ir imports nothing internal.
package ir

// Package querysql compiles filter trees into SQL statement text with
// named bound parameters.
//
// Parameters are written as :name in statement text and returned alongside
// it; values are never interpolated. Every compilation starts a fresh
// parameter-name scope, so the fragments it returns are independent
// snapshots and concurrent compilations of one unmutated tree are safe.
package querysql

// Package filter defines the search filter tree and its parsing.
//
// A filter tree is built from Logical groups (AND/OR over ordered children)
// and Condition leaves (field, operator, optional value). Trees come from
// parsing the "filter" section of a search document or from the builder
// methods on Logical. Sort entries live here too since they resolve fields
// against the same catalog.
//
// The tree holds no reference to the catalog; the catalog is passed to the
// parser and to the compiler, so an unmutated tree can be compiled
// concurrently.
package filter

// Package harness runs conformance scenarios for search documents.
//
// A scenario names a search definition, seeds a fresh in-memory SQLite
// database, runs a sequence of search documents against it, and checks the
// compiled statements, the returned rows and the reported errors.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	definition: ../definitions/people.yaml
//	setup:
//	  - CREATE TABLE people (id INTEGER PRIMARY KEY, name TEXT, age INTEGER)
//	  - INSERT INTO people VALUES (1, 'ann', 17), (2, 'bob', 18)
//	steps:
//	  - search:
//	      filter: [{age: {$gte: 18}}]
//	      sort: [{age: DESC}]
//	    expect:
//	      total: 1
//	  - search:
//	      filter: [{age: {$gtx: 1}}]
//	    expect:
//	      error: UNKNOWN_OPERATOR
//	assertions:
//	  - type: rows_order
//	    step: 1
//	    field: name
//	    values: [bob]
//
// The definition path is relative to the scenario file. Steps are numbered
// from 1 in assertions and error messages.
//
// # Assertion Types
//
//   - statement_contains: the step's select statement contains text
//   - rows_order: the step's rows carry field values in exactly this order
//   - row_contains: some row of the step matches expect (subset match)
//   - total: the step's count equals count
//
// # Deterministic Testing
//
// Parameter names are allocated per compilation, so statements compiled
// from the same document are byte-identical across runs and can be
// compared against golden files with RunWithGolden.
package harness

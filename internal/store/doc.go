// Package store executes compiled search statements over database/sql.
//
// # Drivers
//
//   - sqlite3: github.com/mattn/go-sqlite3 (cgo)
//   - sqlite: modernc.org/sqlite (pure Go)
//   - pgx, postgres: github.com/jackc/pgx/v5 through its stdlib adapter
//   - mysql: github.com/go-sql-driver/mysql, always with parseTime enabled
//
// # Binding
//
// Statements name their parameters as :name. Before execution each name is
// rewritten to the driver's placeholder (? or $n). List values expand into
// one placeholder per element, so "IN (:ids)" becomes "IN (?, ?, ?)"; an
// empty list binds a single NULL. Entity references bind their identifier.
// Text inside quotes and "::" casts is never treated as a parameter.
//
// # Windows
//
// A statement with MaxResults > 0 gets LIMIT and OFFSET clauses bound as
// parameters.
package store

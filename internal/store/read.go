package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/jsonsearch/internal/ir"
	"github.com/roach88/jsonsearch/internal/querysql"
)

// List returns the rows of stmt within its window.
func (s *Store) List(ctx context.Context, stmt querysql.Statement) ([]ir.Record, error) {
	rows, err := s.query(ctx, stmt, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records, err := scanRecords(rows, 0)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []ir.Record{}
	}
	return records, nil
}

// Single returns the only row of stmt, ignoring any window.
func (s *Store) Single(ctx context.Context, stmt querysql.Statement) (ir.Record, error) {
	rows, err := s.query(ctx, stmt, false)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records, err := scanRecords(rows, 2)
	if err != nil {
		return nil, err
	}
	switch len(records) {
	case 0:
		return nil, ir.ErrNoResult
	case 1:
		return records[0], nil
	default:
		return nil, ir.ErrNonUnique
	}
}

// Count runs a count statement and returns its scalar.
func (s *Store) Count(ctx context.Context, stmt querysql.Statement) (int64, error) {
	query, args, err := s.bind(stmt, false)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("query count: %w", err)
	}
	return n, nil
}

func (s *Store) query(ctx context.Context, stmt querysql.Statement, windowed bool) (*sql.Rows, error) {
	query, args, err := s.bind(stmt, windowed)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return rows, nil
}

func (s *Store) bind(stmt querysql.Statement, windowed bool) (string, []any, error) {
	b := &binder{style: s.style, textTimes: s.textTimes}
	query, err := b.rewrite(stmt.Text, stmt.Params)
	if err != nil {
		return "", nil, err
	}
	if windowed && stmt.MaxResults > 0 {
		query += " LIMIT " + b.arg(stmt.MaxResults) + " OFFSET " + b.arg(stmt.FirstResult)
	}
	s.logger.Debug("executing statement", "driver", s.driver, "sql", query, "args", len(b.args))
	return query, b.args, nil
}

// scanRecords reads rows into records keyed by column name. limit > 0 stops
// after that many rows.
func scanRecords(rows *sql.Rows, limit int) ([]ir.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var records []ir.Record
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		rec := make(ir.Record, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				rec[col] = string(b)
			} else {
				rec[col] = values[i]
			}
		}
		records = append(records, rec)

		if limit > 0 && len(records) >= limit {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

package store

import (
	"context"
	"fmt"

	"github.com/roach88/jsonsearch/internal/catalog"
	"github.com/roach88/jsonsearch/internal/ir"
)

// FindByID loads one entity row by identifier from its configured table.
// It returns nil, nil when no row matches.
func (s *Store) FindByID(ctx context.Context, entity string, id ir.Value) (ir.Record, error) {
	def, ok := s.entities[entity]
	if !ok {
		return nil, fmt.Errorf("entity %q has no table configured", entity)
	}
	key := def.ID
	if key == "" {
		key = catalog.DefaultKey
	}

	// Table and column names are validated identifiers; only the id is bound.
	b := &binder{style: s.style, textTimes: s.textTimes}
	query := "SELECT * FROM " + def.Table + " WHERE " + key + " = " + b.arg(ir.Native(id))
	s.logger.Debug("resolving reference", "entity", entity, "sql", query)

	rows, err := s.db.QueryContext(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", entity, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

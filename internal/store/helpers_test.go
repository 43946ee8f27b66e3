package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/jsonsearch/internal/catalog"
)

const fixtureSQL = `
CREATE TABLE owners (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE people (
	id       INTEGER PRIMARY KEY,
	name     TEXT NOT NULL,
	age      INTEGER,
	status   TEXT,
	owner_id INTEGER REFERENCES owners(id)
);
INSERT INTO owners (id, name) VALUES (7, 'ada'), (8, 'grace');
INSERT INTO people (id, name, age, status, owner_id) VALUES
	(1, 'ann',    17, 'A', 7),
	(2, 'bob',    18, 'B', 8),
	(3, 'carl',   30, 'C', 7),
	(4, 'dana',   45, 'A', NULL),
	(5, 'joanna', 62, 'B', 7),
	(6, 'zed',    NULL, NULL, 8);
CREATE TABLE events (
	id     INTEGER PRIMARY KEY,
	day    DATE,
	at     DATETIME,
	active BOOLEAN,
	ref    TEXT
);
INSERT INTO events (id, day, at, active, ref) VALUES
	(1, '2020-01-01', '2020-01-01T10:00:00Z', 1, 'a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11'),
	(2, '2020-06-15', '2020-06-15T08:30:00Z', 0, 'b0eebc99-9c0b-4ef8-bb6d-6bb9bd380a12'),
	(3, '2021-03-01', '2021-03-01T23:59:59Z', 1, 'c0eebc99-9c0b-4ef8-bb6d-6bb9bd380a13');
`

// openTestStore opens a pure-Go SQLite database in a temp dir and loads
// the people/owners fixture.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), Config{
		Driver: "sqlite",
		DSN:    path,
		Entities: map[string]catalog.EntityDef{
			"owner": {Table: "owners", ID: "id"},
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.DB().Exec(fixtureSQL)
	require.NoError(t, err)
	return s
}

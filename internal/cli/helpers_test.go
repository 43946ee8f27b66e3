package cli

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	peopleYAML = "testdata/people.yaml"
	peopleCUE  = "testdata/people.cue"
	adultsJSON = "testdata/adults.json"
)

// execute runs the root command with args and stdin, returning stdout,
// stderr and the command error.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// seedDatabase creates a SQLite database with owners and people tables
// and returns its path.
func seedDatabase(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "people.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
CREATE TABLE owners (id INTEGER PRIMARY KEY, name TEXT NOT NULL);
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
`)
	require.NoError(t, err)
	return path
}

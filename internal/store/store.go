package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/roach88/jsonsearch/internal/catalog"
)

// PlaceholderStyle is how a driver spells positional parameters.
type PlaceholderStyle int

const (
	// PlaceholderQuestion writes every parameter as ?.
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar writes parameters as $1, $2, ...
	PlaceholderDollar
)

// Drivers lists the accepted driver names.
var Drivers = []string{"sqlite3", "sqlite", "pgx", "postgres", "mysql"}

// Config selects and configures a data source.
type Config struct {
	// Driver is one of Drivers.
	Driver string

	// DSN is the driver-specific data source name.
	DSN string

	// Entities maps entity names to tables for reference resolution.
	Entities map[string]catalog.EntityDef

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Store runs search statements against one database.
// It is safe for concurrent use.
type Store struct {
	db       *sql.DB
	style     PlaceholderStyle
	textTimes bool
	driver    string
	entities  map[string]catalog.EntityDef
	logger    *slog.Logger
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	db, style, err := openDB(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if isSQLite(cfg.Driver) {
		// One connection keeps in-memory databases visible across queries.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}

	s := New(db, style, cfg.Entities, cfg.Logger)
	s.driver = cfg.Driver
	s.textTimes = isSQLite(cfg.Driver)
	return s, nil
}

// New wraps an open database. entities may be nil when no reference
// parameters are resolved through the store. Dates and timestamps are bound
// as time.Time; Open binds them as text for SQLite.
func New(db *sql.DB, style PlaceholderStyle, entities map[string]catalog.EntityDef, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, style: style, entities: entities, logger: logger}
}

func openDB(driver, dsn string) (*sql.DB, PlaceholderStyle, error) {
	switch strings.ToLower(driver) {
	case "sqlite3", "sqlite":
		db, err := sql.Open(strings.ToLower(driver), dsn)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to open database: %w", err)
		}
		return db, PlaceholderQuestion, nil

	case "pgx", "postgres", "postgresql":
		cfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid postgres dsn: %w", err)
		}
		return stdlib.OpenDB(*cfg), PlaceholderDollar, nil

	case "mysql":
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid mysql dsn: %w", err)
		}
		// DATE and DATETIME columns must scan as time.Time.
		cfg.ParseTime = true
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to open database: %w", err)
		}
		return sql.OpenDB(connector), PlaceholderQuestion, nil

	default:
		return nil, 0, fmt.Errorf("unsupported driver %q (expected one of %s)", driver, strings.Join(Drivers, ", "))
	}
}

func isSQLite(driver string) bool {
	d := strings.ToLower(driver)
	return d == "sqlite3" || d == "sqlite"
}

// applyPragmas sets SQLite connection options.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Style returns the placeholder style statements are rewritten to.
func (s *Store) Style() PlaceholderStyle {
	return s.style
}

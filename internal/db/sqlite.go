package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

const (
	// DriverMattn is the cgo driver registered by github.com/mattn/go-sqlite3.
	DriverMattn = "sqlite3"
	// DriverModernc is the pure Go driver registered by modernc.org/sqlite.
	DriverModernc = "sqlite"

	MemoryPath = ":memory:"
)

const schema = `
CREATE TABLE IF NOT EXISTS posts (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content BLOB,
    md_content_hash TEXT,
    created_at TEXT NOT NULL,
    modified_at TEXT NOT NULL
);`

type SQLite struct {
	driver string
	path   string

	conn *sql.DB
}

func NewSQLite(driver, path string) *SQLite {
	if driver == "" {
		driver = DriverMattn
	}
	return &SQLite{
		driver: driver,
		path:   path,
		conn:   nil,
	}
}

func (s *SQLite) InitDB(ctx context.Context) error {
	switch s.driver {
	case DriverMattn, DriverModernc:
	default:
		return fmt.Errorf("unsupported sqlite driver %q", s.driver)
	}

	var err error
	s.conn, err = sql.Open(s.driver, s.path)
	if err != nil {
		return err
	}

	// Every connection to :memory: is a separate database.
	if s.path == MemoryPath {
		s.conn.SetMaxOpenConns(1)
	}

	if err := s.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("error connecting to %s: %w", s.path, err)
	}

	res, err := s.conn.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("error creating schema: %w", err)
	}

	dbLogger.Info().
		Str("driver", s.driver).
		Str("path", s.path).
		Any("db_result", res).
		Msg("Database initialized")
	return nil
}

func (s *SQLite) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *SQLite) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	dbLogger.Debug().Str("query", query).Msg("QueryRow")
	return s.conn.QueryRowContext(ctx, query, args...)
}

func (s *SQLite) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	dbLogger.Debug().Str("query", query).Msg("Query")
	return s.conn.QueryContext(ctx, query, args...)
}

func (s *SQLite) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	dbLogger.Debug().Str("query", query).Msg("Exec")
	return s.conn.ExecContext(ctx, query, args...)
}

package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

const failedToInitDB = "Failed to initialize database: %v"

func TestSetLogger(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.InfoLevel)
	SetLogger(logger)
}

func TestNewSQLite(t *testing.T) {
	db := NewSQLite("", MemoryPath)

	if db == nil {
		t.Fatal("Expected non-nil SQLite instance")
	}
	if db.conn != nil {
		t.Error("Expected connection to be nil initially")
	}
	if db.driver != DriverMattn {
		t.Errorf("Expected default driver %q, got %q", DriverMattn, db.driver)
	}
}

func TestSQLiteDrivers(t *testing.T) {
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))

	for _, driver := range []string{DriverMattn, DriverModernc} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			db := NewSQLite(driver, MemoryPath)
			defer db.Close()

			if err := db.InitDB(ctx); err != nil {
				t.Fatalf(failedToInitDB, err)
			}

			var name string
			err := db.QueryRow(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", "posts").Scan(&name)
			if err != nil {
				t.Fatalf("Expected posts table: %v", err)
			}

			_, err = db.Exec(ctx,
				`INSERT INTO posts (slug, title, content, md_content_hash, created_at, modified_at) VALUES (?, ?, ?, ?, ?, ?)`,
				"hello", "Hello", []byte("body"), "hash", "2024-01-01T00:00:00Z", "2024-01-01T00:00:00Z",
			)
			if err != nil {
				t.Fatalf("Insert failed: %v", err)
			}

			rows, err := db.Query(ctx, `SELECT slug FROM posts`)
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			defer rows.Close()

			count := 0
			for rows.Next() {
				count++
			}
			if count != 1 {
				t.Errorf("Expected 1 row, got %d", count)
			}
		})
	}
}

func TestSQLiteInitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	first := NewSQLite(DriverModernc, path)
	if err := first.InitDB(ctx); err != nil {
		t.Fatalf(failedToInitDB, err)
	}
	first.Close()

	second := NewSQLite(DriverModernc, path)
	defer second.Close()
	if err := second.InitDB(ctx); err != nil {
		t.Fatalf("Second init failed: %v", err)
	}
}

func TestSQLiteUnsupportedDriver(t *testing.T) {
	db := NewSQLite("postgres", MemoryPath)
	if err := db.InitDB(context.Background()); err == nil {
		t.Error("Expected error for unsupported driver")
	}
}

func TestSQLiteClose(t *testing.T) {
	db := NewSQLite(DriverMattn, MemoryPath)
	if err := db.Close(); err != nil {
		t.Errorf("Close on unopened database should not fail: %v", err)
	}
}

func TestDBInterface(t *testing.T) {
	var _ DB = NewSQLite(DriverMattn, MemoryPath)
}

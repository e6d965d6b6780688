package repository

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/debemdeboas/archive-admin/internal/db"
	"github.com/debemdeboas/archive-admin/internal/model"
	"github.com/debemdeboas/archive-admin/internal/util/compression"
)

func TestDBPostRepositoryCompression(t *testing.T) {
	ctx := context.Background()
	body := string(bytes.Repeat([]byte("compressible markdown "), 100))

	for _, name := range []string{"zstd", "gzip", "none"} {
		t.Run(name, func(t *testing.T) {
			compressor, err := compression.ByName(name)
			if err != nil {
				t.Fatal(err)
			}

			sqlite := newTestSQLite(t, db.DriverMattn)
			repo := NewDBPostRepository(sqlite, compressor)

			if err := repo.CreatePost(ctx, model.NewPost{Title: "T", Slug: "s", Markdown: body}); err != nil {
				t.Fatalf("CreatePost failed: %v", err)
			}

			var stored []byte
			if err := sqlite.QueryRow(ctx, `SELECT content FROM posts WHERE slug = ?`, "s").Scan(&stored); err != nil {
				t.Fatalf("Reading raw content failed: %v", err)
			}
			if name == "none" && string(stored) != body {
				t.Error("Expected uncompressed content to be stored as is")
			}
			if name != "none" && len(stored) >= len(body) {
				t.Errorf("Expected compressed content, stored %d bytes for %d", len(stored), len(body))
			}

			post, err := repo.GetPost(ctx, "s")
			if err != nil {
				t.Fatalf("GetPost failed: %v", err)
			}
			if post.Body() != body {
				t.Error("Body changed after round trip")
			}
		})
	}
}

func TestDBPostRepositoryStoresFixedWidthTimes(t *testing.T) {
	ctx := context.Background()
	sqlite := newTestSQLite(t, db.DriverModernc)
	repo := NewDBPostRepository(sqlite, nil)

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	repo.now = func() time.Time { return at }

	if err := repo.CreatePost(ctx, model.NewPost{Title: "T", Slug: "s", Markdown: "b"}); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	var created string
	if err := sqlite.QueryRow(ctx, `SELECT created_at FROM posts WHERE slug = ?`, "s").Scan(&created); err != nil {
		t.Fatal(err)
	}
	if created != "2024-01-02T03:04:05.000000000Z" {
		t.Errorf("Unexpected stored time %q", created)
	}
}

func TestParseDBTime(t *testing.T) {
	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	for _, s := range []string{
		"2024-01-02T03:04:05.000000000Z",
		"2024-01-02T03:04:05Z",
		"2024-01-02 03:04:05",
		"2024-01-02 05:04:05+02:00",
	} {
		got, err := parseDBTime(s)
		if err != nil {
			t.Errorf("parseDBTime(%q) failed: %v", s, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("parseDBTime(%q) = %v, want %v", s, got, want)
		}
	}

	if _, err := parseDBTime("yesterday"); err == nil {
		t.Error("Expected error for unparseable time")
	}
}

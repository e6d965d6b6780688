package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/debemdeboas/archive-admin/internal/config"
	"github.com/debemdeboas/archive-admin/internal/db"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*config.Config, string)
		want    string
		wantErr bool
	}{
		{
			name: "sqlite",
			mutate: func(c *config.Config, dir string) {
				c.Database.Driver = db.DriverModernc
				c.Database.Path = filepath.Join(dir, "posts.db")
			},
			want: "*repository.DBPostRepository",
		},
		{
			name:   "fs",
			mutate: func(c *config.Config, dir string) { c.Storage.Backend = "fs"; c.Files.Dir = dir },
			want:   "*repository.FSPostRepository",
		},
		{
			name:   "memory",
			mutate: func(c *config.Config, dir string) { c.Storage.Backend = "memory" },
			want:   "*repository.MemoryPostRepository",
		},
		{
			name: "bad compression",
			mutate: func(c *config.Config, dir string) {
				c.Storage.Compression = "lz4"
			},
			wantErr: true,
		},
		{
			name:    "unknown backend",
			mutate:  func(c *config.Config, dir string) { c.Storage.Backend = "tape" },
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			tc.mutate(cfg, t.TempDir())

			repo, closeRepo, err := New(context.Background(), cfg, S3Credentials{})
			if closeRepo == nil {
				t.Fatal("Expected a non-nil close function")
			}
			defer closeRepo()

			if tc.wantErr {
				if err == nil {
					t.Error("Expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}

			if got := fmt.Sprintf("%T", repo); got != tc.want {
				t.Errorf("Expected %s, got %s", tc.want, got)
			}
		})
	}
}

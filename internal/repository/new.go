package repository

import (
	"context"
	"fmt"

	"github.com/debemdeboas/archive-admin/internal/config"
	"github.com/debemdeboas/archive-admin/internal/db"
	"github.com/debemdeboas/archive-admin/internal/util/compression"
)

// S3Credentials come from the environment rather than the config file.
type S3Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

// New builds the backend selected by cfg.Storage.Backend. The returned close
// function releases the backend's resources and is never nil.
func New(ctx context.Context, cfg *config.Config, creds S3Credentials) (PostRepository, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Backend {
	case "sqlite":
		compressor, err := compression.ByName(cfg.Storage.Compression)
		if err != nil {
			return nil, noop, err
		}

		sqlite := db.NewSQLite(cfg.Database.Driver, cfg.Database.Path)
		if err := sqlite.InitDB(ctx); err != nil {
			sqlite.Close()
			return nil, noop, fmt.Errorf(config.ErrInitializeDatabaseFmt, err)
		}
		return NewDBPostRepository(sqlite, compressor), sqlite.Close, nil

	case "fs":
		repo, err := NewFSPostRepository(cfg.Files.Dir)
		if err != nil {
			return nil, noop, err
		}
		return repo, noop, nil

	case "s3":
		repo, err := NewS3PostRepository(ctx, S3Options{
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			AccessKeyID:     creds.AccessKeyID,
			SecretAccessKey: creds.SecretAccessKey,
		})
		if err != nil {
			return nil, noop, err
		}
		return repo, noop, nil

	case "memory":
		return NewMemoryPostRepository(), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

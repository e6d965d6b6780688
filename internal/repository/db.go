package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"

	"github.com/debemdeboas/archive-admin/internal/db"
	"github.com/debemdeboas/archive-admin/internal/model"
	"github.com/debemdeboas/archive-admin/internal/util"
	"github.com/debemdeboas/archive-admin/internal/util/compression"
)

const postsTable = "posts"

// Fixed width so that ORDER BY on the text column is chronological.
const dbTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var postColumns = []any{"slug", "title", "content", "md_content_hash", "created_at", "modified_at"}

type DBPostRepository struct { // implements PostRepository
	db         db.DB
	dialect    goqu.DialectWrapper
	compressor compression.Compressor

	now func() time.Time
}

func NewDBPostRepository(db db.DB, compressor compression.Compressor) *DBPostRepository {
	if compressor == nil {
		compressor = compression.ZstdCompressor{}
	}

	return &DBPostRepository{
		db:         db,
		dialect:    goqu.Dialect("sqlite3"),
		compressor: compressor,
		now:        time.Now,
	}
}

func (r *DBPostRepository) CreatePost(ctx context.Context, p model.NewPost) error {
	compressed, err := r.compressor.Compress([]byte(p.Markdown))
	if err != nil {
		return fmt.Errorf("error compressing content: %w", err)
	}

	now := r.now().UTC().Format(dbTimeLayout)

	query, args, err := r.dialect.Insert(postsTable).
		Prepared(true).
		Rows(goqu.Record{
			"slug":            string(p.Slug),
			"title":           p.Title,
			"content":         compressed,
			"md_content_hash": util.ContentHashString(p.Markdown),
			"created_at":      now,
			"modified_at":     now,
		}).
		OnConflict(goqu.DoUpdate("slug", goqu.Record{
			"title":           goqu.L("excluded.title"),
			"content":         goqu.L("excluded.content"),
			"md_content_hash": goqu.L("excluded.md_content_hash"),
			"modified_at":     goqu.L("excluded.modified_at"),
		})).
		ToSQL()
	if err != nil {
		return fmt.Errorf("error building insert: %w", err)
	}

	res, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error saving post %q: %w", p.Slug, err)
	}

	repoLogger.Debug().Str("slug", string(p.Slug)).Interface("result", res).Msg("Post saved")
	return nil
}

func (r *DBPostRepository) GetPost(ctx context.Context, slug model.Slug) (*model.Post, error) {
	query, args, err := r.dialect.From(postsTable).
		Prepared(true).
		Select(postColumns...).
		Where(goqu.C("slug").Eq(string(slug))).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("error building select: %w", err)
	}

	post, err := r.scanPost(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPostNotFound, slug)
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *DBPostRepository) ListPosts(ctx context.Context) ([]model.Post, error) {
	query, args, err := r.dialect.From(postsTable).
		Prepared(true).
		Select(postColumns...).
		Order(goqu.C("modified_at").Desc(), goqu.C("slug").Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("error building select: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0)
	for rows.Next() {
		post, err := r.scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *DBPostRepository) scanPost(row rowScanner) (*model.Post, error) {
	var post model.Post
	var slug, created, modified string
	var compressed []byte
	var hash sql.NullString

	if err := row.Scan(&slug, &post.Title, &compressed, &hash, &created, &modified); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("error scanning post: %w", err)
	}
	post.Slug = model.Slug(slug)
	post.MDContentHash = hash.String

	content, err := r.compressor.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("error decompressing content of %q: %w", slug, err)
	}
	post.Markdown = content

	if post.CreatedDate, err = parseDBTime(created); err != nil {
		return nil, err
	}
	if post.ModifiedDate, err = parseDBTime(modified); err != nil {
		return nil, err
	}

	return &post, nil
}

func parseDBTime(s string) (time.Time, error) {
	timeFormats := []string{
		dbTimeLayout,
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05", // CURRENT_TIMESTAMP
	}

	var parseErr error
	for _, format := range timeFormats {
		t, err := time.Parse(format, s)
		if err == nil {
			return t.UTC(), nil
		}
		parseErr = err
	}
	return time.Time{}, fmt.Errorf("error parsing time '%s' with any known format: %w", s, parseErr)
}

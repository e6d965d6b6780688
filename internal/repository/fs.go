package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/natefinch/atomic"

	"github.com/debemdeboas/archive-admin/internal/model"
	"github.com/debemdeboas/archive-admin/internal/util"
)

const markdownExt = ".md"

// FSPostRepository keeps one <slug>.md file per post with the title and
// creation date in an mmark front matter block.
type FSPostRepository struct { // implements PostRepository
	postsPath string

	// Serializes the read-then-write in CreatePost.
	mu sync.Mutex

	now func() time.Time
}

func NewFSPostRepository(postsPath string) (*FSPostRepository, error) {
	if err := os.MkdirAll(postsPath, 0755); err != nil {
		return nil, fmt.Errorf("error creating posts directory: %w", err)
	}

	return &FSPostRepository{
		postsPath: postsPath,
		now:       time.Now,
	}, nil
}

func (r *FSPostRepository) path(slug model.Slug) string {
	return filepath.Join(r.postsPath, string(slug)+markdownExt)
}

func (r *FSPostRepository) CreatePost(ctx context.Context, p model.NewPost) error {
	if err := validateSlug(p.Slug); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	created := r.now().UTC()
	if existing, err := r.readPost(p.Slug); err == nil {
		created = existing.CreatedDate
	} else if !errors.Is(err, ErrPostNotFound) {
		return err
	}

	data, err := util.BuildFrontMatter(p.Title, created, []byte(p.Markdown))
	if err != nil {
		return err
	}

	if err := atomic.WriteFile(r.path(p.Slug), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("error writing post %q: %w", p.Slug, err)
	}

	repoLogger.Debug().Str("slug", string(p.Slug)).Str("path", r.path(p.Slug)).Msg("Post saved")
	return nil
}

func (r *FSPostRepository) GetPost(ctx context.Context, slug model.Slug) (*model.Post, error) {
	if err := validateSlug(slug); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPostNotFound, slug)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.readPost(slug)
}

func (r *FSPostRepository) readPost(slug model.Slug) (*model.Post, error) {
	path := r.path(slug)

	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrPostNotFound, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading post %q: %w", slug, err)
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error reading post %q: %w", slug, err)
	}

	return parseMarkdownFile(slug, content, fileInfo.ModTime()), nil
}

// parseMarkdownFile accepts files without front matter; their title is empty
// and the whole file is the body.
func parseMarkdownFile(slug model.Slug, content []byte, modified time.Time) *model.Post {
	post := &model.Post{
		Slug:         slug,
		Markdown:     content,
		CreatedDate:  modified.UTC(),
		ModifiedDate: modified.UTC(),
	}

	if info, body, err := util.SplitFrontMatter(content); err == nil {
		post.Title = info.Title
		post.Markdown = body
		if !info.Date.IsZero() {
			post.CreatedDate = info.Date.UTC()
		}
	}

	post.MDContentHash = util.ContentHash(post.Markdown)
	return post
}

func (r *FSPostRepository) ListPosts(ctx context.Context) ([]model.Post, error) {
	entries, err := os.ReadDir(r.postsPath)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}

	posts := make([]model.Post, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), markdownExt) {
			continue
		}

		slug := model.Slug(strings.TrimSuffix(entry.Name(), markdownExt))
		post, err := r.readPost(slug)
		if err != nil {
			repoLogger.Warn().Err(err).Str("file", entry.Name()).Msg("Skipping unreadable post")
			continue
		}
		posts = append(posts, *post)
	}

	sortPosts(posts)
	return posts, nil
}

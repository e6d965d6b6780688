// Package repository stores posts. Every backend implements PostRepository
// with the same semantics: CreatePost on an existing slug replaces its title
// and body and keeps its creation time.
package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/archive-admin/internal/model"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrInvalidSlug  = errors.New("invalid slug")
)

type PostRepository interface {
	CreatePost(ctx context.Context, post model.NewPost) error
	GetPost(ctx context.Context, slug model.Slug) (*model.Post, error)

	// ListPosts returns every post, most recently modified first.
	ListPosts(ctx context.Context) ([]model.Post, error)
}

var repoLogger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	repoLogger = l
}

// Slugs become file names and object keys in the fs and s3 backends.
var safeSlug = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

func validateSlug(slug model.Slug) error {
	if !safeSlug.MatchString(string(slug)) {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	return nil
}

func sortPosts(posts []model.Post) {
	slices.SortStableFunc(posts, func(a, b model.Post) int {
		if c := -a.ModifiedDate.Compare(b.ModifiedDate); c != 0 {
			return c
		}
		if a.Slug < b.Slug {
			return -1
		}
		if a.Slug > b.Slug {
			return 1
		}
		return 0
	})
}

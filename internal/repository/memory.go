package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/debemdeboas/archive-admin/internal/cache"
	"github.com/debemdeboas/archive-admin/internal/model"
	"github.com/debemdeboas/archive-admin/internal/util"
)

type MemoryPostRepository struct { // implements PostRepository
	posts *cache.Cache[model.Slug, model.Post]

	now func() time.Time
}

func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{
		posts: cache.NewCache[model.Slug, model.Post](),
		now:   time.Now,
	}
}

func (r *MemoryPostRepository) CreatePost(ctx context.Context, p model.NewPost) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := r.now().UTC()
	r.posts.Update(p.Slug, func(old model.Post, found bool) model.Post {
		created := now
		if found {
			created = old.CreatedDate
		}
		return model.Post{
			Slug:          p.Slug,
			Title:         p.Title,
			Markdown:      []byte(p.Markdown),
			MDContentHash: util.ContentHashString(p.Markdown),
			CreatedDate:   created,
			ModifiedDate:  now,
		}
	})

	repoLogger.Debug().Str("slug", string(p.Slug)).Msg("Post saved")
	return nil
}

func (r *MemoryPostRepository) GetPost(ctx context.Context, slug model.Slug) (*model.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	post, ok := r.posts.Get(slug)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPostNotFound, slug)
	}
	return &post, nil
}

func (r *MemoryPostRepository) ListPosts(ctx context.Context) ([]model.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	posts := r.posts.Values()
	sortPosts(posts)
	return posts, nil
}

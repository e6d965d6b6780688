package admin

import (
	"context"
	"sync"
	"time"

	"github.com/debemdeboas/archive-admin/internal/model"
	"github.com/debemdeboas/archive-admin/internal/repository"
)

// countingStore records every call the editor makes.
type countingStore struct {
	mu sync.Mutex

	posts   map[model.Slug]model.Post
	created []model.NewPost
	lookups []model.Slug

	createErr error
	getErr    error
}

func newCountingStore(posts ...model.Post) *countingStore {
	s := &countingStore{posts: make(map[model.Slug]model.Post)}
	for _, p := range posts {
		s.posts[p.Slug] = p
	}
	return s
}

func (s *countingStore) CreatePost(ctx context.Context, post model.NewPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.created = append(s.created, post)
	if s.createErr != nil {
		return s.createErr
	}

	now := time.Now()
	s.posts[post.Slug] = model.Post{
		Slug:         post.Slug,
		Title:        post.Title,
		Markdown:     []byte(post.Markdown),
		CreatedDate:  now,
		ModifiedDate: now,
	}
	return nil
}

func (s *countingStore) GetPost(ctx context.Context, slug model.Slug) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lookups = append(s.lookups, slug)
	if s.getErr != nil {
		return nil, s.getErr
	}

	post, ok := s.posts[slug]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	return &post, nil
}

func (s *countingStore) ListPosts(ctx context.Context) ([]model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := make([]model.Post, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, p)
	}
	return posts, nil
}

func (s *countingStore) Created() []model.NewPost {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.NewPost(nil), s.created...)
}

func (s *countingStore) Lookups() []model.Slug {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Slug(nil), s.lookups...)
}

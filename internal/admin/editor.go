// Package admin implements the post editor page: loading the create or edit
// form, validating and storing a submission, and rendering the form.
package admin

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/debemdeboas/archive-admin/internal/config"
	"github.com/debemdeboas/archive-admin/internal/model"
)

const (
	FieldTitle    = "title"
	FieldSlug     = "slug"
	FieldMarkdown = "markdown"
)

var fieldNames = []string{FieldTitle, FieldSlug, FieldMarkdown}

// PostStore is the storage the editor needs.
type PostStore interface {
	CreatePost(ctx context.Context, post model.NewPost) error
	GetPost(ctx context.Context, slug model.Slug) (*model.Post, error)
}

// Fields are the submitted form values. An absent field is the empty string.
type Fields struct {
	Title    string
	Slug     string
	Markdown string
}

// FieldsFromForm reads the three editor fields from parsed form values.
func FieldsFromForm(form url.Values) Fields {
	return Fields{
		Title:    form.Get(FieldTitle),
		Slug:     form.Get(FieldSlug),
		Markdown: form.Get(FieldMarkdown),
	}
}

// Errors flags each required field that was missing from a submission.
type Errors struct {
	Title    bool
	Slug     bool
	Markdown bool
}

func (e Errors) Any() bool {
	return e.Title || e.Slug || e.Markdown
}

// Fields names the flagged fields in form order.
func (e Errors) Fields() []string {
	flags := map[string]bool{
		FieldTitle:    e.Title,
		FieldSlug:     e.Slug,
		FieldMarkdown: e.Markdown,
	}
	return lo.Filter(fieldNames, func(name string, _ int) bool {
		return flags[name]
	})
}

// Validate checks every field; it does not stop at the first failure.
func Validate(f Fields) Errors {
	return Errors{
		Title:    f.Title == "",
		Slug:     f.Slug == "",
		Markdown: f.Markdown == "",
	}
}

// Result of a submission: either a redirect target or validation errors.
type Result struct {
	Redirect string
	Errors   Errors
}

// StorageError is a failure of the post store during a submission.
type StorageError struct {
	Slug model.Slug
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storing post %q: %v", e.Slug, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ViewState is computed once per page load. When IsEdit is set, Post is the
// post being edited.
type ViewState struct {
	IsEdit bool
	Post   *model.Post
}

type Editor struct {
	store PostStore
	delay Delay
}

func NewEditor(store PostStore, delay Delay) *Editor {
	if delay == nil {
		delay = NoDelay
	}
	return &Editor{
		store: store,
		delay: delay,
	}
}

// Submit waits for the configured delay, validates f and, if every field is
// present, stores the post and returns a redirect to the admin listing.
// Nothing is stored when validation fails.
func (e *Editor) Submit(ctx context.Context, f Fields) (Result, error) {
	if err := e.delay(ctx); err != nil {
		return Result{}, err
	}

	if errs := Validate(f); errs.Any() {
		return Result{Errors: errs}, nil
	}

	post := model.NewPost{
		Title:    f.Title,
		Slug:     model.Slug(f.Slug),
		Markdown: f.Markdown,
	}
	if err := e.store.CreatePost(ctx, post); err != nil {
		return Result{}, errors.WithStack(&StorageError{Slug: post.Slug, Err: err})
	}

	return Result{Redirect: config.AdminUrlPath}, nil
}

// Load reads the edit query parameter from u. Without it the page is a blank
// create form and the store is not consulted.
func (e *Editor) Load(ctx context.Context, u *url.URL) (ViewState, error) {
	slug := u.Query().Get(config.EditQueryParam)
	if slug == "" {
		return ViewState{IsEdit: false}, nil
	}

	post, err := e.store.GetPost(ctx, model.Slug(slug))
	if err != nil {
		return ViewState{}, err
	}

	return ViewState{IsEdit: true, Post: post}, nil
}

// Package model defines core data structures and types for the admin application.
package model

import (
	"time"
)

// Slug is the unique, human-readable identifier of a post. It never changes
// after the post is created.
type Slug string

type Post struct {
	Slug  Slug
	Title string

	Markdown []byte

	// Hash of the stored markdown, used for ETags and change detection.
	MDContentHash string

	CreatedDate  time.Time
	ModifiedDate time.Time
}

// NewPost is the input of a create operation. The body is stored under
// Markdown.
type NewPost struct {
	Title    string
	Slug     Slug
	Markdown string
}

// Body returns the raw markdown of the post.
func (p *Post) Body() string {
	return string(p.Markdown)
}

// GetTitle falls back to the slug for posts stored without a title.
func (p *Post) GetTitle() string {
	if p.Title != "" {
		return p.Title
	}
	return string(p.Slug)
}

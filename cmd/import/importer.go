package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/debemdeboas/archive-admin/internal/model"
	"github.com/debemdeboas/archive-admin/internal/repository"
	"github.com/debemdeboas/archive-admin/internal/util"
)

type importOptions struct {
	DryRun       bool
	SkipExisting bool
}

type fileResult struct {
	File  string
	Slug  model.Slug
	Title string
	Err   error
}

type report struct {
	Imported []fileResult
	Skipped  []fileResult
	Failed   []fileResult
}

// parseMarkdownFile builds a post from a markdown file. The slug is the file
// name without its extension; the title comes from the front matter, falling
// back to the slug.
func parseMarkdownFile(name string, content []byte) model.NewPost {
	slug := strings.TrimSuffix(name, filepath.Ext(name))

	post := model.NewPost{
		Title:    slug,
		Slug:     model.Slug(slug),
		Markdown: string(content),
	}

	info, body, err := util.SplitFrontMatter(content)
	if err != nil {
		return post
	}

	if info.Title != "" {
		post.Title = info.Title
	}
	post.Markdown = string(body)
	return post
}

func importDir(ctx context.Context, repo repository.PostRepository, dir string, opts importOptions) (report, error) {
	var rep report

	entries, err := os.ReadDir(dir)
	if err != nil {
		return rep, err
	}

	files := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		return e.Name(), !e.IsDir() && strings.HasSuffix(e.Name(), ".md")
	})

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			rep.Failed = append(rep.Failed, fileResult{File: name, Err: err})
			continue
		}

		post := parseMarkdownFile(name, content)
		res := fileResult{File: name, Slug: post.Slug, Title: post.Title}

		if opts.SkipExisting {
			_, err := repo.GetPost(ctx, post.Slug)
			if err == nil {
				rep.Skipped = append(rep.Skipped, res)
				continue
			} else if !errors.Is(err, repository.ErrPostNotFound) {
				res.Err = err
				rep.Failed = append(rep.Failed, res)
				continue
			}
		}

		if !opts.DryRun {
			if err := repo.CreatePost(ctx, post); err != nil {
				res.Err = err
				rep.Failed = append(rep.Failed, res)
				continue
			}
		}

		rep.Imported = append(rep.Imported, res)
	}

	return rep, nil
}

package admin

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/debemdeboas/archive-admin/internal/config"
	"github.com/debemdeboas/archive-admin/internal/logger"
	"github.com/debemdeboas/archive-admin/internal/model"
	"github.com/debemdeboas/archive-admin/internal/repository"
)

const (
	pageTitleNew  = "New Post"
	pageTitleEdit = "Edit Post"
	pageTitleList = "Posts"
)

type Options struct {
	SiteName     string
	MarkdownRows int
	Delay        Delay
}

// Handler serves the admin listing and the post editor.
type Handler struct {
	repo   repository.PostRepository
	editor *Editor
	views  *Views
	opts   Options
}

func NewHandler(repo repository.PostRepository, views *Views, opts Options) *Handler {
	return &Handler{
		repo:   repo,
		editor: NewEditor(repo, opts.Delay),
		views:  views,
		opts:   opts,
	}
}

// Register mounts the admin routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc(config.AdminUrlPath, h.ServeList)
	mux.HandleFunc(config.EditorUrlPath, h.ServeEditor)
}

func (h *Handler) ServeEditor(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.serveEditorForm(w, r)
	case http.MethodPost:
		h.serveEditorSubmit(w, r)
	default:
		w.Header().Set("Allow", strings.Join([]string{http.MethodGet, http.MethodHead, http.MethodPost}, ", "))
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
	}
}

func (h *Handler) serveEditorForm(w http.ResponseWriter, r *http.Request) {
	l := logger.FromRequest(r)

	state, err := h.editor.Load(r.Context(), r.URL)
	if errors.Is(err, repository.ErrPostNotFound) {
		http.NotFound(w, r)
		return
	} else if err != nil {
		l.Error().Err(err).Msg("Failed to load post for editing")
		http.Error(w, config.ErrLoadPost, http.StatusInternalServerError)
		return
	}

	form := NewForm(Errors{}, state, false, h.opts.MarkdownRows)
	h.renderEditor(w, r, http.StatusOK, form)
}

func (h *Handler) serveEditorSubmit(w http.ResponseWriter, r *http.Request) {
	l := logger.FromRequest(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	fields := FieldsFromForm(r.PostForm)

	res, err := h.editor.Submit(r.Context(), fields)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		l.Debug().Err(err).Msg("Submission abandoned by client")
		return
	}

	switch {
	case errors.Is(err, repository.ErrInvalidSlug):
		l.Info().Str("slug", fields.Slug).Msg("Rejected unsafe slug")
		h.rerenderEditor(w, r, http.StatusUnprocessableEntity, fields, Errors{}, config.ErrInvalidSlug)
		return
	case err != nil:
		l.Error().Stack().Err(err).Msg("Failed to save post")
		h.rerenderEditor(w, r, http.StatusInternalServerError, fields, Errors{}, config.ErrSavePost)
		return
	case res.Errors.Any():
		l.Debug().Strs("missing", res.Errors.Fields()).Msg("Submission failed validation")
		h.rerenderEditor(w, r, http.StatusOK, fields, res.Errors, "")
		return
	}

	l.Info().Str("slug", fields.Slug).Msg("Post saved")

	if r.Header.Get(config.HHxRequest) != "" {
		w.Header().Set(config.HHxRedirect, res.Redirect)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, res.Redirect, http.StatusFound)
}

// rerenderEditor shows the form again with the submitted values after a
// failed submission.
func (h *Handler) rerenderEditor(w http.ResponseWriter, r *http.Request, status int, fields Fields, errs Errors, formError string) {
	state, err := h.editor.Load(r.Context(), r.URL)
	if err != nil {
		logger.FromRequest(r).Warn().Err(err).Msg("Failed to reload post after submission")
		state = ViewState{IsEdit: false}
	}

	form := NewForm(errs, state, false, h.opts.MarkdownRows).WithValues(fields)
	form.FormError = formError
	if slug := r.URL.Query().Get(config.EditQueryParam); err != nil && slug != "" {
		// The edited post could not be reloaded; the slug stays fixed.
		form = form.KeepEditing(model.Slug(slug))
	}

	h.renderEditor(w, r, status, form)
}

func (h *Handler) renderEditor(w http.ResponseWriter, r *http.Request, status int, form Form) {
	title := pageTitleNew
	if form.SlugReadOnly {
		title = pageTitleEdit
	}

	page := EditorPage{
		PageData: model.NewPageData(r, h.opts.SiteName, title),
		Form:     form,
	}

	var buf bytes.Buffer
	if err := h.views.RenderEditorPage(&buf, page); err != nil {
		logger.FromRequest(r).Error().Err(err).Msg("Failed to render editor")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}

	writeHTML(w, status, buf.Bytes())
}

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	l := logger.FromRequest(r)

	posts, err := h.repo.ListPosts(r.Context())
	if err != nil {
		l.Error().Err(err).Msg("Failed to list posts")
		http.Error(w, config.ErrListPosts, http.StatusInternalServerError)
		return
	}

	page := ListPage{
		PageData:   model.NewPageData(r, h.opts.SiteName, pageTitleList),
		NewPostURL: config.EditorUrlPath,
		Posts:      posts,
	}

	var buf bytes.Buffer
	if err := h.views.RenderListPage(&buf, page); err != nil {
		l.Error().Err(err).Msg("Failed to render post list")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}

	writeHTML(w, http.StatusOK, buf.Bytes())
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set(config.HCType, config.CTypeHTML)
	w.WriteHeader(status)
	w.Write(body)
}

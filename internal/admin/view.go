package admin

import (
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"time"

	"github.com/golang-module/carbon/v2"

	"github.com/debemdeboas/archive-admin/internal/config"
	"github.com/debemdeboas/archive-admin/internal/model"
)

const (
	LabelSubmitting = "Creating..."
	LabelEdit       = "Edit Post"
	LabelCreate     = "Create Post"
)

const (
	MsgTitleRequired    = "Title is required"
	MsgSlugRequired     = "Slug is required"
	MsgMarkdownRequired = "Markdown is required"
)

// Name of the template block holding the form, inside TemplateEditor.
const templatePostForm = "post-form"

// SubmitLabel picks the submit button text. An in-flight submission wins
// over edit mode.
func SubmitLabel(submitting, isEdit bool) string {
	switch {
	case submitting:
		return LabelSubmitting
	case isEdit:
		return LabelEdit
	default:
		return LabelCreate
	}
}

// Form is everything the editor form template displays.
type Form struct {
	Action string

	Title    string
	Slug     string
	Markdown string

	SlugReadOnly bool
	MarkdownRows int

	Errors    Errors
	// FormError is shown above the inputs when the post could not be stored.
	FormError string

	SubmitLabel string
	// BusyLabel replaces SubmitLabel in the browser while a submission is
	// pending.
	BusyLabel   string
}

// NewForm builds the form for the given errors, view state and in-flight
// flag. Inputs are prefilled from the edited post, if any.
func NewForm(errs Errors, state ViewState, submitting bool, markdownRows int) Form {
	form := Form{
		Action:       config.EditorUrlPath,
		SlugReadOnly: state.IsEdit,
		MarkdownRows: markdownRows,
		Errors:       errs,
		SubmitLabel:  SubmitLabel(submitting, state.IsEdit),
		BusyLabel:    SubmitLabel(true, state.IsEdit),
	}

	if state.IsEdit && state.Post != nil {
		form.Action = EditURL(state.Post.Slug)
		form.Title = state.Post.Title
		form.Slug = string(state.Post.Slug)
		form.Markdown = state.Post.Body()
	}

	return form
}

// ErrorFor returns the inline error message for a field, or "" when the
// field is valid.
func (f Form) ErrorFor(field string) string {
	switch {
	case field == FieldTitle && f.Errors.Title:
		return MsgTitleRequired
	case field == FieldSlug && f.Errors.Slug:
		return MsgSlugRequired
	case field == FieldMarkdown && f.Errors.Markdown:
		return MsgMarkdownRequired
	default:
		return ""
	}
}

// WithValues replaces the input values with what the user submitted.
func (f Form) WithValues(fields Fields) Form {
	f.Title = fields.Title
	f.Slug = fields.Slug
	f.Markdown = fields.Markdown
	return f
}

// KeepEditing puts the form in edit mode for slug without a loaded post.
func (f Form) KeepEditing(slug model.Slug) Form {
	f.Action = EditURL(slug)
	f.SlugReadOnly = true
	f.SubmitLabel = SubmitLabel(false, true)
	f.BusyLabel = SubmitLabel(true, true)
	return f
}

// EditURL is the editor URL for an existing post.
func EditURL(slug model.Slug) string {
	return config.EditorUrlPath + "?" + url.Values{config.EditQueryParam: {string(slug)}}.Encode()
}

func timeAgo(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return carbon.CreateFromStdTime(t).DiffForHumans()
}

var templateFuncs = template.FuncMap{
	"ago":     timeAgo,
	"editURL": EditURL,
}

// Views holds the parsed page templates.
type Views struct {
	editor *template.Template
	list   *template.Template
}

// ParseViews parses the layout and page templates under the templates
// directory of fsys.
func ParseViews(fsys fs.FS) (*Views, error) {
	parse := func(page string) (*template.Template, error) {
		return template.New(config.TemplateLayout).Funcs(templateFuncs).ParseFS(fsys,
			config.TemplatesLocalDir+"/"+config.TemplateLayout,
			config.TemplatesLocalDir+"/"+page,
		)
	}

	editor, err := parse(config.TemplateEditor)
	if err != nil {
		return nil, err
	}

	list, err := parse(config.TemplateAdminList)
	if err != nil {
		return nil, err
	}

	return &Views{editor: editor, list: list}, nil
}

// RenderForm writes the form markup alone.
func (v *Views) RenderForm(w io.Writer, form Form) error {
	return v.editor.ExecuteTemplate(w, templatePostForm, form)
}

type EditorPage struct {
	*model.PageData
	Form Form
}

func (v *Views) RenderEditorPage(w io.Writer, page EditorPage) error {
	return v.editor.ExecuteTemplate(w, config.TemplateLayout, page)
}

type ListPage struct {
	*model.PageData
	NewPostURL string
	Posts      []model.Post
}

func (v *Views) RenderListPage(w io.Writer, page ListPage) error {
	return v.list.ExecuteTemplate(w, config.TemplateLayout, page)
}

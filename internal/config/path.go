package config

const (
	//? These paths must match the paths in the embed directive

	StaticLocalDir = "static"
	StaticUrlPath  = "/" + StaticLocalDir + "/"

	TemplatesLocalDir = "templates"

	TemplateLayout    = "layout.html"
	TemplateAdminList = "admin.html"
	TemplateEditor    = "editor.html"
)

const (
	RootPath   = "/"
	RobotsPath = "/robots.txt"

	AdminUrlPath  = "/admin"
	EditorUrlPath = "/admin/new"

	// EditQueryParam names the slug of the post being edited.
	EditQueryParam = "edit"
)

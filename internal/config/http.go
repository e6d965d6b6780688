package config

const (
	HCType        = "Content-Type"
	HETag         = "ETag"
	HCacheControl = "Cache-Control"
	HHxRedirect   = "HX-Redirect"
	HHxRequest    = "HX-Request"

	CTypeCSS  = "text/css"
	CTypeHTML = "text/html; charset=utf-8"
	CTypeJS   = "text/javascript"
)

const (
	HTTPErrMethodNotAllowed = "Method not allowed"
)

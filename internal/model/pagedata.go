package model

import (
	"net/http"
)

type PageData struct {
	SiteName string

	PageURL string

	// Title of the page, shown in the <title> element.
	Title string
}

func NewPageData(r *http.Request, siteName, title string) *PageData {
	return &PageData{
		SiteName: siteName,
		PageURL:  r.URL.Path,
		Title:    title,
	}
}

// FullTitle joins the page title and the site name.
func (pd *PageData) FullTitle() string {
	if pd.Title == "" {
		return pd.SiteName
	}
	return pd.Title + " | " + pd.SiteName
}

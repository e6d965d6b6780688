package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/archive-admin/internal/config"
	"github.com/debemdeboas/archive-admin/internal/logger"
	"github.com/debemdeboas/archive-admin/internal/repository"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Storage.Backend = "memory"
	cfg.Admin.SubmitDelay = 0

	handler, err := newRouter(cfg, repository.NewMemoryPostRepository(), os.DirFS("."), zerolog.Nop())
	if err != nil {
		t.Fatalf("newRouter() error = %v", err)
	}

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

// noRedirect stops the client at the first response.
var noRedirect = &http.Client{
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

func readBody(t *testing.T, res *http.Response) string {
	t.Helper()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func TestRobots(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.Get(srv.URL + "/robots.txt")
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, res)

	if res.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 OK, got %d", res.StatusCode)
	}
	if !strings.HasPrefix(body, "User-agent: *") {
		t.Errorf("unexpected robots.txt: %q", body)
	}
	if res.Header.Get("X-Frame-Options") != "" {
		t.Errorf("robots.txt got security headers")
	}
}

func TestStaticFilesAreCached(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.Get(srv.URL + "/static/editor.js")
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, res)

	if res.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 OK, got %d", res.StatusCode)
	}
	if !strings.Contains(body, "busyLabel") {
		t.Errorf("editor.js does not swap the busy label")
	}

	etag := res.Header.Get(config.HETag)
	if etag == "" {
		t.Fatal("static file has no ETag")
	}
	if cc := res.Header.Get(config.HCacheControl); cc != "public, max-age=3600" {
		t.Errorf("Cache-Control = %q", cc)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/static/editor.js", nil)
	req.Header.Set("If-None-Match", etag)
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	readBody(t, res)
	if res.StatusCode != http.StatusNotModified {
		t.Errorf("Expected 304 Not Modified, got %d", res.StatusCode)
	}
}

func TestRootRedirectsToAdmin(t *testing.T) {
	srv := newTestServer(t)

	res, err := noRedirect.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	readBody(t, res)

	if res.StatusCode != http.StatusFound {
		t.Fatalf("Expected 302 Found, got %d", res.StatusCode)
	}
	if loc := res.Header.Get("Location"); loc != config.AdminUrlPath {
		t.Errorf("Location = %q", loc)
	}
}

func TestUnknownPathNotFound(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.Get(srv.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	readBody(t, res)

	if res.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 Not Found, got %d", res.StatusCode)
	}
}

func TestCreateThenEditPost(t *testing.T) {
	srv := newTestServer(t)

	form := url.Values{
		"title":    {"Hello World"},
		"slug":     {"hello-world"},
		"markdown": {"# Hello\n\nFirst post."},
	}

	res, err := noRedirect.PostForm(srv.URL+"/admin/new", form)
	if err != nil {
		t.Fatal(err)
	}
	readBody(t, res)

	if res.StatusCode != http.StatusFound {
		t.Fatalf("Expected 302 Found, got %d", res.StatusCode)
	}
	if loc := res.Header.Get("Location"); loc != "/admin" {
		t.Fatalf("Location = %q, want /admin", loc)
	}
	if res.Header.Get(logger.HRequestID) == "" {
		t.Errorf("response has no %s header", logger.HRequestID)
	}

	res, err = http.Get(srv.URL + "/admin")
	if err != nil {
		t.Fatal(err)
	}
	list := readBody(t, res)
	if !strings.Contains(list, `href="/admin/new?edit=hello-world">Hello World</a>`) {
		t.Errorf("listing does not link the new post:\n%s", list)
	}
	if res.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("listing has no security headers")
	}

	res, err = http.Get(srv.URL + "/admin/new?edit=hello-world")
	if err != nil {
		t.Fatal(err)
	}
	editor := readBody(t, res)
	for _, want := range []string{
		`name="slug" value="hello-world" readonly`,
		`name="title" value="Hello World"`,
		">Edit Post</button>",
	} {
		if !strings.Contains(editor, want) {
			t.Errorf("editor is missing %q", want)
		}
	}
}

func TestEditMissingPost(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.Get(srv.URL + "/admin/new?edit=missing")
	if err != nil {
		t.Fatal(err)
	}
	readBody(t, res)

	if res.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 Not Found, got %d", res.StatusCode)
	}
}

func TestSubmitMissingFields(t *testing.T) {
	srv := newTestServer(t)

	res, err := noRedirect.PostForm(srv.URL+"/admin/new", url.Values{"title": {"Only a title"}})
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, res)

	if res.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 OK, got %d", res.StatusCode)
	}
	for _, want := range []string{"Slug is required", "Markdown is required", `value="Only a title"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body is missing %q", want)
		}
	}

	res, err = http.Get(srv.URL + "/admin")
	if err != nil {
		t.Fatal(err)
	}
	if list := readBody(t, res); !strings.Contains(list, "No posts yet.") {
		t.Errorf("a post was stored after a failed submission")
	}
}

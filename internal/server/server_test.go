package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/mdindex/internal/config"
	"github.com/conneroisu/mdindex/internal/scanner"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:        8080,
			Host:        "localhost",
			Environment: "development",
		},
		Indexes: config.IndexesConfig{ScanPaths: []string{"./docs"}},
		Build:   config.BuildConfig{OutputDir: "site", Workers: 2},
	}
}

func newTestServer(t *testing.T) *PreviewServer {
	t.Helper()
	srv, err := New(testConfig())
	require.NoError(t, err)
	t.Cleanup(func() {
		srv.watcher.Stop()
		srv.indexer.Close()
	})
	return srv
}

func registerPage(t *testing.T, srv *PreviewServer, name, source string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	page := scanner.ParsePage(path, []byte(source), name+"-hash", time.Now())
	srv.registry.Register(page)
	require.NoError(t, srv.indexer.IndexAll(srv.registry.Entries()))
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)
	registerPage(t, srv, "cookbook.md", "# Cookbook\n\n- [A](a.md) - a.\n")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.handleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(1), body["pages"])
	assert.Equal(t, float64(1), body["entries"])
}

func TestHandleIndexLists(t *testing.T) {
	srv := newTestServer(t)
	registerPage(t, srv, "cookbook.md", "# Cookbook\n\n- [A](a.md) - a.\n")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.handleIndex(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/page/cookbook")
	assert.Contains(t, rec.Body.String(), "Cookbook")
}

func TestHandlePage(t *testing.T) {
	srv := newTestServer(t)
	registerPage(t, srv, "cookbook.md", "# Cookbook\n\n- [Install](install.md) - How to install.\n")

	req := httptest.NewRequest(http.MethodGet, "/page/cookbook", nil)
	rec := httptest.NewRecorder()
	srv.handlePage(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="install.md"`)
}

func TestHandlePageNotFound(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/page/missing", nil)
	rec := httptest.NewRecorder()
	srv.handlePage(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlePageRejectsBadName(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/page/sub/../../etc", nil)
	rec := httptest.NewRecorder()
	srv.handlePage(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleEntries(t *testing.T) {
	srv := newTestServer(t)
	registerPage(t, srv, "cookbook.md", `# Cookbook

- [Install](install.md) - How to install.
- [Usage](https://example.com/usage) - How to use.
`)

	req := httptest.NewRequest(http.MethodGet, "/api/entries", nil)
	rec := httptest.NewRecorder()
	srv.handleEntries(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count   int        `json:"count"`
		Entries []entryDTO `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 2, body.Count)
	assert.Equal(t, "Install", body.Entries[0].Title)
	assert.False(t, body.Entries[0].External)
	assert.True(t, body.Entries[1].External)
}

func TestHandleLint(t *testing.T) {
	srv := newTestServer(t)
	registerPage(t, srv, "cookbook.md", `# Cookbook

- [](empty.md) - No title.
`)

	req := httptest.NewRequest(http.MethodGet, "/api/lint", nil)
	rec := httptest.NewRecorder()
	srv.handleLint(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Clean    bool         `json:"clean"`
		Errors   bool         `json:"errors"`
		Findings []findingDTO `json:"findings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Clean)
	assert.True(t, body.Errors)
	require.NotEmpty(t, body.Findings)
	assert.Equal(t, "empty-title", body.Findings[0].Rule)
}

func TestHandleSearch(t *testing.T) {
	srv := newTestServer(t)
	registerPage(t, srv, "cookbook.md", `# Cookbook

- [Authentication](auth.md) - Signing API requests.
- [Webhooks](hooks.md) - Event callbacks.
`)

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=authentication", nil)
	rec := httptest.NewRecorder()
	srv.handleSearch(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int            `json:"count"`
		Hits  []searchHitDTO `json:"hits"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.GreaterOrEqual(t, body.Count, 1)
	assert.Equal(t, "Authentication", body.Hits[0].Entry.Title)
}

func TestHandleSearchRequiresQuery(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	rec := httptest.NewRecorder()
	srv.handleSearch(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckOrigin(t *testing.T) {
	srv := newTestServer(t)

	withOrigin := func(origin string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		return req
	}

	assert.True(t, srv.checkOrigin(withOrigin("http://localhost:8080")))
	assert.True(t, srv.checkOrigin(withOrigin("http://127.0.0.1:8080")))
	assert.False(t, srv.checkOrigin(withOrigin("")))
	assert.False(t, srv.checkOrigin(withOrigin("http://evil.example.com")))
	assert.False(t, srv.checkOrigin(withOrigin("ftp://localhost:8080")))
}

func TestMiddlewareCORSAndPreflight(t *testing.T) {
	srv := newTestServer(t)

	handler := srv.addMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, "preflight short-circuits")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://anywhere.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"),
		"development environment allows any origin")
}

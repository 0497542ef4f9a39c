package server

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/conneroisu/mdindex/internal/errors"
	"github.com/conneroisu/mdindex/internal/search"
	"github.com/conneroisu/mdindex/internal/types"
	"github.com/conneroisu/mdindex/internal/version"
)

var indexListTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Documentation Indexes</title>
<style>
body { font-family: -apple-system, sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
li { margin: 0.4rem 0; }
.meta { color: #666; font-size: 0.85rem; }
</style>
</head>
<body>
<h1>Documentation Indexes</h1>
<ul>
{{range .Pages}}<li><a href="/page/{{.Name}}">{{.Title}}</a> <span class="meta">{{.Entries}} entries</span></li>
{{end}}</ul>
{{if .LiveReload}}<script>
(function() {
  var ws = new WebSocket("ws://" + location.host + "/ws");
  ws.onmessage = function(ev) {
    var msg = JSON.parse(ev.data);
    if (msg.type === "reload") { location.reload(); }
  };
})();
</script>{{end}}
</body>
</html>
`))

type indexListItem struct {
	Name    string
	Title   string
	Entries int
}

// handleIndex lists all registered index pages
func (s *PreviewServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	pages := s.registry.GetAll()
	items := make([]indexListItem, 0, len(pages))
	for _, page := range pages {
		title := page.Title
		if title == "" {
			title = page.Name()
		}
		items = append(items, indexListItem{
			Name:    page.Name(),
			Title:   title,
			Entries: len(page.Entries),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexListTemplate.Execute(w, struct {
		Pages      []indexListItem
		LiveReload bool
	}{Pages: items, LiveReload: true})
	if err != nil {
		log.Printf("Failed to render index list: %v", err)
	}
}

// handlePage renders a single index page to HTML
func (s *PreviewServer) handlePage(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/page/")
	name = strings.TrimSuffix(name, ".html")
	if name == "" || strings.ContainsAny(name, "/\\") {
		http.Error(w, "Invalid page name", http.StatusBadRequest)
		return
	}

	page, ok := s.registry.GetByName(name)
	if !ok {
		http.NotFound(w, r)
		return
	}

	htmlDoc, err := s.builder.RenderPage(page)
	if err != nil {
		log.Printf("Failed to render page %s: %v", name, err)
		http.Error(w, "Render error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(htmlDoc)
}

// handleStatic serves files from the configured static directory
func (s *PreviewServer) handleStatic(w http.ResponseWriter, r *http.Request) {
	if s.config.Build.StaticDir == "" {
		http.NotFound(w, r)
		return
	}

	rel := strings.TrimPrefix(r.URL.Path, "/static/")
	cleanRel := filepath.Clean(rel)
	if strings.Contains(cleanRel, "..") || filepath.IsAbs(cleanRel) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	http.ServeFile(w, r, filepath.Join(s.config.Build.StaticDir, cleanRel))
}

// handleHealth returns the server health status for health checks
func (s *PreviewServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   version.GetShortVersion(),
		"pages":     s.registry.Count(),
		"entries":   s.registry.EntryCount(),
	}

	writeJSON(w, http.StatusOK, health)
}

type entryDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Section     string `json:"section,omitempty"`
	File        string `json:"file"`
	Line        int    `json:"line"`
	External    bool   `json:"external"`
}

func makeEntryDTO(entry *types.IndexEntry) entryDTO {
	return entryDTO{
		ID:          entry.ID.String(),
		Title:       entry.Title,
		URL:         entry.URL,
		Description: entry.Description,
		Section:     entry.Section,
		File:        entry.FilePath,
		Line:        entry.Line,
		External:    entry.IsExternal(),
	}
}

// handleEntries returns all entries across registered pages as JSON, in
// source order per page.
func (s *PreviewServer) handleEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entries := s.registry.Entries()
	dtos := make([]entryDTO, 0, len(entries))
	for _, entry := range entries {
		dtos = append(dtos, makeEntryDTO(entry))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(dtos),
		"entries": dtos,
	})
}

type findingDTO struct {
	Rule     string `json:"rule"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// handleLint lints every registered page and returns the findings
func (s *PreviewServer) handleLint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.linter.Collector().Clear()
	findings := s.linter.LintPages(s.registry.GetAll())

	dtos := make([]findingDTO, 0, len(findings))
	hasErrors := false
	for _, f := range findings {
		if f.Severity == errors.ErrorSeverityError {
			hasErrors = true
		}
		dtos = append(dtos, findingDTO{
			Rule:     f.Rule,
			File:     f.File,
			Line:     f.Line,
			Message:  f.Message,
			Severity: f.Severity.String(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"clean":    len(dtos) == 0,
		"errors":   hasErrors,
		"findings": dtos,
	})
}

type searchHitDTO struct {
	Entry entryDTO `json:"entry"`
	Score float64  `json:"score"`
}

// handleSearch answers free-text queries over the entry catalogue. Query
// parameters: q (required), phrase (bool), offset (int).
func (s *PreviewServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	expr := strings.TrimSpace(r.URL.Query().Get("q"))
	if expr == "" {
		http.Error(w, "Missing query parameter: q", http.StatusBadRequest)
		return
	}

	query := search.Query{Type: search.QueryTypeMatch, Expression: expr}
	if r.URL.Query().Get("phrase") == "true" {
		query.Type = search.QueryTypePhrase
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			http.Error(w, "Invalid offset", http.StatusBadRequest)
			return
		}
		query.Offset = offset
	}

	hits, err := s.indexer.Search(query)
	if err != nil {
		log.Printf("Search failed: %v", err)
		http.Error(w, "Search error", http.StatusInternalServerError)
		return
	}

	dtos := make([]searchHitDTO, 0, len(hits))
	for _, hit := range hits {
		dtos = append(dtos, searchHitDTO{Entry: makeEntryDTO(hit.Entry), Score: hit.Score})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query": expr,
		"count": len(dtos),
		"hits":  dtos,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		fmt.Fprintf(w, `{"error":"encoding failed"}`)
	}
}

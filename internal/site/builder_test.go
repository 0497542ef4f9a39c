package site

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/mdindex/internal/registry"
	"github.com/conneroisu/mdindex/internal/scanner"
	"github.com/conneroisu/mdindex/internal/types"
)

func writePage(t *testing.T, dir, name, source string) *types.IndexPage {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return scanner.ParsePage(path, []byte(source), name+"-hash", time.Now())
}

func TestBuildAll(t *testing.T) {
	srcDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "site")

	reg := registry.NewPageRegistry()
	reg.Register(writePage(t, srcDir, "cookbook.md", `# Cookbook

- [Install](install.md) - How to install.
- [External](https://example.com/docs) - External docs.
`))
	reg.Register(writePage(t, srcDir, "api.md", "# API Reference\n\n- [Auth](auth.md) - Auth API.\n"))

	builder := NewBuilder(reg, outDir, "", 2)
	require.NoError(t, builder.BuildAll(context.Background()))

	cookbook, err := os.ReadFile(filepath.Join(outDir, "cookbook.html"))
	require.NoError(t, err)
	html := string(cookbook)

	// Link targets survive rendering untouched
	assert.Contains(t, html, `href="install.md"`)
	assert.Contains(t, html, `href="https://example.com/docs"`)
	assert.Contains(t, html, "<title>Cookbook</title>")
	// Navigation covers both pages
	assert.Contains(t, html, `href="api.html"`)

	_, err = os.Stat(filepath.Join(outDir, "api.html"))
	assert.NoError(t, err)

	metrics := builder.GetMetrics()
	assert.Equal(t, int64(2), metrics.SuccessfulBuilds)
	assert.Equal(t, int64(0), metrics.FailedBuilds)
}

func TestBuildPreservesEntryOrder(t *testing.T) {
	srcDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "site")

	reg := registry.NewPageRegistry()
	reg.Register(writePage(t, srcDir, "ordered.md", `# Ordered

- [First](first.md) - one.
- [Second](second.md) - two.
- [Third](third.md) - three.
`))

	builder := NewBuilder(reg, outDir, "", 1)
	require.NoError(t, builder.BuildAll(context.Background()))

	out, err := os.ReadFile(filepath.Join(outDir, "ordered.html"))
	require.NoError(t, err)
	html := string(out)

	first := strings.Index(html, "First")
	second := strings.Index(html, "Second")
	third := strings.Index(html, "Third")
	require.NotEqual(t, -1, first)
	assert.Less(t, first, second)
	assert.Less(t, second, third)
}

func TestBuildCacheHit(t *testing.T) {
	srcDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "site")

	reg := registry.NewPageRegistry()
	reg.Register(writePage(t, srcDir, "cookbook.md", "# Cookbook\n\n- [A](a.md) - a.\n"))

	builder := NewBuilder(reg, outDir, "", 1)
	require.NoError(t, builder.BuildAll(context.Background()))
	require.NoError(t, builder.BuildAll(context.Background()))

	metrics := builder.GetMetrics()
	assert.Equal(t, int64(1), metrics.CacheHits)

	builder.ClearCache()
	require.NoError(t, builder.BuildAll(context.Background()))
	assert.Equal(t, int64(1), builder.GetMetrics().CacheHits)
}

func TestRenderPage(t *testing.T) {
	srcDir := t.TempDir()

	reg := registry.NewPageRegistry()
	page := writePage(t, srcDir, "cookbook.md", "# Cookbook\n\n- [A](a.md) - a.\n")
	reg.Register(page)

	builder := NewBuilder(reg, filepath.Join(t.TempDir(), "site"), "", 1)
	builder.LiveReload = true

	html, err := builder.RenderPage(page)
	require.NoError(t, err)
	assert.Contains(t, string(html), `href="a.md"`)
	assert.Contains(t, string(html), "/ws", "live reload script points at the websocket route")
}

func TestBuildCallbacks(t *testing.T) {
	srcDir := t.TempDir()

	reg := registry.NewPageRegistry()
	reg.Register(writePage(t, srcDir, "cookbook.md", "# Cookbook\n\n- [A](a.md) - a.\n"))

	builder := NewBuilder(reg, filepath.Join(t.TempDir(), "site"), "", 1)

	var results []BuildResult
	builder.AddCallback(func(result BuildResult) {
		results = append(results, result)
	})

	require.NoError(t, builder.BuildAll(context.Background()))
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Error)
	assert.NotEmpty(t, results[0].Output)
}

func TestCopyStatic(t *testing.T) {
	srcDir := t.TempDir()
	staticDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "site")

	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "style.css"), []byte("body{}"), 0o644))

	reg := registry.NewPageRegistry()
	reg.Register(writePage(t, srcDir, "cookbook.md", "# Cookbook\n\n- [A](a.md) - a.\n"))

	builder := NewBuilder(reg, outDir, staticDir, 1)
	require.NoError(t, builder.BuildAll(context.Background()))

	copied, err := os.ReadFile(filepath.Join(outDir, "static", "style.css"))
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(copied))
}

func TestClean(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "site")
	require.NoError(t, os.MkdirAll(outDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "stale.html"), []byte("old"), 0o644))

	builder := NewBuilder(registry.NewPageRegistry(), outDir, "", 1)
	require.NoError(t, builder.Clean())

	_, err := os.Stat(outDir)
	assert.True(t, os.IsNotExist(err))
}

// Package site renders registered index pages to a static HTML site. Each
// Markdown index is converted with goldmark, preserving link targets and
// entry order, and wrapped in a shared layout with navigation across all
// indexes. A content-hash keyed cache makes watch-mode rebuilds of
// unchanged pages free.
package site

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/conneroisu/mdindex/internal/registry"
	"github.com/conneroisu/mdindex/internal/types"
)

// BuildResult represents the result of building one page
type BuildResult struct {
	Page     *types.IndexPage
	Output   string
	Error    error
	Duration time.Duration
	CacheHit bool
}

// BuildCallback is called when a page build completes
type BuildCallback func(result BuildResult)

// BuildMetrics tracks build performance
type BuildMetrics struct {
	TotalBuilds      int64
	SuccessfulBuilds int64
	FailedBuilds     int64
	CacheHits        int64
	AverageDuration  time.Duration
	TotalDuration    time.Duration
	mutex            sync.RWMutex
}

// Builder renders index pages into an output directory
type Builder struct {
	registry  *registry.PageRegistry
	outputDir string
	staticDir string
	workers   int
	markdown  goldmark.Markdown
	cache     map[string]string // page hash -> rendered HTML fragment
	cacheMu   sync.RWMutex
	metrics   *BuildMetrics
	callbacks []BuildCallback
	// LiveReload injects the websocket reload script into rendered pages
	LiveReload bool
}

// NewBuilder creates a builder writing to outputDir
func NewBuilder(reg *registry.PageRegistry, outputDir, staticDir string, workers int) *Builder {
	if workers <= 0 {
		workers = 4
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	return &Builder{
		registry:  reg,
		outputDir: outputDir,
		staticDir: staticDir,
		workers:   workers,
		markdown:  md,
		cache:     make(map[string]string),
		metrics:   &BuildMetrics{},
	}
}

// AddCallback adds a callback to be called when page builds complete
func (b *Builder) AddCallback(callback BuildCallback) {
	b.callbacks = append(b.callbacks, callback)
}

// GetMetrics returns the current build metrics
func (b *Builder) GetMetrics() BuildMetrics {
	b.metrics.mutex.RLock()
	defer b.metrics.mutex.RUnlock()
	return BuildMetrics{
		TotalBuilds:      b.metrics.TotalBuilds,
		SuccessfulBuilds: b.metrics.SuccessfulBuilds,
		FailedBuilds:     b.metrics.FailedBuilds,
		CacheHits:        b.metrics.CacheHits,
		AverageDuration:  b.metrics.AverageDuration,
		TotalDuration:    b.metrics.TotalDuration,
	}
}

// ClearCache drops all cached page fragments
func (b *Builder) ClearCache() {
	b.cacheMu.Lock()
	defer b.cacheMu.Unlock()
	b.cache = make(map[string]string)
}

// BuildAll renders every registered page plus static assets. Pages build
// concurrently on a bounded worker pool; the first error is returned after
// all workers finish.
func (b *Builder) BuildAll(ctx context.Context) error {
	pages := b.registry.GetAll()
	if len(pages) == 0 {
		return nil
	}

	if err := os.MkdirAll(b.outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	nav := b.navigation(pages, "")

	jobs := make(chan *types.IndexPage)
	results := make(chan BuildResult, len(pages))

	var wg sync.WaitGroup
	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range jobs {
				results <- b.buildPage(page, nav)
			}
		}()
	}

	for _, page := range pages {
		select {
		case <-ctx.Done():
		case jobs <- page:
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	var firstErr error
	for result := range results {
		b.updateMetrics(result)
		for _, callback := range b.callbacks {
			callback(result)
		}
		if result.Error != nil && firstErr == nil {
			firstErr = fmt.Errorf("building %s: %w", result.Page.FilePath, result.Error)
		}
	}
	if firstErr != nil {
		return firstErr
	}

	if b.staticDir != "" {
		if err := b.copyStatic(); err != nil {
			return fmt.Errorf("copying static assets: %w", err)
		}
	}
	return nil
}

// BuildPage renders a single page to the output directory
func (b *Builder) BuildPage(page *types.IndexPage) BuildResult {
	nav := b.navigation(b.registry.GetAll(), "")
	result := b.buildPage(page, nav)
	b.updateMetrics(result)
	for _, callback := range b.callbacks {
		callback(result)
	}
	return result
}

func (b *Builder) buildPage(page *types.IndexPage, nav []NavItem) BuildResult {
	start := time.Now()
	result := BuildResult{Page: page}

	fragment, hit, err := b.renderFragment(page)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}
	result.CacheHit = hit

	htmlDoc, err := b.wrapLayout(page, fragment, nav)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}

	outPath := filepath.Join(b.outputDir, page.Name()+".html")
	if err := os.WriteFile(outPath, htmlDoc, 0o644); err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}

	result.Output = outPath
	result.Duration = time.Since(start)
	return result
}

// RenderPage renders a page to a complete HTML document without touching
// disk, used by the preview server.
func (b *Builder) RenderPage(page *types.IndexPage) ([]byte, error) {
	fragment, _, err := b.renderFragment(page)
	if err != nil {
		return nil, err
	}
	nav := b.navigation(b.registry.GetAll(), page.Name())
	return b.wrapLayout(page, fragment, nav)
}

func (b *Builder) renderFragment(page *types.IndexPage) (string, bool, error) {
	b.cacheMu.RLock()
	fragment, ok := b.cache[page.FilePath+":"+page.Hash]
	b.cacheMu.RUnlock()
	if ok {
		return fragment, true, nil
	}

	source, err := os.ReadFile(page.FilePath)
	if err != nil {
		return "", false, fmt.Errorf("reading source: %w", err)
	}

	var buf bytes.Buffer
	if err := b.markdown.Convert(source, &buf); err != nil {
		return "", false, fmt.Errorf("rendering markdown: %w", err)
	}

	fragment = buf.String()
	b.cacheMu.Lock()
	b.cache[page.FilePath+":"+page.Hash] = fragment
	b.cacheMu.Unlock()
	return fragment, false, nil
}

func (b *Builder) wrapLayout(page *types.IndexPage, fragment string, nav []NavItem) ([]byte, error) {
	title := page.Title
	if title == "" {
		title = page.Name()
	}

	var buf bytes.Buffer
	err := layoutTemplate.Execute(&buf, layoutData{
		Title:      title,
		Nav:        nav,
		Content:    template.HTML(fragment),
		LiveReload: b.LiveReload,
	})
	if err != nil {
		return nil, fmt.Errorf("executing layout: %w", err)
	}
	return buf.Bytes(), nil
}

func (b *Builder) navigation(pages []*types.IndexPage, active string) []NavItem {
	nav := make([]NavItem, 0, len(pages))
	for _, page := range pages {
		title := page.Title
		if title == "" {
			title = page.Name()
		}
		nav = append(nav, NavItem{
			Title:  title,
			Href:   page.Name() + ".html",
			Active: page.Name() == active,
		})
	}
	return nav
}

// Clean removes the output directory
func (b *Builder) Clean() error {
	if b.outputDir == "" {
		return nil
	}
	return os.RemoveAll(b.outputDir)
}

func (b *Builder) copyStatic() error {
	info, err := os.Stat(b.staticDir)
	if err != nil || !info.IsDir() {
		// Static dir is optional
		return nil
	}

	dest := filepath.Join(b.outputDir, "static")
	return filepath.Walk(b.staticDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(b.staticDir, path)
		if err != nil {
			return err
		}
		destPath := filepath.Join(dest, relPath)

		if info.IsDir() {
			return os.MkdirAll(destPath, 0o755)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(destPath, data, 0o644)
	})
}

func (b *Builder) updateMetrics(result BuildResult) {
	b.metrics.mutex.Lock()
	defer b.metrics.mutex.Unlock()

	b.metrics.TotalBuilds++
	b.metrics.TotalDuration += result.Duration

	if result.CacheHit {
		b.metrics.CacheHits++
	}
	if result.Error != nil {
		b.metrics.FailedBuilds++
	} else {
		b.metrics.SuccessfulBuilds++
	}

	if b.metrics.TotalBuilds > 0 {
		b.metrics.AverageDuration = b.metrics.TotalDuration / time.Duration(b.metrics.TotalBuilds)
	}
}

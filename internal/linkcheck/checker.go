// Package linkcheck resolves every link listed in the registered index pages
// and reports the ones that do not. External http(s) URLs are probed over
// the network with bounded concurrency, retries, and a private-network
// guard; relative links are resolved against the index file's directory and
// checked on disk; fragment targets must exist as anchors in the fetched
// document.
package linkcheck

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/conneroisu/mdindex/internal/errors"
	"github.com/conneroisu/mdindex/internal/types"
)

// Lint rule identifiers emitted by the checker.
const (
	RuleBrokenLink    = "broken-link"
	RuleMissingAnchor = "missing-anchor"
	RulePrivateHost   = "private-host"
)

// Status describes the outcome of checking one URL
type Status int

const (
	StatusOK Status = iota
	StatusBroken
	StatusSkipped
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusBroken:
		return "broken"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Result is the outcome of resolving a single distinct URL
type Result struct {
	URL        string        `json:"url"`
	Status     Status        `json:"-"`
	StatusText string        `json:"status"`
	StatusCode int           `json:"status_code,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// HTTPClient is implemented by objects that can execute HTTP requests.
// *http.Client satisfies it; tests substitute a stub.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Checker
type Options struct {
	// Concurrency bounds the number of in-flight probes
	Concurrency int
	// Timeout applies per request
	Timeout time.Duration
	// Retries is the number of additional attempts after a 5xx or
	// transport error
	Retries int
	// SkipExternal disables network probes entirely
	SkipExternal bool
	// AllowPrivate permits probing hosts on private networks
	AllowPrivate bool
	// UserAgent is sent with every probe
	UserAgent string
}

// DefaultOptions returns the options used by the CLI when no flags override
// them.
func DefaultOptions() Options {
	return Options{
		Concurrency: 8,
		Timeout:     10 * time.Second,
		Retries:     2,
		UserAgent:   "mdindex-linkcheck/1.0",
	}
}

// Checker resolves entry URLs
type Checker struct {
	opts     Options
	client   HTTPClient
	detector PrivateNetworkDetector
	cache    *ResultCache
}

// NewChecker creates a checker with the given options. A nil client gets a
// default http.Client honoring the configured timeout; a nil detector gets
// the default private-network detector.
func NewChecker(opts Options, client HTTPClient, detector PrivateNetworkDetector) (*Checker, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultOptions().Concurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	if detector == nil {
		var err error
		detector, err = NewDetector()
		if err != nil {
			return nil, fmt.Errorf("creating private network detector: %w", err)
		}
	}

	return &Checker{
		opts:     opts,
		client:   client,
		detector: detector,
		cache:    NewResultCache(4096, time.Hour),
	}, nil
}

// CheckPages resolves every distinct URL across the given pages, records
// broken-link findings in the collector, and returns per-URL results sorted
// by first appearance.
func (c *Checker) CheckPages(ctx context.Context, pages []*types.IndexPage, collector *errors.Collector) []Result {
	type target struct {
		key     string
		entries []*types.IndexEntry
	}

	var order []string
	targets := make(map[string]*target)
	for _, page := range pages {
		for _, entry := range page.Entries {
			key := targetKey(entry)
			t, seen := targets[key]
			if !seen {
				t = &target{key: key}
				targets[key] = t
				order = append(order, key)
			}
			t.entries = append(t.entries, entry)
		}
	}

	results := make(map[string]Result, len(targets))
	var resultsMu sync.Mutex

	jobs := make(chan *target)
	var wg sync.WaitGroup
	for i := 0; i < c.opts.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				res := c.checkOne(ctx, t.entries[0])
				resultsMu.Lock()
				results[t.key] = res
				resultsMu.Unlock()
			}
		}()
	}

	for _, key := range order {
		select {
		case <-ctx.Done():
		case jobs <- targets[key]:
		}
	}
	close(jobs)
	wg.Wait()

	out := make([]Result, 0, len(order))
	for _, key := range order {
		res, ok := results[key]
		if !ok {
			continue
		}
		out = append(out, res)

		if res.Status != StatusBroken || collector == nil {
			continue
		}
		rule := RuleBrokenLink
		if strings.Contains(res.Reason, "anchor") {
			rule = RuleMissingAnchor
		}
		for _, entry := range targets[key].entries {
			collector.Add(errors.LintError{
				Rule:     rule,
				File:     entry.FilePath,
				Line:     entry.Line,
				Message:  fmt.Sprintf("link %q does not resolve: %s", entry.URL, res.Reason),
				Severity: errors.ErrorSeverityError,
			})
		}
	}
	return out
}

// targetKey returns the dedupe and cache key for an entry's URL. External
// URLs key by the URL itself; relative URLs resolve against the index
// file's directory, so the same relative target listed from different
// directories is checked separately.
func targetKey(entry *types.IndexEntry) string {
	if entry.IsExternal() {
		return entry.URL
	}
	target := entry.URL
	if idx := strings.IndexByte(target, '#'); idx != -1 {
		target = target[:idx]
	}
	if target == "" {
		// Same-page fragment
		return entry.FilePath + entry.URL
	}
	return filepath.Join(filepath.Dir(entry.FilePath), filepath.FromSlash(target))
}

// checkOne resolves a single entry's URL, consulting the cache first.
func (c *Checker) checkOne(ctx context.Context, entry *types.IndexEntry) Result {
	key := targetKey(entry)
	if res, ok := c.cache.Get(key); ok {
		return res
	}

	var res Result
	if entry.IsExternal() {
		res = c.checkExternal(ctx, entry)
	} else {
		res = c.checkRelative(entry)
	}
	res.StatusText = res.Status.String()
	c.cache.Set(key, res)
	return res
}

func (c *Checker) checkExternal(ctx context.Context, entry *types.IndexEntry) Result {
	start := time.Now()
	res := Result{URL: entry.URL}

	if c.opts.SkipExternal {
		res.Status = StatusSkipped
		res.Reason = "external checks disabled"
		res.Duration = time.Since(start)
		return res
	}

	u, err := url.Parse(entry.URL)
	if err != nil {
		res.Status = StatusBroken
		res.Reason = fmt.Sprintf("unparseable URL: %v", err)
		res.Duration = time.Since(start)
		return res
	}

	if !c.opts.AllowPrivate {
		if private, err := c.detector.IsPrivate(u.Hostname()); err == nil && private {
			res.Status = StatusSkipped
			res.Reason = "host resolves to a private network"
			res.Duration = time.Since(start)
			return res
		}
	}

	needBody := entry.Fragment != ""
	method := http.MethodHead
	if needBody {
		method = http.MethodGet
	}

	resp, err := c.request(ctx, method, entry.URL)
	if err == nil && method == http.MethodHead &&
		(resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented) {
		// Servers that reject HEAD get one GET
		resp.Body.Close()
		resp, err = c.request(ctx, http.MethodGet, entry.URL)
	}
	res.Duration = time.Since(start)

	if err != nil {
		res.Status = StatusBroken
		res.Reason = err.Error()
		return res
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		res.Status = StatusBroken
		res.Reason = fmt.Sprintf("HTTP %d", resp.StatusCode)
		return res
	}

	if needBody {
		found, err := anchorExists(resp, entry.Fragment)
		if err != nil {
			res.Status = StatusBroken
			res.Reason = fmt.Sprintf("parsing body for anchor %q: %v", entry.Fragment, err)
			return res
		}
		if !found {
			res.Status = StatusBroken
			res.Reason = fmt.Sprintf("anchor %q not found in target document", entry.Fragment)
			return res
		}
	}

	res.Status = StatusOK
	return res
}

// request issues one HTTP request with retries on 5xx and transport errors.
func (c *Checker) request(ctx context.Context, method, rawURL string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.opts.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		// Per-request deadlines come from the client's Timeout; ctx
		// covers caller cancellation.
		req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 && attempt < c.opts.Retries {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
			continue
		}
		return resp, nil
	}
	return nil, lastErr
}

func (c *Checker) checkRelative(entry *types.IndexEntry) Result {
	res := Result{URL: entry.URL}

	target := entry.URL
	if idx := strings.IndexByte(target, '#'); idx != -1 {
		target = target[:idx]
	}
	if target == "" {
		// Pure fragment link within the same page
		res.Status = StatusOK
		return res
	}

	resolved := filepath.Join(filepath.Dir(entry.FilePath), filepath.FromSlash(target))
	if _, err := os.Stat(resolved); err != nil {
		res.Status = StatusBroken
		res.Reason = fmt.Sprintf("file not found: %s", resolved)
		return res
	}

	res.Status = StatusOK
	return res
}

// anchorExists reports whether the response body contains an element with
// the given id, or an <a name=...> matching it.
func anchorExists(resp *http.Response, anchor string) (bool, error) {
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return false, err
	}

	found := false
	doc.Find("[id]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if id, ok := s.Attr("id"); ok && id == anchor {
			found = true
			return false
		}
		return true
	})
	if found {
		return true, nil
	}

	doc.Find("a[name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if name, ok := s.Attr("name"); ok && name == anchor {
			found = true
			return false
		}
		return true
	})
	return found, nil
}

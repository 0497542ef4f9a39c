// Package lint implements content-integrity checks for documentation index
// pages: every entry must carry a non-empty title and description, no index
// may list the same entry twice, and every URL must at least parse. Broken
// link detection lives in the linkcheck package; lint covers everything that
// can be decided without network access.
package lint

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/cases"

	"github.com/conneroisu/mdindex/internal/errors"
	"github.com/conneroisu/mdindex/internal/types"
)

// Rule identifiers, stable for machine consumption of lint output.
const (
	RuleMissingHeading    = "missing-heading"
	RuleEmptyIndex        = "empty-index"
	RuleEmptyTitle        = "empty-title"
	RuleEmptyDescription  = "empty-description"
	RuleDuplicateTitle    = "duplicate-title"
	RuleDuplicateURL      = "duplicate-url"
	RuleMalformedItem     = "malformed-item"
	RuleBareURL           = "bare-url"
	RuleInvalidURL        = "invalid-url"
	RuleUnsupportedScheme = "unsupported-scheme"
)

// Engine runs lint rules over index pages and records findings in a
// collector.
type Engine struct {
	collector *errors.Collector
}

// NewEngine creates a lint engine writing into the given collector. A nil
// collector gets a fresh one.
func NewEngine(collector *errors.Collector) *Engine {
	if collector == nil {
		collector = errors.NewCollector()
	}
	return &Engine{collector: collector}
}

// Collector returns the engine's finding collector
func (e *Engine) Collector() *errors.Collector {
	return e.collector
}

// LintPages lints every page and returns all findings in page order.
func (e *Engine) LintPages(pages []*types.IndexPage) []errors.LintError {
	for _, page := range pages {
		e.LintPage(page)
	}
	return e.collector.Findings()
}

// LintPage runs all rules against a single page.
func (e *Engine) LintPage(page *types.IndexPage) {
	if page.Title == "" {
		e.add(RuleMissingHeading, page.FilePath, 1, errors.ErrorSeverityWarning,
			"index page has no top-level heading")
	}

	if len(page.Entries) == 0 && len(page.Malformed) == 0 {
		e.add(RuleEmptyIndex, page.FilePath, 1, errors.ErrorSeverityWarning,
			"index page lists no entries")
	}

	for _, item := range page.Malformed {
		if isBareURL(item.Text) {
			e.add(RuleBareURL, page.FilePath, item.Line, errors.ErrorSeverityError,
				fmt.Sprintf("list item links a bare URL with no label: %q", item.Text))
			continue
		}
		e.add(RuleMalformedItem, page.FilePath, item.Line, errors.ErrorSeverityError,
			fmt.Sprintf("list item is not a \"[label](url) - description\" entry: %q", item.Text))
	}

	seenTitles := make(map[string]int)
	seenURLs := make(map[string]int)

	for _, entry := range page.Entries {
		e.lintEntry(page, entry)

		titleKey := normalizeTitle(entry.Title)
		if titleKey != "" {
			if prev, dup := seenTitles[titleKey]; dup {
				e.add(RuleDuplicateTitle, page.FilePath, entry.Line, errors.ErrorSeverityError,
					fmt.Sprintf("duplicate entry %q (first listed on line %d)", entry.Title, prev))
			} else {
				seenTitles[titleKey] = entry.Line
			}
		}

		urlKey := canonicalURL(entry.URL)
		if urlKey != "" {
			if prev, dup := seenURLs[urlKey]; dup {
				e.add(RuleDuplicateURL, page.FilePath, entry.Line, errors.ErrorSeverityError,
					fmt.Sprintf("duplicate link target %q (first listed on line %d)", entry.URL, prev))
			} else {
				seenURLs[urlKey] = entry.Line
			}
		}
	}
}

func (e *Engine) lintEntry(page *types.IndexPage, entry *types.IndexEntry) {
	if strings.TrimSpace(entry.Title) == "" {
		e.add(RuleEmptyTitle, page.FilePath, entry.Line, errors.ErrorSeverityError,
			"entry has an empty title")
	}

	if strings.TrimSpace(entry.Description) == "" {
		e.add(RuleEmptyDescription, page.FilePath, entry.Line, errors.ErrorSeverityError,
			fmt.Sprintf("entry %q has an empty description", entry.Title))
	}

	if strings.TrimSpace(entry.URL) == "" {
		e.add(RuleInvalidURL, page.FilePath, entry.Line, errors.ErrorSeverityError,
			fmt.Sprintf("entry %q has an empty link target", entry.Title))
		return
	}

	u, err := url.Parse(entry.URL)
	if err != nil {
		e.add(RuleInvalidURL, page.FilePath, entry.Line, errors.ErrorSeverityError,
			fmt.Sprintf("entry %q has an unparseable URL: %v", entry.Title, err))
		return
	}

	// Relative links and http(s) are checked by linkcheck; anything else
	// (mailto:, ftp:, javascript:) is flagged here.
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		e.add(RuleUnsupportedScheme, page.FilePath, entry.Line, errors.ErrorSeverityWarning,
			fmt.Sprintf("entry %q uses unsupported scheme %q", entry.Title, u.Scheme))
	}
}

func (e *Engine) add(rule, file string, line int, severity errors.ErrorSeverity, msg string) {
	e.collector.Add(errors.LintError{
		Rule:     rule,
		File:     file,
		Line:     line,
		Message:  msg,
		Severity: severity,
	})
}

// isBareURL reports whether a malformed list item is just a URL with no
// "[label](...)" around it, e.g. "- https://example.com - docs".
func isBareURL(text string) bool {
	body := strings.TrimSpace(text)
	for _, marker := range []string{"-", "*", "+"} {
		if strings.HasPrefix(body, marker+" ") {
			body = strings.TrimSpace(body[len(marker)+1:])
			break
		}
	}
	return strings.HasPrefix(body, "http://") || strings.HasPrefix(body, "https://")
}

// normalizeTitle case-folds and trims a title for duplicate comparison.
// Unicode case folding catches pairs simple lowercasing misses ("Große" and
// "GROSSE" name the same entry).
func normalizeTitle(title string) string {
	return cases.Fold().String(strings.TrimSpace(title))
}

// canonicalURL strips fragments and trailing slashes so near-identical
// targets compare equal within one index
func canonicalURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	u.Fragment = ""
	s := u.String()
	return strings.TrimSuffix(s, "/")
}

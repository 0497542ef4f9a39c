package scanner

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/conneroisu/mdindex/internal/types"
)

var (
	// headingRegex matches ATX headings and captures level and text
	headingRegex = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*\s*$`)
	// bulletRegex matches a top-level list item and captures its body
	bulletRegex = regexp.MustCompile(`^[-*+]\s+(.*)$`)
	// entryRegex matches the "[label](url)" head of a list item body
	entryRegex = regexp.MustCompile(`^\[([^\]]*)\]\(([^)\s]*)\)\s*(.*)$`)
)

// descriptionSeparators are accepted between the link and its caption, in
// the order they are tried.
var descriptionSeparators = []string{"- ", "– ", "— ", ": "}

// ParsePage parses Markdown source into an IndexPage. The expected shape is
// a heading, introductory prose, and a bulleted list of
// "[label](url) - description" entries, optionally grouped under ## section
// headings. List items that do not match the entry shape are collected as
// malformed rather than dropped, so the lint engine can report them with a
// line number.
func ParsePage(path string, content []byte, hash string, modTime time.Time) *types.IndexPage {
	page := &types.IndexPage{
		FilePath: path,
		LastMod:  modTime,
		Hash:     hash,
	}

	var intro []string
	section := ""
	sawEntries := false

	lines := strings.Split(string(content), "\n")
	for i, raw := range lines {
		line := strings.TrimRight(raw, " \t")
		lineNo := i + 1

		if m := headingRegex.FindStringSubmatch(line); m != nil {
			level := len(m[1])
			text := strings.TrimSpace(m[2])
			if level == 1 && page.Title == "" {
				page.Title = text
			} else if level >= 2 {
				section = text
			}
			continue
		}

		if m := bulletRegex.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			sawEntries = true
			body := m[1]
			entry, ok := parseEntry(body)
			if !ok {
				page.Malformed = append(page.Malformed, types.MalformedItem{
					Line: lineNo,
					Text: strings.TrimSpace(line),
				})
				continue
			}
			entry.Section = section
			entry.FilePath = path
			entry.Line = lineNo
			page.Entries = append(page.Entries, entry)
			continue
		}

		// Prose before the first list item becomes the intro
		if !sawEntries && strings.TrimSpace(line) != "" && page.Title != "" {
			intro = append(intro, strings.TrimSpace(line))
		}
	}

	page.Intro = strings.Join(intro, " ")
	return page
}

// parseEntry parses a list item body of the form "[label](url) - description".
func parseEntry(body string) (*types.IndexEntry, bool) {
	m := entryRegex.FindStringSubmatch(strings.TrimSpace(body))
	if m == nil {
		return nil, false
	}

	title := strings.TrimSpace(m[1])
	target := strings.TrimSpace(m[2])
	rest := strings.TrimSpace(m[3])

	description := ""
	for _, sep := range descriptionSeparators {
		if strings.HasPrefix(rest, strings.TrimRight(sep, " ")) {
			description = strings.TrimSpace(strings.TrimPrefix(rest, strings.TrimRight(sep, " ")))
			break
		}
	}
	if description == "" && rest != "" && !strings.HasPrefix(rest, "[") {
		// Tolerate captions without a separator
		description = rest
	}

	entry := &types.IndexEntry{
		ID:          uuid.New(),
		Title:       title,
		URL:         target,
		Description: description,
	}

	if u, err := url.Parse(target); err == nil {
		entry.Fragment = u.Fragment
	}

	return entry, true
}

// FormatEntry renders an entry back to its canonical Markdown list item form.
// ParsePage(FormatEntry(e)) yields an entry equal to e modulo ID.
func FormatEntry(e *types.IndexEntry) string {
	var b strings.Builder
	b.WriteString("- [")
	b.WriteString(e.Title)
	b.WriteString("](")
	b.WriteString(e.URL)
	b.WriteString(")")
	if e.Description != "" {
		b.WriteString(" - ")
		b.WriteString(e.Description)
	}
	return b.String()
}

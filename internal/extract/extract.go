// Package extract drafts index entries from live documentation pages. Given
// a URL it fetches the page, pulls the title and a candidate description out
// of the HTML, and converts the lead content to Markdown so the caller can
// review a ready-to-paste list item.
package extract

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/conneroisu/mdindex/internal/types"
)

// Draft is a proposed index entry plus the page lead converted to Markdown
type Draft struct {
	Entry *types.IndexEntry
	// Lead is the first content block of the page as Markdown, for
	// context when the meta description is missing or poor
	Lead string
}

// Extractor fetches pages and drafts entries
type Extractor struct {
	client    *http.Client
	converter *md.Converter
	userAgent string
}

// NewExtractor creates an extractor using the given client, or a default
// one when nil.
func NewExtractor(client *http.Client) *Extractor {
	if client == nil {
		client = http.DefaultClient
	}
	return &Extractor{
		client:    client,
		converter: md.NewConverter("", true, nil),
		userAgent: "mdindex-extract/1.0",
	}
}

// Draft fetches the page at rawURL and proposes an index entry for it.
func (e *Extractor) Draft(ctx context.Context, rawURL string) (*Draft, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetching page: HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	entry := &types.IndexEntry{
		ID:          uuid.New(),
		Title:       pageTitle(doc),
		URL:         rawURL,
		Description: pageDescription(doc),
	}

	lead, err := e.pageLead(doc)
	if err != nil {
		return nil, err
	}

	return &Draft{Entry: entry, Lead: lead}, nil
}

// pageTitle prefers the first h1 over the <title> element, which tends to
// carry site-wide suffixes.
func pageTitle(doc *goquery.Document) string {
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return collapseWhitespace(h1)
	}
	return collapseWhitespace(strings.TrimSpace(doc.Find("title").First().Text()))
}

func pageDescription(doc *goquery.Document) string {
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		return collapseWhitespace(strings.TrimSpace(desc))
	}
	if desc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		return collapseWhitespace(strings.TrimSpace(desc))
	}
	// Fall back to the first paragraph
	return collapseWhitespace(strings.TrimSpace(doc.Find("p").First().Text()))
}

// pageLead converts the first content paragraphs to Markdown
func (e *Extractor) pageLead(doc *goquery.Document) (string, error) {
	sel := doc.Find("main").First()
	if sel.Length() == 0 {
		sel = doc.Find("article").First()
	}
	if sel.Length() == 0 {
		sel = doc.Find("body").First()
	}
	if sel.Length() == 0 {
		return "", nil
	}

	contentHTML, err := sel.Html()
	if err != nil {
		return "", fmt.Errorf("reading page content: %w", err)
	}

	markdown, err := e.converter.ConvertString(contentHTML)
	if err != nil {
		return "", fmt.Errorf("converting to Markdown: %w", err)
	}

	// Keep just the lead: everything up to the second blank line
	paragraphs := strings.SplitN(strings.TrimSpace(markdown), "\n\n", 3)
	if len(paragraphs) > 2 {
		paragraphs = paragraphs[:2]
	}
	return strings.TrimSpace(strings.Join(paragraphs, "\n\n")), nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

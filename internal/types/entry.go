// Package types provides common type definitions used throughout the mdindex CLI.
// This package contains shared types to avoid circular dependencies between packages.
package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// IndexEntry is a single item of a documentation index page: a labeled link
// with a one-sentence description. Entries are discovered by the scanner and
// flow through the registry, lint engine, link checker, and site builder.
type IndexEntry struct {
	// ID is a stable identifier assigned at parse time, used as the search
	// index document key.
	ID uuid.UUID
	// Title is the link label (e.g. "Authentication")
	Title string
	// URL is the link target, absolute or relative to the index file
	URL string
	// Description is the one-sentence caption following the link
	Description string
	// Section is the ## heading the entry appears under, empty if none
	Section string
	// FilePath is the index file the entry was parsed from
	FilePath string
	// Line is the 1-based source line of the list item
	Line int
	// Fragment is the #anchor portion of the URL, if any
	Fragment string
}

// IndexPage is a parsed documentation index file: a heading, introductory
// prose, and an ordered list of entries. Entry order is source order and is
// preserved through rendering.
type IndexPage struct {
	// Title is the first # heading of the file
	Title string
	// Intro is the prose between the heading and the first list item
	Intro string
	// Entries holds the page's items in source order
	Entries []*IndexEntry
	// Malformed records list items that could not be parsed as entries
	Malformed []MalformedItem
	// FilePath is the absolute path to the source file
	FilePath string
	// LastMod tracks the last modification time for change detection
	LastMod time.Time
	// Hash provides a CRC32 checksum for efficient change detection
	Hash string
}

// MalformedItem is a bulleted list item that does not match the
// "[label](url) - description" shape. The lint engine reports these.
type MalformedItem struct {
	Line int
	Text string
}

// Name returns the page identifier used in URLs and registry lookups: the
// base file name without the .md extension.
func (p *IndexPage) Name() string {
	base := p.FilePath
	if idx := strings.LastIndexByte(base, '/'); idx != -1 {
		base = base[idx+1:]
	}
	return strings.TrimSuffix(base, ".md")
}

// IsExternal reports whether the entry points at an http(s) URL rather than
// a file relative to the index.
func (e *IndexEntry) IsExternal() bool {
	return strings.HasPrefix(e.URL, "http://") || strings.HasPrefix(e.URL, "https://")
}

// EventType represents the type of page change event.
type EventType string

const (
	EventTypeAdded   EventType = "added"
	EventTypeUpdated EventType = "updated"
	EventTypeRemoved EventType = "removed"
)

// PageEvent represents a change in the page registry, used for real-time
// notifications to watchers like the preview server.
type PageEvent struct {
	// Type indicates the kind of change (added, updated, removed)
	Type EventType
	// Page contains the page information (may be nil for removed events)
	Page *IndexPage
	// Timestamp records when the event occurred for ordering and filtering
	Timestamp time.Time
}

// Package search catalogues index entries in an in-memory bleve index so
// the CLI and the preview server can answer free-text queries over entry
// titles, descriptions, and section labels.
package search

import (
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/google/uuid"

	"github.com/conneroisu/mdindex/internal/types"
)

const batchSize = 10

// QueryType selects between match and phrase queries
type QueryType uint8

const (
	QueryTypeMatch QueryType = iota
	QueryTypePhrase
)

// Query is a search request against the entry index
type Query struct {
	Type       QueryType
	Expression string
	Offset     uint64
}

// Hit is one search result
type Hit struct {
	Entry *types.IndexEntry
	Score float64
}

type bleveDoc struct {
	Title       string
	Description string
	Section     string
}

// EntryIndexer catalogues and searches index entries using an in-memory
// bleve instance.
type EntryIndexer struct {
	mu      sync.RWMutex
	entries map[string]*types.IndexEntry

	idx bleve.Index
}

// NewEntryIndexer creates an empty in-memory entry index
func NewEntryIndexer() (*EntryIndexer, error) {
	mapping := bleve.NewIndexMapping()
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, err
	}

	return &EntryIndexer{
		idx:     idx,
		entries: make(map[string]*types.IndexEntry),
	}, nil
}

// Close releases the underlying bleve index
func (i *EntryIndexer) Close() error {
	return i.idx.Close()
}

// Index adds or updates an entry in the index
func (i *EntryIndexer) Index(entry *types.IndexEntry) error {
	if entry.ID == uuid.Nil {
		return fmt.Errorf("index: entry has no ID")
	}

	ecopy := new(types.IndexEntry)
	*ecopy = *entry
	key := ecopy.ID.String()

	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.idx.Index(key, makeBleveDoc(ecopy)); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	i.entries[key] = ecopy
	return nil
}

// IndexAll replaces the catalogue with the given entries
func (i *EntryIndexer) IndexAll(entries []*types.IndexEntry) error {
	i.mu.Lock()
	for key := range i.entries {
		if err := i.idx.Delete(key); err != nil {
			i.mu.Unlock()
			return fmt.Errorf("reindex: %w", err)
		}
	}
	i.entries = make(map[string]*types.IndexEntry)
	i.mu.Unlock()

	for _, entry := range entries {
		if err := i.Index(entry); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of catalogued entries
func (i *EntryIndexer) Count() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

// Search runs a query and returns up to one batch of hits ordered by score
func (i *EntryIndexer) Search(q Query) ([]Hit, error) {
	var bq query.Query

	switch q.Type {
	case QueryTypePhrase:
		bq = bleve.NewMatchPhraseQuery(q.Expression)
	default:
		bq = bleve.NewMatchQuery(q.Expression)
	}

	searchReq := bleve.NewSearchRequest(bq)
	searchReq.Size = batchSize
	searchReq.From = int(q.Offset)

	rs, err := i.idx.Search(searchReq)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	hits := make([]Hit, 0, len(rs.Hits))
	for _, hit := range rs.Hits {
		entry, ok := i.entries[hit.ID]
		if !ok {
			continue
		}
		ecopy := new(types.IndexEntry)
		*ecopy = *entry
		hits = append(hits, Hit{Entry: ecopy, Score: hit.Score})
	}
	return hits, nil
}

func makeBleveDoc(e *types.IndexEntry) bleveDoc {
	return bleveDoc{
		Title:       e.Title,
		Description: e.Description,
		Section:     e.Section,
	}
}

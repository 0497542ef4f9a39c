package search

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/mdindex/internal/types"
)

func entry(title, desc, section string) *types.IndexEntry {
	return &types.IndexEntry{
		ID:          uuid.New(),
		Title:       title,
		URL:         "target.md",
		Description: desc,
		Section:     section,
	}
}

func TestIndexAndSearch(t *testing.T) {
	indexer, err := NewEntryIndexer()
	require.NoError(t, err)
	defer indexer.Close()

	require.NoError(t, indexer.Index(entry("Authentication", "How to authenticate API requests.", "Security")))
	require.NoError(t, indexer.Index(entry("Rate Limiting", "Throttling and quotas.", "Security")))
	require.NoError(t, indexer.Index(entry("Webhooks", "Receiving event callbacks.", "Integration")))

	assert.Equal(t, 3, indexer.Count())

	hits, err := indexer.Search(Query{Type: QueryTypeMatch, Expression: "authentication"})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "Authentication", hits[0].Entry.Title)
	assert.Greater(t, hits[0].Score, 0.0)
}

func TestSearchMatchesDescriptionAndSection(t *testing.T) {
	indexer, err := NewEntryIndexer()
	require.NoError(t, err)
	defer indexer.Close()

	require.NoError(t, indexer.Index(entry("Webhooks", "Receiving event callbacks.", "Integration")))

	hits, err := indexer.Search(Query{Type: QueryTypeMatch, Expression: "callbacks"})
	require.NoError(t, err)
	require.Len(t, hits, 1)

	hits, err = indexer.Search(Query{Type: QueryTypeMatch, Expression: "integration"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
}

func TestPhraseQuery(t *testing.T) {
	indexer, err := NewEntryIndexer()
	require.NoError(t, err)
	defer indexer.Close()

	require.NoError(t, indexer.Index(entry("Rate Limiting", "Throttling and quotas.", "")))
	require.NoError(t, indexer.Index(entry("Limiting Factors", "Rate of change.", "")))

	hits, err := indexer.Search(Query{Type: QueryTypePhrase, Expression: "rate limiting"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Rate Limiting", hits[0].Entry.Title)
}

func TestIndexRejectsMissingID(t *testing.T) {
	indexer, err := NewEntryIndexer()
	require.NoError(t, err)
	defer indexer.Close()

	err = indexer.Index(&types.IndexEntry{Title: "No ID"})
	assert.Error(t, err)
}

func TestIndexAllReplacesCatalogue(t *testing.T) {
	indexer, err := NewEntryIndexer()
	require.NoError(t, err)
	defer indexer.Close()

	require.NoError(t, indexer.Index(entry("Old Entry", "Stale.", "")))

	fresh := []*types.IndexEntry{
		entry("New One", "First fresh entry.", ""),
		entry("New Two", "Second fresh entry.", ""),
	}
	require.NoError(t, indexer.IndexAll(fresh))

	assert.Equal(t, 2, indexer.Count())

	hits, err := indexer.Search(Query{Type: QueryTypeMatch, Expression: "stale"})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchReturnsCopies(t *testing.T) {
	indexer, err := NewEntryIndexer()
	require.NoError(t, err)
	defer indexer.Close()

	original := entry("Authentication", "How to authenticate.", "")
	require.NoError(t, indexer.Index(original))

	hits, err := indexer.Search(Query{Type: QueryTypeMatch, Expression: "authentication"})
	require.NoError(t, err)
	require.Len(t, hits, 1)

	hits[0].Entry.Title = "Mutated"

	again, err := indexer.Search(Query{Type: QueryTypeMatch, Expression: "authentication"})
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, "Authentication", again[0].Entry.Title)
}

package search

import (
	"context"
	"log/slog"
	"testing"

	"github.com/poiesic/ragserve/ai/mock"
	"github.com/poiesic/ragserve/vectorstore"
	"github.com/poiesic/ragserve/vectorstore/chromem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSearchNamespace(t *testing.T, records []vectorstore.Record) vectorstore.Store {
	t.Helper()

	store := chromem.OpenInMemory()
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	require.NoError(t, store.CreateNamespace(ctx, "kb"))
	if len(records) > 0 {
		require.NoError(t, store.Write(ctx, "kb", records))
	}
	return store
}

func fixedEmbedder(vector []float32) *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	}
	return embedder
}

func TestNewSearcher(t *testing.T) {
	store := seedSearchNamespace(t, nil)
	embedder := mock.NewMockEmbedder()

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(store, embedder)
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with custom logger", func(t *testing.T) {
		searcher, err := NewSearcher(store, embedder, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(store, embedder, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("nil vector store", func(t *testing.T) {
		_, err := NewSearcher(nil, embedder)
		assert.Equal(t, ErrVectorStoreRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewSearcher(store, nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})

	t.Run("min score out of range", func(t *testing.T) {
		_, err := NewSearcher(store, embedder, WithMinScore(1.5))
		assert.Error(t, err)
	})
}

func TestFindSimilar_EmptyCollection(t *testing.T) {
	store := seedSearchNamespace(t, nil)

	searcher, err := NewSearcher(store, fixedEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	results, err := searcher.FindSimilar(context.Background(), "kb", "test query", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindSimilar_EmptyQuery(t *testing.T) {
	store := seedSearchNamespace(t, nil)

	searcher, err := NewSearcher(store, fixedEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	_, err = searcher.FindSimilar(context.Background(), "kb", "   ", 10)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestFindSimilar_DropsBelowMinScore(t *testing.T) {
	store := seedSearchNamespace(t, []vectorstore.Record{
		{
			ID:       "doc_0",
			Vector:   []float32{0.9, 0.1, 0},
			Text:     "vacation policy overview",
			Metadata: vectorstore.Metadata{DocumentID: "doc", FileName: "policy.txt"},
		},
		{
			ID:       "doc_1",
			Vector:   []float32{0.1, 0.1, 0.8},
			Text:     "expense report instructions",
			Metadata: vectorstore.Metadata{DocumentID: "doc", FileName: "policy.txt"},
		},
	})

	searcher, err := NewSearcher(store, fixedEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	results, err := searcher.FindSimilar(context.Background(), "kb", "holiday allowance", 10)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "doc_0", results[0].ID)
	assert.Equal(t, "policy.txt", results[0].Source)
	assert.False(t, results[0].Verbatim)
}

func TestFindSimilar_VerbatimBoost(t *testing.T) {
	store := seedSearchNamespace(t, []vectorstore.Record{
		{
			ID:     "doc_0",
			Vector: []float32{1, 0, 0},
			Text:   "the company grants twenty vacation days each year",
		},
		{
			ID:     "doc_1",
			Vector: []float32{1, 0, 0},
			Text:   "remote work requires manager approval",
		},
	})

	searcher, err := NewSearcher(store, fixedEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	results, err := searcher.FindSimilar(context.Background(), "kb", "vacation days", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Equal similarity, but the verbatim match is promoted.
	assert.Equal(t, "doc_0", results[0].ID)
	assert.True(t, results[0].Verbatim)
	assert.False(t, results[1].Verbatim)
	assert.InDelta(t, 0.3, results[0].Score-results[1].Score, 0.01)
}

func TestFindSimilar_StopWordsIgnoredForVerbatim(t *testing.T) {
	store := seedSearchNamespace(t, []vectorstore.Record{
		{
			ID:     "doc_0",
			Vector: []float32{1, 0, 0},
			Text:   "vacation days accrue monthly",
		},
	})

	searcher, err := NewSearcher(store, fixedEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	// "the" and "of" are stop words and must not break the verbatim match.
	results, err := searcher.FindSimilar(context.Background(), "kb", "the vacation days of", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Verbatim)
}

func TestFindSimilar_WithMaxHits(t *testing.T) {
	records := make([]vectorstore.Record, 10)
	for i := range records {
		records[i] = vectorstore.Record{
			ID:     string(rune('a' + i)),
			Vector: []float32{1, 0, 0},
			Text:   "test passage",
		}
	}
	store := seedSearchNamespace(t, records)

	searcher, err := NewSearcher(store, fixedEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	results, err := searcher.FindSimilar(context.Background(), "kb", "query", 5)
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func TestFindSimilar_UnknownCollection(t *testing.T) {
	store := seedSearchNamespace(t, nil)

	searcher, err := NewSearcher(store, fixedEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	_, err = searcher.FindSimilar(context.Background(), "missing", "query", 10)
	assert.ErrorIs(t, err, vectorstore.ErrNamespaceNotFound)
}

func TestFindSimilarWithMonitor(t *testing.T) {
	store := seedSearchNamespace(t, []vectorstore.Record{
		{ID: "doc_0", Vector: []float32{1, 0, 0}, Text: "test passage"},
	})

	searcher, err := NewSearcher(store, fixedEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	monitor := &testMonitor{}
	results, err := searcher.FindSimilarWithMonitor(context.Background(), "kb", "test query", 10, monitor)
	require.NoError(t, err)
	assert.NotEmpty(t, results)

	assert.True(t, monitor.startCalled)
	assert.Equal(t, []string{"doc_0"}, monitor.retrieved)
	assert.True(t, monitor.finishCalled)
}

// testMonitor is a simple test implementation of SearchMonitor
type testMonitor struct {
	startCalled  bool
	retrieved    []string
	finishCalled bool
}

func (m *testMonitor) Start(collection, query string) {
	m.startCalled = true
}

func (m *testMonitor) AfterSemanticSearch(ids []string) {
	m.retrieved = ids
}

func (m *testMonitor) SemanticHit(hit *Hit) {}

func (m *testMonitor) VerbatimHit(hit *Hit) {}

func (m *testMonitor) Finish(hits []*Hit) {
	m.finishCalled = true
}

func TestTokenizeAndFilter(t *testing.T) {
	words := tokenizeAndFilter("The Vacation days, of 2025!")
	assert.Equal(t, []string{"vacation", "days", "2025"}, words)
}

func TestContainsAllQueryWords(t *testing.T) {
	assert.True(t, containsAllQueryWords("vacation days accrue monthly", "vacation days"))
	assert.False(t, containsAllQueryWords("vacation policy", "vacation days"))
	assert.False(t, containsAllQueryWords("anything at all", "the of and"))
}

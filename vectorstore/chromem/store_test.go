package chromem

import (
	"context"
	"testing"

	"github.com/poiesic/ragserve/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(id, docID, text string, index int, vector []float32) vectorstore.Record {
	return vectorstore.Record{
		ID:     id,
		Vector: vector,
		Text:   text,
		Metadata: vectorstore.Metadata{
			DocumentID: docID,
			FileName:   "manual.pdf",
			Index:      index,
		},
	}
}

func TestCreateNamespace(t *testing.T) {
	store := OpenInMemory()
	ctx := context.Background()

	require.NoError(t, store.CreateNamespace(ctx, "docs"))

	// Creating again is a distinct 409-style error.
	err := store.CreateNamespace(ctx, "docs")
	assert.ErrorIs(t, err, vectorstore.ErrNamespaceExists)

	err = store.CreateNamespace(ctx, "")
	assert.ErrorIs(t, err, vectorstore.ErrInvalidNamespace)
}

func TestWriteAndQuery(t *testing.T) {
	store := OpenInMemory()
	ctx := context.Background()
	require.NoError(t, store.CreateNamespace(ctx, "docs"))

	records := []vectorstore.Record{
		testRecord("d1_0", "d1", "alpha passage", 0, []float32{1, 0, 0}),
		testRecord("d1_1", "d1", "beta passage", 1, []float32{0, 1, 0}),
		testRecord("d1_2", "d1", "gamma passage", 2, []float32{0, 0, 1}),
	}
	require.NoError(t, store.Write(ctx, "docs", records))

	results, err := store.Query(ctx, "docs", []float32{0, 1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "d1_1", results[0].ID)
	assert.Equal(t, "beta passage", results[0].Text)
	assert.Equal(t, "d1", results[0].Metadata.DocumentID)
	assert.Equal(t, 1, results[0].Metadata.Index)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestQueryCapsAtCount(t *testing.T) {
	store := OpenInMemory()
	ctx := context.Background()
	require.NoError(t, store.CreateNamespace(ctx, "docs"))
	require.NoError(t, store.Write(ctx, "docs", []vectorstore.Record{
		testRecord("d1_0", "d1", "only passage", 0, []float32{1, 0, 0}),
	}))

	results, err := store.Query(ctx, "docs", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestQueryEmptyNamespace(t *testing.T) {
	store := OpenInMemory()
	ctx := context.Background()
	require.NoError(t, store.CreateNamespace(ctx, "docs"))

	results, err := store.Query(ctx, "docs", []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestNamespaceNotFound(t *testing.T) {
	store := OpenInMemory()
	ctx := context.Background()

	_, err := store.Query(ctx, "missing", []float32{1}, 1)
	assert.ErrorIs(t, err, vectorstore.ErrNamespaceNotFound)

	err = store.Write(ctx, "missing", []vectorstore.Record{
		testRecord("x_0", "x", "text", 0, []float32{1}),
	})
	assert.ErrorIs(t, err, vectorstore.ErrNamespaceNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "missing", "x_0"), vectorstore.ErrNamespaceNotFound)
	assert.ErrorIs(t, store.DeleteNamespace(ctx, "missing"), vectorstore.ErrNamespaceNotFound)
}

func TestWriteRejectsEmptyVector(t *testing.T) {
	store := OpenInMemory()
	ctx := context.Background()
	require.NoError(t, store.CreateNamespace(ctx, "docs"))

	err := store.Write(ctx, "docs", []vectorstore.Record{
		{ID: "d1_0", Text: "no vector"},
	})
	assert.ErrorIs(t, err, vectorstore.ErrEmptyVector)
}

func TestDeleteByDocument(t *testing.T) {
	store := OpenInMemory()
	ctx := context.Background()
	require.NoError(t, store.CreateNamespace(ctx, "docs"))
	require.NoError(t, store.Write(ctx, "docs", []vectorstore.Record{
		testRecord("d1_0", "d1", "keep me not", 0, []float32{1, 0, 0}),
		testRecord("d1_1", "d1", "me neither", 1, []float32{0, 1, 0}),
		testRecord("d2_0", "d2", "survivor", 0, []float32{0, 0, 1}),
	}))

	require.NoError(t, store.DeleteByDocument(ctx, "docs", "d1"))

	results, err := store.Query(ctx, "docs", []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "d2_0", results[0].ID)
}

func TestDeleteNamespaceAndList(t *testing.T) {
	store := OpenInMemory()
	ctx := context.Background()
	require.NoError(t, store.CreateNamespace(ctx, "a"))
	require.NoError(t, store.CreateNamespace(ctx, "b"))

	names, err := store.ListNamespaces(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, names)

	require.NoError(t, store.DeleteNamespace(ctx, "a"))

	names, err = store.ListNamespaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)
}

func TestPersistentStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(dir, false)
	require.NoError(t, err)
	require.NoError(t, store.CreateNamespace(ctx, "docs"))
	require.NoError(t, store.Write(ctx, "docs", []vectorstore.Record{
		testRecord("d1_0", "d1", "persisted passage", 0, []float32{1, 0, 0}),
	}))
	require.NoError(t, store.Close())

	reopened, err := Open(dir, false)
	require.NoError(t, err)
	results, err := reopened.Query(ctx, "docs", []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "persisted passage", results[0].Text)
}

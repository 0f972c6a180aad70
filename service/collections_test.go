package service

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/ragserve/core"
	"github.com/poiesic/ragserve/storage"
	"github.com/poiesic/ragserve/storage/badger"
	"github.com/poiesic/ragserve/vectorstore"
	"github.com/poiesic/ragserve/vectorstore/chromem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	docRepo      storage.DocumentRepository
	colRepo      storage.CollectionRepository
	questionRepo storage.QuestionRepository
	vectors      vectorstore.Store
	collections  *CollectionService
}

func setupServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	docRepo, colRepo, questionRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	vectors := chromem.OpenInMemory()
	t.Cleanup(func() {
		vectors.Close()
		backend.Close()
	})

	collections, err := NewCollectionService(colRepo, docRepo, questionRepo, vectors)
	require.NoError(t, err)

	return &serviceFixture{
		docRepo:      docRepo,
		colRepo:      colRepo,
		questionRepo: questionRepo,
		vectors:      vectors,
		collections:  collections,
	}
}

func TestCollectionServiceCreate(t *testing.T) {
	f := setupServiceFixture(t)
	ctx := context.Background()

	col, err := f.collections.Create(ctx, "Handbook", "HR docs")
	require.NoError(t, err)
	assert.Equal(t, "handbook", col.Name)

	// The vector namespace exists alongside the record.
	names, err := f.vectors.ListNamespaces(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "handbook")
}

func TestCollectionServiceCreateDuplicate(t *testing.T) {
	f := setupServiceFixture(t)
	ctx := context.Background()

	_, err := f.collections.Create(ctx, "handbook", "")
	require.NoError(t, err)

	_, err = f.collections.Create(ctx, "HANDBOOK", "")
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestCollectionServiceCreateUndoneOnNamespaceConflict(t *testing.T) {
	f := setupServiceFixture(t)
	ctx := context.Background()

	// A namespace squatting the name without a record.
	require.NoError(t, f.vectors.CreateNamespace(ctx, "handbook"))

	_, err := f.collections.Create(ctx, "handbook", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, vectorstore.ErrNamespaceExists)

	// The half-created record was rolled back.
	_, err = f.collections.GetByName(ctx, "handbook")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCollectionServiceDeleteCascades(t *testing.T) {
	f := setupServiceFixture(t)
	ctx := context.Background()

	col, err := f.collections.Create(ctx, "handbook", "")
	require.NoError(t, err)

	doc, err := f.docRepo.AddDocument(ctx, &core.Document{
		CollectionID: col.ID,
		Name:         "doc.txt",
		FilePath:     "/tmp/doc.txt",
	})
	require.NoError(t, err)

	_, err = f.questionRepo.AddQuestion(ctx, &core.Question{
		CollectionID: col.ID,
		QuestionText: "q?",
		Answer:       "a",
	})
	require.NoError(t, err)

	require.NoError(t, f.collections.Delete(ctx, col.ID))

	_, err = f.colRepo.GetCollection(ctx, col.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = f.docRepo.GetDocument(ctx, doc.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	questions, err := f.questionRepo.ListQuestionsByCollection(ctx, col.ID)
	require.NoError(t, err)
	assert.Empty(t, questions)

	names, err := f.vectors.ListNamespaces(ctx)
	require.NoError(t, err)
	assert.NotContains(t, names, "handbook")
}

func TestCollectionServiceDeleteUnknown(t *testing.T) {
	f := setupServiceFixture(t)

	err := f.collections.Delete(context.Background(), "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestCollectionServiceList(t *testing.T) {
	f := setupServiceFixture(t)
	ctx := context.Background()

	_, err := f.collections.Create(ctx, "first", "")
	require.NoError(t, err)
	_, err = f.collections.Create(ctx, "second", "")
	require.NoError(t, err)

	cols, err := f.collections.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cols, 2)
}

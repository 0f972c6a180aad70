package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/ragserve/core"
	"github.com/poiesic/ragserve/storage"
)

func TestDocumentBasics(t *testing.T) {
	docRepo, _, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	doc := &core.Document{
		CollectionID: "col-1",
		Name:         "handbook.txt",
		FilePath:     "/tmp/handbook.txt",
	}

	added, err := docRepo.AddDocument(ctx, doc)
	if err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}
	if added.ID == "" {
		t.Fatal("Expected generated ID")
	}
	if added.Status != core.StatusPending {
		t.Fatalf("Expected pending status, got %s", added.Status)
	}
	if added.CreatedAt.IsZero() {
		t.Fatal("Expected CreatedAt to be set")
	}

	retrieved, err := docRepo.GetDocument(ctx, added.ID)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	if retrieved.Name != "handbook.txt" {
		t.Fatalf("Expected 'handbook.txt', got '%s'", retrieved.Name)
	}
}

func TestDocumentNotFound(t *testing.T) {
	docRepo, _, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	_, err = docRepo.GetDocument(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	err = docRepo.DeleteDocument(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on delete, got %v", err)
	}
}

func TestDocumentListByCollection(t *testing.T) {
	docRepo, _, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	for i, name := range []string{"a.txt", "b.txt", "c.txt"} {
		doc := &core.Document{
			CollectionID: "col-1",
			Name:         name,
			FilePath:     "/tmp/" + name,
			CreatedAt:    now.Add(time.Duration(i) * time.Second),
		}
		if _, err := docRepo.AddDocument(ctx, doc); err != nil {
			t.Fatalf("Failed to add document %s: %v", name, err)
		}
	}
	other := &core.Document{CollectionID: "col-2", Name: "d.txt", FilePath: "/tmp/d.txt"}
	if _, err := docRepo.AddDocument(ctx, other); err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}

	docs, err := docRepo.ListDocumentsByCollection(ctx, "col-1")
	if err != nil {
		t.Fatalf("Failed to list documents: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("Expected 3 documents, got %d", len(docs))
	}
	for i, want := range []string{"a.txt", "b.txt", "c.txt"} {
		if docs[i].Name != want {
			t.Fatalf("Expected %s at position %d, got %s", want, i, docs[i].Name)
		}
	}
}

func TestDocumentStatusLifecycle(t *testing.T) {
	docRepo, _, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	added, err := docRepo.AddDocument(ctx, &core.Document{
		CollectionID: "col-1",
		Name:         "doc.txt",
		FilePath:     "/tmp/doc.txt",
	})
	if err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}

	started := time.Now().UTC()
	err = docRepo.UpdateStatus(ctx, added.ID, core.StatusProcessing, storage.StatusUpdate{StartedAt: started})
	if err != nil {
		t.Fatalf("Failed to transition to processing: %v", err)
	}

	ended := time.Now().UTC()
	meta := &core.IngestMetadata{ChunkCount: 5, ChunkSize: 1000, ChunkOverlap: 100}
	err = docRepo.UpdateStatus(ctx, added.ID, core.StatusCompleted, storage.StatusUpdate{EndedAt: ended, Ingest: meta})
	if err != nil {
		t.Fatalf("Failed to transition to completed: %v", err)
	}

	retrieved, err := docRepo.GetDocument(ctx, added.ID)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	if retrieved.Status != core.StatusCompleted {
		t.Fatalf("Expected completed, got %s", retrieved.Status)
	}
	if retrieved.Ingest.ChunkCount != 5 {
		t.Fatalf("Expected chunk count 5, got %d", retrieved.Ingest.ChunkCount)
	}
	if retrieved.ProcessingStartedAt.IsZero() || retrieved.ProcessingEndedAt.IsZero() {
		t.Fatal("Expected processing timestamps to be recorded")
	}
}

func TestDocumentIllegalTransition(t *testing.T) {
	docRepo, _, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	added, err := docRepo.AddDocument(ctx, &core.Document{
		CollectionID: "col-1",
		Name:         "doc.txt",
		FilePath:     "/tmp/doc.txt",
	})
	if err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}

	// pending -> completed skips processing and must be rejected.
	err = docRepo.UpdateStatus(ctx, added.ID, core.StatusCompleted, storage.StatusUpdate{})
	if !errors.Is(err, core.ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition, got %v", err)
	}

	retrieved, err := docRepo.GetDocument(ctx, added.ID)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	if retrieved.Status != core.StatusPending {
		t.Fatalf("Expected status unchanged, got %s", retrieved.Status)
	}
}

func TestDocumentUpdateStatusNotFound(t *testing.T) {
	docRepo, _, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	err = docRepo.UpdateStatus(context.Background(), "missing", core.StatusProcessing, storage.StatusUpdate{})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

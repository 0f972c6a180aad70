package storage

import (
	"context"
	"time"

	"github.com/poiesic/ragserve/core"
)

// StatusUpdate carries the document fields mutated by a status transition.
// Zero-valued fields are left untouched.
type StatusUpdate struct {
	// StartedAt is recorded as the processing start time when non-zero.
	StartedAt time.Time
	// EndedAt is recorded as the processing end time when non-zero.
	EndedAt time.Time
	// Ingest replaces the document's ingestion metadata when non-nil.
	Ingest *core.IngestMetadata
}

// DocumentRepository provides operations for managing documents.
// Implementations must be thread-safe and support concurrent access.
type DocumentRepository interface {
	// AddDocument stores a new document. Generates an ID if empty and
	// sets CreatedAt/UpdatedAt. Returns the stored document.
	AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// GetDocument retrieves a document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id string) (*core.Document, error)

	// ListDocumentsByCollection retrieves all documents owned by a
	// collection, ordered by creation time.
	ListDocumentsByCollection(ctx context.Context, collectionID string) ([]*core.Document, error)

	// UpdateStatus transitions a document to the next status, applying
	// the update fields atomically with the transition.
	// Returns ErrNotFound if the document doesn't exist and
	// core.ErrInvalidTransition if the transition is not legal.
	UpdateStatus(ctx context.Context, id string, next core.DocumentStatus, update StatusUpdate) error

	// DeleteDocument removes a document record entirely.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id string) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// CollectionRepository provides operations for managing collections.
type CollectionRepository interface {
	// AddCollection stores a new collection. The name is case-normalized
	// and must be unique; returns ErrDuplicateKey on conflict.
	AddCollection(ctx context.Context, col *core.Collection) (*core.Collection, error)

	// GetCollection retrieves a collection by ID.
	// Returns ErrNotFound if the collection doesn't exist.
	GetCollection(ctx context.Context, id string) (*core.Collection, error)

	// GetCollectionByName retrieves a collection by its normalized name.
	// Returns ErrNotFound if no collection has that name.
	GetCollectionByName(ctx context.Context, name string) (*core.Collection, error)

	// ListCollections returns all collections ordered by creation time.
	ListCollections(ctx context.Context) ([]*core.Collection, error)

	// DeleteCollection removes a collection record.
	// Returns ErrNotFound if the collection doesn't exist. Dependent
	// documents and questions are the caller's responsibility; the
	// service layer cascades before calling this.
	DeleteCollection(ctx context.Context, id string) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// QuestionRepository provides operations for managing question/answer records.
type QuestionRepository interface {
	// AddQuestion stores a completed question/answer turn. Generates an
	// ID if empty and sets CreatedAt/UpdatedAt.
	AddQuestion(ctx context.Context, q *core.Question) (*core.Question, error)

	// ListQuestionsByCollection retrieves the question history of a
	// collection, ordered by creation time.
	ListQuestionsByCollection(ctx context.Context, collectionID string) ([]*core.Question, error)

	// DeleteQuestion removes a single question record.
	// Returns ErrNotFound if the question doesn't exist.
	DeleteQuestion(ctx context.Context, id string) error

	// ClearQuestions removes every question belonging to a collection.
	ClearQuestions(ctx context.Context, collectionID string) error

	// ClearAll removes every question record.
	ClearAll(ctx context.Context) error

	// Close closes the storage backend and releases resources.
	Close() error
}

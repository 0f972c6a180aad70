package badger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/ragserve/core"
	"github.com/poiesic/ragserve/storage"
	"github.com/timshannon/badgerhold/v4"
)

// DocumentRepository implements storage.DocumentRepository on BadgerDB.
type DocumentRepository struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a document repository on the shared backend.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	return &DocumentRepository{
		backend: backend,
		logger:  slog.Default().With("repository", "documents"),
	}, nil
}

// AddDocument stores a new document.
func (r *DocumentRepository) AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error) {
	if doc.ID == "" {
		doc.ID = core.NewID()
	}
	if doc.Status == "" {
		doc.Status = core.StatusPending
	}
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	if err := r.backend.Store().Insert(doc.ID, doc); err != nil {
		if err == badgerhold.ErrKeyExists {
			return nil, fmt.Errorf("%w: document %s", storage.ErrDuplicateKey, doc.ID)
		}
		return nil, fmt.Errorf("adding document: %w", err)
	}

	r.logger.Debug("added document", "id", doc.ID, "collection", doc.CollectionID)
	return doc, nil
}

// GetDocument retrieves a document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id string) (*core.Document, error) {
	var doc core.Document
	if err := r.backend.Store().Get(id, &doc); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("%w: document %s", storage.ErrNotFound, id)
		}
		return nil, fmt.Errorf("getting document: %w", err)
	}
	return &doc, nil
}

// ListDocumentsByCollection retrieves all documents owned by a collection.
func (r *DocumentRepository) ListDocumentsByCollection(ctx context.Context, collectionID string) ([]*core.Document, error) {
	var docs []*core.Document
	query := badgerhold.Where("CollectionID").Eq(collectionID).SortBy("CreatedAt")
	if err := r.backend.Store().Find(&docs, query); err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}

// UpdateStatus transitions a document to the next status. The legality
// check and the field updates happen inside one transaction, so two
// racing transitions cannot both succeed.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, next core.DocumentStatus, update storage.StatusUpdate) error {
	// Existence check first: UpdateMatching is silent on zero matches.
	if _, err := r.GetDocument(ctx, id); err != nil {
		return err
	}

	query := badgerhold.Where(badgerhold.Key).Eq(id)
	err := r.backend.Store().UpdateMatching(&core.Document{}, query, func(record interface{}) error {
		doc, ok := record.(*core.Document)
		if !ok {
			return fmt.Errorf("unexpected record type %T", record)
		}

		if !doc.Status.CanTransition(next) {
			return fmt.Errorf("%w: %s -> %s", core.ErrInvalidTransition, doc.Status, next)
		}

		doc.Status = next
		if !update.StartedAt.IsZero() {
			doc.ProcessingStartedAt = update.StartedAt
		}
		if !update.EndedAt.IsZero() {
			doc.ProcessingEndedAt = update.EndedAt
		}
		if update.Ingest != nil {
			doc.Ingest = *update.Ingest
		}
		doc.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug("updated document status", "id", id, "status", next)
	return nil
}

// DeleteDocument removes a document record entirely.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, id string) error {
	if err := r.backend.Store().Delete(id, &core.Document{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("%w: document %s", storage.ErrNotFound, id)
		}
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// Close is a no-op; the database lifetime is owned by the shared Backend.
func (r *DocumentRepository) Close() error {
	return nil
}

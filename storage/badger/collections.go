package badger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/poiesic/ragserve/core"
	"github.com/poiesic/ragserve/storage"
	"github.com/timshannon/badgerhold/v4"
)

// CollectionRepository implements storage.CollectionRepository on BadgerDB.
type CollectionRepository struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.CollectionRepository = (*CollectionRepository)(nil)

// NewCollectionRepository creates a collection repository on the shared backend.
func NewCollectionRepository(backend *Backend) (*CollectionRepository, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	return &CollectionRepository{
		backend: backend,
		logger:  slog.Default().With("repository", "collections"),
	}, nil
}

// AddCollection stores a new collection under its normalized name.
func (r *CollectionRepository) AddCollection(ctx context.Context, col *core.Collection) (*core.Collection, error) {
	if col.ID == "" {
		col.ID = core.NewID()
	}
	col.Name = core.NormalizeCollectionName(col.Name)
	if err := core.ValidateCollection(col); err != nil {
		return nil, err
	}

	if _, err := r.GetCollectionByName(ctx, col.Name); err == nil {
		return nil, fmt.Errorf("%w: collection %q", storage.ErrDuplicateKey, col.Name)
	}

	if col.CreatedAt.IsZero() {
		col.CreatedAt = time.Now().UTC()
	}

	if err := r.backend.Store().Insert(col.ID, col); err != nil {
		if err == badgerhold.ErrKeyExists {
			return nil, fmt.Errorf("%w: collection %s", storage.ErrDuplicateKey, col.ID)
		}
		return nil, fmt.Errorf("adding collection: %w", err)
	}

	r.logger.Debug("added collection", "id", col.ID, "name", col.Name)
	return col, nil
}

// GetCollection retrieves a collection by ID.
func (r *CollectionRepository) GetCollection(ctx context.Context, id string) (*core.Collection, error) {
	var col core.Collection
	if err := r.backend.Store().Get(id, &col); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("%w: collection %s", storage.ErrNotFound, id)
		}
		return nil, fmt.Errorf("getting collection: %w", err)
	}
	return &col, nil
}

// GetCollectionByName retrieves a collection by its normalized name.
func (r *CollectionRepository) GetCollectionByName(ctx context.Context, name string) (*core.Collection, error) {
	name = core.NormalizeCollectionName(name)
	var cols []*core.Collection
	if err := r.backend.Store().Find(&cols, badgerhold.Where("Name").Eq(name)); err != nil {
		return nil, fmt.Errorf("finding collection: %w", err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: collection %q", storage.ErrNotFound, name)
	}
	return cols[0], nil
}

// ListCollections returns all collections ordered by creation time.
func (r *CollectionRepository) ListCollections(ctx context.Context) ([]*core.Collection, error) {
	var cols []*core.Collection
	if err := r.backend.Store().Find(&cols, nil); err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	sort.Slice(cols, func(i, j int) bool {
		return cols[i].CreatedAt.Before(cols[j].CreatedAt)
	})
	return cols, nil
}

// DeleteCollection removes a collection record.
func (r *CollectionRepository) DeleteCollection(ctx context.Context, id string) error {
	if err := r.backend.Store().Delete(id, &core.Collection{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("%w: collection %s", storage.ErrNotFound, id)
		}
		return fmt.Errorf("deleting collection: %w", err)
	}
	r.logger.Debug("deleted collection", "id", id)
	return nil
}

// Close is a no-op; the database lifetime is owned by the shared Backend.
func (r *CollectionRepository) Close() error {
	return nil
}

// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/ragserve/core"
	"github.com/poiesic/ragserve/storage"
	"github.com/poiesic/ragserve/vectorstore"
)

// CollectionService manages collection lifecycle. A collection's record
// and its vector namespace are created and torn down together, so no
// namespace is ever left dangling.
type CollectionService struct {
	collections storage.CollectionRepository
	documents   storage.DocumentRepository
	questions   storage.QuestionRepository
	vectors     vectorstore.Store
	logger      *slog.Logger
}

// NewCollectionService creates a collection service.
func NewCollectionService(
	collections storage.CollectionRepository,
	documents storage.DocumentRepository,
	questions storage.QuestionRepository,
	vectors vectorstore.Store,
) (*CollectionService, error) {
	if collections == nil {
		return nil, ErrCollectionRepositoryRequired
	}
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if questions == nil {
		return nil, ErrQuestionRepositoryRequired
	}
	if vectors == nil {
		return nil, ErrVectorStoreRequired
	}
	return &CollectionService{
		collections: collections,
		documents:   documents,
		questions:   questions,
		vectors:     vectors,
		logger:      slog.Default().With("component", "collections"),
	}, nil
}

// Create stores a new collection and its vector namespace. The name is
// case-normalized; a conflict returns storage.ErrDuplicateKey.
func (s *CollectionService) Create(ctx context.Context, name, description string) (*core.Collection, error) {
	col, err := s.collections.AddCollection(ctx, &core.Collection{
		Name:        name,
		Description: description,
	})
	if err != nil {
		return nil, err
	}

	if err := s.vectors.CreateNamespace(ctx, col.Name); err != nil {
		// A namespace without its record is useless; undo the record
		// so the name can be retried.
		if delErr := s.collections.DeleteCollection(ctx, col.ID); delErr != nil {
			s.logger.Error("error undoing collection record", "id", col.ID, "err", delErr)
		}
		return nil, fmt.Errorf("creating namespace %q: %w", col.Name, err)
	}

	s.logger.Info("created collection", "id", col.ID, "name", col.Name)
	return col, nil
}

// Get retrieves a collection by ID.
func (s *CollectionService) Get(ctx context.Context, id string) (*core.Collection, error) {
	return s.collections.GetCollection(ctx, id)
}

// GetByName retrieves a collection by its normalized name.
func (s *CollectionService) GetByName(ctx context.Context, name string) (*core.Collection, error) {
	return s.collections.GetCollectionByName(ctx, name)
}

// List returns all collections ordered by creation time.
func (s *CollectionService) List(ctx context.Context) ([]*core.Collection, error) {
	return s.collections.ListCollections(ctx)
}

// Delete removes a collection and everything it owns: document records,
// question history and the vector namespace with all indexed passages.
func (s *CollectionService) Delete(ctx context.Context, id string) error {
	col, err := s.collections.GetCollection(ctx, id)
	if err != nil {
		return err
	}

	docs, err := s.documents.ListDocumentsByCollection(ctx, col.ID)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := s.documents.DeleteDocument(ctx, doc.ID); err != nil {
			return fmt.Errorf("deleting document %s: %w", doc.ID, err)
		}
	}

	if err := s.questions.ClearQuestions(ctx, col.ID); err != nil {
		return fmt.Errorf("clearing questions: %w", err)
	}

	err = s.vectors.DeleteNamespace(ctx, col.Name)
	if err != nil && !errors.Is(err, vectorstore.ErrNamespaceNotFound) {
		return fmt.Errorf("deleting namespace %q: %w", col.Name, err)
	}

	if err := s.collections.DeleteCollection(ctx, col.ID); err != nil {
		return err
	}

	s.logger.Info("deleted collection", "id", col.ID, "name", col.Name, "documents", len(docs))
	return nil
}

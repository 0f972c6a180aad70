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
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/ragserve/core"
	"github.com/poiesic/ragserve/ingestion"
	"github.com/poiesic/ragserve/storage"
	"github.com/poiesic/ragserve/vectorstore"
)

// DocumentService manages document lifecycle around the ingestion
// pipeline: upload, resubmission, archival and deletion.
type DocumentService struct {
	documents   storage.DocumentRepository
	collections storage.CollectionRepository
	vectors     vectorstore.Store
	pipeline    *ingestion.Pipeline
	logger      *slog.Logger
}

// NewDocumentService creates a document service.
func NewDocumentService(
	documents storage.DocumentRepository,
	collections storage.CollectionRepository,
	vectors vectorstore.Store,
	pipeline *ingestion.Pipeline,
) (*DocumentService, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if collections == nil {
		return nil, ErrCollectionRepositoryRequired
	}
	if vectors == nil {
		return nil, ErrVectorStoreRequired
	}
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}
	return &DocumentService{
		documents:   documents,
		collections: collections,
		vectors:     vectors,
		pipeline:    pipeline,
		logger:      slog.Default().With("component", "documents"),
	}, nil
}

// Upload registers a document and schedules its ingestion. The caller
// gets the pending document back immediately; ingestion proceeds in the
// background and reports through the document's status.
func (s *DocumentService) Upload(ctx context.Context, collectionID, name, filePath, description string) (*core.Document, error) {
	if _, err := s.collections.GetCollection(ctx, collectionID); err != nil {
		return nil, err
	}

	doc, err := s.documents.AddDocument(ctx, &core.Document{
		CollectionID: collectionID,
		Name:         name,
		FilePath:     filePath,
		Description:  description,
	})
	if err != nil {
		return nil, err
	}

	if err := s.pipeline.IngestAsync(doc.ID); err != nil {
		return nil, err
	}

	s.logger.Info("uploaded document", "id", doc.ID, "name", doc.Name)
	return doc, nil
}

// Resubmit schedules ingestion for an existing document, typically one
// that failed or whose source file changed. Previous chunks are
// replaced by the run.
func (s *DocumentService) Resubmit(ctx context.Context, id string) error {
	doc, err := s.documents.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if !doc.Status.CanTransition(core.StatusProcessing) {
		return fmt.Errorf("%w: cannot resubmit from %s", core.ErrInvalidTransition, doc.Status)
	}
	return s.pipeline.IngestAsync(doc.ID)
}

// Recover marks a stuck processing document as failed so it can be
// resubmitted or deleted. A document ends up stuck when the process
// crashed mid-ingestion; the in-flight run died with it but the
// persisted status still says processing. Recover refuses while this
// process actually has a run in flight for the document.
func (s *DocumentService) Recover(ctx context.Context, id string) error {
	doc, err := s.documents.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if doc.Status != core.StatusProcessing {
		return fmt.Errorf("%w: cannot recover from %s", core.ErrInvalidTransition, doc.Status)
	}
	if s.pipeline.IsRunning(doc.ID) {
		return fmt.Errorf("%w: %s", ingestion.ErrAlreadyRunning, doc.ID)
	}

	if err := s.documents.UpdateStatus(ctx, doc.ID, core.StatusFailed, storage.StatusUpdate{EndedAt: time.Now().UTC()}); err != nil {
		return err
	}
	s.logger.Info("recovered stuck document", "id", doc.ID, "name", doc.Name)
	return nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*core.Document, error) {
	return s.documents.GetDocument(ctx, id)
}

// List returns a collection's documents ordered by creation time.
func (s *DocumentService) List(ctx context.Context, collectionID string) ([]*core.Document, error) {
	return s.documents.ListDocumentsByCollection(ctx, collectionID)
}

// Archive hides a completed document while keeping its passages
// indexed and answerable.
func (s *DocumentService) Archive(ctx context.Context, id string) error {
	return s.documents.UpdateStatus(ctx, id, core.StatusArchived, storage.StatusUpdate{})
}

// Delete removes a document's passages from the vector index and marks
// the record deleted. The record survives as an audit trail.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.documents.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	col, err := s.collections.GetCollection(ctx, doc.CollectionID)
	if err != nil {
		return err
	}

	if err := s.vectors.DeleteByDocument(ctx, col.Name, doc.ID); err != nil {
		return fmt.Errorf("removing passages for %s: %w", doc.ID, err)
	}

	if err := s.documents.UpdateStatus(ctx, doc.ID, core.StatusDeleted, storage.StatusUpdate{}); err != nil {
		return err
	}

	s.logger.Info("deleted document", "id", doc.ID, "name", doc.Name)
	return nil
}

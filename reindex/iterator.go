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


package reindex

import (
	"context"

	"github.com/poiesic/ragserve/core"
	"github.com/poiesic/ragserve/storage"
)

const (
	// DefaultBatchSize is the default number of documents to hand to
	// the callback in each batch
	DefaultBatchSize = 100
)

// DocumentIterator iterates over the reindexable documents of a collection
// in batches. Archived and deleted documents are skipped, as is anything
// currently being processed.
type DocumentIterator struct {
	repo      storage.DocumentRepository
	batchSize int
}

// NewDocumentIterator creates a new document iterator.
// batchSize: number of documents in each batch (must be > 0)
func NewDocumentIterator(repo storage.DocumentRepository, batchSize int) *DocumentIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &DocumentIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// reindexable reports whether a document may enter another ingestion run.
func reindexable(doc *core.Document) bool {
	return doc.Status.CanTransition(core.StatusProcessing)
}

// ForEach iterates over the collection's reindexable documents, calling fn
// for each batch. Iteration stops on first error from fn or when all
// documents are processed. Context cancellation is checked between batches.
func (it *DocumentIterator) ForEach(ctx context.Context, collectionID string, fn func([]*core.Document) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	all, err := it.repo.ListDocumentsByCollection(ctx, collectionID)
	if err != nil {
		return err
	}

	docs := make([]*core.Document, 0, len(all))
	for _, doc := range all {
		if reindexable(doc) {
			docs = append(docs, doc)
		}
	}

	if len(docs) == 0 {
		return nil
	}

	for i := 0; i < len(docs); i += it.batchSize {
		end := i + it.batchSize
		if end > len(docs) {
			end = len(docs)
		}

		if err := fn(docs[i:end]); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}

// Count returns the number of reindexable documents in the collection.
func (it *DocumentIterator) Count(ctx context.Context, collectionID string) (int, error) {
	all, err := it.repo.ListDocumentsByCollection(ctx, collectionID)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, doc := range all {
		if reindexable(doc) {
			n++
		}
	}
	return n, nil
}

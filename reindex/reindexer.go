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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/ragserve/core"
	"github.com/poiesic/ragserve/ingestion"
	"github.com/poiesic/ragserve/storage"
)

// Config holds configuration for a reindexing run.
type Config struct {
	// BatchSize is the number of documents to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of documents)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts per document
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 10,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reindexer re-runs the ingestion pipeline over the documents of a
// collection. Each document is read from disk, chunked, and embedded
// again, replacing its indexed passages.
type Reindexer struct {
	documents   storage.DocumentRepository
	collections storage.CollectionRepository
	pipeline    *ingestion.Pipeline
	config      *Config
	progress    io.Writer
	iterator    *DocumentIterator
	logger      *slog.Logger
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(documents storage.DocumentRepository, collections storage.CollectionRepository, pipeline *ingestion.Pipeline, config *Config, progress io.Writer) (*Reindexer, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if collections == nil {
		return nil, ErrCollectionRepositoryRequired
	}
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reindexer{
		documents:   documents,
		collections: collections,
		pipeline:    pipeline,
		config:      config,
		progress:    progress,
		iterator:    NewDocumentIterator(documents, config.BatchSize),
		logger:      slog.Default().With("component", "reindexer"),
	}, nil
}

// Run re-ingests every reindexable document of the named collection.
// Documents that keep failing after the configured retries are marked
// failed and skipped; the run continues with the rest. Progress is
// reported to the configured writer.
func (r *Reindexer) Run(ctx context.Context, collectionName string) error {
	col, err := r.collections.GetCollectionByName(ctx, collectionName)
	if err != nil {
		return fmt.Errorf("resolving collection %q: %w", collectionName, err)
	}

	total, err := r.iterator.Count(ctx, col.ID)
	if err != nil {
		return fmt.Errorf("counting documents: %w", err)
	}
	if total == 0 {
		fmt.Fprintf(r.progress, "No documents to reindex in %s (0 documents)\n", col.Name)
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d documents in %s (batch size: %d)\n",
		total, col.Name, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	failed := 0
	err = r.iterator.ForEach(ctx, col.ID, func(docs []*core.Document) error {
		for _, doc := range docs {
			err := RetryWithBackoff(ctx, func() error {
				return r.pipeline.Ingest(ctx, doc.ID)
			}, r.config.MaxRetries, r.config.RetryDelay)

			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				r.logger.Warn("document failed to reindex", "document", doc.ID, "name", doc.Name, "err", err)
				failed++
			}
			tracker.Increment(1)
		}
		return nil
	})
	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Processed %d documents in %v (%d failed)\n",
		total, elapsed.Round(time.Second), failed)

	return nil
}

// RunAll re-ingests the documents of every collection.
func (r *Reindexer) RunAll(ctx context.Context) error {
	cols, err := r.collections.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("listing collections: %w", err)
	}

	for _, col := range cols {
		if err := r.Run(ctx, col.Name); err != nil {
			return err
		}
	}
	return nil
}

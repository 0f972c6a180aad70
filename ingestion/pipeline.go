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

package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/ragserve/ai"
	"github.com/poiesic/ragserve/core"
	"github.com/poiesic/ragserve/storage"
	"github.com/poiesic/ragserve/vectorstore"
)

// Pipeline runs documents through extraction, normalization, chunking,
// embedding and the vector-store write, driving the document status
// lifecycle as it goes. Runs can be synchronous or scheduled on a
// worker pool, with at most one in-flight run per document.
type Pipeline struct {
	documents   storage.DocumentRepository
	collections storage.CollectionRepository
	vectors     vectorstore.Store
	embedder    ai.Embedder
	reader      Reader
	normalizer  Normalizer
	chunker     *Chunker
	pool        *ants.Pool
	inflight    map[string]struct{}
	mu          sync.Mutex
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for async ingestion.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithReader sets the text extractor. Default reads plain-text files.
func WithReader(reader Reader) Option {
	return func(p *Pipeline) error {
		if reader == nil {
			return fmt.Errorf("reader must not be nil")
		}
		p.reader = reader
		return nil
	}
}

// WithNormalizer sets the text normalizer.
// Default is the conservative TextNormalizer.
func WithNormalizer(normalizer Normalizer) Option {
	return func(p *Pipeline) error {
		if normalizer == nil {
			return fmt.Errorf("normalizer must not be nil")
		}
		p.normalizer = normalizer
		return nil
	}
}

// WithoutNormalization disables the normalization stage.
func WithoutNormalization() Option {
	return func(p *Pipeline) error {
		p.normalizer = PassthroughNormalizer{}
		return nil
	}
}

// WithChunker sets the chunker.
func WithChunker(chunker *Chunker) Option {
	return func(p *Pipeline) error {
		if chunker == nil {
			return fmt.Errorf("chunker must not be nil")
		}
		p.chunker = chunker
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(
	documents storage.DocumentRepository,
	collections storage.CollectionRepository,
	vectors vectorstore.Store,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if collections == nil {
		return nil, ErrCollectionRepositoryRequired
	}
	if vectors == nil {
		return nil, ErrVectorStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	chunker, err := NewChunker()
	if err != nil {
		pool.Release()
		return nil, err
	}

	p := &Pipeline{
		documents:   documents,
		collections: collections,
		vectors:     vectors,
		embedder:    embedder,
		reader:      NewFileReader(),
		normalizer:  NewTextNormalizer(),
		chunker:     chunker,
		pool:        pool,
		inflight:    make(map[string]struct{}),
		logger:      slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// IngestAsync schedules an ingestion run on the worker pool and returns
// immediately. Returns ErrAlreadyRunning if the document has a run in
// flight. Run errors are recorded on the document and logged, never
// returned to the caller.
func (p *Pipeline) IngestAsync(documentID string) error {
	if !p.acquire(documentID) {
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, documentID)
	}

	err := p.pool.Submit(func() {
		defer p.release(documentID)
		if runErr := p.run(context.Background(), documentID); runErr != nil {
			p.logger.Error("ingestion failed", "document", documentID, "err", runErr)
		}
	})
	if err != nil {
		p.release(documentID)
		return err
	}
	return nil
}

// Ingest runs the pipeline synchronously for one document.
// Returns ErrAlreadyRunning if the document has a run in flight.
func (p *Pipeline) Ingest(ctx context.Context, documentID string) error {
	if !p.acquire(documentID) {
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, documentID)
	}
	defer p.release(documentID)
	return p.run(ctx, documentID)
}

func (p *Pipeline) acquire(documentID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, running := p.inflight[documentID]; running {
		return false
	}
	p.inflight[documentID] = struct{}{}
	return true
}

// IsRunning reports whether the document has an ingestion run in
// flight in this process.
func (p *Pipeline) IsRunning(documentID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, running := p.inflight[documentID]
	return running
}

func (p *Pipeline) release(documentID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inflight, documentID)
}

// run executes the ingestion stages. The transition to processing must
// persist before any work happens; every later stage error lands the
// document in failed with an end timestamp.
func (p *Pipeline) run(ctx context.Context, documentID string) error {
	doc, err := p.documents.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}

	col, err := p.collections.GetCollection(ctx, doc.CollectionID)
	if err != nil {
		return err
	}

	started := time.Now().UTC()
	err = p.documents.UpdateStatus(ctx, doc.ID, core.StatusProcessing, storage.StatusUpdate{StartedAt: started})
	if err != nil {
		return fmt.Errorf("entering processing: %w", err)
	}

	logger := p.logger.With("document", doc.ID, "collection", col.Name)
	logger.Info("ingestion started", "file", doc.FilePath)

	chunkCount, err := p.process(ctx, doc, col)
	if err != nil {
		logger.Error("ingestion stage failed", "err", err)
		if failErr := p.documents.UpdateStatus(ctx, doc.ID, core.StatusFailed, storage.StatusUpdate{EndedAt: time.Now().UTC()}); failErr != nil {
			logger.Error("error recording failed status", "err", failErr)
		}
		return err
	}

	_, normalized := p.normalizer.(*TextNormalizer)
	update := storage.StatusUpdate{
		EndedAt: time.Now().UTC(),
		Ingest: &core.IngestMetadata{
			ChunkCount:   chunkCount,
			ChunkSize:    p.chunker.Size(),
			ChunkOverlap: p.chunker.Overlap(),
			Normalized:   normalized,
		},
	}
	if err := p.documents.UpdateStatus(ctx, doc.ID, core.StatusCompleted, update); err != nil {
		return fmt.Errorf("recording completion: %w", err)
	}

	logger.Info("ingestion completed", "chunks", chunkCount)
	return nil
}

// process runs extraction through the vector write and returns the
// number of chunks indexed.
func (p *Pipeline) process(ctx context.Context, doc *core.Document, col *core.Collection) (int, error) {
	text, err := p.reader.ExtractText(doc.FilePath)
	if err != nil {
		return 0, err
	}

	text = p.normalizer.Normalize(text)

	chunks := p.chunker.Chunk(text)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoContent, doc.FilePath)
	}

	vectors, err := p.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrEmbedding, err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("%w: expected %d vectors, received %d", core.ErrEmbedding, len(chunks), len(vectors))
	}

	// Previous chunks of the same document are dropped first so a
	// re-ingest never leaves stale passages behind.
	if err := p.vectors.DeleteByDocument(ctx, col.Name, doc.ID); err != nil {
		return 0, fmt.Errorf("%w: clearing previous chunks: %v", core.ErrIndexWrite, err)
	}

	records := make([]vectorstore.Record, len(chunks))
	for i, chunk := range chunks {
		records[i] = vectorstore.Record{
			ID:     core.ChunkID(doc.ID, i),
			Vector: vectors[i],
			Text:   chunk,
			Metadata: vectorstore.Metadata{
				DocumentID:  doc.ID,
				FileName:    doc.Name,
				Description: doc.Description,
				Index:       i,
			},
		}
	}

	if err := p.vectors.Write(ctx, col.Name, records); err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrIndexWrite, err)
	}

	return len(chunks), nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

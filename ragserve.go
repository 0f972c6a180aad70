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


package ragserve

import (
	"log/slog"
	"path/filepath"

	"github.com/poiesic/ragserve/ai"
	"github.com/poiesic/ragserve/ai/openai"
	"github.com/poiesic/ragserve/answer"
	"github.com/poiesic/ragserve/ingestion"
	"github.com/poiesic/ragserve/search"
	"github.com/poiesic/ragserve/service"
	"github.com/poiesic/ragserve/storage"
	"github.com/poiesic/ragserve/storage/badger"
	"github.com/poiesic/ragserve/vectorstore"
	"github.com/poiesic/ragserve/vectorstore/chromem"
)

// Database bundles the stores and AI provider of a ragserve deployment
// and offers factories for the higher level components.
type Database struct {
	backend     *badger.Backend
	documents   storage.DocumentRepository
	collections storage.CollectionRepository
	questions   storage.QuestionRepository
	vectors     *chromem.Store
	provider    ai.AIProvider
	logger      *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
}

// WithAIConfig overrides the default AI service configuration.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// NewDatabase opens the record store and the vector index under dataDir
// and connects the AI provider.
func NewDatabase(dataDir string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filepath.Join(dataDir, "db"), false)
	if err != nil {
		return nil, err
	}

	documents, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	collections, err := badger.NewCollectionRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	questions, err := badger.NewQuestionRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	vectors, err := chromem.Open(filepath.Join(dataDir, "vectors"), true)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		vectors.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:     backend,
		documents:   documents,
		collections: collections,
		questions:   questions,
		vectors:     vectors,
		provider:    provider,
		logger:      slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.vectors.Close(); err != nil {
		db.logger.Error("error closing vector index", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) DocumentRepository() storage.DocumentRepository {
	return db.documents
}

func (db *Database) CollectionRepository() storage.CollectionRepository {
	return db.collections
}

func (db *Database) QuestionRepository() storage.QuestionRepository {
	return db.questions
}

func (db *Database) VectorStore() vectorstore.Store {
	return db.vectors
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.documents, db.collections, db.vectors, db.provider.Embedder(), opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.vectors, db.provider.Embedder(), opts...)
}

// NewEngine returns an answering engine that records completed turns in
// the question repository.
func (db *Database) NewEngine(opts ...answer.EngineOption) (*answer.Engine, error) {
	opts = append([]answer.EngineOption{answer.WithQuestionRepository(db.questions)}, opts...)
	return answer.NewEngine(db.vectors, db.provider.Embedder(), db.provider.Generator(), opts...)
}

func (db *Database) NewCollectionService() (*service.CollectionService, error) {
	return service.NewCollectionService(db.collections, db.documents, db.questions, db.vectors)
}

func (db *Database) NewDocumentService(pipeline *ingestion.Pipeline) (*service.DocumentService, error) {
	return service.NewDocumentService(db.documents, db.collections, db.vectors, pipeline)
}

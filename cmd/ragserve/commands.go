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


package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/ragserve/ai"
	"github.com/poiesic/ragserve/ai/openai"
	"github.com/poiesic/ragserve/answer"
	"github.com/poiesic/ragserve/core"
	"github.com/poiesic/ragserve/ingestion"
	"github.com/poiesic/ragserve/reindex"
	"github.com/poiesic/ragserve/search"
	"github.com/poiesic/ragserve/service"
	"github.com/poiesic/ragserve/storage"
	"github.com/poiesic/ragserve/storage/badger"
	"github.com/poiesic/ragserve/vectorstore/chromem"
	"github.com/urfave/cli/v2"
)

// env bundles the opened stores a command works against.
type env struct {
	backend     *badger.Backend
	documents   storage.DocumentRepository
	collections storage.CollectionRepository
	questions   storage.QuestionRepository
	vectors     *chromem.Store
}

func openEnv(c *cli.Context) (*env, error) {
	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	documents, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to create document repository: %w", err)
	}
	collections, err := badger.NewCollectionRepository(backend)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to create collection repository: %w", err)
	}
	questions, err := badger.NewQuestionRepository(backend)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to create question repository: %w", err)
	}

	vectors, err := chromem.Open(c.String("vectors"), true)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to open vector index: %w", err)
	}

	return &env{
		backend:     backend,
		documents:   documents,
		collections: collections,
		questions:   questions,
		vectors:     vectors,
	}, nil
}

func (e *env) close() {
	e.vectors.Close()
	e.questions.Close()
	e.documents.Close()
	e.collections.Close()
	e.backend.Close()
}

func aiConfig(c *cli.Context) (*ai.Config, error) {
	cfg := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithChatModel(c.String("chat-model")),
		ai.WithAPIKey(c.String("api-key")),
		ai.WithTemperature(c.Float64("temperature")),
	)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return cfg, nil
}

func collectionCreateCommand(c *cli.Context) error {
	ctx := context.Background()

	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	svc, err := service.NewCollectionService(e.collections, e.documents, e.questions, e.vectors)
	if err != nil {
		return err
	}

	col, err := svc.Create(ctx, c.String("name"), c.String("description"))
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	fmt.Printf("Created collection %s (%s)\n", col.Name, col.ID)
	return nil
}

func collectionListCommand(c *cli.Context) error {
	ctx := context.Background()

	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	cols, err := e.collections.ListCollections(ctx)
	if err != nil {
		return err
	}

	if len(cols) == 0 {
		fmt.Println("No collections.")
		return nil
	}

	for _, col := range cols {
		fmt.Printf("%s  %-20s  %s\n", col.ID, col.Name, col.CreatedAt.Format(time.RFC3339))
		if col.Description != "" {
			fmt.Printf("    %s\n", col.Description)
		}
	}
	return nil
}

func collectionDeleteCommand(c *cli.Context) error {
	ctx := context.Background()

	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	svc, err := service.NewCollectionService(e.collections, e.documents, e.questions, e.vectors)
	if err != nil {
		return err
	}

	col, err := e.collections.GetCollectionByName(ctx, c.String("name"))
	if err != nil {
		return fmt.Errorf("failed to resolve collection: %w", err)
	}

	if err := svc.Delete(ctx, col.ID); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}

	fmt.Printf("Deleted collection %s\n", col.Name)
	return nil
}

func documentUploadCommand(c *cli.Context) error {
	ctx := context.Background()

	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	cfg, err := aiConfig(c)
	if err != nil {
		return err
	}
	embedder, err := openai.NewEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	chunker, err := ingestion.NewChunker(
		ingestion.WithChunkSize(c.Int("chunk-size")),
		ingestion.WithChunkOverlap(c.Int("chunk-overlap")),
	)
	if err != nil {
		return err
	}

	pipeline, err := ingestion.NewPipeline(e.documents, e.collections, e.vectors, embedder,
		ingestion.WithChunker(chunker))
	if err != nil {
		return err
	}
	defer pipeline.Release()

	col, err := e.collections.GetCollectionByName(ctx, c.String("collection"))
	if err != nil {
		return fmt.Errorf("failed to resolve collection: %w", err)
	}

	filePath := c.String("file")
	name := c.String("name")
	if name == "" {
		name = filepath.Base(filePath)
	}

	doc, err := e.documents.AddDocument(ctx, &core.Document{
		CollectionID: col.ID,
		Name:         name,
		FilePath:     filePath,
		Description:  c.String("description"),
	})
	if err != nil {
		return fmt.Errorf("failed to record document: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Ingesting %s into %s...\n", name, col.Name)
	if err := pipeline.Ingest(ctx, doc.ID); err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	done, err := e.documents.GetDocument(ctx, doc.ID)
	if err != nil {
		return err
	}
	fmt.Printf("Ingested %s (%s): %d chunks\n", done.Name, done.ID, done.Ingest.ChunkCount)
	return nil
}

func documentListCommand(c *cli.Context) error {
	ctx := context.Background()

	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	col, err := e.collections.GetCollectionByName(ctx, c.String("collection"))
	if err != nil {
		return fmt.Errorf("failed to resolve collection: %w", err)
	}

	docs, err := e.documents.ListDocumentsByCollection(ctx, col.ID)
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		fmt.Println("No documents.")
		return nil
	}

	for _, doc := range docs {
		fmt.Printf("%s  %-10s  %-30s  %d chunks\n", doc.ID, doc.Status, doc.Name, doc.Ingest.ChunkCount)
	}
	return nil
}

func documentResubmitCommand(c *cli.Context) error {
	ctx := context.Background()

	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	cfg, err := aiConfig(c)
	if err != nil {
		return err
	}
	embedder, err := openai.NewEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	pipeline, err := ingestion.NewPipeline(e.documents, e.collections, e.vectors, embedder)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	if err := pipeline.Ingest(ctx, c.String("id")); err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Reingested document %s\n", c.String("id"))
	return nil
}

func documentRecoverCommand(c *cli.Context) error {
	ctx := context.Background()

	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	doc, err := e.documents.GetDocument(ctx, c.String("id"))
	if err != nil {
		return err
	}
	if doc.Status != core.StatusProcessing {
		return fmt.Errorf("%w: cannot recover from %s", core.ErrInvalidTransition, doc.Status)
	}

	update := storage.StatusUpdate{EndedAt: time.Now().UTC()}
	if err := e.documents.UpdateStatus(ctx, doc.ID, core.StatusFailed, update); err != nil {
		return fmt.Errorf("failed to recover document: %w", err)
	}

	fmt.Printf("Recovered document %s, resubmit to reingest\n", doc.ID)
	return nil
}

func documentArchiveCommand(c *cli.Context) error {
	ctx := context.Background()

	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.documents.UpdateStatus(ctx, c.String("id"), core.StatusArchived, storage.StatusUpdate{}); err != nil {
		return fmt.Errorf("failed to archive document: %w", err)
	}

	fmt.Printf("Archived document %s\n", c.String("id"))
	return nil
}

func documentDeleteCommand(c *cli.Context) error {
	ctx := context.Background()

	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	doc, err := e.documents.GetDocument(ctx, c.String("id"))
	if err != nil {
		return err
	}
	col, err := e.collections.GetCollection(ctx, doc.CollectionID)
	if err != nil {
		return err
	}

	if err := e.vectors.DeleteByDocument(ctx, col.Name, doc.ID); err != nil {
		return fmt.Errorf("failed to remove passages: %w", err)
	}
	if err := e.documents.UpdateStatus(ctx, doc.ID, core.StatusDeleted, storage.StatusUpdate{}); err != nil {
		return fmt.Errorf("failed to mark document deleted: %w", err)
	}

	fmt.Printf("Deleted document %s\n", doc.ID)
	return nil
}

func askCommand(c *cli.Context) error {
	ctx := context.Background()

	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	cfg, err := aiConfig(c)
	if err != nil {
		return err
	}
	provider, err := openai.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	engine, err := answer.NewEngine(e.vectors, provider.Embedder(), provider.Generator(),
		answer.WithQuestionRepository(e.questions))
	if err != nil {
		return err
	}

	col, err := e.collections.GetCollectionByName(ctx, c.String("collection"))
	if err != nil {
		return fmt.Errorf("failed to resolve collection: %w", err)
	}

	opts := answer.AskOptions{
		SessionID: c.String("session"),
		Augment:   c.Bool("augment"),
		HTML:      c.Bool("html"),
	}

	if c.Bool("stream") {
		fragments, err := engine.AskStream(ctx, col, question, opts)
		if err != nil {
			return err
		}
		for frag := range fragments {
			if frag.Err != nil {
				fmt.Println()
				return frag.Err
			}
			fmt.Print(frag.Text)
		}
		fmt.Println()
		return nil
	}

	q, err := engine.Ask(ctx, col, question, opts)
	if err != nil {
		return err
	}

	fmt.Println(q.Answer)
	if len(q.References) > 0 {
		fmt.Printf("\nSources: %s\n", strings.Join(q.References, ", "))
	}
	return nil
}

func historyListCommand(c *cli.Context) error {
	ctx := context.Background()

	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	col, err := e.collections.GetCollectionByName(ctx, c.String("collection"))
	if err != nil {
		return fmt.Errorf("failed to resolve collection: %w", err)
	}

	questions, err := e.questions.ListQuestionsByCollection(ctx, col.ID)
	if err != nil {
		return err
	}

	if len(questions) == 0 {
		fmt.Println("No recorded questions.")
		return nil
	}

	for _, q := range questions {
		fmt.Printf("[%s] %s\n", q.CreatedAt.Format(time.RFC3339), q.QuestionText)
		fmt.Printf("    %s\n", q.Answer)
		if len(q.References) > 0 {
			fmt.Printf("    Sources: %s\n", strings.Join(q.References, ", "))
		}
	}
	return nil
}

func historyClearCommand(c *cli.Context) error {
	ctx := context.Background()

	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	if c.Bool("all") {
		if err := e.questions.ClearAll(ctx); err != nil {
			return err
		}
		fmt.Println("Cleared all question history.")
		return nil
	}

	name := c.String("collection")
	if name == "" {
		return fmt.Errorf("either --collection or --all is required")
	}

	col, err := e.collections.GetCollectionByName(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to resolve collection: %w", err)
	}
	if err := e.questions.ClearQuestions(ctx, col.ID); err != nil {
		return err
	}

	fmt.Printf("Cleared question history of %s.\n", col.Name)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	cfg, err := aiConfig(c)
	if err != nil {
		return err
	}
	embedder, err := openai.NewEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	searcher, err := search.NewSearcher(e.vectors, embedder,
		search.WithMinScore(float32(c.Float64("min-score"))))
	if err != nil {
		return err
	}

	col, err := e.collections.GetCollectionByName(ctx, c.String("collection"))
	if err != nil {
		return fmt.Errorf("failed to resolve collection: %w", err)
	}

	var monitor search.SearchMonitor
	if c.Bool("explain") {
		monitor = &printMonitor{out: os.Stderr}
	}

	hits, err := searcher.FindSimilarWithMonitor(ctx, col.Name, query, c.Int("max-hits"), monitor)
	if err != nil {
		return err
	}

	if len(hits) == 0 {
		fmt.Println("No matching passages.")
		return nil
	}

	for i, hit := range hits {
		marker := ""
		if hit.Verbatim {
			marker = " [verbatim]"
		}
		fmt.Printf("%2d. %.3f%s  %s\n", i+1, hit.Score, marker, hit.Source)
		fmt.Printf("    %s\n", hit.Text)
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	cfg, err := aiConfig(c)
	if err != nil {
		return err
	}
	embedder, err := openai.NewEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	pipeline, err := ingestion.NewPipeline(e.documents, e.collections, e.vectors, embedder)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	reindexConfig := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if reindexConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reindexConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reindexConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reindexer, err := reindex.NewReindexer(e.documents, e.collections, pipeline, reindexConfig, os.Stderr)
	if err != nil {
		return err
	}

	if c.Bool("all") {
		return reindexer.RunAll(ctx)
	}

	name := c.String("collection")
	if name == "" {
		return fmt.Errorf("either --collection or --all is required")
	}
	return reindexer.Run(ctx, name)
}

// printMonitor writes each search stage to the configured writer.
type printMonitor struct {
	out *os.File
}

func (m *printMonitor) Start(collection, query string) {
	fmt.Fprintf(m.out, "Searching %s for %q\n", collection, query)
}

func (m *printMonitor) AfterSemanticSearch(ids []string) {
	fmt.Fprintf(m.out, "Semantic search returned %d passages\n", len(ids))
}

func (m *printMonitor) SemanticHit(hit *search.Hit) {
	fmt.Fprintf(m.out, "  semantic  %.3f  %s\n", hit.Score, hit.ID)
}

func (m *printMonitor) VerbatimHit(hit *search.Hit) {
	fmt.Fprintf(m.out, "  verbatim  %.3f  %s\n", hit.Score, hit.ID)
}

func (m *printMonitor) Finish(hits []*search.Hit) {
	fmt.Fprintf(m.out, "Returning %d passages\n", len(hits))
}

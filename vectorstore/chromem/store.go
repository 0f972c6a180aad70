package chromem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	chromemgo "github.com/philippgille/chromem-go"
	"github.com/poiesic/ragserve/vectorstore"
)

// metadata keys used inside chromem documents
const (
	metaDocumentID  = "document_id"
	metaFileName    = "file_name"
	metaDescription = "description"
	metaChunkIndex  = "chunk_index"
)

// Store implements vectorstore.Store using the embedded chromem-go
// database. Each namespace maps to one chromem collection.
type Store struct {
	db     *chromemgo.DB
	logger *slog.Logger
}

var _ vectorstore.Store = (*Store)(nil)

// Open opens a persistent store rooted at path. Pass compress to gzip
// the on-disk records.
func Open(path string, compress bool) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, err
	}

	db, err := chromemgo.NewPersistentDB(path, compress)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:     db,
		logger: slog.Default().With("component", "chromem-store"),
	}, nil
}

// OpenInMemory opens a store with no persistence. Used in tests and for
// throwaway indexes.
func OpenInMemory() *Store {
	return &Store{
		db:     chromemgo.NewDB(),
		logger: slog.Default().With("component", "chromem-store"),
	}
}

// embeddingFunc is installed on every collection. All embeddings are
// precomputed by the ingestion pipeline and the retriever, so chromem
// asking for one means a caller forgot to embed first.
func embeddingFunc(context.Context, string) ([]float32, error) {
	return nil, errors.New("embeddings must be precomputed")
}

// CreateNamespace creates an empty namespace.
func (s *Store) CreateNamespace(ctx context.Context, name string) error {
	if name == "" {
		return vectorstore.ErrInvalidNamespace
	}

	if s.db.GetCollection(name, embeddingFunc) != nil {
		return fmt.Errorf("%w: %s", vectorstore.ErrNamespaceExists, name)
	}

	if _, err := s.db.CreateCollection(name, nil, embeddingFunc); err != nil {
		return fmt.Errorf("creating namespace %s: %w", name, err)
	}

	s.logger.Debug("created namespace", "namespace", name)
	return nil
}

// Write stores the records in the namespace.
func (s *Store) Write(ctx context.Context, namespace string, records []vectorstore.Record) error {
	collection := s.db.GetCollection(namespace, embeddingFunc)
	if collection == nil {
		return fmt.Errorf("%w: %s", vectorstore.ErrNamespaceNotFound, namespace)
	}

	if len(records) == 0 {
		return nil
	}

	docs := make([]chromemgo.Document, len(records))
	for i, record := range records {
		if len(record.Vector) == 0 {
			return fmt.Errorf("%w: record %s", vectorstore.ErrEmptyVector, record.ID)
		}
		docs[i] = chromemgo.Document{
			ID:        record.ID,
			Content:   record.Text,
			Embedding: record.Vector,
			Metadata: map[string]string{
				metaDocumentID:  record.Metadata.DocumentID,
				metaFileName:    record.Metadata.FileName,
				metaDescription: record.Metadata.Description,
				metaChunkIndex:  strconv.Itoa(record.Metadata.Index),
			},
		}
	}

	// Sequential add keeps the write all-or-nothing up to the point of
	// failure; a partial write is surfaced to the caller as an error, not
	// silently hidden.
	if err := collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("writing %d records to %s: %w", len(records), namespace, err)
	}

	s.logger.Debug("wrote records", "namespace", namespace, "count", len(records))
	return nil
}

// Query returns up to k passages nearest to the query vector.
func (s *Store) Query(ctx context.Context, namespace string, vector []float32, k int) ([]vectorstore.Result, error) {
	if len(vector) == 0 {
		return nil, vectorstore.ErrEmptyVector
	}

	collection := s.db.GetCollection(namespace, embeddingFunc)
	if collection == nil {
		return nil, fmt.Errorf("%w: %s", vectorstore.ErrNamespaceNotFound, namespace)
	}

	// chromem requires k <= stored document count.
	count := collection.Count()
	if count == 0 {
		return []vectorstore.Result{}, nil
	}
	if k > count {
		k = count
	}

	results, err := collection.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", namespace, err)
	}

	out := make([]vectorstore.Result, len(results))
	for i, r := range results {
		out[i] = vectorstore.Result{
			ID:       r.ID,
			Text:     r.Content,
			Score:    r.Similarity,
			Metadata: metadataFromMap(r.Metadata),
		}
	}
	return out, nil
}

// Delete removes the identified passages from the namespace.
func (s *Store) Delete(ctx context.Context, namespace string, ids ...string) error {
	collection := s.db.GetCollection(namespace, embeddingFunc)
	if collection == nil {
		return fmt.Errorf("%w: %s", vectorstore.ErrNamespaceNotFound, namespace)
	}

	if len(ids) == 0 {
		return nil
	}

	if err := collection.Delete(ctx, nil, nil, ids...); err != nil {
		return fmt.Errorf("deleting %d records from %s: %w", len(ids), namespace, err)
	}
	return nil
}

// DeleteByDocument removes every passage belonging to the document.
func (s *Store) DeleteByDocument(ctx context.Context, namespace, documentID string) error {
	collection := s.db.GetCollection(namespace, embeddingFunc)
	if collection == nil {
		return fmt.Errorf("%w: %s", vectorstore.ErrNamespaceNotFound, namespace)
	}

	if collection.Count() == 0 {
		return nil
	}

	where := map[string]string{metaDocumentID: documentID}
	if err := collection.Delete(ctx, where, nil); err != nil {
		return fmt.Errorf("deleting document %s from %s: %w", documentID, namespace, err)
	}

	s.logger.Debug("deleted document chunks", "namespace", namespace, "document", documentID)
	return nil
}

// DeleteNamespace removes the namespace and everything in it.
func (s *Store) DeleteNamespace(ctx context.Context, name string) error {
	if s.db.GetCollection(name, embeddingFunc) == nil {
		return fmt.Errorf("%w: %s", vectorstore.ErrNamespaceNotFound, name)
	}

	if err := s.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("deleting namespace %s: %w", name, err)
	}

	s.logger.Debug("deleted namespace", "namespace", name)
	return nil
}

// ListNamespaces returns the names of all namespaces.
func (s *Store) ListNamespaces(ctx context.Context) ([]string, error) {
	collections := s.db.ListCollections()
	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	return names, nil
}

// Close releases resources held by the store.
// chromem-go persists on write, so there is nothing to flush here.
func (s *Store) Close() error {
	return nil
}

func metadataFromMap(m map[string]string) vectorstore.Metadata {
	index, _ := strconv.Atoi(m[metaChunkIndex])
	return vectorstore.Metadata{
		DocumentID:  m[metaDocumentID],
		FileName:    m[metaFileName],
		Description: m[metaDescription],
		Index:       index,
	}
}

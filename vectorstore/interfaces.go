package vectorstore

import "context"

// Metadata is the tagged metadata carried by every stored passage.
// A typed record is used instead of a free-form map so callers never do
// stringly-typed key lookups.
type Metadata struct {
	// DocumentID is the owning document identifier.
	DocumentID string
	// FileName is the original name of the source file.
	FileName string
	// Description is the free-text description supplied at upload.
	Description string
	// Index is the zero-based position of the passage within its document.
	Index int
}

// Record is one passage to be written into a namespace.
type Record struct {
	// ID is the composite passage identifier, unique within a namespace.
	ID string
	// Vector is the passage embedding. Must be non-empty.
	Vector []float32
	// Text is the passage content.
	Text string
	// Metadata describes the passage's provenance.
	Metadata Metadata
}

// Result is one passage returned by a nearest-neighbor query,
// ordered by descending similarity.
type Result struct {
	ID       string
	Text     string
	Score    float32
	Metadata Metadata
}

// Store persists passage vectors plus metadata, namespaced by collection,
// and supports nearest-neighbor queries. Implementations must be
// thread-safe for concurrent use.
//
// Namespace-not-found and namespace-already-exists are distinct error
// conditions (ErrNamespaceNotFound, ErrNamespaceExists) that callers
// must handle differently.
type Store interface {
	// CreateNamespace creates an empty namespace.
	// Returns ErrNamespaceExists if the namespace already exists.
	CreateNamespace(ctx context.Context, name string) error

	// Write stores the records in the namespace. Records with an existing
	// ID are overwritten.
	// Returns ErrNamespaceNotFound if the namespace does not exist.
	Write(ctx context.Context, namespace string, records []Record) error

	// Query returns up to k passages nearest to the query vector,
	// ordered by descending similarity.
	// Returns ErrNamespaceNotFound if the namespace does not exist.
	Query(ctx context.Context, namespace string, vector []float32, k int) ([]Result, error)

	// Delete removes the identified passages from the namespace.
	// Returns ErrNamespaceNotFound if the namespace does not exist.
	Delete(ctx context.Context, namespace string, ids ...string) error

	// DeleteByDocument removes every passage belonging to the document.
	// Used when a document is deleted or re-ingested, so stale chunks are
	// never silently orphaned.
	// Returns ErrNamespaceNotFound if the namespace does not exist.
	DeleteByDocument(ctx context.Context, namespace, documentID string) error

	// DeleteNamespace removes the namespace and everything in it.
	// Returns ErrNamespaceNotFound if the namespace does not exist.
	DeleteNamespace(ctx context.Context, name string) error

	// ListNamespaces returns the names of all namespaces.
	ListNamespaces(ctx context.Context) ([]string, error)

	// Close releases resources held by the store.
	Close() error
}

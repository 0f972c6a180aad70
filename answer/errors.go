package answer

import "errors"

var (
	// ErrGeneratorRequired is returned when a generator is not provided.
	ErrGeneratorRequired = errors.New("generator required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrVectorStoreRequired is returned when a vector store is not provided.
	ErrVectorStoreRequired = errors.New("vector store required")

	// ErrScorerRequired is returned when a relevance scorer is not provided.
	ErrScorerRequired = errors.New("scorer required")

	// ErrCollectionRequired is returned when a question is asked without
	// a collection.
	ErrCollectionRequired = errors.New("collection required")
)

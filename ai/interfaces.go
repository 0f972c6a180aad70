package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces text from a chat-completion model.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Complete runs a blocking chat completion and returns the full answer.
	Complete(ctx context.Context, system string, messages []Message) (string, error)

	// Stream runs a streaming chat completion. The returned channel yields
	// text fragments in generation order and is closed when the stream
	// ends. The sequence is finite and not restartable. A mid-stream
	// failure is reported as one final Fragment with Err set, after which
	// the channel closes. Cancelling ctx stops fragment production.
	Stream(ctx context.Context, system string, messages []Message) (<-chan Fragment, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and Generator instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Generator returns the chat-completion service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}

package mock

import (
	"context"
	"hash/fnv"
	"math"
)

const mockEmbeddingDim = 384

// MockEmbedder is a test double for ai.Embedder. Without injected
// behavior it hashes the input text into a repeatable unit vector, so
// equal texts always land on the same point and similarity queries
// against a store behave consistently across runs.
type MockEmbedder struct {
	// EmbedTextFunc overrides EmbedText when set.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc overrides EmbedTexts when set.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)
}

// NewMockEmbedder creates a mock embedder with the hash-based default.
// Note: Returns concrete type to allow test assertions.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText returns the repeatable vector for text, or whatever
// EmbedTextFunc decides.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return hashVector(text), nil
}

// EmbedTexts embeds each text independently, so a batch agrees with
// the single-text path.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = hashVector(text)
	}
	return vectors, nil
}

// hashVector expands an FNV hash of the text into a unit vector of the
// mock dimension. The same text always produces the same vector.
func hashVector(text string) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	state := h.Sum32()

	vector := make([]float32, mockEmbeddingDim)
	var sumSquares float64
	for i := range vector {
		state = state*1664525 + 1013904223 // LCG step
		vector[i] = float32(state%1000) / 1000.0
		sumSquares += float64(vector[i]) * float64(vector[i])
	}

	if norm := math.Sqrt(sumSquares); norm > 0 {
		for i := range vector {
			vector[i] = float32(float64(vector[i]) / norm)
		}
	}
	return vector
}

package mock

import (
	"context"
	"strings"

	"github.com/poiesic/ragserve/ai"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// CompleteFunc is called by Complete if set.
	// If nil, returns a canned deterministic answer.
	CompleteFunc func(ctx context.Context, system string, messages []ai.Message) (string, error)

	// StreamFunc is called by Stream if set.
	// If nil, streams the canned answer one word per fragment.
	StreamFunc func(ctx context.Context, system string, messages []ai.Message) (<-chan ai.Fragment, error)

	// Answer is the canned response used by the default behavior.
	Answer string

	callCount int
}

// NewMockGenerator creates a mock generator with default deterministic behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{Answer: "mock answer based on the supplied context"}
}

// Complete returns the canned answer or delegates to CompleteFunc.
func (m *MockGenerator) Complete(ctx context.Context, system string, messages []ai.Message) (string, error) {
	m.callCount++

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, system, messages)
	}

	return m.Answer, nil
}

// Stream yields the canned answer one word per fragment, respecting ctx
// cancellation between fragments.
func (m *MockGenerator) Stream(ctx context.Context, system string, messages []ai.Message) (<-chan ai.Fragment, error) {
	m.callCount++

	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, system, messages)
	}

	words := strings.Fields(m.Answer)
	out := make(chan ai.Fragment)
	go func() {
		defer close(out)
		for i, word := range words {
			text := word
			if i < len(words)-1 {
				text += " "
			}
			select {
			case out <- ai.Fragment{Text: text}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// CallCount returns the number of times any method was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.CompleteFunc = nil
	m.StreamFunc = nil
}

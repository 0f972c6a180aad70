package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentStatusTransitions(t *testing.T) {
	tests := []struct {
		name string
		from DocumentStatus
		to   DocumentStatus
		want bool
	}{
		{"pending to processing", StatusPending, StatusProcessing, true},
		{"processing to completed", StatusProcessing, StatusCompleted, true},
		{"processing to failed", StatusProcessing, StatusFailed, true},
		{"resubmission after failure", StatusFailed, StatusProcessing, true},
		{"reingest after completion", StatusCompleted, StatusProcessing, true},
		{"archive completed", StatusCompleted, StatusArchived, true},
		{"delete archived", StatusArchived, StatusDeleted, true},
		{"pending straight to completed", StatusPending, StatusCompleted, false},
		{"processing re-entered while processing", StatusProcessing, StatusProcessing, false},
		{"deleted is final", StatusDeleted, StatusProcessing, false},
		{"failed cannot complete directly", StatusFailed, StatusCompleted, false},
		{"unknown status", DocumentStatus("bogus"), StatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestDocumentStatusValid(t *testing.T) {
	for _, s := range []DocumentStatus{
		StatusPending, StatusProcessing, StatusCompleted,
		StatusFailed, StatusDeleted, StatusArchived,
	} {
		assert.True(t, s.Valid(), "status %q", s)
	}
	assert.False(t, DocumentStatus("").Valid())
	assert.False(t, DocumentStatus("archived ").Valid())
}

func TestChunkID(t *testing.T) {
	assert.Equal(t, "doc-1_0", ChunkID("doc-1", 0))
	assert.Equal(t, "doc-1_12", ChunkID("doc-1", 12))

	// Identifiers must be stable and unique within a document.
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := ChunkID("d", i)
		assert.False(t, seen[id], "duplicate chunk id %s", id)
		seen[id] = true
	}
}

func TestNormalizeCollectionName(t *testing.T) {
	assert.Equal(t, "technical manuals", NormalizeCollectionName("  Technical Manuals "))
	assert.Equal(t, "abc", NormalizeCollectionName("ABC"))
	assert.Equal(t, "", NormalizeCollectionName("   "))
}

func TestNewID(t *testing.T) {
	a := NewID()
	b := NewID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

package core

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID generates a unique identifier for domain entities.
func NewID() string {
	return uuid.NewString()
}

// DocumentStatus tracks a document through its ingestion lifecycle.
type DocumentStatus string

const (
	// StatusPending is the initial status of an uploaded document.
	StatusPending DocumentStatus = "pending"
	// StatusProcessing means an ingestion run is in flight.
	StatusProcessing DocumentStatus = "processing"
	// StatusCompleted means all chunks are embedded and indexed.
	StatusCompleted DocumentStatus = "completed"
	// StatusFailed means ingestion aborted; the document must be resubmitted.
	StatusFailed DocumentStatus = "failed"
	// StatusDeleted means the document and its chunks were removed.
	StatusDeleted DocumentStatus = "deleted"
	// StatusArchived means the document is hidden but its chunks remain indexed.
	StatusArchived DocumentStatus = "archived"
)

// CanTransition reports whether moving from s to next is a legal
// lifecycle transition. Re-entering processing from completed or failed
// models an explicit resubmission; deleted is final.
func (s DocumentStatus) CanTransition(next DocumentStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing || next == StatusDeleted
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	case StatusCompleted:
		return next == StatusProcessing || next == StatusArchived || next == StatusDeleted
	case StatusFailed:
		return next == StatusProcessing || next == StatusDeleted
	case StatusArchived:
		return next == StatusDeleted
	default:
		return false
	}
}

// Valid reports whether s is one of the known statuses.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusDeleted, StatusArchived:
		return true
	}
	return false
}

// IngestMetadata records the outcome of a completed ingestion run.
// It replaces the free-form metadata map the chunking parameters used
// to be buried in, so callers never do stringly-typed key lookups.
type IngestMetadata struct {
	ChunkCount   int
	ChunkSize    int
	ChunkOverlap int
	Normalized   bool
}

// Document is an uploaded source file tracked through ingestion.
type Document struct {
	ID                  string
	CollectionID        string `badgerholdIndex:"CollectionID"`
	Name                string // original file name, carried into chunk metadata
	FilePath            string
	Description         string
	Status              DocumentStatus
	Ingest              IngestMetadata
	ProcessingStartedAt time.Time
	ProcessingEndedAt   time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Collection is a namespace isolating the passages and questions of one
// logical knowledge base. Names are case-normalized and unique.
type Collection struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// NormalizeCollectionName puts a collection name into its canonical
// lowercase form used for uniqueness checks and vector namespaces.
func NormalizeCollectionName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Question is a persisted question/answer turn belonging to a collection.
// Streaming turns are persisted only after the stream completes.
type Question struct {
	ID           string
	CollectionID string `badgerholdIndex:"CollectionID"`
	QuestionText string
	Answer       string
	References   []string // deduplicated source names backing the answer
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ChunkID returns the composite identifier of a document passage.
// Chunk identifiers are stable for the lifetime of a document.
func ChunkID(documentID string, index int) string {
	return documentID + "_" + strconv.Itoa(index)
}

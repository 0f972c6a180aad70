// Package reindex provides functionality for re-ingesting existing documents
// after an embedding model or chunking configuration change.
//
// This package iterates the documents of one or all collections, re-runs the
// ingestion pipeline for each, and supports progress tracking and retry logic
// with exponential backoff. Only documents in a state that permits another
// ingestion run are picked up; archived and deleted documents are skipped.
package reindex

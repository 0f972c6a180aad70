// Package ingestion turns uploaded documents into indexed passages.
//
// The Pipeline type manages the ingestion workflow for documents:
//   - Extracting text from the source file
//   - Normalizing and chunking the text
//   - Generating embeddings in one batched call
//   - Writing passages into the collection's vector namespace
//
// Document status moves pending -> processing -> completed or failed.
// Async runs are scheduled on a worker pool with at most one in-flight
// run per document; their errors are recorded on the document and
// logged, never returned to the caller.
package ingestion

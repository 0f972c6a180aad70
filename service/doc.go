// Package service wires repositories, the vector store and the
// ingestion pipeline into the user-facing collection and document
// operations: create/list/delete collections with full cascade,
// upload documents with background ingestion, resubmit, archive,
// delete, and recovery of documents left in processing by a crashed
// run.
package service

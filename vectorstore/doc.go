// Package vectorstore defines the namespaced vector index used for
// passage retrieval.
//
// The Store interface covers the full collaborator surface: namespace
// lifecycle, batched writes of embedded passages, nearest-neighbor
// queries, and deletion by passage ID or by owning document.
//
// The production implementation lives in vectorstore/chromem, backed by
// the embedded chromem-go database (in-memory or persisted), with one
// chromem collection per namespace.
package vectorstore

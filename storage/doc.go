// Package storage defines persistence interfaces for documents,
// collections, and question history.
//
// Repositories are small, entity-scoped interfaces so services depend
// only on the operations they use. The production implementation lives
// in storage/badger, backed by BadgerDB through badgerhold.
package storage

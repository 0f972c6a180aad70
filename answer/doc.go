// Package answer implements question answering over indexed
// collections.
//
// The Engine type orchestrates one turn: conversation memory read,
// optional query augmentation, per-variant retrieval with
// deduplication, conditional re-ranking, context assembly and
// generation in blocking or streaming mode. Completed turns are
// persisted as Question records and appended to session memory;
// streaming turns only after the stream finishes cleanly.
//
// Stage failures after input validation degrade to a fixed fallback
// answer rather than surfacing errors to the conversation.
package answer

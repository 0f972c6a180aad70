package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/ragserve/ai"
	"github.com/poiesic/ragserve/vectorstore"
)

// DefaultMinScore is the similarity floor below which semantic hits
// are dropped before scoring.
const DefaultMinScore float32 = 0.60

// Hit is a scored passage returned by a search.
type Hit struct {
	ID       string
	Text     string
	Source   string
	Score    float32
	Verbatim bool
}

// Searcher provides semantic search with a verbatim keyword boost over
// the passages of a collection.
type Searcher struct {
	vectors  vectorstore.Store
	embedder ai.Embedder
	minScore float32
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMinScore sets the similarity floor for semantic hits.
func WithMinScore(min float32) Option {
	return func(s *Searcher) error {
		if min < 0 || min > 1 {
			return fmt.Errorf("min score must be in [0,1], got %v", min)
		}
		s.minScore = min
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(vectors vectorstore.Store, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if vectors == nil {
		return nil, ErrVectorStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		vectors:  vectors,
		embedder: embedder,
		minScore: DefaultMinScore,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindSimilar searches the named collection for passages similar to the query.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilar(ctx context.Context, collection, query string, maxHits int) ([]*Hit, error) {
	return s.FindSimilarWithMonitor(ctx, collection, query, maxHits, nil)
}

// FindSimilarWithMonitor searches with monitoring.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) FindSimilarWithMonitor(ctx context.Context, collection, query string, maxHits int, monitor SearchMonitor) ([]*Hit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if maxHits <= 0 {
		maxHits = 10
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(collection, query)

	// 1. Embed the query.
	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	// 2. Semantic search. Overfetch so the verbatim boost can promote
	// passages that sit just below the cut.
	matches, err := s.vectors.Query(ctx, collection, embedding, maxHits*2)
	if err != nil {
		s.logger.Error("error querying for similar passages", "collection", collection, "err", err)
		return nil, err
	}

	retrieved := make([]string, 0, len(matches))
	for _, m := range matches {
		retrieved = append(retrieved, m.ID)
	}
	monitor.AfterSemanticSearch(retrieved)

	// 3. Score. Plain similarity, plus a flat boost when every query
	// word appears verbatim in the passage.
	hits := make([]*Hit, 0, len(matches))
	for _, m := range matches {
		if m.Score < s.minScore {
			continue
		}

		hit := &Hit{
			ID:     m.ID,
			Text:   m.Text,
			Source: m.Metadata.FileName,
			Score:  m.Score,
		}
		if containsAllQueryWords(m.Text, query) {
			hit.Score += 0.3
			hit.Verbatim = true
			monitor.VerbatimHit(hit)
		} else {
			monitor.SemanticHit(hit)
		}
		hits = append(hits, hit)
	}

	// 4. Sort by score descending and truncate.
	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > maxHits {
		hits = hits[:maxHits]
	}
	monitor.Finish(hits)

	return hits, nil
}

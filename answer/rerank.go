// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package answer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/poiesic/ragserve/core"
)

// DefaultTopK is the number of passages kept after re-ranking.
const DefaultTopK = 3

// Scorer assigns a relevance score to each (question, passage) pair in
// one batched call. Higher is more relevant. A cross-encoder endpoint
// is the intended production implementation.
type Scorer interface {
	Score(ctx context.Context, question string, passages []string) ([]float32, error)
}

// Reranker reorders retrieved passages by scored relevance to the
// question and keeps the top ones.
type Reranker struct {
	scorer Scorer
	topK   int
}

// RerankerOption configures a Reranker.
type RerankerOption func(*Reranker)

// WithTopK sets the number of passages kept.
func WithTopK(topK int) RerankerOption {
	return func(r *Reranker) {
		if topK > 0 {
			r.topK = topK
		}
	}
}

// NewReranker creates a reranker. A nil scorer gets the lexical
// term-overlap scorer.
func NewReranker(scorer Scorer, opts ...RerankerOption) (*Reranker, error) {
	if scorer == nil {
		scorer = NewLexicalScorer()
	}
	r := &Reranker{scorer: scorer, topK: DefaultTopK}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Rank scores every passage against the question in one batched call
// and returns the top passages by descending score. The sort is stable:
// equal scores keep retrieval order. Ranking an empty input is a caller
// bug and returns ErrRanking.
func (r *Reranker) Rank(ctx context.Context, question string, passages []Passage) ([]Passage, error) {
	if len(passages) == 0 {
		return nil, fmt.Errorf("%w: no passages to rank", core.ErrRanking)
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}

	scores, err := r.scorer.Score(ctx, question, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrRanking, err)
	}
	if len(scores) != len(passages) {
		return nil, fmt.Errorf("%w: expected %d scores, received %d", core.ErrRanking, len(passages), len(scores))
	}

	indices := make([]int, len(passages))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(i, j int) bool {
		return scores[indices[i]] > scores[indices[j]]
	})

	limit := r.topK
	if limit > len(indices) {
		limit = len(indices)
	}
	ranked := make([]Passage, limit)
	for i := 0; i < limit; i++ {
		ranked[i] = passages[indices[i]]
	}
	return ranked, nil
}

// LexicalScorer scores passages by the fraction of question terms they
// contain. It stands in for a cross-encoder when no scoring model is
// configured and keeps ranking deterministic in tests.
type LexicalScorer struct{}

var _ Scorer = (*LexicalScorer)(nil)

// NewLexicalScorer creates the term-overlap scorer.
func NewLexicalScorer() *LexicalScorer {
	return &LexicalScorer{}
}

// Score returns, for each passage, the ratio of distinct question terms
// present in the passage.
func (s *LexicalScorer) Score(ctx context.Context, question string, passages []string) ([]float32, error) {
	queryTerms := tokenize(question)
	scores := make([]float32, len(passages))
	if len(queryTerms) == 0 {
		return scores, nil
	}

	for i, passage := range passages {
		passageTerms := make(map[string]struct{})
		for _, term := range tokenize(passage) {
			passageTerms[term] = struct{}{}
		}

		matched := 0
		counted := make(map[string]struct{})
		for _, term := range queryTerms {
			if _, in := passageTerms[term]; !in {
				continue
			}
			if _, dup := counted[term]; dup {
				continue
			}
			counted[term] = struct{}{}
			matched++
		}
		scores[i] = float32(matched) / float32(len(queryTerms))
	}
	return scores, nil
}

// tokenize lowercases text and splits it into terms of three or more
// alphanumeric runes.
func tokenize(text string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_'
		return !alnum
	})
	terms := tokens[:0]
	for _, token := range tokens {
		if len(token) > 2 {
			terms = append(terms, token)
		}
	}
	return terms
}

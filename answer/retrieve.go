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
	"log/slog"
	"sync"

	"github.com/poiesic/ragserve/ai"
	"github.com/poiesic/ragserve/core"
	"github.com/poiesic/ragserve/vectorstore"
)

// NotFoundPassage is the sentinel passage text returned when no variant
// retrieves anything, so the generator always has one grounding
// statement to refuse against.
const NotFoundPassage = "no relevant passage found"

// DefaultRetrievalK is the number of passages fetched per query variant.
const DefaultRetrievalK = 5

// Passage is one retrieved grounding passage.
type Passage struct {
	// ID is the passage identifier within the collection namespace.
	ID string
	// Text is the passage content.
	Text string
	// Source is the originating file name, empty for the sentinel.
	Source string
	// Score is the vector similarity from retrieval.
	Score float32
}

// Sentinel reports whether p is the not-found sentinel.
func (p Passage) Sentinel() bool {
	return p.ID == "" && p.Text == NotFoundPassage
}

// Retriever runs one nearest-neighbor query per variant and merges the
// results into a deduplicated passage list.
type Retriever struct {
	vectors  vectorstore.Store
	embedder ai.Embedder
	k        int
	logger   *slog.Logger
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithRetrievalK sets the passages fetched per query variant.
func WithRetrievalK(k int) RetrieverOption {
	return func(r *Retriever) {
		if k > 0 {
			r.k = k
		}
	}
}

// NewRetriever creates a retriever.
func NewRetriever(vectors vectorstore.Store, embedder ai.Embedder, opts ...RetrieverOption) (*Retriever, error) {
	if vectors == nil {
		return nil, ErrVectorStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	r := &Retriever{
		vectors:  vectors,
		embedder: embedder,
		k:        DefaultRetrievalK,
		logger:   slog.Default().With("component", "retriever"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Retrieve queries the namespace once per variant, concurrently, and
// merges results deduplicated by passage ID. Order is deterministic:
// variants in input order, and within a variant descending similarity,
// keeping the position of the first variant that produced a passage.
// When every variant comes back empty the sentinel passage is returned
// alone.
func (r *Retriever) Retrieve(ctx context.Context, namespace string, queries []string) ([]Passage, error) {
	if len(queries) == 0 {
		return nil, fmt.Errorf("%w: no queries", core.ErrRetrieval)
	}

	perVariant := make([][]vectorstore.Result, len(queries))
	errs := make([]error, len(queries))

	var wg sync.WaitGroup
	for i, query := range queries {
		wg.Add(1)
		go func(i int, query string) {
			defer wg.Done()
			vector, err := r.embedder.EmbedText(ctx, query)
			if err != nil {
				errs[i] = fmt.Errorf("embedding variant %d: %w", i, err)
				return
			}
			results, err := r.vectors.Query(ctx, namespace, vector, r.k)
			if err != nil {
				errs[i] = fmt.Errorf("querying variant %d: %w", i, err)
				return
			}
			perVariant[i] = results
		}(i, query)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrRetrieval, err)
		}
	}

	seen := make(map[string]struct{})
	var passages []Passage
	for _, results := range perVariant {
		for _, res := range results {
			if _, dup := seen[res.ID]; dup {
				continue
			}
			seen[res.ID] = struct{}{}
			passages = append(passages, Passage{
				ID:     res.ID,
				Text:   res.Text,
				Source: res.Metadata.FileName,
				Score:  res.Score,
			})
		}
	}

	if len(passages) == 0 {
		r.logger.Debug("no passages retrieved", "namespace", namespace)
		return []Passage{{Text: NotFoundPassage}}, nil
	}
	return passages, nil
}

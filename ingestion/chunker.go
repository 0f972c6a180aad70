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

package ingestion

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultChunkSize is the maximum chunk length in runes.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is the number of runes carried over from the
	// end of the previous chunk.
	DefaultChunkOverlap = 100
)

// DefaultSeparators are tried in order when a piece of text exceeds the
// chunk budget: paragraph break, line break, sentence end, word break.
var DefaultSeparators = []string{"\n\n", "\n", ".", " "}

// Chunker splits normalized text into overlapping chunks suitable for
// embedding. Splits happen at the coarsest separator that fits, and
// each chunk after the first begins with the tail of its predecessor.
//
// The split is lossless: the first chunk plus every later chunk minus
// its overlap prefix reconstructs the input exactly.
type Chunker struct {
	size       int
	overlap    int
	separators []string
}

// ChunkerOption configures a Chunker.
type ChunkerOption func(*Chunker) error

// WithChunkSize sets the maximum chunk length in runes.
func WithChunkSize(size int) ChunkerOption {
	return func(c *Chunker) error {
		if size < 1 {
			return fmt.Errorf("chunk size must be positive, got %d", size)
		}
		c.size = size
		return nil
	}
}

// WithChunkOverlap sets the overlap carried between consecutive chunks.
func WithChunkOverlap(overlap int) ChunkerOption {
	return func(c *Chunker) error {
		if overlap < 0 {
			return fmt.Errorf("chunk overlap must not be negative, got %d", overlap)
		}
		c.overlap = overlap
		return nil
	}
}

// WithSeparators overrides the separator hierarchy.
func WithSeparators(separators []string) ChunkerOption {
	return func(c *Chunker) error {
		for _, sep := range separators {
			if sep == "" {
				return fmt.Errorf("separators must not be empty strings")
			}
		}
		c.separators = separators
		return nil
	}
}

// NewChunker creates a chunker with the default size, overlap and
// separators, then applies options.
func NewChunker(opts ...ChunkerOption) (*Chunker, error) {
	c := &Chunker{
		size:       DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.overlap >= c.size {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", c.overlap, c.size)
	}
	return c, nil
}

// Size returns the configured maximum chunk length in runes.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured chunk overlap in runes.
func (c *Chunker) Overlap() int { return c.overlap }

// Chunk splits text into chunks of at most Size runes. Returns nil for
// empty input.
func (c *Chunker) Chunk(text string) []string {
	if text == "" {
		return nil
	}

	// Chunk bodies are capped at size-overlap so that prepending the
	// carry never pushes a chunk over the size budget.
	budget := c.size - c.overlap
	segments := splitRecursive(text, c.separators, budget)

	var chunks []string
	var body strings.Builder
	bodyLen := 0

	flush := func() {
		if bodyLen == 0 {
			return
		}
		chunk := body.String()
		if len(chunks) > 0 && c.overlap > 0 {
			chunk = carryOf([]rune(chunks[len(chunks)-1]), c.overlap) + chunk
		}
		chunks = append(chunks, chunk)
		body.Reset()
		bodyLen = 0
	}

	for _, seg := range segments {
		segLen := utf8.RuneCountInString(seg)
		if bodyLen+segLen > budget {
			flush()
		}
		body.WriteString(seg)
		bodyLen += segLen
	}
	flush()

	return chunks
}

// carryOf returns the last n runes of the previous chunk, or the whole
// chunk when it is shorter than the overlap.
func carryOf(prev []rune, n int) string {
	if len(prev) <= n {
		return string(prev)
	}
	return string(prev[len(prev)-n:])
}

// splitRecursive breaks text into segments of at most limit runes,
// preferring the earliest separator in the hierarchy. Separators stay
// attached to the piece they terminate, so concatenating the segments
// yields the input unchanged.
func splitRecursive(text string, separators []string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}
	if len(separators) == 0 {
		return splitRunes(text, limit)
	}

	parts := strings.SplitAfter(text, separators[0])
	if len(parts) == 1 {
		return splitRecursive(text, separators[1:], limit)
	}

	var out []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		out = append(out, splitRecursive(part, separators[1:], limit)...)
	}
	return out
}

// splitRunes hard-splits text into pieces of exactly limit runes, last
// piece excepted.
func splitRunes(text string, limit int) []string {
	runes := []rune(text)
	var out []string
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

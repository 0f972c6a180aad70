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
	"log/slog"
	"strings"

	"github.com/poiesic/ragserve/ai"
)

// DefaultVariantCount caps the number of generated paraphrases.
const DefaultVariantCount = 5

const augmentInstruction = `You are an expert at searching technical reference documents.
For the user's question, suggest up to five additional questions that would help locate the needed information.
Each additional question must be:
- Short and direct, a single clause
- One question per line, with no numbering or leading punctuation
- Varied in angle while staying closely related to the original question`

// Augmenter expands a question into retrieval query variants by asking
// a generative model for paraphrases.
type Augmenter struct {
	generator ai.Generator
	count     int
	logger    *slog.Logger
}

// AugmenterOption configures an Augmenter.
type AugmenterOption func(*Augmenter)

// WithVariantCount caps the number of generated variants kept, not
// counting the original question.
func WithVariantCount(count int) AugmenterOption {
	return func(a *Augmenter) {
		if count > 0 {
			a.count = count
		}
	}
}

// NewAugmenter creates a query augmenter.
func NewAugmenter(generator ai.Generator, opts ...AugmenterOption) (*Augmenter, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	a := &Augmenter{
		generator: generator,
		count:     DefaultVariantCount,
		logger:    slog.Default().With("component", "augmenter"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Augment returns query variants for the question. The first element is
// always the original question, so retrieval never loses the literal
// query. Generator failure degrades to the question alone and is
// logged, never propagated.
func (a *Augmenter) Augment(ctx context.Context, question string) []string {
	messages := []ai.Message{{Role: ai.RoleUser, Content: question}}
	response, err := a.generator.Complete(ctx, augmentInstruction, messages)
	if err != nil {
		a.logger.Warn("augmentation failed, retrieving with original question only", "err", err)
		return []string{question}
	}

	variants := []string{question}
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		variants = append(variants, line)
		if len(variants) > a.count {
			break
		}
	}
	return variants
}

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
	"strings"

	"github.com/poiesic/ragserve/ai"
	"github.com/poiesic/ragserve/core"
	"github.com/poiesic/ragserve/storage"
	"github.com/poiesic/ragserve/vectorstore"
)

// Engine answers questions against a collection. A turn runs memory
// read, optional augmentation, retrieval, conditional re-ranking,
// context assembly and generation, then persists the completed turn.
type Engine struct {
	retriever *Retriever
	augmenter *Augmenter
	reranker  *Reranker
	generator ai.Generator
	memory    Memory
	questions storage.QuestionRepository
	logger    *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine) error

// WithMemory sets the conversation memory.
// Default is an in-process session store.
func WithMemory(memory Memory) EngineOption {
	return func(e *Engine) error {
		if memory == nil {
			return fmt.Errorf("memory must not be nil")
		}
		e.memory = memory
		return nil
	}
}

// WithQuestionRepository enables persistence of completed turns.
// Without it, turns are answered but not recorded.
func WithQuestionRepository(questions storage.QuestionRepository) EngineOption {
	return func(e *Engine) error {
		e.questions = questions
		return nil
	}
}

// WithScorer sets the re-ranking scorer.
// Default is the lexical term-overlap scorer.
func WithScorer(scorer Scorer) EngineOption {
	return func(e *Engine) error {
		if scorer == nil {
			return ErrScorerRequired
		}
		reranker, err := NewReranker(scorer)
		if err != nil {
			return err
		}
		e.reranker = reranker
		return nil
	}
}

// WithRetriever replaces the default retriever.
func WithRetriever(retriever *Retriever) EngineOption {
	return func(e *Engine) error {
		if retriever == nil {
			return fmt.Errorf("retriever must not be nil")
		}
		e.retriever = retriever
		return nil
	}
}

// WithReranker replaces the default reranker.
func WithReranker(reranker *Reranker) EngineOption {
	return func(e *Engine) error {
		if reranker == nil {
			return fmt.Errorf("reranker must not be nil")
		}
		e.reranker = reranker
		return nil
	}
}

// WithEngineLogger sets a custom logger.
// Default is slog.Default().
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a question-answering engine.
func NewEngine(vectors vectorstore.Store, embedder ai.Embedder, generator ai.Generator, opts ...EngineOption) (*Engine, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	retriever, err := NewRetriever(vectors, embedder)
	if err != nil {
		return nil, err
	}
	augmenter, err := NewAugmenter(generator)
	if err != nil {
		return nil, err
	}
	reranker, err := NewReranker(nil)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		retriever: retriever,
		augmenter: augmenter,
		reranker:  reranker,
		generator: generator,
		memory:    NewSessionMemory(),
		logger:    slog.Default().With("component", "answer"),
	}
	for _, opt := range opts {
		if optErr := opt(e); optErr != nil {
			return nil, optErr
		}
	}
	return e, nil
}

// Memory returns the engine's conversation memory.
func (e *Engine) Memory() Memory {
	return e.memory
}

// AskOptions controls one question-answering turn.
type AskOptions struct {
	// SessionID selects the conversation history. Empty means a
	// historyless one-shot turn that is not remembered.
	SessionID string
	// Augment enables query augmentation and, with it, re-ranking.
	Augment bool
	// HTML requests HTML-formatted output via the prompt. The result
	// is untrusted and must be sanitized before rendering.
	HTML bool
}

// Ask answers a question in blocking mode and returns the completed
// turn. Retrieval, ranking and generation failures degrade to the fixed
// fallback answer; only cancellation and invalid input surface errors.
func (e *Engine) Ask(ctx context.Context, col *core.Collection, question string, opts AskOptions) (*core.Question, error) {
	question = strings.TrimSpace(question)
	if err := e.check(col, question); err != nil {
		return nil, err
	}
	logger := e.logger.With("collection", col.Name, "session", opts.SessionID)

	req, refs, err := e.prepare(ctx, col, question, opts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		logger.Error("context preparation failed, answering with fallback", "err", err)
		return e.finish(ctx, col, question, FallbackAnswer, nil, opts.SessionID)
	}

	text, err := e.generator.Complete(ctx, req.System, req.Messages)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrGeneration, err)
		}
		logger.Error("generation failed, answering with fallback", "err", err)
		return e.finish(ctx, col, question, FallbackAnswer, nil, opts.SessionID)
	}

	return e.finish(ctx, col, question, text, refs, opts.SessionID)
}

// AskStream answers a question in streaming mode. Fragments arrive in
// generation order; the turn is persisted and remembered only after the
// stream completes cleanly. Cancellation or a mid-stream error discards
// the partial answer.
func (e *Engine) AskStream(ctx context.Context, col *core.Collection, question string, opts AskOptions) (<-chan ai.Fragment, error) {
	question = strings.TrimSpace(question)
	if err := e.check(col, question); err != nil {
		return nil, err
	}
	logger := e.logger.With("collection", col.Name, "session", opts.SessionID)

	req, refs, err := e.prepare(ctx, col, question, opts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		logger.Error("context preparation failed, streaming fallback", "err", err)
		return e.streamFixed(ctx, col, question, opts.SessionID), nil
	}

	fragments, err := e.generator.Stream(ctx, req.System, req.Messages)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrGeneration, err)
		}
		logger.Error("starting stream failed, streaming fallback", "err", err)
		return e.streamFixed(ctx, col, question, opts.SessionID), nil
	}

	out := make(chan ai.Fragment)
	go func() {
		defer close(out)
		var full strings.Builder
		failed := false

		for frag := range fragments {
			select {
			case out <- frag:
			case <-ctx.Done():
				return
			}
			if frag.Err != nil {
				failed = true
				break
			}
			full.WriteString(frag.Text)
		}

		if failed || ctx.Err() != nil {
			logger.Warn("stream did not complete, discarding partial answer")
			return
		}
		if _, err := e.finish(context.WithoutCancel(ctx), col, question, full.String(), refs, opts.SessionID); err != nil {
			logger.Error("error recording streamed turn", "err", err)
		}
	}()
	return out, nil
}

// streamFixed streams the fallback answer as a single fragment and
// records the turn, mirroring the blocking degradation path.
func (e *Engine) streamFixed(ctx context.Context, col *core.Collection, question, sessionID string) <-chan ai.Fragment {
	out := make(chan ai.Fragment, 1)
	go func() {
		defer close(out)
		select {
		case out <- ai.Fragment{Text: FallbackAnswer}:
		case <-ctx.Done():
			return
		}
		if _, err := e.finish(context.WithoutCancel(ctx), col, question, FallbackAnswer, nil, sessionID); err != nil {
			e.logger.Error("error recording fallback turn", "err", err)
		}
	}()
	return out
}

func (e *Engine) check(col *core.Collection, question string) error {
	if col == nil {
		return ErrCollectionRequired
	}
	if question == "" {
		return core.ErrEmptyQuestionText
	}
	return nil
}

// prepare runs the pre-generation stages and returns the assembled
// request plus the deduplicated source references.
func (e *Engine) prepare(ctx context.Context, col *core.Collection, question string, opts AskOptions) (Request, []string, error) {
	var history []ai.Message
	if opts.SessionID != "" {
		history = e.memory.Get(opts.SessionID)
	}

	variants := []string{question}
	if opts.Augment {
		variants = e.augmenter.Augment(ctx, question)
	}

	passages, err := e.retriever.Retrieve(ctx, col.Name, variants)
	if err != nil {
		return Request{}, nil, err
	}

	// Single-variant retrieval is already ordered by similarity, so
	// re-ranking only runs for augmented turns with real passages.
	if opts.Augment && !passages[0].Sentinel() {
		ranked, rankErr := e.reranker.Rank(ctx, question, passages)
		if rankErr != nil {
			e.logger.Warn("re-ranking failed, keeping retrieval order",
				"collection", col.Name, "session", opts.SessionID, "err", rankErr)
		} else {
			passages = ranked
		}
	}

	return assemble(question, passages, history, opts.HTML), references(passages), nil
}

// finish records the completed turn: the Question record first, then
// the session memory, user message before assistant message.
func (e *Engine) finish(ctx context.Context, col *core.Collection, question, text string, refs []string, sessionID string) (*core.Question, error) {
	record := &core.Question{
		CollectionID: col.ID,
		QuestionText: question,
		Answer:       text,
		References:   refs,
	}

	if e.questions != nil {
		stored, err := e.questions.AddQuestion(ctx, record)
		if err != nil {
			return nil, err
		}
		record = stored
	}

	if sessionID != "" {
		e.memory.Append(sessionID, ai.Message{Role: ai.RoleUser, Content: question})
		e.memory.Append(sessionID, ai.Message{Role: ai.RoleAssistant, Content: text})
	}
	return record, nil
}

// references returns the distinct passage sources in ranked order.
func references(passages []Passage) []string {
	var refs []string
	seen := make(map[string]struct{})
	for _, p := range passages {
		if p.Source == "" {
			continue
		}
		if _, dup := seen[p.Source]; dup {
			continue
		}
		seen[p.Source] = struct{}{}
		refs = append(refs, p.Source)
	}
	return refs
}

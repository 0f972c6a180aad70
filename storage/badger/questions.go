package badger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/ragserve/core"
	"github.com/poiesic/ragserve/storage"
	"github.com/timshannon/badgerhold/v4"
)

// QuestionRepository implements storage.QuestionRepository on BadgerDB.
type QuestionRepository struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.QuestionRepository = (*QuestionRepository)(nil)

// NewQuestionRepository creates a question repository on the shared backend.
func NewQuestionRepository(backend *Backend) (*QuestionRepository, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	return &QuestionRepository{
		backend: backend,
		logger:  slog.Default().With("repository", "questions"),
	}, nil
}

// AddQuestion stores a completed question/answer turn.
func (r *QuestionRepository) AddQuestion(ctx context.Context, q *core.Question) (*core.Question, error) {
	if q.ID == "" {
		q.ID = core.NewID()
	}
	if err := core.ValidateQuestion(q); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now

	if err := r.backend.Store().Insert(q.ID, q); err != nil {
		if err == badgerhold.ErrKeyExists {
			return nil, fmt.Errorf("%w: question %s", storage.ErrDuplicateKey, q.ID)
		}
		return nil, fmt.Errorf("adding question: %w", err)
	}

	r.logger.Debug("added question", "id", q.ID, "collection", q.CollectionID)
	return q, nil
}

// ListQuestionsByCollection retrieves the question history of a collection.
func (r *QuestionRepository) ListQuestionsByCollection(ctx context.Context, collectionID string) ([]*core.Question, error) {
	var questions []*core.Question
	query := badgerhold.Where("CollectionID").Eq(collectionID).SortBy("CreatedAt")
	if err := r.backend.Store().Find(&questions, query); err != nil {
		return nil, fmt.Errorf("listing questions: %w", err)
	}
	return questions, nil
}

// DeleteQuestion removes a single question record.
func (r *QuestionRepository) DeleteQuestion(ctx context.Context, id string) error {
	if err := r.backend.Store().Delete(id, &core.Question{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("%w: question %s", storage.ErrNotFound, id)
		}
		return fmt.Errorf("deleting question: %w", err)
	}
	return nil
}

// ClearQuestions removes every question belonging to a collection.
func (r *QuestionRepository) ClearQuestions(ctx context.Context, collectionID string) error {
	query := badgerhold.Where("CollectionID").Eq(collectionID)
	if err := r.backend.Store().DeleteMatching(&core.Question{}, query); err != nil {
		return fmt.Errorf("clearing questions: %w", err)
	}
	r.logger.Debug("cleared questions", "collection", collectionID)
	return nil
}

// ClearAll removes every question record.
func (r *QuestionRepository) ClearAll(ctx context.Context) error {
	if err := r.backend.Store().DeleteMatching(&core.Question{}, nil); err != nil {
		return fmt.Errorf("clearing all questions: %w", err)
	}
	return nil
}

// Close is a no-op; the database lifetime is owned by the shared Backend.
func (r *QuestionRepository) Close() error {
	return nil
}

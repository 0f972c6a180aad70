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


package core

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - CollectionID must not be empty
//   - Status must be a known value
//
// NOT validated (populated by the pipeline):
//   - Ingest metadata (zero until ingestion completes)
//   - Processing timestamps (zero until ingestion runs)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyName)
	}

	if doc.CollectionID == "" {
		return fmt.Errorf("%w: collection id is required", ErrInvalidDocument)
	}

	if !doc.Status.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidDocument, ErrInvalidStatus, doc.Status)
	}

	return nil
}

// ValidateCollection validates a Collection according to domain rules.
func ValidateCollection(col *Collection) error {
	if col == nil {
		return fmt.Errorf("%w: collection is nil", ErrInvalidCollection)
	}

	if NormalizeCollectionName(col.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCollection, ErrEmptyName)
	}

	return nil
}

// ValidateQuestion validates a Question according to domain rules.
//
// The Answer field is not validated: it is empty until generation
// completes and a graceful fallback answer is still a valid answer.
func ValidateQuestion(q *Question) error {
	if q == nil {
		return fmt.Errorf("%w: question is nil", ErrInvalidQuestion)
	}

	if q.QuestionText == "" {
		return fmt.Errorf("%w: %w", ErrInvalidQuestion, ErrEmptyQuestionText)
	}

	if q.CollectionID == "" {
		return fmt.Errorf("%w: collection id is required", ErrInvalidQuestion)
	}

	return nil
}

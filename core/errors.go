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

import "errors"

// Stage error taxonomy. Callers match these with errors.Is; every
// component wraps its backend failures in exactly one of them.
var (
	// ErrExtraction indicates the source file could not be read.
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmbedding indicates an embedding backend failure.
	ErrEmbedding = errors.New("embedding failed")

	// ErrIndexWrite indicates a vector store write failure.
	ErrIndexWrite = errors.New("vector index write failed")

	// ErrRetrieval indicates a vector store query failure.
	ErrRetrieval = errors.New("vector index query failed")

	// ErrRanking indicates empty or malformed re-ranking input.
	ErrRanking = errors.New("invalid ranking input")

	// ErrGeneration indicates a chat completion failure, including mid-stream.
	ErrGeneration = errors.New("answer generation failed")
)

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidCollection indicates a Collection failed validation.
	ErrInvalidCollection = errors.New("invalid collection")

	// ErrInvalidQuestion indicates a Question failed validation.
	ErrInvalidQuestion = errors.New("invalid question")

	// ErrInvalidStatus indicates an unknown DocumentStatus value.
	ErrInvalidStatus = errors.New("invalid document status")

	// ErrInvalidTransition indicates an illegal status transition.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrEmptyName indicates a required name field is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrEmptyQuestionText indicates the question text is empty.
	ErrEmptyQuestionText = errors.New("question text cannot be empty")
)

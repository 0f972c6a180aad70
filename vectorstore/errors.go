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


package vectorstore

import "errors"

var (
	// ErrNamespaceNotFound indicates the namespace does not exist.
	ErrNamespaceNotFound = errors.New("namespace not found")

	// ErrNamespaceExists indicates the namespace already exists.
	ErrNamespaceExists = errors.New("namespace already exists")

	// ErrEmptyVector indicates a record or query with no embedding.
	ErrEmptyVector = errors.New("vector cannot be empty")

	// ErrInvalidNamespace indicates an empty or malformed namespace name.
	ErrInvalidNamespace = errors.New("invalid namespace name")
)

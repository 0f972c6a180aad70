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


// Package search provides direct passage search over a collection.
//
// The Searcher type combines semantic search using vector embeddings with
// verbatim keyword matching: passages where every query word appears
// literally receive a flat score boost on top of their similarity. Results
// below a similarity floor are dropped before ranking.
//
// Unlike the answer package, search returns the ranked passages themselves
// rather than a generated answer.
package search

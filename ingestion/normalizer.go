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
	"regexp"
	"strings"
)

// Normalizer cleans extracted text before chunking. Implementations
// must be conservative: cleaning may remove page furniture and fix
// unicode punctuation but never rewrite the author's words.
type Normalizer interface {
	Normalize(text string) string
}

// TextNormalizer is the default Normalizer. It normalizes line endings
// and unicode punctuation, strips zero-width characters, drops obvious
// page headers and footers, and collapses runaway blank lines while
// keeping paragraph breaks intact.
type TextNormalizer struct{}

var _ Normalizer = (*TextNormalizer)(nil)

// NewTextNormalizer creates the default text normalizer.
func NewTextNormalizer() *TextNormalizer {
	return &TextNormalizer{}
}

var (
	pageNumberLine = regexp.MustCompile(`^\s*(?:[Pp]age\s+)?\d{1,4}(?:\s*(?:of|/)\s*\d{1,4})?\s*$`)
	furnitureLine  = regexp.MustCompile(`(?i)^\s*(?:confidential|proprietary|all rights reserved|copyright\b.*|©.*)\s*$`)
	blankRuns      = regexp.MustCompile(`\n{3,}`)
)

var punctReplacer = strings.NewReplacer(
	"‘", "'", "’", "'",
	"“", `"`, "”", `"`,
	"–", "-", "—", "-",
	"\u00a0", " ",
	"\u200b", "", "\u200c", "", "\u200d", "", "\ufeff", "",
)

// Normalize applies the cleaning passes in order. The output is still
// the source text: paragraph structure and sentence content survive.
func (n *TextNormalizer) Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = punctReplacer.Replace(text)

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if pageNumberLine.MatchString(line) || furnitureLine.MatchString(line) {
			continue
		}
		kept = append(kept, strings.TrimRight(line, " \t"))
	}
	text = strings.Join(kept, "\n")

	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// PassthroughNormalizer returns text unchanged. Used when a pipeline is
// configured to skip normalization.
type PassthroughNormalizer struct{}

var _ Normalizer = (*PassthroughNormalizer)(nil)

func (PassthroughNormalizer) Normalize(text string) string { return text }

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
	"os"
	"unicode/utf8"

	"github.com/poiesic/ragserve/core"
)

// Reader extracts plain text from a source file. Implementations exist
// per source format; the pipeline only sees the extracted text.
type Reader interface {
	// ExtractText returns the full text content of the file at path.
	ExtractText(path string) (string, error)
}

// FileReader reads plain-text files from the local filesystem.
type FileReader struct{}

var _ Reader = (*FileReader)(nil)

// NewFileReader creates a reader for plain-text files.
func NewFileReader() *FileReader {
	return &FileReader{}
}

// ExtractText reads the file and verifies it holds valid UTF-8 text.
func (r *FileReader) ExtractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", core.ErrExtraction, path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8 text", core.ErrExtraction, path)
	}
	return string(data), nil
}

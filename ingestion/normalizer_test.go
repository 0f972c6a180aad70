package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizerLineEndings(t *testing.T) {
	n := NewTextNormalizer()
	assert.Equal(t, "one\ntwo\nthree", n.Normalize("one\r\ntwo\rthree"))
}

func TestNormalizerUnicodePunctuation(t *testing.T) {
	n := NewTextNormalizer()
	got := n.Normalize("“quoted” and ‘single’ – dashed—joined")
	assert.Equal(t, `"quoted" and 'single' - dashed-joined`, got)
}

func TestNormalizerZeroWidthCharacters(t *testing.T) {
	n := NewTextNormalizer()
	assert.Equal(t, "joined", n.Normalize("\ufeffjoi\u200bne\u200c\u200dd"))
}

func TestNormalizerDropsPageFurniture(t *testing.T) {
	n := NewTextNormalizer()
	input := "Real content line.\nPage 3 of 12\n42\nCONFIDENTIAL\nCopyright 2020 Acme Corp\nMore content."
	assert.Equal(t, "Real content line.\nMore content.", n.Normalize(input))
}

func TestNormalizerKeepsParagraphBreaks(t *testing.T) {
	n := NewTextNormalizer()
	input := "First paragraph.\n\n\n\n\nSecond paragraph."
	assert.Equal(t, "First paragraph.\n\nSecond paragraph.", n.Normalize(input))
}

func TestNormalizerTrimsTrailingWhitespace(t *testing.T) {
	n := NewTextNormalizer()
	assert.Equal(t, "line one\nline two", n.Normalize("line one   \nline two\t\n"))
}

func TestNormalizerDoesNotRewriteContent(t *testing.T) {
	n := NewTextNormalizer()
	input := "Numbers like 3 inside a sentence survive, as does the word page."
	assert.Equal(t, input, n.Normalize(input))
}

func TestPassthroughNormalizer(t *testing.T) {
	input := "raw \r\n text “untouched”"
	assert.Equal(t, input, PassthroughNormalizer{}.Normalize(input))
}

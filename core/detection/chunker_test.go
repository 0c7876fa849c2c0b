package detection

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_CollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "one two three", Normalize("  one\n\ttwo   three  "))
	assert.Equal(t, "", Normalize("   \n\t  "))
}

func TestSplitChunks_ShortTextIsSingleChunk(t *testing.T) {
	chunks := SplitChunks("a short text", 3000)

	assert.Len(t, chunks, 1)
	assert.Equal(t, "a short text", chunks[0])
}

func TestSplitChunks_PrefersSentenceBoundary(t *testing.T) {
	text := "First sentence here. Second sentence follows and runs longer."
	chunks := SplitChunks(text, 30)

	assert.Equal(t, "First sentence here.", chunks[0])
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 30)
	}
	joined := strings.ReplaceAll(strings.Join(chunks, ""), " ", "")
	assert.Equal(t, strings.ReplaceAll(text, " ", ""), joined, "no content may be lost in splitting")
}

func TestSplitChunks_HardCutWithoutBoundary(t *testing.T) {
	text := strings.Repeat("a", 100)
	chunks := SplitChunks(text, 40)

	assert.Len(t, chunks, 3)
	assert.Equal(t, 40, len(chunks[0]))
	assert.Equal(t, 40, len(chunks[1]))
	assert.Equal(t, 20, len(chunks[2]))
}

package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleText(sentences int) string {
	var b strings.Builder
	for i := 0; i < sentences; i++ {
		b.WriteString("The quick brown fox jumps over the lazy dog near the fuel terminal. ")
	}
	return b.String()
}

func TestSplit_ShortDocumentSingleChunk(t *testing.T) {
	c := New(Config{TargetSize: 1000, Overlap: 100})
	chunks := c.Split("doc-1", "A short onboarding note.")

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, len("A short onboarding note."), chunks[0].EndOffset)
	assert.Equal(t, "A short onboarding note.", chunks[0].Text)
}

func TestSplit_EmptyDocument(t *testing.T) {
	c := New(Config{TargetSize: 500, Overlap: 50})
	assert.Nil(t, c.Split("doc-1", ""))
}

func TestSplit_Deterministic(t *testing.T) {
	c := New(Config{TargetSize: 300, Overlap: 50, Boundary: BoundarySentence})
	text := sampleText(40)

	first := c.Split("doc-1", text)
	second := c.Split("doc-1", text)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].StartOffset, second[i].StartOffset)
		assert.Equal(t, first[i].EndOffset, second[i].EndOffset)
	}
}

func TestSplit_FullCoverageNoGaps(t *testing.T) {
	c := New(Config{TargetSize: 250, Overlap: 40})
	text := sampleText(60)
	chunks := c.Split("doc-1", text)
	require.NotEmpty(t, chunks)

	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, len(text), chunks[len(chunks)-1].EndOffset)

	for i := 1; i < len(chunks); i++ {
		// next span starts at or before the previous end: never a gap
		assert.LessOrEqual(t, chunks[i].StartOffset, chunks[i-1].EndOffset,
			"gap between chunk %d and %d", i-1, i)
		// and never overlaps more than the configured window
		overlap := chunks[i-1].EndOffset - chunks[i].StartOffset
		assert.LessOrEqual(t, overlap, 40)
		assert.Equal(t, i, chunks[i].Ordinal)
	}
}

func TestSplit_TextMatchesOffsets(t *testing.T) {
	c := New(Config{TargetSize: 200, Overlap: 30, Boundary: BoundaryParagraph})
	text := sampleText(20) + "\n\n" + sampleText(20)
	for _, ch := range c.Split("doc-1", text) {
		assert.Equal(t, text[ch.StartOffset:ch.EndOffset], ch.Text)
	}
}

func TestSplit_DifferentDocumentsDifferentIDs(t *testing.T) {
	c := New(Config{TargetSize: 300, Overlap: 50})
	text := sampleText(30)

	a := c.Split("doc-a", text)
	b := c.Split("doc-b", text)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.NotEqual(t, a[i].ID, b[i].ID)
	}
}

func TestSplit_NeverSplitsMultiByteRunes(t *testing.T) {
	// No separators anywhere, so every cut is the hard-cut fallback and
	// every overlap step lands on a raw byte index inside a 3-byte rune
	// unless it gets realigned.
	text := strings.Repeat("日本語のドキュメント", 30)
	c := New(Config{TargetSize: 50, Overlap: 10, Boundary: BoundarySentence})

	chunks := c.Split("doc-1", text)
	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks {
		assert.True(t, utf8.ValidString(ch.Text), "chunk %d is not valid UTF-8: %q", ch.Ordinal, ch.Text)
	}
	assert.Equal(t, len(text), chunks[len(chunks)-1].EndOffset)
}

func TestNew_ClampsBadConfig(t *testing.T) {
	c := New(Config{TargetSize: 100, Overlap: 100})
	chunks := c.Split("doc-1", sampleText(20))
	// overlap got clamped below target size, so the walk terminates
	require.NotEmpty(t, chunks)
	assert.Equal(t, len(sampleText(20)), chunks[len(chunks)-1].EndOffset)
}

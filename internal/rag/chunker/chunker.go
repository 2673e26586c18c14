package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/akolanti/DocsBot/internal/domain/docmodel"
)

type Boundary string

const (
	BoundarySentence  Boundary = "sentence"
	BoundaryParagraph Boundary = "paragraph"
)

type Config struct {
	TargetSize int
	Overlap    int
	Boundary   Boundary
}

// Chunker splits document text into overlapping spans. Same text and same
// config always produce the same boundaries, so chunk ids stay stable across
// re-ingestion of unchanged content.
type Chunker struct {
	cfg Config
}

func New(cfg Config) *Chunker {
	if cfg.TargetSize <= 0 {
		cfg.TargetSize = 1000
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	if cfg.Overlap >= cfg.TargetSize {
		cfg.Overlap = cfg.TargetSize / 4
	}
	if cfg.Boundary != BoundaryParagraph {
		cfg.Boundary = BoundarySentence
	}
	return &Chunker{cfg: cfg}
}

// Split covers the whole document: each byte of text falls inside at least one
// chunk span and consecutive spans overlap by at most the configured overlap.
// A document shorter than the target size yields exactly one chunk.
func (c *Chunker) Split(documentID, text string) []docmodel.Chunk {
	if len(text) == 0 {
		return nil
	}

	var chunks []docmodel.Chunk
	start := 0
	ordinal := 0

	for {
		end := start + c.cfg.TargetSize
		if end >= len(text) {
			end = len(text)
		} else {
			end = c.breakPoint(text, start, end)
		}

		chunks = append(chunks, docmodel.Chunk{
			DocumentID:  documentID,
			ID:          docmodel.ChunkID(documentID, start, end, text[start:end]),
			Ordinal:     ordinal,
			Text:        text[start:end],
			StartOffset: start,
			EndOffset:   end,
		})

		if end == len(text) {
			return chunks
		}

		next := end - c.cfg.Overlap
		for next > start && next < end && !utf8.RuneStart(text[next]) {
			next++ // the overlapped span must not begin mid-rune
		}
		if next <= start {
			// a tiny chunk must still advance
			next = start + 1
		}
		start = next
		ordinal++
	}
}

// breakPoint moves the cut back to the nearest preferred boundary, but never
// further back than 80% of the target size. Separators ordered from best to
// worst for semantic continuity; a hard cut is the last resort.
func (c *Chunker) breakPoint(text string, start, end int) int {
	floor := start + (c.cfg.TargetSize*8)/10

	separators := []string{". ", "! ", "? ", "\n", " "}
	if c.cfg.Boundary == BoundaryParagraph {
		separators = append([]string{"\n\n"}, separators...)
	}

	window := text[start:end]
	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := start + idx + len(sep)
		if cut > floor {
			return cut
		}
	}
	return alignRune(text, end, start+1)
}

// alignRune backs idx up to the nearest rune start, never past floor, so a
// hard cut cannot split a multi-byte character.
func alignRune(text string, idx, floor int) int {
	for idx > floor && idx < len(text) && !utf8.RuneStart(text[idx]) {
		idx--
	}
	return idx
}

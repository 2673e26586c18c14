package docmodel

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Document is the unit of sync. It is owned by the sync engine and replaced
// wholesale on every successful fetch.
type Document struct {
	ID             string    `json:"source_doc_id"`
	RevisionMarker string    `json:"revision_marker"`
	Text           string    `json:"-"`
	FetchedAt      time.Time `json:"fetched_at"`
}

// Chunk is the unit of embedding and retrieval. Offsets are byte offsets into
// the parent document text.
type Chunk struct {
	DocumentID  string `json:"source_doc_id"`
	ID          string `json:"chunk_id"`
	Ordinal     int    `json:"chunk_order"`
	Text        string `json:"content"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
}

// ChunkID derives the stable id from the parent document, the span, and a
// digest of the chunk text. Offsets alone would miss an in-place edit that
// leaves every chunk boundary unchanged, so the text digest is folded in. An
// unchanged document still re-chunks to identical ids, and the name-based
// UUID keeps each id a valid vector-store point id.
func ChunkID(documentID string, start, end int, text string) string {
	sum := sha256.Sum256([]byte(text))
	name := fmt.Sprintf("%s:%d:%d:%x", documentID, start, end, sum[:8])
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// IndexRecord pairs a chunk with its vector. ModelVersion tags every record so
// vectors from different embedding models are never compared.
type IndexRecord struct {
	Chunk        Chunk
	Vector       []float32
	ModelVersion string
}

// ScoredChunk is one retrieval hit.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float32 `json:"score"`
}

// RetrievalResult is sorted strictly descending by score; ties break ascending
// by chunk id so identical queries rank identically.
type RetrievalResult struct {
	Hits []ScoredChunk
}

// QueryFilter narrows a vector query to one document and one model version.
type QueryFilter struct {
	DocumentID   string
	ModelVersion string
}

type Outcome string

const (
	OutcomeGrounded            Outcome = "GROUNDED"
	OutcomeInsufficientContext Outcome = "INSUFFICIENT_CONTEXT"
	OutcomeUnavailable         Outcome = "UNAVAILABLE"
)

// Answer is what the orchestrator hands back to the chat layer. Citations are
// always a subset of the chunks that went into the prompt.
type Answer struct {
	Text      string        `json:"answer"`
	Citations []ScoredChunk `json:"citations,omitempty"`
	Outcome   Outcome       `json:"outcome"`
}

// Turn is one recorded question/answer exchange in a thread.
type Turn struct {
	ThreadID  string    `json:"thread_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
	ChunkIDs  []string  `json:"chunk_ids,omitempty"`
}

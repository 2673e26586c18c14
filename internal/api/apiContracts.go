package api

import "time"

type ExternalStatus string

const (
	StatusError ExternalStatus = "Error"
)

type AnswerResponse struct {
	ThreadID  string         `json:"thread_id" example:"thread_1712"`
	Answer    string         `json:"answer" example:"Deploys run through the release pipeline."`
	Outcome   string         `json:"outcome" example:"GROUNDED"`
	Citations []Citation     `json:"citations,omitempty"`
	Error     *OutgoingError `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type Citation struct {
	DocumentID string  `json:"source_doc_id" example:"1aBcD3fG"`
	ChunkID    string  `json:"chunk_id"`
	ChunkOrder int     `json:"chunk_order" example:"4"`
	Score      float32 `json:"score" example:"0.82"`
}

type OutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Bad Request"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type SyncStatusResponse struct {
	DocumentID   string    `json:"source_doc_id"`
	State        string    `json:"state" example:"SYNCED"`
	Revision     string    `json:"revision,omitempty"`
	LastSyncedAt time.Time `json:"last_synced_at,omitempty"`
}

// requests---------------------

type EventRequest struct {
	ThreadID string `json:"thread_id,omitempty"`
	Text     string `json:"text" validate:"required"`
	Sender   string `json:"sender,omitempty"`
}

type SyncRequest struct {
	DocumentID string `json:"source_doc_id,omitempty"`
}

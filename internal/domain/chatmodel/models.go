package chatmodel

import (
	"time"

	"github.com/akolanti/DocsBot/internal/domain/docmodel"
)

// Question is one inbound chat message after platform markup cleanup. It
// travels from the handler through the question channel to a worker.
type Question struct {
	ThreadID   string    `json:"thread_id"`
	Text       string    `json:"text"`
	Sender     string    `json:"sender,omitempty"`
	TraceID    string    `json:"trace_id"`
	ReceivedAt time.Time `json:"received_at"`

	// Reply, when set, receives exactly one answer. Workers never block on
	// it; a caller that stopped waiting just loses the reply.
	Reply chan docmodel.Answer `json:"-"`
}

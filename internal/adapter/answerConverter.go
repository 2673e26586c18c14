package adapter

import (
	"time"

	"github.com/akolanti/DocsBot/internal/api"
	"github.com/akolanti/DocsBot/internal/domain/docmodel"
	"github.com/akolanti/DocsBot/internal/sync"
)

func ToAnswerResponse(threadID string, answer docmodel.Answer) api.AnswerResponse {
	return api.AnswerResponse{
		ThreadID:  threadID,
		Answer:    answer.Text,
		Outcome:   string(answer.Outcome),
		Citations: toCitations(answer.Citations),
		Timestamp: time.Now(),
	}
}

func toCitations(hits []docmodel.ScoredChunk) []api.Citation {
	if len(hits) == 0 {
		return nil
	}
	citations := make([]api.Citation, len(hits))
	for i, hit := range hits {
		citations[i] = api.Citation{
			DocumentID: hit.Chunk.DocumentID,
			ChunkID:    hit.Chunk.ID,
			ChunkOrder: hit.Chunk.Ordinal,
			Score:      hit.Score,
		}
	}
	return citations
}

func ToSyncStatusResponse(documentID string, state sync.State, revision string, lastSyncedAt time.Time) api.SyncStatusResponse {
	return api.SyncStatusResponse{
		DocumentID:   documentID,
		State:        string(state),
		Revision:     revision,
		LastSyncedAt: lastSyncedAt,
	}
}

func BadRequest(threadID string, message string, code int) api.AnswerResponse {
	return api.AnswerResponse{
		ThreadID: threadID,
		Outcome:  string(api.StatusError),
		Error: &api.OutgoingError{
			Code:    code,
			Message: message,
			Retry:   false,
		},
		Timestamp: time.Now(),
	}
}

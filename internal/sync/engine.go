package sync

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/DocsBot/internal/docsource"
	"github.com/akolanti/DocsBot/internal/domain/docmodel"
	"github.com/akolanti/DocsBot/internal/domain/ragerrors"
	"github.com/akolanti/DocsBot/internal/metrics"
	"github.com/akolanti/DocsBot/internal/rag/chunker"
	"github.com/akolanti/DocsBot/internal/rag/embedding"
	"github.com/akolanti/DocsBot/internal/rag/vectorDB"
	"github.com/akolanti/DocsBot/pkg/logger_i"
)

// State tracks where a document is in the indexing lifecycle.
type State string

const (
	StateUnknown    State = "UNKNOWN"
	StateFetching   State = "FETCHING"
	StateDiffing    State = "DIFFING"
	StateReindexing State = "REINDEXING"
	StateSynced     State = "SYNCED"
)

// Engine keeps the vector index consistent with the source document.
// A sync run never takes the index down: on any failure the previously
// indexed chunks keep serving queries and the document drops back to
// StateUnknown so the next run starts from scratch.
type Engine struct {
	source   docsource.Source
	chunker  *chunker.Chunker
	embedder embedding.Embedder
	index    vectorDB.Index

	documentID string

	runMu sync.Mutex // serializes sync cycles

	statusMu     sync.Mutex // guards the fields below, so Status never waits on a run
	state        State
	lastRevision string
	lastSyncedAt time.Time

	logger *logger_i.Logger
}

func NewEngine(source docsource.Source, ch *chunker.Chunker, em embedding.Embedder, index vectorDB.Index, documentID string) *Engine {
	return &Engine{
		source:     source,
		chunker:    ch,
		embedder:   em,
		index:      index,
		documentID: documentID,
		state:      StateUnknown,
		logger:     logger_i.NewLogger("SyncEngine"),
	}
}

// Status returns the current state and the revision marker of the last
// successful sync. It reads through the status lock, not the run lock, so
// it reports mid-run states while a cycle is in flight.
func (e *Engine) Status() (State, string, time.Time) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	return e.state, e.lastRevision, e.lastSyncedAt
}

func (e *Engine) setState(s State) {
	e.statusMu.Lock()
	e.state = s
	e.statusMu.Unlock()
}

func (e *Engine) lastKnownRevision() string {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	return e.lastRevision
}

func (e *Engine) markSynced(revision string) {
	e.statusMu.Lock()
	e.state = StateSynced
	e.lastRevision = revision
	e.lastSyncedAt = time.Now()
	e.statusMu.Unlock()
}

// RunOnce performs a single sync cycle. Concurrent calls for the same
// document serialize on the run mutex, so an on-demand trigger can
// never race the scheduled run.
func (e *Engine) RunOnce(ctx context.Context) error {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	start := time.Now()
	err := e.runLocked(ctx)
	if err != nil {
		e.setState(StateUnknown)
		metrics.CaptureSyncRun("failure")
		e.logger.Error("Sync run failed", "documentId", e.documentID, "err", err)
		return err
	}
	metrics.CaptureSyncRun("success")
	metrics.CaptureExecutionMetrics("document_sync", time.Since(start))
	return nil
}

func (e *Engine) runLocked(ctx context.Context) error {
	e.setState(StateFetching)
	doc, err := e.source.Fetch(ctx, e.documentID)
	if err != nil {
		return ragerrors.Wrap(ragerrors.ErrSourceFetch, err)
	}

	// Unchanged revision means zero embedding calls and zero index writes.
	if known := e.lastKnownRevision(); known != "" && doc.RevisionMarker == known {
		e.setState(StateSynced)
		e.logger.Debug("Revision unchanged, skipping reindex", "revision", doc.RevisionMarker)
		return nil
	}

	e.setState(StateDiffing)
	chunks := e.chunker.Split(doc.ID, doc.Text)

	indexed, err := e.index.ListChunkIDs(ctx, doc.ID, e.embedder.ModelIdentity())
	if err != nil {
		return ragerrors.Wrap(ragerrors.ErrIndexUnavailable, err)
	}

	toEmbed, toDelete := diffChunks(chunks, indexed)
	e.logger.Info("Diff computed",
		"documentId", doc.ID,
		"totalChunks", len(chunks),
		"newChunks", len(toEmbed),
		"staleChunks", len(toDelete))

	e.setState(StateReindexing)
	if err := e.reindex(ctx, toEmbed, toDelete); err != nil {
		return err
	}

	e.markSynced(doc.RevisionMarker)
	e.logger.Info("Document synced", "documentId", doc.ID, "revision", doc.RevisionMarker)
	return nil
}

// diffChunks splits the current chunk set against what the index already
// holds. Chunk ids are derived from the document id, the span, and the chunk
// text, so a changed chunk shows up as a new id and its predecessor as a
// stale one.
func diffChunks(current []docmodel.Chunk, indexed []string) (toEmbed []docmodel.Chunk, toDelete []string) {
	indexedSet := make(map[string]bool, len(indexed))
	for _, id := range indexed {
		indexedSet[id] = true
	}
	currentSet := make(map[string]bool, len(current))
	for _, c := range current {
		currentSet[c.ID] = true
		if !indexedSet[c.ID] {
			toEmbed = append(toEmbed, c)
		}
	}
	for _, id := range indexed {
		if !currentSet[id] {
			toDelete = append(toDelete, id)
		}
	}
	return toEmbed, toDelete
}

// reindex writes the new chunks before removing the stale ones so a crash
// mid-run leaves extra chunks behind rather than a hole in coverage.
func (e *Engine) reindex(ctx context.Context, toEmbed []docmodel.Chunk, toDelete []string) error {
	if len(toEmbed) > 0 {
		texts := make([]string, len(toEmbed))
		for i, c := range toEmbed {
			texts[i] = c.Text
		}

		start := time.Now()
		vectors, err := e.embedder.EmbedBatch(ctx, texts)
		metrics.CaptureExecutionMetrics("embedding_batch", time.Since(start))
		if err != nil {
			return err
		}

		records := make([]docmodel.IndexRecord, len(toEmbed))
		for i, c := range toEmbed {
			records[i] = docmodel.IndexRecord{
				Chunk:        c,
				Vector:       vectors[i],
				ModelVersion: e.embedder.ModelIdentity(),
			}
		}
		if err := e.index.UpsertBatch(ctx, records); err != nil {
			return err
		}
	}

	if len(toDelete) > 0 {
		if err := e.index.DeleteChunks(ctx, toDelete); err != nil {
			return err
		}
	}
	return nil
}

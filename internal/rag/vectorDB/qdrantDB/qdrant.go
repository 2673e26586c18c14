package qdrantDB

import (
	"context"
	"fmt"
	"sort"

	"github.com/akolanti/DocsBot/internal/config"
	"github.com/akolanti/DocsBot/internal/domain/docmodel"
	"github.com/akolanti/DocsBot/internal/domain/ragerrors"
	"github.com/akolanti/DocsBot/internal/rag/vectorDB"
	"github.com/akolanti/DocsBot/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

type ClientHolder struct {
	QObj           *qdrant.Client
	collectionName string
	dimension      uint64
	logger         *logger_i.Logger
}

func NewQdrantIndex(ctx context.Context, cfg *config.Config) (vectorDB.Index, error) {
	logger := logger_i.NewLogger("Qdrant")

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     cfg.QdrantHost,
		Port:     cfg.QdrantPort,
		APIKey:   cfg.QdrantAPIKey,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil, ragerrors.Wrap(ragerrors.ErrIndexUnavailable, err)
	}

	holder := &ClientHolder{
		QObj:           client,
		collectionName: cfg.CollectionName,
		dimension:      uint64(cfg.EmbeddingDim),
		logger:         logger,
	}

	go closeQdrant(ctx, client, logger)
	return holder, nil
}

func closeQdrant(ctx context.Context, qi *qdrant.Client, logger *logger_i.Logger) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

func (db *ClientHolder) EnsureCollection(ctx context.Context) error {
	exists, err := db.QObj.CollectionExists(ctx, db.collectionName)
	if err != nil {
		return ragerrors.Wrap(ragerrors.ErrIndexUnavailable, err)
	}

	if exists {
		// the similarity metric is fixed at creation time; a dimension or
		// metric drift against the configured embedder must fail boot, not
		// silently degrade retrieval quality
		info, err := db.QObj.GetCollectionInfo(ctx, db.collectionName)
		if err != nil {
			return ragerrors.Wrap(ragerrors.ErrIndexUnavailable, err)
		}
		params := info.GetConfig().GetParams().GetVectorsConfig().GetParams()
		if params.GetSize() != db.dimension {
			return fmt.Errorf("collection %q has dimension %d, embedder produces %d",
				db.collectionName, params.GetSize(), db.dimension)
		}
		if params.GetDistance() != qdrant.Distance_Cosine {
			return fmt.Errorf("collection %q uses distance %s, expected cosine",
				db.collectionName, params.GetDistance())
		}
		return nil
	}

	err = db.QObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: db.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     db.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return ragerrors.Wrap(ragerrors.ErrIndexUnavailable, err)
	}
	db.logger.Info("Created collection", "collectionName", db.collectionName)
	return nil
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, records []docmodel.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(records))
	for i, rec := range records {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(rec.Chunk.ID),
			Vectors: qdrant.NewVectors(rec.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":       rec.Chunk.Text,
				"source_doc_id": rec.Chunk.DocumentID,
				"chunk_id":      rec.Chunk.ID,
				"chunk_order":   int64(rec.Chunk.Ordinal),
				"start_offset":  int64(rec.Chunk.StartOffset),
				"end_offset":    int64(rec.Chunk.EndOffset),
				"model_version": rec.ModelVersion,
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collectionName,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return ragerrors.Wrap(ragerrors.ErrIndexUnavailable, fmt.Errorf("qdrant upsert failed: %w", err))
	}
	return nil
}

func (db *ClientHolder) DeleteChunks(ctx context.Context, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}
	ids := make([]*qdrant.PointId, len(chunkIDs))
	for i, id := range chunkIDs {
		ids[i] = qdrant.NewID(id)
	}

	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: db.collectionName,
		Points:         qdrant.NewPointsSelector(ids...),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return ragerrors.Wrap(ragerrors.ErrIndexUnavailable, err)
	}
	return nil
}

func (db *ClientHolder) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: db.collectionName,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("source_doc_id", documentID)},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return ragerrors.Wrap(ragerrors.ErrIndexUnavailable, err)
	}
	return nil
}

func (db *ClientHolder) ListChunkIDs(ctx context.Context, documentID string, modelVersion string) ([]string, error) {
	points, err := db.QObj.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: db.collectionName,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("source_doc_id", documentID),
				qdrant.NewMatch("model_version", modelVersion),
			},
		},
		// one corpus document stays well below this
		Limit:       qdrant.PtrOf(uint32(10000)),
		WithPayload: qdrant.NewWithPayload(false),
	})
	if err != nil {
		return nil, ragerrors.Wrap(ragerrors.ErrIndexUnavailable, err)
	}

	ids := make([]string, 0, len(points))
	for _, p := range points {
		ids = append(ids, p.GetId().GetUuid())
	}
	return ids, nil
}

func (db *ClientHolder) Query(ctx context.Context, vector []float32, k int, filter docmodel.QueryFilter) (docmodel.RetrievalResult, error) {
	var conditions []*qdrant.Condition
	if filter.DocumentID != "" {
		conditions = append(conditions, qdrant.NewMatch("source_doc_id", filter.DocumentID))
	}
	if filter.ModelVersion != "" {
		conditions = append(conditions, qdrant.NewMatch("model_version", filter.ModelVersion))
	}

	query := &qdrant.QueryPoints{
		CollectionName: db.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if len(conditions) > 0 {
		query.Filter = &qdrant.Filter{Must: conditions}
	}

	result, err := db.QObj.Query(ctx, query)
	if err != nil {
		db.logger.Error("Error querying Qdrant: ", "error:", err)
		return docmodel.RetrievalResult{}, ragerrors.Wrap(ragerrors.ErrIndexUnavailable, err)
	}

	hits := make([]docmodel.ScoredChunk, 0, len(result))
	for _, hit := range result {
		hits = append(hits, docmodel.ScoredChunk{
			Score: hit.GetScore(),
			Chunk: docmodel.Chunk{
				DocumentID:  hit.Payload["source_doc_id"].GetStringValue(),
				ID:          hit.Payload["chunk_id"].GetStringValue(),
				Ordinal:     int(hit.Payload["chunk_order"].GetIntegerValue()),
				Text:        hit.Payload["content"].GetStringValue(),
				StartOffset: int(hit.Payload["start_offset"].GetIntegerValue()),
				EndOffset:   int(hit.Payload["end_offset"].GetIntegerValue()),
			},
		})
	}

	return docmodel.RetrievalResult{Hits: rankHits(hits, k)}, nil
}

// rankHits re-sorts what qdrant returned: descending by score with the
// chunk-id tie-break, truncated to k, so identical queries always rank
// identically.
func rankHits(hits []docmodel.ScoredChunk, k int) []docmodel.ScoredChunk {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Chunk.ID < hits[j].Chunk.ID
	})
	if k >= 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

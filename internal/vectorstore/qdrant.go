package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/vietcare/health-rag/internal/document"
)

// CollectionName is the single Qdrant collection holding knowledge chunks.
const CollectionName = "health_knowledge"

// ErrQdrantUnreachable is returned when the Qdrant server does not answer
// health checks at startup.
var ErrQdrantUnreachable = errors.New("qdrant server unreachable")

// QdrantIndex is an alternative Index backend for deployments that run a
// Qdrant server. Similarity comes from the engine's cosine score rather than
// the flat index's 1/(1+distance) transform, so thresholds are configured per
// backend.
type QdrantIndex struct {
	client    *qdrant.Client
	dimension int
}

// NewQdrantIndex connects to Qdrant, verifies health with retry, and ensures
// the collection exists with the given vector dimension.
func NewQdrantIndex(host string, port, dimension int) (*QdrantIndex, error) {
	client, err := qdrant.NewClient(&qdrant.Config{Host: host, Port: port})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	q := &QdrantIndex{client: client, dimension: dimension}

	ctx := context.Background()
	if err := q.healthCheckWithRetry(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrQdrantUnreachable, err)
	}
	if err := q.ensureCollection(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return q, nil
}

// healthCheckWithRetry probes Qdrant with exponential backoff: initial
// interval 500ms, max interval 10s, max elapsed 30s.
func (q *QdrantIndex) healthCheckWithRetry(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error { return q.Health(ctx) }, backoff.WithContext(b, ctx))
}

// Health performs a single health check against Qdrant.
func (q *QdrantIndex) Health(ctx context.Context) error {
	result, err := q.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// ensureCollection creates the collection with cosine-distance vectors and a
// payload index on source if it does not already exist. Idempotent.
func (q *QdrantIndex) ensureCollection(ctx context.Context) error {
	collections, err := q.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	for _, name := range collections {
		if name == CollectionName {
			return nil
		}
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: CollectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(q.dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	for _, field := range []string{"source", "type"} {
		_, err := q.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: CollectionName,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		})
		if err != nil {
			return fmt.Errorf("create index for field %s: %w", field, err)
		}
	}
	return nil
}

// Add upserts entries in batches of 100 with retry. Dimensions are validated
// up front so a bad batch is rejected whole.
func (q *QdrantIndex) Add(ctx context.Context, entries []document.EmbeddedChunk) error {
	if len(entries) == 0 {
		return nil
	}
	for i, e := range entries {
		if len(e.Embedding) != q.dimension {
			return fmt.Errorf("%w: entry %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(e.Embedding), q.dimension)
		}
	}

	const batchSize = 100
	for i := 0; i < len(entries); i += batchSize {
		end := min(i+batchSize, len(entries))
		batch := entries[i:end]

		points := make([]*qdrant.PointStruct, len(batch))
		for j, e := range batch {
			points[j] = &qdrant.PointStruct{
				Id:      qdrant.NewIDUUID(uuid.New().String()),
				Vectors: qdrant.NewVectors(e.Embedding...),
				Payload: qdrant.NewValueMap(map[string]any{
					"content":      e.Content,
					"source":       e.Metadata.Source,
					"type":         e.Metadata.Type,
					"doc_id":       e.Metadata.ID,
					"title":        e.Metadata.Title,
					"chunk_index":  e.Metadata.ChunkIndex,
					"total_chunks": e.Metadata.TotalChunks,
				}),
			}
		}
		if err := q.upsertWithRetry(ctx, points); err != nil {
			return fmt.Errorf("upsert batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

func (q *QdrantIndex) upsertWithRetry(ctx context.Context, points []*qdrant.PointStruct) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	operation := func() error {
		_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: CollectionName,
			Points:         points,
		})
		return err
	}
	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}

// Search queries the collection and maps scored points back to Results.
func (q *QdrantIndex) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	if len(query) != q.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(query), q.dimension)
	}
	if k <= 0 {
		return []Result{}, nil
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: CollectionName,
		Query:          qdrant.NewQuery(query...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(false),
	})
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	results := make([]Result, 0, len(points))
	for i, p := range points {
		payload := p.Payload
		score := float64(p.Score)
		results = append(results, Result{
			Chunk: document.Chunk{
				Content: payload["content"].GetStringValue(),
				Metadata: document.Metadata{
					Source:      payload["source"].GetStringValue(),
					Type:        payload["type"].GetStringValue(),
					ID:          payload["doc_id"].GetIntegerValue(),
					Title:       payload["title"].GetStringValue(),
					ChunkIndex:  int(payload["chunk_index"].GetIntegerValue()),
					TotalChunks: int(payload["total_chunks"].GetIntegerValue()),
				},
			},
			Distance:   1 - score,
			Similarity: score,
			Rank:       i + 1,
		})
	}
	return results, nil
}

// Reset drops and recreates the collection.
func (q *QdrantIndex) Reset(ctx context.Context) error {
	if err := q.client.DeleteCollection(ctx, CollectionName); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return q.ensureCollection(ctx)
}

// Stats reports the collection's point count and the configured dimension.
func (q *QdrantIndex) Stats(ctx context.Context) (Stats, error) {
	info, err := q.client.GetCollectionInfo(ctx, CollectionName)
	if err != nil {
		return Stats{}, fmt.Errorf("collection info: %w", err)
	}
	return Stats{
		Count:     int(info.GetPointsCount()),
		Dimension: q.dimension,
		Backend:   "qdrant",
	}, nil
}

// Close releases the underlying client connection.
func (q *QdrantIndex) Close() error {
	if q.client != nil {
		return q.client.Close()
	}
	return nil
}

// Package vectorstore stores chunk embeddings and serves nearest-neighbor
// search. The Flat index is the default: exact, in-process, and deterministic,
// sized for a curated knowledge base rather than web scale. A Qdrant-backed
// index is available for deployments that already run one.
package vectorstore

import (
	"context"
	"errors"

	"github.com/vietcare/health-rag/internal/document"
)

var (
	// ErrDimensionMismatch is returned when an entry's vector length
	// disagrees with the index dimension. The whole batch is rejected.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrArtifactMissing is returned by Restore when a persisted artifact
	// cannot be found. The index keeps its prior state.
	ErrArtifactMissing = errors.New("index artifact missing")

	// ErrArtifactCorrupt is returned by Restore when the persisted
	// artifacts disagree with each other.
	ErrArtifactCorrupt = errors.New("index artifacts inconsistent")
)

// Result is one retrieved chunk. Distance is raw vector-space separation
// (lower = closer); Similarity is 1/(1+distance) in (0,1]; Rank is the
// 1-based position in the original search ordering.
type Result struct {
	document.Chunk
	Distance   float64
	Similarity float64
	Rank       int
}

// Stats reports the index's entry count and configured dimension.
type Stats struct {
	Count     int
	Dimension int
	Backend   string
}

// Index is the vector store contract the retriever depends on.
type Index interface {
	// Add appends entries in order. If any vector length disagrees with
	// the index dimension, the whole batch is rejected unapplied.
	Add(ctx context.Context, entries []document.EmbeddedChunk) error

	// Search returns up to k nearest entries, closest first. An empty
	// index returns an empty slice without error.
	Search(ctx context.Context, query []float32, k int) ([]Result, error)

	// Reset discards all entries; the dimension is unchanged.
	Reset(ctx context.Context) error

	// Stats reports entry count and dimension.
	Stats(ctx context.Context) (Stats, error)
}

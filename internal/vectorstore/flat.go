package vectorstore

import (
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vietcare/health-rag/internal/document"
)

// Flat is an exact nearest-neighbor index over squared Euclidean distance.
// Vectors and chunk metadata live in two parallel, append-only slices; entry i
// of one always corresponds to entry i of the other.
//
// Reads may run concurrently; Add, Reset, and Restore are exclusive.
type Flat struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
	chunks    []document.Chunk
}

// NewFlat creates an empty index for vectors of the given dimension.
func NewFlat(dimension int) (*Flat, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid dimension %d", dimension)
	}
	return &Flat{dimension: dimension}, nil
}

// Add appends entries in order. The batch is validated before any mutation:
// one bad vector rejects the whole batch and the index is unchanged.
func (f *Flat) Add(ctx context.Context, entries []document.EmbeddedChunk) error {
	if len(entries) == 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, e := range entries {
		if len(e.Embedding) != f.dimension {
			return fmt.Errorf("%w: entry %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(e.Embedding), f.dimension)
		}
	}
	for _, e := range entries {
		f.vectors = append(f.vectors, e.Embedding)
		f.chunks = append(f.chunks, e.Chunk)
	}
	return nil
}

// Search returns up to min(k, count) entries ordered by ascending squared
// Euclidean distance. Ties break by insertion order, first-inserted wins, so
// repeated searches over a fixed index are deterministic.
func (f *Flat) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(f.vectors) == 0 {
		return []Result{}, nil
	}
	if len(query) != f.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(query), f.dimension)
	}
	if k <= 0 {
		return []Result{}, nil
	}
	if k > len(f.vectors) {
		k = len(f.vectors)
	}

	distances := make([]float64, len(f.vectors))
	for i, v := range f.vectors {
		distances[i] = squaredL2(query, v)
	}

	order := make([]int, len(distances))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return distances[order[a]] < distances[order[b]]
	})

	results := make([]Result, 0, k)
	for rank, idx := range order[:k] {
		d := distances[idx]
		results = append(results, Result{
			Chunk:      f.chunks[idx],
			Distance:   d,
			Similarity: 1.0 / (1.0 + d),
			Rank:       rank + 1,
		})
	}
	return results, nil
}

// Reset discards all entries and metadata. The dimension is unchanged.
func (f *Flat) Reset(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vectors = nil
	f.chunks = nil
	return nil
}

// Stats reports entry count and dimension.
func (f *Flat) Stats(ctx context.Context) (Stats, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return Stats{Count: len(f.vectors), Dimension: f.dimension, Backend: "flat"}, nil
}

// indexArtifact is the serialized raw vector structure.
type indexArtifact struct {
	Dimension int
	Vectors   [][]float32
}

// metaArtifact is the serialized chunk sequence parallel to the vectors.
type metaArtifact struct {
	Dimension int
	Chunks    []document.Chunk
}

// Persist writes the index as two co-located artifacts sharing a base path:
// <base>.index holds the raw vectors, <base>.meta the parallel chunk
// sequence. A restored index reproduces identical search results.
func (f *Flat) Persist(basePath string) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(basePath), 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}
	if err := writeGob(basePath+".index", indexArtifact{Dimension: f.dimension, Vectors: f.vectors}); err != nil {
		return fmt.Errorf("write index artifact: %w", err)
	}
	if err := writeGob(basePath+".meta", metaArtifact{Dimension: f.dimension, Chunks: f.chunks}); err != nil {
		return fmt.Errorf("write meta artifact: %w", err)
	}
	return nil
}

// Restore loads both artifacts and swaps them in atomically. A missing
// artifact returns ErrArtifactMissing, mismatched artifacts return
// ErrArtifactCorrupt; in both cases the index keeps its prior state.
func (f *Flat) Restore(basePath string) error {
	var idx indexArtifact
	if err := readGob(basePath+".index", &idx); err != nil {
		return err
	}
	var meta metaArtifact
	if err := readGob(basePath+".meta", &meta); err != nil {
		return err
	}

	if len(idx.Vectors) != len(meta.Chunks) || idx.Dimension != meta.Dimension {
		return fmt.Errorf("%w: %d vectors vs %d chunks (dim %d vs %d)",
			ErrArtifactCorrupt, len(idx.Vectors), len(meta.Chunks), idx.Dimension, meta.Dimension)
	}
	for i, v := range idx.Vectors {
		if len(v) != idx.Dimension {
			return fmt.Errorf("%w: vector %d has %d dimensions, expected %d",
				ErrArtifactCorrupt, i, len(v), idx.Dimension)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.dimension = idx.Dimension
	f.vectors = idx.Vectors
	f.chunks = meta.Chunks
	return nil
}

func writeGob(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return gob.NewEncoder(file).Encode(v)
}

func readGob(path string, v any) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrArtifactMissing, path)
		}
		return err
	}
	defer file.Close()
	if err := gob.NewDecoder(file).Decode(v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrArtifactCorrupt, path, err)
	}
	return nil
}

// squaredL2 is the squared Euclidean distance between two vectors.
func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

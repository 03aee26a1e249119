// Package embedding maps text to fixed-dimension vectors for similarity
// search. The dimension is fixed for the lifetime of an embedder instance;
// the vector index depends on that invariant.
package embedding

import (
	"context"
	"math"
)

// Embedder converts text into fixed-length vectors.
type Embedder interface {
	// Embed encodes one text. Blank input yields a zero-filled vector.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch encodes texts together for throughput. Output ordering
	// matches input ordering exactly.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension reports the vector length this embedder produces.
	Dimension() int
}

// Similarity computes the cosine similarity of the embeddings of two texts,
// in [-1, 1].
func Similarity(ctx context.Context, e Embedder, a, b string) (float64, error) {
	va, err := e.Embed(ctx, a)
	if err != nil {
		return 0, err
	}
	vb, err := e.Embed(ctx, b)
	if err != nil {
		return 0, err
	}
	return Cosine(va, vb), nil
}

// Cosine returns the cosine similarity of two vectors, 0 when either has zero
// magnitude or lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

package retriever

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietcare/health-rag/internal/document"
	"github.com/vietcare/health-rag/internal/vectorstore"
)

// mapEmbedder returns a fixed vector per known text and a zero vector
// otherwise, so tests control the distance ordering exactly.
type mapEmbedder struct {
	dim     int
	vectors map[string][]float32
}

func (m *mapEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return make([]float32, m.dim), nil
}

func (m *mapEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mapEmbedder) Dimension() int { return m.dim }

func buildIndex(t *testing.T, emb *mapEmbedder, chunks ...document.Chunk) *vectorstore.Flat {
	t.Helper()
	index, err := vectorstore.NewFlat(emb.dim)
	require.NoError(t, err)

	entries := make([]document.EmbeddedChunk, len(chunks))
	for i, chunk := range chunks {
		vec, err := emb.Embed(context.Background(), chunk.Content)
		require.NoError(t, err)
		entries[i] = document.EmbeddedChunk{Chunk: chunk, Embedding: vec}
	}
	require.NoError(t, index.Add(context.Background(), entries))
	return index
}

func TestRetrieve_OrdersByRelevance(t *testing.T) {
	ctx := context.Background()
	emb := &mapEmbedder{dim: 2, vectors: map[string][]float32{
		"Fever and headache indicate flu. [source: doc1]": {1, 0},
		"Drink water and rest for flu. [source: doc2]":    {0.9, 0.1},
		"What helps with flu symptoms?":                   {0.95, 0.05},
	}}
	index := buildIndex(t, emb,
		document.Chunk{Content: "Fever and headache indicate flu. [source: doc1]", Metadata: document.Metadata{Source: "doc1"}},
		document.Chunk{Content: "Drink water and rest for flu. [source: doc2]", Metadata: document.Metadata{Source: "doc2"}},
	)

	r := New(emb, index, 5)
	results, err := r.Retrieve(ctx, "What helps with flu symptoms?", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "doc1", results[0].Metadata.Source)
	assert.Equal(t, "doc2", results[1].Metadata.Source)
	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, 2, results[1].Rank)
	assert.GreaterOrEqual(t, results[0].Similarity, results[1].Similarity)
}

func TestRetrieve_DefaultTopK(t *testing.T) {
	ctx := context.Background()
	emb := &mapEmbedder{dim: 2, vectors: map[string][]float32{}}

	index, err := vectorstore.NewFlat(2)
	require.NoError(t, err)
	var entries []document.EmbeddedChunk
	for i := 0; i < 10; i++ {
		entries = append(entries, document.EmbeddedChunk{
			Chunk:     document.Chunk{Content: "c", Metadata: document.Metadata{Source: "s"}},
			Embedding: []float32{float32(i), 0},
		})
	}
	require.NoError(t, index.Add(ctx, entries))

	r := New(emb, index, 3)
	results, err := r.Retrieve(ctx, "anything", 0)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestRetrieveWithThreshold_PreservesRanks(t *testing.T) {
	ctx := context.Background()
	emb := &mapEmbedder{dim: 2, vectors: map[string][]float32{
		"close":  {0.1, 0},
		"medium": {1, 0},
		"far":    {5, 0},
		"query":  {0, 0},
	}}
	index := buildIndex(t, emb,
		document.Chunk{Content: "close", Metadata: document.Metadata{Source: "a"}},
		document.Chunk{Content: "medium", Metadata: document.Metadata{Source: "b"}},
		document.Chunk{Content: "far", Metadata: document.Metadata{Source: "c"}},
	)
	r := New(emb, index, 5)

	all, err := r.RetrieveWithThreshold(ctx, "query", 0, 3)
	require.NoError(t, err)
	require.Len(t, all, 3)

	// Threshold of 0.4 keeps "close" (sim ~0.99) and "medium" (sim 0.5)
	// but drops "far" (sim ~0.038).
	filtered, err := r.RetrieveWithThreshold(ctx, "query", 0.4, 3)
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, "close", filtered[0].Content)
	assert.Equal(t, "medium", filtered[1].Content)

	// Ranks come from the unfiltered ordering.
	assert.Equal(t, 1, filtered[0].Rank)
	assert.Equal(t, 2, filtered[1].Rank)

	// A filtered set is always a prefix-respecting subsequence of the full set.
	j := 0
	for _, res := range all {
		if j < len(filtered) && res.Content == filtered[j].Content {
			j++
		}
	}
	assert.Equal(t, len(filtered), j)
}

func TestRetrieveWithThreshold_DropsEverything(t *testing.T) {
	ctx := context.Background()
	emb := &mapEmbedder{dim: 2, vectors: map[string][]float32{
		"far":   {10, 0},
		"query": {0, 0},
	}}
	index := buildIndex(t, emb,
		document.Chunk{Content: "far", Metadata: document.Metadata{Source: "a"}},
	)
	r := New(emb, index, 5)

	filtered, err := r.RetrieveWithThreshold(ctx, "query", 0.9, 3)
	require.NoError(t, err)
	assert.Empty(t, filtered)
}

func TestFormatAsContext_Labels(t *testing.T) {
	ctx := context.Background()
	emb := &mapEmbedder{dim: 2, vectors: map[string][]float32{
		"flu facts": {1, 0},
		"query":     {1, 0},
	}}
	index := buildIndex(t, emb,
		document.Chunk{Content: "flu facts", Metadata: document.Metadata{Source: "doc1"}},
	)
	r := New(emb, index, 5)

	formatted, err := r.FormatAsContext(ctx, "query", 1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(formatted, "[Document 1 - Source: doc1 - Relevance: 1.00]\n"), formatted)
	assert.Contains(t, formatted, "flu facts")
}

func TestFormatAsContext_EmptyIndex(t *testing.T) {
	ctx := context.Background()
	emb := &mapEmbedder{dim: 2, vectors: map[string][]float32{}}
	index, err := vectorstore.NewFlat(2)
	require.NoError(t, err)
	r := New(emb, index, 5)

	formatted, err := r.FormatAsContext(ctx, "query", 3)
	require.NoError(t, err)
	assert.Equal(t, NoInformationFound, formatted)
}

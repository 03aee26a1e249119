package vectorstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietcare/health-rag/internal/document"
)

func entry(content, source string, vec ...float32) document.EmbeddedChunk {
	return document.EmbeddedChunk{
		Chunk: document.Chunk{
			Content:  content,
			Metadata: document.Metadata{Source: source},
		},
		Embedding: vec,
	}
}

func TestFlat_AddAndSearch(t *testing.T) {
	ctx := context.Background()
	index, err := NewFlat(2)
	require.NoError(t, err)

	require.NoError(t, index.Add(ctx, []document.EmbeddedChunk{
		entry("near", "a", 1, 0),
		entry("far", "b", 10, 0),
		entry("nearest", "c", 0.5, 0),
	}))

	results, err := index.Search(ctx, []float32{0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "nearest", results[0].Content)
	assert.Equal(t, "near", results[1].Content)
	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, 2, results[1].Rank)
	assert.Less(t, results[0].Distance, results[1].Distance)
}

func TestFlat_SimilarityFromDistance(t *testing.T) {
	ctx := context.Background()
	index, err := NewFlat(2)
	require.NoError(t, err)

	require.NoError(t, index.Add(ctx, []document.EmbeddedChunk{
		entry("exact", "a", 3, 4),
	}))

	results, err := index.Search(ctx, []float32{3, 4}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].Distance)
	assert.Equal(t, 1.0, results[0].Similarity)

	results, err = index.Search(ctx, []float32{3, 5}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, results[0].Distance)
	assert.InDelta(t, 0.5, results[0].Similarity, 1e-9)
}

func TestFlat_TiesBreakByInsertionOrder(t *testing.T) {
	ctx := context.Background()
	index, err := NewFlat(2)
	require.NoError(t, err)

	// Equidistant from the origin query.
	require.NoError(t, index.Add(ctx, []document.EmbeddedChunk{
		entry("first", "a", 1, 0),
		entry("second", "b", 0, 1),
		entry("third", "c", -1, 0),
	}))

	for i := 0; i < 5; i++ {
		results, err := index.Search(ctx, []float32{0, 0}, 3)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "first", results[0].Content)
		assert.Equal(t, "second", results[1].Content)
		assert.Equal(t, "third", results[2].Content)
	}
}

func TestFlat_KExceedsCount(t *testing.T) {
	ctx := context.Background()
	index, err := NewFlat(2)
	require.NoError(t, err)

	require.NoError(t, index.Add(ctx, []document.EmbeddedChunk{
		entry("only", "a", 1, 1),
	}))

	results, err := index.Search(ctx, []float32{0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestFlat_EmptyIndexSearch(t *testing.T) {
	ctx := context.Background()
	index, err := NewFlat(2)
	require.NoError(t, err)

	results, err := index.Search(ctx, []float32{0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFlat_DimensionMismatchRejectsWholeBatch(t *testing.T) {
	ctx := context.Background()
	index, err := NewFlat(2)
	require.NoError(t, err)

	err = index.Add(ctx, []document.EmbeddedChunk{
		entry("good", "a", 1, 0),
		entry("bad", "b", 1, 0, 0),
	})
	require.ErrorIs(t, err, ErrDimensionMismatch)

	// The valid entry must not have been added either.
	stats, err := index.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Count)
}

func TestFlat_QueryDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	index, err := NewFlat(2)
	require.NoError(t, err)
	require.NoError(t, index.Add(ctx, []document.EmbeddedChunk{entry("x", "a", 1, 0)}))

	_, err = index.Search(ctx, []float32{1, 0, 0}, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestFlat_Reset(t *testing.T) {
	ctx := context.Background()
	index, err := NewFlat(2)
	require.NoError(t, err)
	require.NoError(t, index.Add(ctx, []document.EmbeddedChunk{entry("x", "a", 1, 0)}))

	require.NoError(t, index.Reset(ctx))

	stats, err := index.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Count)
	assert.Equal(t, 2, stats.Dimension)
}

func TestFlat_PersistRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	base := filepath.Join(t.TempDir(), "store", "health_index")

	index, err := NewFlat(2)
	require.NoError(t, err)
	require.NoError(t, index.Add(ctx, []document.EmbeddedChunk{
		entry("flu symptoms", "doc1", 1, 2),
		entry("flu treatment", "doc2", 3, 4),
	}))
	require.NoError(t, index.Persist(base))

	restored, err := NewFlat(2)
	require.NoError(t, err)
	require.NoError(t, restored.Restore(base))

	query := []float32{1, 2}
	want, err := index.Search(ctx, query, 2)
	require.NoError(t, err)
	got, err := restored.Search(ctx, query, 2)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFlat_RestoreMissingArtifact(t *testing.T) {
	index, err := NewFlat(2)
	require.NoError(t, err)

	err = index.Restore(filepath.Join(t.TempDir(), "nothing_here"))
	assert.ErrorIs(t, err, ErrArtifactMissing)
}

func TestFlat_RestoreMismatchedArtifacts(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	baseA := filepath.Join(dir, "a")
	baseB := filepath.Join(dir, "b")

	one, err := NewFlat(2)
	require.NoError(t, err)
	require.NoError(t, one.Add(ctx, []document.EmbeddedChunk{entry("x", "a", 1, 0)}))
	require.NoError(t, one.Persist(baseA))

	two, err := NewFlat(2)
	require.NoError(t, err)
	require.NoError(t, two.Add(ctx, []document.EmbeddedChunk{
		entry("x", "a", 1, 0),
		entry("y", "b", 0, 1),
	}))
	require.NoError(t, two.Persist(baseB))

	// Pair a's vectors with b's metadata.
	require.NoError(t, os.Rename(baseB+".meta", baseA+".meta"))

	index, err := NewFlat(2)
	require.NoError(t, err)
	err = index.Restore(baseA)
	assert.ErrorIs(t, err, ErrArtifactCorrupt)

	// Failed restore leaves the index untouched.
	stats, err := index.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Count)
}

func TestFlat_RestoreCorruptArtifact(t *testing.T) {
	base := filepath.Join(t.TempDir(), "broken")
	require.NoError(t, os.WriteFile(base+".index", []byte("not a gob stream"), 0o644))
	require.NoError(t, os.WriteFile(base+".meta", []byte("not a gob stream"), 0o644))

	index, err := NewFlat(2)
	require.NoError(t, err)
	assert.ErrorIs(t, index.Restore(base), ErrArtifactCorrupt)
}

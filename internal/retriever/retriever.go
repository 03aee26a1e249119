// Package retriever composes the embedder and the vector index into similarity
// search over the knowledge base, with thresholding and context formatting.
package retriever

import (
	"context"
	"fmt"
	"strings"

	"github.com/vietcare/health-rag/internal/embedding"
	"github.com/vietcare/health-rag/internal/vectorstore"
)

// NoInformationFound is the sentinel context returned when retrieval produces
// zero results. Callers treat it as "ground truth absent", never as content.
const NoInformationFound = "No relevant information found."

// contextSeparator joins formatted result blocks.
const contextSeparator = "\n\n---\n\n"

// Retriever embeds queries and searches the index.
type Retriever struct {
	embedder embedding.Embedder
	index    vectorstore.Index
	topK     int
}

// New creates a Retriever. topK is the default result count used when a call
// passes topK <= 0.
func New(embedder embedding.Embedder, index vectorstore.Index, topK int) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{embedder: embedder, index: index, topK: topK}
}

// Retrieve embeds the query and returns the topK nearest chunks, closest
// first. topK <= 0 selects the configured default.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]vectorstore.Result, error) {
	if topK <= 0 {
		topK = r.topK
	}
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := r.index.Search(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return results, nil
}

// RetrieveWithThreshold filters Retrieve's results to those with similarity of
// at least minSimilarity. Survivors keep their original rank values; rank
// reflects position in the unfiltered ordering, not the filtered one.
func (r *Retriever) RetrieveWithThreshold(ctx context.Context, query string, minSimilarity float64, topK int) ([]vectorstore.Result, error) {
	results, err := r.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	filtered := make([]vectorstore.Result, 0, len(results))
	for _, res := range results {
		if res.Similarity >= minSimilarity {
			filtered = append(filtered, res)
		}
	}
	return filtered, nil
}

// FormatAsContext retrieves for the query and renders each result as a
// labeled block with its relevance figure. Zero results yield the
// NoInformationFound sentinel.
func (r *Retriever) FormatAsContext(ctx context.Context, query string, topK int) (string, error) {
	results, err := r.Retrieve(ctx, query, topK)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return NoInformationFound, nil
	}

	blocks := make([]string, len(results))
	for i, res := range results {
		blocks[i] = fmt.Sprintf("[Document %d - Source: %s - Relevance: %.2f]\n%s",
			i+1, res.Metadata.Source, res.Similarity, res.Content)
	}
	return strings.Join(blocks, contextSeparator), nil
}

// Stats reports the underlying index state plus retrieval defaults.
func (r *Retriever) Stats(ctx context.Context) (vectorstore.Stats, error) {
	return r.index.Stats(ctx)
}

// TopK returns the configured default result count.
func (r *Retriever) TopK() int { return r.topK }

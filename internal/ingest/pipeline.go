// Package ingest turns knowledge sources (document files, markdown, the
// SQLite knowledge base) into embedded chunks in the vector index.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vietcare/health-rag/internal/chunker"
	"github.com/vietcare/health-rag/internal/document"
	"github.com/vietcare/health-rag/internal/embedding"
	"github.com/vietcare/health-rag/internal/vectorstore"
)

// Result contains statistics about one ingestion run.
type Result struct {
	TotalDocs      int
	TotalChunks    int
	SuccessfulDocs int
	FailedDocs     []FailedDoc
	Duration       time.Duration
}

// FailedDoc records a document that could not be ingested.
type FailedDoc struct {
	Source string
	Reason string
}

// Pipeline orchestrates chunking, embedding and indexing.
type Pipeline struct {
	chunker  *chunker.Chunker
	embedder embedding.Embedder
	index    vectorstore.Index
	logger   *slog.Logger
}

// NewPipeline creates a pipeline over the given components.
func NewPipeline(ck *chunker.Chunker, emb embedding.Embedder, index vectorstore.Index, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		chunker:  ck,
		embedder: emb,
		index:    index,
		logger:   logger,
	}
}

// IndexDocuments ingests the documents one by one. A document that fails to
// embed or store is recorded and skipped; the rest of the batch continues.
func (p *Pipeline) IndexDocuments(ctx context.Context, docs []document.Document) (*Result, error) {
	start := time.Now()
	result := &Result{TotalDocs: len(docs)}
	p.logger.Info("starting ingestion", "documents", len(docs))

	for _, doc := range docs {
		chunks, err := p.indexDocument(ctx, doc)
		if err != nil {
			p.logger.Warn("failed to ingest document", "source", doc.Metadata.Source, "error", err)
			result.FailedDocs = append(result.FailedDocs, FailedDoc{
				Source: doc.Metadata.Source,
				Reason: err.Error(),
			})
			continue
		}
		result.SuccessfulDocs++
		result.TotalChunks += chunks
	}

	result.Duration = time.Since(start)
	p.logger.Info("ingestion complete",
		"successful", result.SuccessfulDocs,
		"failed", len(result.FailedDocs),
		"chunks", result.TotalChunks,
		"duration", result.Duration,
	)
	return result, nil
}

// indexDocument chunks, embeds and stores a single document, returning the
// number of chunks written.
func (p *Pipeline) indexDocument(ctx context.Context, doc document.Document) (int, error) {
	chunks := p.chunker.Split(doc.Content, doc.Metadata)
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	embeddings, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed: %w", err)
	}

	embedded := make([]document.EmbeddedChunk, len(chunks))
	for i, chunk := range chunks {
		embedded[i] = document.EmbeddedChunk{Chunk: chunk, Embedding: embeddings[i]}
	}
	if err := p.index.Add(ctx, embedded); err != nil {
		return 0, fmt.Errorf("index: %w", err)
	}

	p.logger.Debug("ingested document", "source", doc.Metadata.Source, "chunks", len(chunks))
	return len(chunks), nil
}

// Package document defines the record types flowing through the RAG pipeline:
// raw documents, chunks produced by splitting, and embedded chunks ready for
// indexing.
package document

import "errors"

// ErrMissingSource is returned when a document is constructed without a source
// identifier. Every answer cites its sources, so the field is mandatory.
var ErrMissingSource = errors.New("document metadata missing source")

// Metadata is the closed set of fields a document may carry. Source is
// required; the rest are optional provenance and chunking markers.
type Metadata struct {
	Source string // citation label, e.g. "health_guide.pdf" or "database - symptoms"
	Type   string // "txt", "md", "pdf", "database"
	ID     int64  // numeric row/document ID when the source has one
	Title  string

	// Populated by the chunker. TotalChunks > 0 marks a character-split chunk;
	// SentenceEnd > 0 marks a sentence-split chunk.
	ChunkIndex    int
	TotalChunks   int
	SentenceStart int
	SentenceEnd   int
}

// Document is an immutable unit of ingested text.
type Document struct {
	Content  string
	Metadata Metadata
}

// New validates and constructs a Document. Source must be non-empty.
func New(content string, meta Metadata) (Document, error) {
	if meta.Source == "" {
		return Document{}, ErrMissingSource
	}
	return Document{Content: content, Metadata: meta}, nil
}

// Chunk is a bounded segment of a parent document, the unit of embedding and
// retrieval. Its metadata is a copy of the parent's plus chunk markers, so
// chunks never share mutable state.
type Chunk struct {
	Content  string
	Metadata Metadata
}

// EmbeddedChunk pairs a chunk with its embedding vector. The vector length
// must match the target index's dimension at ingestion time.
type EmbeddedChunk struct {
	Chunk
	Embedding []float32
}

package chunker

import (
	"strings"

	"github.com/vietcare/health-rag/internal/document"
)

var sentenceTerminators = []string{". ", "! ", "? "}

// SplitBySentences groups a fixed number of sentences per chunk instead of
// using a character budget. Used when paragraph structure is unreliable.
// Metadata carries chunk_index plus the sentence range covered.
func SplitBySentences(text string, perChunk int, meta document.Metadata) []document.Chunk {
	if perChunk <= 0 {
		perChunk = 5
	}
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []document.Chunk
	for i := 0; i < len(sentences); i += perChunk {
		end := min(i+perChunk, len(sentences))
		m := meta
		m.ChunkIndex = len(chunks)
		m.SentenceStart = i
		m.SentenceEnd = end
		chunks = append(chunks, document.Chunk{
			Content:  strings.Join(sentences[i:end], " "),
			Metadata: m,
		})
	}
	return chunks
}

// splitSentences breaks text on sentence terminators, keeping the terminator
// with its sentence and dropping blanks.
func splitSentences(text string) []string {
	const marker = "\x00"
	for _, sep := range sentenceTerminators {
		text = strings.ReplaceAll(text, sep, strings.TrimRight(sep, " ")+marker)
	}
	parts := strings.Split(text, marker)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// Package chunker splits documents into bounded, overlapping text segments
// suitable for embedding. The recursive splitter tries coarse separators
// (paragraph, line, sentence) first and only falls back to finer ones when a
// piece still exceeds the size limit.
package chunker

import (
	"strings"

	"github.com/vietcare/health-rag/internal/document"
)

// DefaultSeparators is the priority order used when none is supplied. The
// trailing empty string enables the character-level fallback.
var DefaultSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", "; ", ", ", " ", ""}

// Chunker splits text into chunks of at most Size runes with Overlap trailing
// runes carried into the next chunk.
type Chunker struct {
	size       int
	overlap    int
	separators []string
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithSeparators overrides the separator priority list.
func WithSeparators(seps []string) Option {
	return func(c *Chunker) { c.separators = seps }
}

// New creates a Chunker. Overlap must be smaller than size; values out of
// range fall back to size/5.
func New(size, overlap int, opts ...Option) *Chunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}
	c := &Chunker{size: size, overlap: overlap, separators: DefaultSeparators}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Split divides text into chunks, copying meta into each chunk and adding
// chunk_index/total_chunks markers. Empty or whitespace-only input yields nil.
func (c *Chunker) Split(text string, meta document.Metadata) []document.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	pieces := c.splitRecursive(text, c.separators)

	chunks := make([]document.Chunk, 0, len(pieces))
	for _, p := range pieces {
		if strings.TrimSpace(p) == "" {
			continue
		}
		chunks = append(chunks, document.Chunk{Content: p})
	}
	for i := range chunks {
		m := meta
		m.ChunkIndex = i
		m.TotalChunks = len(chunks)
		chunks[i].Metadata = m
	}
	return chunks
}

// SplitDocuments splits a batch of documents and concatenates the results.
func (c *Chunker) SplitDocuments(docs []document.Document) []document.Chunk {
	var all []document.Chunk
	for _, d := range docs {
		all = append(all, c.Split(d.Content, d.Metadata)...)
	}
	return all
}

// splitRecursive breaks text on the highest-priority separator present, then
// merges the resulting pieces back into chunks within the size budget.
// Oversized pieces recurse with the remaining, finer separators.
func (c *Chunker) splitRecursive(text string, separators []string) []string {
	sep := ""
	var rest []string
	for i, s := range separators {
		if s == "" {
			sep = ""
			rest = nil
			break
		}
		if strings.Contains(text, s) {
			sep = s
			rest = separators[i+1:]
			break
		}
	}

	var splits []string
	if sep == "" {
		splits = hardSplit(text, c.size)
	} else {
		splits = strings.SplitAfter(text, sep)
	}

	var final []string
	var within []string // pieces already under the budget, pending merge
	for _, s := range splits {
		if runeLen(s) <= c.size {
			within = append(within, s)
			continue
		}
		final = append(final, c.merge(within)...)
		within = nil
		if len(rest) == 0 {
			// Atomic run longer than the budget with no finer separator left.
			final = append(final, s)
			continue
		}
		final = append(final, c.splitRecursive(s, rest)...)
	}
	return append(final, c.merge(within)...)
}

// merge accumulates pieces into chunks of at most size runes. Each emitted
// chunk seeds the next with its trailing overlap runes.
func (c *Chunker) merge(pieces []string) []string {
	var out []string
	var buf string
	for _, p := range pieces {
		if buf != "" && runeLen(buf)+runeLen(p) > c.size {
			out = append(out, buf)
			buf = tailRunes(buf, c.overlap)
			// The carried overlap must leave room for the next piece.
			if spare := c.size - runeLen(p); runeLen(buf) > spare {
				buf = tailRunes(buf, max(spare, 0))
			}
		}
		buf += p
	}
	if buf != "" {
		out = append(out, buf)
	}
	return out
}

// hardSplit cuts text into size-rune slices, the character-level fallback.
func hardSplit(text string, size int) []string {
	runes := []rune(text)
	var out []string
	for len(runes) > size {
		out = append(out, string(runes[:size]))
		runes = runes[size:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

func runeLen(s string) int { return len([]rune(s)) }

func tailRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

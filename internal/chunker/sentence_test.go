package chunker

import (
	"strings"
	"testing"

	"github.com/vietcare/health-rag/internal/document"
)

func TestSplitBySentences_Grouping(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 12; i++ {
		b.WriteString("This is a sentence. ")
	}
	chunks := SplitBySentences(b.String(), 5, document.Metadata{Source: "doc"})

	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks for 12 sentences at 5 per chunk, got %d", len(chunks))
	}

	ranges := [][2]int{{0, 5}, {5, 10}, {10, 12}}
	for i, chunk := range chunks {
		if chunk.Metadata.ChunkIndex != i {
			t.Errorf("Chunk %d has index %d", i, chunk.Metadata.ChunkIndex)
		}
		if chunk.Metadata.SentenceStart != ranges[i][0] || chunk.Metadata.SentenceEnd != ranges[i][1] {
			t.Errorf("Chunk %d covers [%d,%d), expected [%d,%d)",
				i, chunk.Metadata.SentenceStart, chunk.Metadata.SentenceEnd,
				ranges[i][0], ranges[i][1])
		}
	}
}

func TestSplitBySentences_MixedTerminators(t *testing.T) {
	text := "Is it serious? It can be! Rest helps. Stay hydrated."
	chunks := SplitBySentences(text, 2, document.Metadata{Source: "doc"})

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks for 4 sentences at 2 per chunk, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0].Content, "Is it serious?") {
		t.Errorf("First chunk missing question: %q", chunks[0].Content)
	}
	if !strings.Contains(chunks[1].Content, "Rest helps.") {
		t.Errorf("Second chunk missing statement: %q", chunks[1].Content)
	}
}

func TestSplitBySentences_DefaultGroupSize(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 7; i++ {
		b.WriteString("Short sentence. ")
	}
	chunks := SplitBySentences(b.String(), 0, document.Metadata{Source: "doc"})

	if len(chunks) != 2 {
		t.Fatalf("Expected default of 5 per chunk (2 chunks for 7), got %d", len(chunks))
	}
}

func TestSplitBySentences_Empty(t *testing.T) {
	if chunks := SplitBySentences("", 5, document.Metadata{Source: "doc"}); chunks != nil {
		t.Errorf("Expected nil for empty input, got %d chunks", len(chunks))
	}
}

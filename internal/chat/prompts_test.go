package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietcare/health-rag/internal/document"
	"github.com/vietcare/health-rag/internal/llm"
	"github.com/vietcare/health-rag/internal/retriever"
	"github.com/vietcare/health-rag/internal/vectorstore"
)

func result(content, source string) vectorstore.Result {
	return vectorstore.Result{
		Chunk: document.Chunk{
			Content:  content,
			Metadata: document.Metadata{Source: source},
		},
	}
}

func TestIsGreeting(t *testing.T) {
	for _, text := range []string{"Hello!", "hi there", "Xin chào", "chào bạn nhé", "HEY"} {
		assert.True(t, IsGreeting(text), "expected greeting: %q", text)
	}
	for _, text := range []string{"What causes fever?", "I have a headache", ""} {
		assert.False(t, IsGreeting(text), "not a greeting: %q", text)
	}
}

func TestIsFarewell(t *testing.T) {
	for _, text := range []string{"Goodbye", "bye!", "Tạm biệt nhé", "thanks, that helped"} {
		assert.True(t, IsFarewell(text), "expected farewell: %q", text)
	}
	assert.False(t, IsFarewell("Is flu contagious?"))
}

func TestFormatContext_Labels(t *testing.T) {
	results := []vectorstore.Result{
		result("Fever and headache indicate flu. [source: doc1]", "doc1"),
		result("Drink water and rest for flu. [source: doc2]", "doc2"),
	}
	context := FormatContext(results)

	assert.Contains(t, context, "[Document 1 - Source: doc1]\nFever and headache indicate flu. [source: doc1]")
	assert.Contains(t, context, "[Document 2 - Source: doc2]\nDrink water and rest for flu. [source: doc2]")
	assert.Contains(t, context, "\n---\n")
}

func TestFormatContext_Empty(t *testing.T) {
	assert.Equal(t, retriever.NoInformationFound, FormatContext(nil))
}

func TestFormatSources_DedupPreservesOrder(t *testing.T) {
	results := []vectorstore.Result{
		result("a", "doc2"),
		result("b", "doc1"),
		result("c", "doc2"),
		result("d", "Doc2"), // case-sensitive, kept separately
	}
	assert.Equal(t, "doc2, doc1, Doc2", FormatSources(results))
}

func TestFormatSources_Empty(t *testing.T) {
	assert.Equal(t, "", FormatSources(nil))
}

func TestBuildMessages_Structure(t *testing.T) {
	history := []Turn{
		{User: "q1", Bot: "a1"},
		{User: "q2", Bot: "a2"},
	}
	messages := BuildMessages("What about flu?", "some context", history)

	require.Len(t, messages, 6)
	assert.Equal(t, llm.RoleSystem, messages[0].Role)
	assert.Equal(t, SystemPrompt, messages[0].Content)

	assert.Equal(t, llm.RoleUser, messages[1].Role)
	assert.Equal(t, "q1", messages[1].Content)
	assert.Equal(t, llm.RoleAssistant, messages[2].Role)
	assert.Equal(t, "a1", messages[2].Content)

	final := messages[len(messages)-1]
	assert.Equal(t, llm.RoleUser, final.Role)
	assert.Contains(t, final.Content, "some context")
	assert.Contains(t, final.Content, "QUESTION: What about flu?")
}

func TestBuildMessages_TruncatesHistory(t *testing.T) {
	var history []Turn
	for i := 0; i < 9; i++ {
		history = append(history, Turn{User: "u", Bot: "b"})
	}
	messages := BuildMessages("q", "ctx", history)

	// System + 5 replayed turns + final question.
	assert.Len(t, messages, 1+2*MaxHistoryTurns+1)
}

func TestRagTemplate_ContainsGroundingRules(t *testing.T) {
	messages := BuildMessages("q", "ctx", nil)
	final := messages[len(messages)-1].Content
	assert.True(t, strings.Contains(final, "CONTEXT"))
	assert.True(t, strings.Contains(final, "ANSWER:"))
}

// Package chat orchestrates retrieval-augmented conversations: prompt
// assembly, small-talk interception, bounded history, and source annotation.
package chat

import (
	"fmt"
	"strings"

	"github.com/vietcare/health-rag/internal/llm"
	"github.com/vietcare/health-rag/internal/retriever"
	"github.com/vietcare/health-rag/internal/vectorstore"
)

// SystemPrompt is the fixed persona and safety policy sent as the system
// message on every request.
const SystemPrompt = `You are a friendly AI health information assistant.

YOUR TASK:
- Provide basic, reliable health information
- Answer ONLY from the information given in the CONTEXT
- Keep answers short (2-4 sentences), focused and easy to understand
- Always cite the SOURCE of the information at the end of your answer

YOU MUST NOT:
- Invent information that is not in the context
- Diagnose the user's condition
- Prescribe medication or give specific dosages
- Replace the advice of a doctor

IMPORTANT RULES:
1. If the context contains no relevant information, reply:
   "I don't have enough information to answer this question. Please consult a doctor."
2. If the user asks for a diagnosis, reply:
   "I cannot diagnose conditions. Please see a doctor for a proper examination."
3. If the user asks about medication or dosage, reply:
   "I cannot prescribe medication. Please consult a doctor or pharmacist."
4. For potentially serious symptoms, always add:
   "This symptom may be serious. Please see a doctor immediately!"

Answer in a friendly, professional and responsible way.`

// ragPromptTemplate wraps the question and retrieved context into the final
// user message, restating the grounding instructions.
const ragPromptTemplate = `Based on the following CONTEXT, answer the user's question.

CONTEXT:
%s

QUESTION: %s

Remember:
- Answer only from the CONTEXT above
- Keep it short and focused (2-4 sentences)
- Cite the source at the end
- If the context has no relevant information, say so explicitly

ANSWER:`

// SourcePrefix marks the appended source line. The orchestrator only appends
// one when the answer does not already contain this marker.
const SourcePrefix = "Sources:"

// GreetingResponses is the fixed set a greeting is answered from, sampled
// uniformly.
var GreetingResponses = []string{
	"Hello! I'm an AI health information assistant. How can I help you today?",
	"Hi there! What health topic would you like to ask about?",
	"Hello! Tell me what health question is on your mind.",
}

// FarewellResponses is the fixed set a farewell is answered from.
var FarewellResponses = []string{
	"Take care and stay healthy! Goodbye!",
	"Goodbye! Remember to get regular checkups!",
	"See you next time! Look after yourself!",
}

// greetingPhrases and farewellPhrases are matched case-insensitively as
// substrings. Vietnamese phrases are kept alongside English ones since the
// knowledge base serves both.
var greetingPhrases = []string{"xin chào", "chào bạn", "chào bot", "hello", "hi", "hey"}

var farewellPhrases = []string{"tạm biệt", "hẹn gặp lại", "cảm ơn", "bye", "goodbye", "thank"}

// IsGreeting reports whether text matches a greeting phrase.
func IsGreeting(text string) bool {
	return matchesAny(text, greetingPhrases)
}

// IsFarewell reports whether text matches a farewell phrase.
func IsFarewell(text string) bool {
	return matchesAny(text, farewellPhrases)
}

func matchesAny(text string, phrases []string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// FormatContext renders retrieved results as labeled blocks for prompt
// injection. Zero results yield the shared "no information" sentinel.
func FormatContext(results []vectorstore.Result) string {
	if len(results) == 0 {
		return retriever.NoInformationFound
	}
	blocks := make([]string, len(results))
	for i, res := range results {
		blocks[i] = fmt.Sprintf("[Document %d - Source: %s]\n%s\n", i+1, res.Metadata.Source, res.Content)
	}
	return strings.Join(blocks, "\n---\n")
}

// FormatSources returns the deduplicated, order-preserving list of source
// identifiers from the results. Dedup is case-sensitive exact match, first
// occurrence wins.
func FormatSources(results []vectorstore.Result) string {
	if len(results) == 0 {
		return ""
	}
	seen := make(map[string]bool, len(results))
	var sources []string
	for _, res := range results {
		s := res.Metadata.Source
		if !seen[s] {
			seen[s] = true
			sources = append(sources, s)
		}
	}
	return strings.Join(sources, ", ")
}

// Turn is one (user message, bot message) exchange.
type Turn struct {
	User string
	Bot  string
}

// MaxHistoryTurns bounds conversation memory; oldest turns are evicted first.
const MaxHistoryTurns = 5

// BuildMessages assembles the request sequence: system prompt, the last
// MaxHistoryTurns turns replayed as alternating user/assistant messages, then
// the question wrapped in the RAG template with its context.
func BuildMessages(question, context string, history []Turn) []llm.Message {
	messages := make([]llm.Message, 0, 2+2*len(history))
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: SystemPrompt})

	replay := history
	if len(replay) > MaxHistoryTurns {
		replay = replay[len(replay)-MaxHistoryTurns:]
	}
	for _, turn := range replay {
		messages = append(messages,
			llm.Message{Role: llm.RoleUser, Content: turn.User},
			llm.Message{Role: llm.RoleAssistant, Content: turn.Bot},
		)
	}

	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: fmt.Sprintf(ragPromptTemplate, context, question),
	})
	return messages
}

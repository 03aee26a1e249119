package chat

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/vietcare/health-rag/internal/llm"
	"github.com/vietcare/health-rag/internal/retriever"
	"github.com/vietcare/health-rag/internal/vectorstore"
)

// Chain combines retrieval and generation: it intercepts small talk, gathers
// grounding context, builds the message sequence, calls the LLM, and annotates
// the answer with its sources.
//
// Failures at the LLM boundary are converted into a user-visible apology
// string, never returned as errors; the caller always receives natural
// language.
type Chain struct {
	retriever *retriever.Retriever
	llm       llm.Client
	topK      int
	rng       *rand.Rand
	logger    *slog.Logger
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithRand injects the random source used for greeting/farewell selection,
// for deterministic tests.
func WithRand(rng *rand.Rand) ChainOption {
	return func(c *Chain) { c.rng = rng }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) ChainOption {
	return func(c *Chain) { c.logger = logger }
}

// NewChain creates a Chain. topK <= 0 selects the retriever's default.
func NewChain(r *retriever.Retriever, client llm.Client, topK int, opts ...ChainOption) *Chain {
	if topK <= 0 {
		topK = r.TopK()
	}
	c := &Chain{
		retriever: r,
		llm:       client,
		topK:      topK,
		rng:       rand.New(rand.NewSource(rand.Int63())),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ask answers a question with RAG, replaying history as conversational
// context. The returned string is always presentable to the end user.
func (c *Chain) Ask(ctx context.Context, question string, history []Turn) string {
	if IsGreeting(question) {
		return c.pick(GreetingResponses)
	}
	if IsFarewell(question) {
		return c.pick(FarewellResponses)
	}

	results := c.retrieve(ctx, question)
	messages := BuildMessages(question, FormatContext(results), history)

	answer, err := c.llm.Chat(ctx, messages, llm.Options{})
	if err != nil {
		c.logger.Warn("generation failed", "error", err)
		return apology(err)
	}

	if line := sourceLine(answer, results); line != "" {
		answer += line
	}
	return answer
}

// AskStream answers a question with a streaming response. Fragments are
// yielded in generation order; the source line, if any, arrives as one final
// fragment after the token stream ends. A mid-stream failure is yielded as an
// apology fragment rather than an error.
func (c *Chain) AskStream(ctx context.Context, question string, history []Turn) <-chan string {
	out := make(chan string, 64)

	if IsGreeting(question) {
		out <- c.pick(GreetingResponses)
		close(out)
		return out
	}
	if IsFarewell(question) {
		out <- c.pick(FarewellResponses)
		close(out)
		return out
	}

	results := c.retrieve(ctx, question)
	messages := BuildMessages(question, FormatContext(results), history)

	go func() {
		defer close(out)

		stream, err := c.llm.ChatStream(ctx, messages, llm.Options{})
		if err != nil {
			c.logger.Warn("generation failed", "error", err)
			out <- apology(err)
			return
		}

		var answer strings.Builder
		for token := range stream {
			if token.Err != nil {
				c.logger.Warn("stream failed", "error", token.Err)
				out <- "\n\n" + apology(token.Err)
				return
			}
			if token.Content != "" {
				answer.WriteString(token.Content)
				out <- token.Content
			}
		}

		if line := sourceLine(answer.String(), results); line != "" {
			out <- line
		}
	}()
	return out
}

// RelevantInfo retrieves grounding documents without generation.
func (c *Chain) RelevantInfo(ctx context.Context, question string, topK int) ([]vectorstore.Result, error) {
	if topK <= 0 {
		topK = c.topK
	}
	return c.retriever.Retrieve(ctx, question, topK)
}

// retrieve fetches grounding chunks; a retrieval failure degrades to zero
// results so the chain falls back to the "no information" policy.
func (c *Chain) retrieve(ctx context.Context, question string) []vectorstore.Result {
	results, err := c.retriever.Retrieve(ctx, question, c.topK)
	if err != nil {
		c.logger.Warn("retrieval failed", "error", err)
		return nil
	}
	return results
}

// sourceLine builds the appended source annotation, or "" when the answer
// already carries a source marker or nothing was retrieved.
func sourceLine(answer string, results []vectorstore.Result) string {
	if len(results) == 0 || strings.Contains(answer, SourcePrefix) {
		return ""
	}
	sources := FormatSources(results)
	if sources == "" {
		return ""
	}
	return fmt.Sprintf("\n\n%s %s", SourcePrefix, sources)
}

func apology(err error) string {
	return fmt.Sprintf("Sorry, something went wrong: %v", err)
}

func (c *Chain) pick(responses []string) string {
	return responses[c.rng.Intn(len(responses))]
}

// Package llm defines the chat-completion contract the orchestrator consumes
// and its Groq-backed implementation. The core depends only on the
// message-based interface, not on any particular transport.
package llm

import "context"

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is the wire format the LLM consumes, built fresh per request.
type Message struct {
	Role    Role
	Content string
}

// Options tunes a single generation request. Zero values select the client's
// configured defaults.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// StreamToken is one frame of a streaming response. The producer sends
// content frames in generation order, then exactly one terminal frame with
// Done set (and Err set if the stream failed), then closes the channel.
type StreamToken struct {
	Content string
	Done    bool
	Err     error
}

// Client is the chat-completion interface.
type Client interface {
	// Chat sends the message sequence and blocks for the full answer.
	Chat(ctx context.Context, messages []Message, opts Options) (string, error)

	// ChatStream sends the message sequence and returns a channel of
	// tokens. The channel is single-consumer; tokens arrive in generation
	// order, never reordered or duplicated.
	ChatStream(ctx context.Context, messages []Message, opts Options) (<-chan StreamToken, error)
}

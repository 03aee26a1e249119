package chat

import (
	"context"
	"strings"
	"sync"
)

// Session is a single conversation with its own bounded history and a shared,
// read-mostly Chain. One Session per caller session; lifecycle belongs to the
// caller, there is no process-wide chatbot state.
type Session struct {
	chain *Chain

	mu      sync.Mutex
	history []Turn
}

// NewSession creates an empty session over the given chain.
func NewSession(chain *Chain) *Session {
	return &Session{chain: chain}
}

// Chat answers the message and records the turn. History is capped at
// MaxHistoryTurns; the oldest turns are dropped first. A failed generation's
// apology text is recorded like any other answer, so the transcript matches
// what the user saw.
func (s *Session) Chat(ctx context.Context, userMessage string) string {
	answer := s.chain.Ask(ctx, userMessage, s.History())
	s.record(userMessage, answer)
	return answer
}

// ChatStream answers the message as a fragment stream. After the stream
// drains, the turn is recorded with the concatenation of every yielded
// fragment — exactly what the consumer received, source line included.
func (s *Session) ChatStream(ctx context.Context, userMessage string) <-chan string {
	out := make(chan string, 64)
	stream := s.chain.AskStream(ctx, userMessage, s.History())

	go func() {
		defer close(out)
		var full strings.Builder
		for fragment := range stream {
			full.WriteString(fragment)
			out <- fragment
		}
		s.record(userMessage, full.String())
	}()
	return out
}

// ClearHistory discards the conversation memory.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

// History returns a copy of the recorded turns, oldest first.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) record(user, bot string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, Turn{User: user, Bot: bot})
	if len(s.history) > MaxHistoryTurns {
		s.history = s.history[len(s.history)-MaxHistoryTurns:]
	}
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultModel is the Groq model used unless configured otherwise.
const DefaultModel = "llama-3.3-70b-versatile"

// DefaultBaseURL is Groq's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// GroqClient talks to Groq through its OpenAI-compatible chat completions
// API. Rate-limited requests retry with exponential backoff; auth and other
// client errors surface immediately.
type GroqClient struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int
}

// GroqConfig configures a GroqClient. APIKey is required.
type GroqConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// NewGroqClient creates a client with the given configuration, applying
// defaults for everything except the API key.
func NewGroqClient(cfg GroqConfig) (*GroqClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY not set (get a free key at https://console.groq.com)")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithRequestTimeout(cfg.Timeout),
	)
	return &GroqClient{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Chat sends the message sequence and blocks for the complete answer.
func (g *GroqClient) Chat(ctx context.Context, messages []Message, opts Options) (string, error) {
	params := g.buildParams(messages, opts)

	var answer string
	operation := func() error {
		resp, err := g.client.Chat.Completions.New(ctx, params)
		if err != nil {
			if isRateLimitError(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("empty completion response"))
		}
		answer = resp.Choices[0].Message.Content
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	return answer, nil
}

// ChatStream sends the message sequence and yields tokens as they arrive.
// A failure mid-stream is delivered as the terminal frame's Err; the channel
// always closes after the terminal frame.
func (g *GroqClient) ChatStream(ctx context.Context, messages []Message, opts Options) (<-chan StreamToken, error) {
	params := g.buildParams(messages, opts)
	stream := g.client.Chat.Completions.NewStreaming(ctx, params)

	ch := make(chan StreamToken, 64)
	go func() {
		defer close(ch)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			if delta := chunk.Choices[0].Delta.Content; delta != "" {
				select {
				case ch <- StreamToken{Content: delta}:
				case <-ctx.Done():
					ch <- StreamToken{Done: true, Err: ctx.Err()}
					return
				}
			}
		}
		ch <- StreamToken{Done: true, Err: stream.Err()}
	}()
	return ch, nil
}

func (g *GroqClient) buildParams(messages []Message, opts Options) openai.ChatCompletionNewParams {
	temperature := g.temperature
	if opts.Temperature != 0 {
		temperature = opts.Temperature
	}
	maxTokens := g.maxTokens
	if opts.MaxTokens != 0 {
		maxTokens = opts.MaxTokens
	}

	converted := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			converted = append(converted, openai.SystemMessage(m.Content))
		case RoleAssistant:
			converted = append(converted, openai.AssistantMessage(m.Content))
		default:
			converted = append(converted, openai.UserMessage(m.Content))
		}
	}

	return openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(g.model),
		Messages:    converted,
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(int64(maxTokens)),
	}
}

func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

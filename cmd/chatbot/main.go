// Package main provides the interactive health chatbot CLI.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vietcare/health-rag/internal/chat"
	"github.com/vietcare/health-rag/internal/config"
	"github.com/vietcare/health-rag/internal/embedding"
	"github.com/vietcare/health-rag/internal/llm"
	"github.com/vietcare/health-rag/internal/retriever"
	"github.com/vietcare/health-rag/internal/vectorstore"
)

var rootCmd = &cobra.Command{
	Use:   "health-chat",
	Short: "AI health information chatbot",
	Long:  "Retrieval-augmented chatbot answering health questions from a curated knowledge base",
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Starts a streaming chat session in the terminal.

Session commands:
  /clear  forget the conversation history
  /quit   exit the session

Environment variables:
  GROQ_API_KEY      Groq API key for generation (required)
  OPENAI_API_KEY    OpenAI API key for embeddings (required)
  VECTOR_DB_TYPE    flat or qdrant (default: flat)
  VECTOR_STORE_PATH flat index base path (default: ./data/vector_store/health_index)`,
	RunE: runChat,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	chain, cleanup, err := buildChain(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	session := chat.NewSession(chain)
	ctx := cmd.Context()

	fmt.Println("Health chatbot ready. Ask a question, /clear to reset, /quit to exit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch input {
		case "/quit", "/exit":
			fmt.Println("Goodbye!")
			return nil
		case "/clear":
			session.ClearHistory()
			fmt.Println("History cleared.")
			continue
		}

		fmt.Print("Bot: ")
		for fragment := range session.ChatStream(ctx, input) {
			fmt.Print(fragment)
		}
		fmt.Println()
		fmt.Println()
	}
	return scanner.Err()
}

func runAsk(cmd *cobra.Command, args []string) error {
	chain, cleanup, err := buildChain(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	question := strings.Join(args, " ")
	fmt.Println(chain.Ask(cmd.Context(), question, nil))
	return nil
}

// buildChain wires the full RAG stack from environment configuration. The
// returned cleanup releases the vector backend, if it holds a connection.
func buildChain(cmd *cobra.Command) (*chat.Chain, func(), error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	embedder, err := embedding.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("create embedder: %w", err)
	}

	var index vectorstore.Index
	cleanup := func() {}
	switch cfg.VectorBackend {
	case config.VectorBackendQdrant:
		qdrant, err := vectorstore.NewQdrantIndex(cfg.QdrantHost, cfg.QdrantPort, embedder.Dimension())
		if err != nil {
			return nil, nil, fmt.Errorf("connect to Qdrant: %w", err)
		}
		cleanup = func() { qdrant.Close() }
		index = qdrant
	default:
		flat, err := vectorstore.NewFlat(embedder.Dimension())
		if err != nil {
			return nil, nil, fmt.Errorf("create index: %w", err)
		}
		if err := flat.Restore(cfg.VectorStorePath); err != nil {
			if errors.Is(err, vectorstore.ErrArtifactMissing) {
				return nil, nil, fmt.Errorf("no index at %s, run `health-ingest sync` first", cfg.VectorStorePath)
			}
			return nil, nil, fmt.Errorf("restore index: %w", err)
		}
		index = flat
	}

	client, err := llm.NewGroqClient(llm.GroqConfig{
		APIKey:      cfg.GroqAPIKey,
		Model:       cfg.GroqModel,
		BaseURL:     cfg.GroqBaseURL,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.LLMTimeout,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create LLM client: %w", err)
	}

	r := retriever.New(embedder, index, cfg.TopK)
	return chat.NewChain(r, client, cfg.TopK), cleanup, nil
}

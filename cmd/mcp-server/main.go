// Package main provides the MCP server entry point for the health knowledge base.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vietcare/health-rag/internal/chat"
	"github.com/vietcare/health-rag/internal/config"
	"github.com/vietcare/health-rag/internal/embedding"
	"github.com/vietcare/health-rag/internal/llm"
	mcpserver "github.com/vietcare/health-rag/internal/mcp"
	"github.com/vietcare/health-rag/internal/retriever"
	"github.com/vietcare/health-rag/internal/vectorstore"
)

func main() {
	// Load .env if present (local development), ignore if missing.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	embedder, err := embedding.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel, 0)
	if err != nil {
		log.Fatalf("failed to create embedder: %v", err)
	}

	var index vectorstore.Index
	var checker mcpserver.HealthChecker
	switch cfg.VectorBackend {
	case config.VectorBackendQdrant:
		qdrant, err := vectorstore.NewQdrantIndex(cfg.QdrantHost, cfg.QdrantPort, embedder.Dimension())
		if err != nil {
			log.Fatalf("failed to connect to Qdrant: %v", err)
		}
		defer qdrant.Close()
		index = qdrant
		checker = qdrant
	default:
		flat, err := vectorstore.NewFlat(embedder.Dimension())
		if err != nil {
			log.Fatalf("failed to create index: %v", err)
		}
		if err := flat.Restore(cfg.VectorStorePath); err != nil {
			if errors.Is(err, vectorstore.ErrArtifactMissing) {
				log.Printf("no index at %s, serving an empty index", cfg.VectorStorePath)
			} else {
				log.Fatalf("failed to restore index: %v", err)
			}
		}
		index = flat
		checker = mcpserver.IndexHealth{Index: flat}
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
		log.Fatalf("failed to create LLM client: %v", err)
	}

	r := retriever.New(embedder, index, cfg.TopK)
	chain := chat.NewChain(r, client, cfg.TopK)

	server := mcpserver.NewServer(&mcpserver.Config{
		Retriever: r,
		Chain:     chain,
		Index:     index,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/", mcpserver.NewLandingHandler())
	mux.HandleFunc("/health", mcpserver.NewHealthHandler(checker, index))
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(server, nil))

	port := getEnv("PORT", "8080")
	serverMode := getEnv("SERVER_MODE", "false") == "true"

	if serverMode {
		// HTTP mode: serve MCP over HTTP for remote clients.
		addr := "0.0.0.0:" + port
		log.Printf("Starting HTTP server on %s (MCP at /mcp, health at /health)", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	} else {
		// Stdio mode: MCP over stdin/stdout, health endpoint in background.
		go func() {
			addr := "0.0.0.0:" + port
			log.Printf("Starting health server on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("Health server error: %v", err)
			}
		}()

		log.Println("Starting Health Knowledge MCP Server (stdio mode)...")
		if err := server.Run(ctx); err != nil {
			log.Printf("server error: %v", err)
			os.Exit(1)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

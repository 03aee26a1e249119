// Package main provides the ingestion CLI for the health knowledge base.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vietcare/health-rag/internal/chunker"
	"github.com/vietcare/health-rag/internal/config"
	"github.com/vietcare/health-rag/internal/document"
	"github.com/vietcare/health-rag/internal/embedding"
	"github.com/vietcare/health-rag/internal/ingest"
	"github.com/vietcare/health-rag/internal/vectorstore"
)

var rootCmd = &cobra.Command{
	Use:   "health-ingest",
	Short: "Health knowledge base ingestion tool",
	Long:  "CLI tool for building the health knowledge vector index from documents and the SQLite database",
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Rebuild the vector index from all knowledge sources",
	Long: `Clears the existing index and rebuilds it from scratch.

This command:
1. Loads documents from the knowledge directory (.txt and .md files)
2. Loads symptoms, diseases and recommendations from SQLite, if configured
3. Chunks every document and generates embeddings
4. Stores the embedded chunks in the configured vector backend
5. Persists the flat index to disk, when the flat backend is selected

Environment variables:
  OPENAI_API_KEY    OpenAI API key for embeddings (required)
  KNOWLEDGE_DIR     directory of knowledge files (default: ./data/health_knowledge)
  SQLITE_PATH       SQLite knowledge database (optional)
  VECTOR_DB_TYPE    flat or qdrant (default: flat)
  VECTOR_STORE_PATH flat index base path (default: ./data/vector_store/health_index)
  QDRANT_HOST       Qdrant hostname (default: localhost)
  QDRANT_PORT       Qdrant gRPC port (default: 6334)`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	start := time.Now()

	cfg := config.Load()
	if cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY not set")
	}

	embedder, err := embedding.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel, 0)
	if err != nil {
		return fmt.Errorf("create embedder: %w", err)
	}

	var index vectorstore.Index
	var flat *vectorstore.Flat
	switch cfg.VectorBackend {
	case config.VectorBackendQdrant:
		fmt.Printf("Connecting to Qdrant at %s:%d...\n", cfg.QdrantHost, cfg.QdrantPort)
		qdrant, err := vectorstore.NewQdrantIndex(cfg.QdrantHost, cfg.QdrantPort, embedder.Dimension())
		if err != nil {
			return fmt.Errorf("connect to Qdrant: %w", err)
		}
		defer qdrant.Close()
		index = qdrant
	default:
		flat, err = vectorstore.NewFlat(embedder.Dimension())
		if err != nil {
			return fmt.Errorf("create index: %w", err)
		}
		index = flat
	}

	// Gather documents from all configured sources.
	fmt.Printf("Loading documents from %s...\n", cfg.KnowledgeDir)
	docs, err := ingest.LoadDir(cfg.KnowledgeDir)
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	fmt.Printf("Loaded %d documents from files\n", len(docs))

	if cfg.SQLitePath != "" {
		dbDocs, err := loadDatabase(cmd, cfg.SQLitePath)
		if err != nil {
			return err
		}
		docs = append(docs, dbDocs...)
	}
	if len(docs) == 0 {
		return fmt.Errorf("no documents found to ingest")
	}

	fmt.Println()
	fmt.Println("Clearing existing index...")
	if err := index.Reset(ctx); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}

	fmt.Println("Ingesting...")
	ck := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	pipeline := ingest.NewPipeline(ck, embedder, index, slog.Default())

	result, err := pipeline.IndexDocuments(ctx, docs)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if flat != nil {
		if err := flat.Persist(cfg.VectorStorePath); err != nil {
			return fmt.Errorf("persist index: %w", err)
		}
		fmt.Printf("Index persisted to %s\n", cfg.VectorStorePath)
	}

	fmt.Println()
	fmt.Println("Sync complete!")
	fmt.Printf("  Documents: %d/%d\n", result.SuccessfulDocs, result.TotalDocs)
	fmt.Printf("  Chunks: %d\n", result.TotalChunks)
	fmt.Printf("  Duration: %s\n", result.Duration.Round(time.Millisecond))

	if len(result.FailedDocs) > 0 {
		fmt.Println()
		fmt.Println("Failed documents:")
		for _, failed := range result.FailedDocs {
			fmt.Printf("  - %s: %s\n", failed.Source, failed.Reason)
		}
	}

	fmt.Println()
	fmt.Printf("Total time: %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func loadDatabase(cmd *cobra.Command, path string) ([]document.Document, error) {
	fmt.Printf("Loading knowledge from database %s...\n", path)
	db, err := ingest.OpenKnowledgeDB(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	docs, err := db.Documents(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("read database: %w", err)
	}
	fmt.Printf("Loaded %d documents from database\n", len(docs))
	return docs, nil
}

// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Vector store backends selectable via VECTOR_DB_TYPE.
const (
	VectorBackendFlat   = "flat"
	VectorBackendQdrant = "qdrant"
)

// Config holds every tunable the chatbot and ingestion pipeline read.
type Config struct {
	// LLM (Groq, OpenAI-compatible endpoint)
	GroqAPIKey  string
	GroqModel   string
	GroqBaseURL string
	Temperature float64
	MaxTokens   int
	LLMTimeout  time.Duration

	// Embeddings
	OpenAIAPIKey   string
	EmbeddingModel string

	// Chunking
	ChunkSize    int
	ChunkOverlap int

	// Retrieval
	TopK int

	// Vector store
	VectorBackend   string
	VectorStorePath string
	QdrantHost      string
	QdrantPort      int

	// Ingestion sources
	KnowledgeDir string
	SQLitePath   string
}

// Load reads configuration from the environment, applying defaults for
// everything except credentials. Call Validate before using the result.
func Load() *Config {
	return &Config{
		GroqAPIKey:  os.Getenv("GROQ_API_KEY"),
		GroqModel:   getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GroqBaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		Temperature: getEnvFloat("TEMPERATURE", 0.3),
		MaxTokens:   getEnvInt("MAX_TOKENS", 2048),
		LLMTimeout:  time.Duration(getEnvInt("LLM_TIMEOUT_SECS", 60)) * time.Second,

		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),

		TopK: getEnvInt("TOP_K_RETRIEVAL", 5),

		VectorBackend:   getEnv("VECTOR_DB_TYPE", VectorBackendFlat),
		VectorStorePath: getEnv("VECTOR_STORE_PATH", "./data/vector_store/health_index"),
		QdrantHost:      getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:      getEnvInt("QDRANT_PORT", 6334),

		KnowledgeDir: getEnv("KNOWLEDGE_DIR", "./data/health_knowledge"),
		SQLitePath:   os.Getenv("SQLITE_PATH"),
	}
}

// Validate checks required credentials and value ranges. A non-nil error means
// the process cannot serve and should exit at startup.
func (c *Config) Validate() error {
	var errs []error

	if c.GroqAPIKey == "" {
		errs = append(errs, errors.New("GROQ_API_KEY is not set (get a free key at https://console.groq.com)"))
	}
	if c.OpenAIAPIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is not set (required for embeddings)"))
	}
	if c.ChunkOverlap >= c.ChunkSize {
		errs = append(errs, fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", c.ChunkOverlap, c.ChunkSize))
	}
	if c.TopK <= 0 {
		errs = append(errs, fmt.Errorf("TOP_K_RETRIEVAL must be positive, got %d", c.TopK))
	}
	if c.VectorBackend != VectorBackendFlat && c.VectorBackend != VectorBackendQdrant {
		errs = append(errs, fmt.Errorf("VECTOR_DB_TYPE must be %q or %q, got %q", VectorBackendFlat, VectorBackendQdrant, c.VectorBackend))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

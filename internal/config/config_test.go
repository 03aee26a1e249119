package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		GroqAPIKey:    "gsk_test",
		OpenAIAPIKey:  "sk_test",
		ChunkSize:     1000,
		ChunkOverlap:  200,
		TopK:          5,
		VectorBackend: VectorBackendFlat,
	}
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_MissingCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.GroqAPIKey = ""
	cfg.OpenAIAPIKey = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GROQ_API_KEY")
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestValidate_OverlapNotBelowSize(t *testing.T) {
	cfg := validConfig()
	cfg.ChunkOverlap = 1000

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHUNK_OVERLAP")
}

func TestValidate_BadBackend(t *testing.T) {
	cfg := validConfig()
	cfg.VectorBackend = "faiss"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VECTOR_DB_TYPE")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.GroqAPIKey = ""
	cfg.TopK = 0

	err := cfg.Validate()
	require.Error(t, err)
	// errors.Join renders one line per failure.
	assert.GreaterOrEqual(t, strings.Count(err.Error(), "\n")+1, 2)
}

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "llama-3.3-70b-versatile", cfg.GroqModel)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.GroqBaseURL)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, VectorBackendFlat, cfg.VectorBackend)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "500")
	t.Setenv("TOP_K_RETRIEVAL", "3")
	t.Setenv("VECTOR_DB_TYPE", "qdrant")
	t.Setenv("TEMPERATURE", "0.7")

	cfg := Load()
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, VectorBackendQdrant, cfg.VectorBackend)
	assert.Equal(t, 0.7, cfg.Temperature)
}

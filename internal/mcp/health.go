package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/vietcare/health-rag/internal/vectorstore"
)

// HealthResponse is the JSON body of the /health endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Index     string `json:"index"`
	Chunks    int    `json:"chunks"`
	Timestamp string `json:"timestamp"`
}

// HealthChecker is the probe the health endpoint runs. The Qdrant index
// implements it directly; IndexHealth adapts any other backend.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// IndexHealth wraps an index so a Stats call doubles as the liveness probe.
type IndexHealth struct {
	Index vectorstore.Index
}

func (h IndexHealth) Health(ctx context.Context) error {
	_, err := h.Index.Stats(ctx)
	return err
}

// NewHealthHandler creates the /health endpoint handler. It probes the index
// backend and reports the chunk count when reachable.
func NewHealthHandler(checker HealthChecker, index vectorstore.Index) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		response := HealthResponse{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		w.Header().Set("Content-Type", "application/json")

		if err := checker.Health(ctx); err != nil {
			response.Status = "unhealthy"
			response.Index = "disconnected"
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(response)
			return
		}

		response.Status = "healthy"
		response.Index = "connected"
		if stats, err := index.Stats(ctx); err == nil {
			response.Chunks = stats.Count
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}

package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/SteedMonteiro/mcp-local-context/internal/vector"
)

// HealthResponse represents the JSON response from the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Index     string `json:"index"`
	Timestamp string `json:"timestamp"`
}

// NewHealthHandler creates an HTTP handler for the /health endpoint.
// A disabled similarity backend is still healthy: path search works
// without it. A backend that is configured but unreachable returns 503.
func NewHealthHandler(backend vector.Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		response := HealthResponse{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}

		w.Header().Set("Content-Type", "application/json")

		if !backend.Available() {
			response.Status = "healthy"
			response.Index = "disabled"
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(response)
			return
		}

		if _, err := backend.Count(ctx); err != nil {
			response.Status = "unhealthy"
			response.Index = "disconnected"
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(response)
			return
		}

		response.Status = "healthy"
		response.Index = "connected"
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}

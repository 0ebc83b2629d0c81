package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type healthCheck struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type healthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]healthCheck `json:"checks"`
}

// handleStatus reports liveness and database reachability.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context()).With().Str("operation", "health_check").Logger()

	resp := healthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: s.env,
		Checks:      map[string]healthCheck{},
	}
	status := http.StatusOK

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	start := time.Now()
	if err := s.db.PingContext(ctx); err != nil {
		resp.Checks["database"] = healthCheck{Status: "unhealthy", ResponseTime: time.Since(start).String(), Error: err.Error()}
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
		logger.Error().Err(err).Dur("response_time", time.Since(start)).Msg("database health check failed")
	} else {
		resp.Checks["database"] = healthCheck{Status: "healthy", ResponseTime: time.Since(start).String()}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error().Err(err).Msg("failed to write health response")
	}
}

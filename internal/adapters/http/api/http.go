// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/reflex/internal/domain/types"
	"github.com/okian/reflex/internal/domain/validate"
	"github.com/okian/reflex/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// SubmitScore validates and records a submission. Validation
	// rejections come back in the outcome; rate limiting and store
	// unavailability come back as errors.
	SubmitScore(ctx context.Context, sub validate.Submission) (types.SubmitOutcome, error)

	// Leaderboard returns the top entries of the named partition.
	Leaderboard(ctx context.Context, partition string, limit int) ([]Entry, error)

	// Available reports whether submissions can be accepted right now.
	Available(ctx context.Context) bool
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	scoresHandler      *ScoresHandler
	leaderboardHandler *LeaderboardHandler
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		scoresHandler:      NewScoresHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
		healthHandler:      NewHealthHandler(deps),
		statsHandler:       NewStatsHandler(statsProvider),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/scores", MetricsMiddleware(s.scoresHandler.HandlePostScore, "scores"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// wrapOp annotates err with the handler operation for logs and responses.
func wrapOp(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	service "github.com/okian/reflex/internal/app"
)

const defaultLeaderboardLimit = 10

// LeaderboardDependencies defines the interface for leaderboard reads.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, partition string, limit int) ([]Entry, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetLeaderboard handles GET /leaderboard?partition=daily|alltime&limit=N
// requests. Partition defaults to alltime, limit to 10.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	n := defaultLeaderboardLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", wrapOp(op, ErrBadRequest))
			return
		}
		n = parsed
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", wrapOp(op, ErrLimitExceeded))
		return
	}

	entries, err := h.deps.Leaderboard(r.Context(), r.URL.Query().Get("partition"), n)
	if errors.Is(err, service.ErrInvalidPartition) {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", wrapOp(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

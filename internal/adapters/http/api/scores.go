// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/reflex/internal/adapters/repository"
	service "github.com/okian/reflex/internal/app"
	"github.com/okian/reflex/internal/domain/validate"
)

// ScoresHandler handles score submission requests.
type ScoresHandler struct {
	deps Dependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps Dependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

// scoreRequest mirrors the JSON schema for POST /scores.
type scoreRequest struct {
	DisplayName   string    `json:"displayName"`
	AverageMs     float64   `json:"averageMs"`
	ReactionTimes []float64 `json:"reactionTimes"`
	ClientTag     string    `json:"clientTag"`
}

// HandlePostScore handles POST /scores requests.
//
// Status codes: 200 accepted, 422 rejected by validation, 400 malformed
// body, 429 rate limited, 503 durable store unavailable.
func (h *ScoresHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_score"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapOp(op, ErrBadRequest))
		return
	}

	outcome, err := h.deps.SubmitScore(r.Context(), validate.Submission{
		DisplayName:   req.DisplayName,
		AverageMs:     req.AverageMs,
		ReactionTimes: req.ReactionTimes,
		ClientTag:     req.ClientTag,
	})
	switch {
	case errors.Is(err, service.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate_limited", err)
		return
	case errors.Is(err, repository.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", wrapOp(op, err))
		return
	}

	if !outcome.Accepted {
		writeJSON(w, http.StatusUnprocessableEntity, outcome)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

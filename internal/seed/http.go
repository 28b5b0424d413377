package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/reflex/internal/domain/types"
	"github.com/okian/reflex/internal/domain/validate"
)

type client struct {
	http    *http.Client
	baseURL string
}

func newClient(cfg *Config) *client {
	return &client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
	}
}

// health verifies the server answers /healthz.
func (c *client) health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// scorePayload is the wire shape of POST /scores.
type scorePayload struct {
	DisplayName   string    `json:"displayName"`
	AverageMs     float64   `json:"averageMs"`
	ReactionTimes []float64 `json:"reactionTimes"`
	ClientTag     string    `json:"clientTag"`
}

// submit posts one submission and reports the server's outcome.
func (c *client) submit(ctx context.Context, sub validate.Submission) (types.SubmitOutcome, error) {
	payload, err := json.Marshal(scorePayload{
		DisplayName:   sub.DisplayName,
		AverageMs:     sub.AverageMs,
		ReactionTimes: sub.ReactionTimes,
		ClientTag:     sub.ClientTag,
	})
	if err != nil {
		return types.SubmitOutcome{}, fmt.Errorf("marshal submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/scores", bytes.NewReader(payload))
	if err != nil {
		return types.SubmitOutcome{}, fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return types.SubmitOutcome{}, fmt.Errorf("post score: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusUnprocessableEntity:
		var outcome types.SubmitOutcome
		if err := json.NewDecoder(resp.Body).Decode(&outcome); err != nil {
			return types.SubmitOutcome{}, fmt.Errorf("decode outcome: %w", err)
		}
		return outcome, nil
	default:
		return types.SubmitOutcome{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

// leaderboard fetches the top n all-time entries.
func (c *client) leaderboard(ctx context.Context, n int) ([]types.Entry, error) {
	url := fmt.Sprintf("%s/leaderboard?partition=alltime&limit=%d", c.baseURL, n)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build leaderboard request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get leaderboard: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var entries []types.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode leaderboard: %w", err)
	}
	return entries, nil
}

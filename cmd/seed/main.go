// Command seed populates a running reflex server with synthetic scores.
package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/reflex/internal/seed"
	"github.com/okian/reflex/pkg/logger"
)

const (
	defaultNumScores = 500
	defaultTopN      = 25
	defaultTimeout   = 10 * time.Second
	runTimeout       = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9090", "Base URL of the reflex server")
		numScores = flag.Int("scores", defaultNumScores, "Number of synthetic scores to submit")
		workers   = flag.Int("workers", runtime.NumCPU(), "Number of concurrent submitters")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		topN      = flag.Int("top", defaultTopN, "Leaderboard entries to fetch afterwards")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg := &seed.Config{
		BaseURL:   *baseURL,
		NumScores: *numScores,
		Workers:   *workers,
		Timeout:   *timeout,
		TopN:      *topN,
	}
	if err := seed.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("seed run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

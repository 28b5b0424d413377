// Package site serves the embedded leaderboard page.
package site

import (
	"context"
	"net/http"
)

// Register attaches the embedded leaderboard page to mux at /.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", http.FileServer(FS()))
}

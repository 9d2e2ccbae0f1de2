// Package testutil provides utilities for testing.
package testutil

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// NewTestLogger creates a new logger for testing
// If writer is nil, it will use io.Discard
func NewTestLogger(w io.Writer) *slog.Logger {
	if w == nil {
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// DiscardLogger returns a logger that discards all output
func DiscardLogger() *slog.Logger {
	return NewTestLogger(nil)
}

// JSONServer serves fixed JSON bodies keyed by request path and counts hits.
type JSONServer struct {
	*httptest.Server
	hits atomic.Int64
}

// NewJSONServer starts a server answering each path in routes with its
// value encoded as JSON. Unknown paths get 404. The server is closed when
// the test ends.
func NewJSONServer(t *testing.T, routes map[string]any) *JSONServer {
	t.Helper()
	s := &JSONServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("encode %s: %v", r.URL.Path, err)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

// Hits returns the number of requests served so far.
func (s *JSONServer) Hits() int64 {
	return s.hits.Load()
}

// Package testutil provides shared helpers for quercle-go tests: bounded
// test contexts and a scriptable fake of the Quercle API.
package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// Handler scripts the fake API: it receives the operation name and decoded
// request body and returns the HTTP status plus the value placed in the
// response "result" field. For non-2xx statuses the value is written as the
// raw error body instead.
type Handler func(op string, body map[string]any) (status int, result any)

// RecordedRequest captures one request the fake server received.
type RecordedRequest struct {
	Op     string
	Header http.Header
	Body   map[string]any
}

// Server is an httptest server emulating the five Quercle endpoints.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
	delay    time.Duration
}

// NewServer starts a fake API server. The caller owns Close.
func NewServer(t *testing.T, handler Handler) *Server {
	t.Helper()

	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		op := strings.TrimPrefix(r.URL.Path, "/v1/")

		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Op:     op,
			Header: r.Header.Clone(),
			Body:   body,
		})
		delay := s.delay
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		status, result := handler(op, body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status < 200 || status > 299 {
			_ = json.NewEncoder(w).Encode(result)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": result})
	}))
	t.Cleanup(s.Close)
	return s
}

// StaticResult is a Handler that answers every request with 200 and the
// given result value.
func StaticResult(result any) Handler {
	return func(string, map[string]any) (int, any) { return http.StatusOK, result }
}

// SetDelay stalls every subsequent response by d, for timeout tests.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Requests returns a copy of everything received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request, or false when none arrived.
func (s *Server) LastRequest() (RecordedRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return RecordedRequest{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// TestContext returns a context bounded at 30s, cancelled on test cleanup.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// CancelledContext returns an already-cancelled context.
func CancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

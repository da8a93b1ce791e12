// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:8787"

	// MaxRequestBodySize caps request bodies (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024

	// FieldNone makes the server answer without any reply field.
	FieldNone = "none"
)

// validFields lists the reply fields the server can populate.
var validFields = map[string]bool{
	"answer":  true,
	"message": true,
	"text":    true,
	FieldNone: true,
}

// ValidField reports whether name is an accepted reply field.
func ValidField(name string) bool {
	return validFields[name]
}

// ============================================================================
// REQUEST / RESPONSE
// ============================================================================

// AskRequest is the body the server accepts.
type AskRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id"`
}

// Responder produces reply text for a request.
type Responder func(req AskRequest) string

// ============================================================================
// STATS
// ============================================================================

// Stats tracks server usage counters.
type Stats struct {
	TotalRequests int64     `json:"total_requests"`
	Answered      int64     `json:"answered"`
	Rejected      int64     `json:"rejected"`
	StartTime     time.Time `json:"start_time"`
}

type counters struct {
	total    atomic.Int64
	answered atomic.Int64
	rejected atomic.Int64
	start    time.Time
}

func (c *counters) snapshot() Stats {
	return Stats{
		TotalRequests: c.total.Load(),
		Answered:      c.answered.Load(),
		Rejected:      c.rejected.Load(),
		StartTime:     c.start,
	}
}

// ============================================================================
// SERVER
// ============================================================================

// Server is the local answering service.
type Server struct {
	addr      string
	field     string
	status    int
	delay     time.Duration
	token     string
	responder Responder
	log       *zap.Logger

	stats  *counters
	router chi.Router
	server *http.Server
}

// NewServer creates a server listening on addr. An empty addr uses
// DefaultAddr.
func NewServer(addr string) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Server{
		addr:      addr,
		field:     "answer",
		responder: EchoResponder,
		log:       zap.NewNop(),
		stats:     &counters{start: time.Now()},
	}
}

// WithReplyField sets the field that carries the reply, or FieldNone.
func (s *Server) WithReplyField(field string) *Server {
	s.field = field
	return s
}

// WithStatus forces every answer to use the given HTTP status. Zero means
// 200.
func (s *Server) WithStatus(status int) *Server {
	s.status = status
	return s
}

// WithDelay holds each answer for d before responding.
func (s *Server) WithDelay(d time.Duration) *Server {
	s.delay = d
	return s
}

// WithToken requires "Authorization: Bearer <token>" on answer routes.
func (s *Server) WithToken(token string) *Server {
	s.token = token
	return s
}

// WithResponder replaces the reply generator.
func (s *Server) WithResponder(r Responder) *Server {
	if r != nil {
		s.responder = r
	}
	return s
}

// WithLogger sets the request logger.
func (s *Server) WithLogger(log *zap.Logger) *Server {
	if log != nil {
		s.log = log.Named("server")
	}
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Stats returns a copy of the current counters.
func (s *Server) Stats() Stats {
	return s.stats.snapshot()
}

// Validate checks the configured knobs.
func (s *Server) Validate() error {
	if !ValidField(s.field) {
		return fmt.Errorf("invalid reply field %q: must be answer, message, text or none", s.field)
	}
	if s.status != 0 && (s.status < 100 || s.status > 599) {
		return fmt.Errorf("invalid status %d", s.status)
	}
	if s.delay < 0 {
		return fmt.Errorf("invalid delay %s", s.delay)
	}
	return nil
}

// ============================================================================
// ROUTES
// ============================================================================

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	if s.router != nil {
		return s.router
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RecoveryMiddleware(s.log))
	r.Use(LoggingMiddleware(s.log))

	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)

	r.Group(func(api chi.Router) {
		if s.token != "" {
			api.Use(AuthMiddleware(s.token, s.log))
		}
		api.Post("/", s.handleAsk)
		api.Post("/api/chat", s.handleAsk)
	})

	s.router = r
	return r
}

// handleAsk answers one query according to the configured knobs.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	s.stats.total.Add(1)

	var req AskRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBodySize))
	if err := dec.Decode(&req); err != nil {
		s.stats.rejected.Add(1)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.stats.rejected.Add(1)
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-r.Context().Done():
			return
		case <-timer.C:
		}
	}

	if s.status != 0 && (s.status < 200 || s.status > 299) {
		s.stats.rejected.Add(1)
		writeError(w, s.status, http.StatusText(s.status))
		return
	}

	body := map[string]any{"user_id": req.UserID}
	if s.field != FieldNone {
		body[s.field] = s.responder(req)
	}

	status := s.status
	if status == 0 {
		status = http.StatusOK
	}
	s.stats.answered.Add(1)
	writeJSON(w, status, body)
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: time.Since(s.stats.start).Round(time.Second).String(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.snapshot())
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Serve listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on an existing listener until ctx is cancelled.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	if err := s.Validate(); err != nil {
		ln.Close()
		return err
	}

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", ln.Addr().String()), zap.String("field", s.field))
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// ============================================================================
// RESPONDERS
// ============================================================================

// EchoResponder answers with a short markdown document that exercises the
// renderer: emphasis, a table and a fenced code block.
func EchoResponder(req AskRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You asked: **%s**\n\n", escapeMarkdown(req.Query))
	b.WriteString("| Field | Value |\n|:--|--:|\n")
	fmt.Fprintf(&b, "| session | `%s` |\n", req.UserID)
	fmt.Fprintf(&b, "| length | %d |\n\n", len([]rune(req.Query)))
	b.WriteString("```go\nfmt.Println(\"echo\")\n```\n")
	return b.String()
}

// StaticResponder always answers with text.
func StaticResponder(text string) Responder {
	return func(AskRequest) string { return text }
}

func escapeMarkdown(s string) string {
	r := strings.NewReplacer("*", `\*`, "_", `\_`, "`", "\\`", "|", `\|`)
	return r.Replace(s)
}

// ============================================================================
// HELPERS
// ============================================================================

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": message,
			"code":    status,
		},
	})
}

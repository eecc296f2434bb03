// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ATreeShine/GEMINI-AGENT/internal/conversation"
	"github.com/ATreeShine/GEMINI-AGENT/internal/index"
)

// Version is reported by the status endpoint.
const Version = "2.0.0"

// DefaultShutdownTimeout bounds graceful shutdown in Run.
const DefaultShutdownTimeout = 10 * time.Second

// ============================================================================
// SERVER
// ============================================================================

// Options configures a Server.
type Options struct {
	// Addr is the listen address, e.g. ":3000".
	Addr string

	// StaticDir serves the web client when set.
	StaticDir string

	// RateLimitRPS and RateLimitBurst configure per-client limiting.
	// RateLimitRPS <= 0 disables it.
	RateLimitRPS   float64
	RateLimitBurst int

	// AllowedOrigins feeds the CORS middleware. Empty disables CORS headers.
	AllowedOrigins []string

	Logger *zap.Logger
}

// Server is the HTTP API over the conversation service.
type Server struct {
	svc     *conversation.Service
	index   *index.Index
	opts    Options
	logger  *zap.Logger
	router  *http.ServeMux
	handler http.Handler
	limiter *RateLimiter
	server  *http.Server
}

// New creates a Server. Routes and middleware are wired immediately so
// Handler can be used without listening.
func New(svc *conversation.Service, idx *index.Index, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		svc:    svc,
		index:  idx,
		opts:   opts,
		logger: logger.Named("server"),
		router: http.NewServeMux(),
	}
	if opts.RateLimitRPS > 0 {
		s.limiter = NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst)
	}

	s.setupRoutes()

	middlewares := []func(http.Handler) http.Handler{
		RequestIDMiddleware(),
		LoggingMiddleware(s.logger),
		RecoveryMiddleware(s.logger),
		SecurityHeadersMiddleware(),
	}
	if len(opts.AllowedOrigins) > 0 {
		middlewares = append(middlewares, CORSMiddleware(DefaultCORSConfig(opts.AllowedOrigins)))
	}
	middlewares = append(middlewares,
		RateLimitMiddleware(s.limiter, s.logger),
		BodyLimitMiddleware(MaxBodyBytes),
	)
	s.handler = Chain(middlewares...)(s.router)

	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ============================================================================
// ROUTES
// ============================================================================

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /api/status", s.handleStatus)

	s.router.HandleFunc("GET /api/chats", s.handleListChats)
	s.router.HandleFunc("GET /api/chats/{id}", s.handleGetChat)
	s.router.HandleFunc("DELETE /api/chats/{id}", s.handleDeleteChat)
	s.router.HandleFunc("POST /api/chat", s.handleSend)

	s.router.HandleFunc("POST /api/chats/{id}/export", s.handleExport)
	s.router.HandleFunc("PUT /api/chats/{id}/settings", s.handleUpdateSettings)
	s.router.HandleFunc("POST /api/chats/{id}/title", s.handleUpdateTitle)

	s.router.HandleFunc("POST /api/format", s.handleFormat)

	// Unknown API paths answer JSON rather than the static fallback
	s.router.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})

	if s.opts.StaticDir != "" {
		s.router.Handle("/", newStaticHandler(s.opts.StaticDir))
	}
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	if s.server == nil {
		s.server = s.newHTTPServer()
	}

	s.logger.Info("server started",
		zap.String("addr", ln.Addr().String()),
		zap.String("version", Version),
		zap.Bool("static", s.opts.StaticDir != ""),
	)

	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server failed")
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("server shutting down")
	return s.server.Shutdown(ctx)
}

// Run serves until ctx is done, then shuts down within
// DefaultShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.opts.Addr)
	}

	s.server = s.newHTTPServer()
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "graceful shutdown failed")
	}
	err = <-errCh
	s.logger.Info("server stopped")
	return err
}

func (s *Server) newHTTPServer() *http.Server {
	return &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Turns wait on the responder, so writes get generous room
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
}

// ============================================================================
// HELPERS
// ============================================================================

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error"`
}

// writeError writes {"error": message}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

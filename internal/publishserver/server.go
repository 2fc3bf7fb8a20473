// Package publishserver hosts a subscription.Registry behind a small HTTP
// API: POST /publish evaluates a sample identity against every declared
// subscription and reports which ones match, the hot-path scenario the
// registry exists to serve quickly.
package publishserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"tagindex/internal/identity"
	"tagindex/internal/logging"
	"tagindex/internal/subscription"
)

// Server hosts a *subscription.Registry over HTTP.
type Server struct {
	addr     string
	registry *subscription.Registry
	listener net.Listener
	server   *http.Server
	logger   *slog.Logger
}

// Config holds Server construction parameters.
type Config struct {
	Addr     string
	Registry *subscription.Registry
	Logger   *slog.Logger
}

// New creates a new Server. It does not start listening until Run is called.
func New(cfg Config) *Server {
	return &Server{
		addr:     cfg.Addr,
		registry: cfg.Registry,
		logger:   logging.Default(cfg.Logger).With("component", "publishserver"),
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// server fails to serve.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /publish", s.handlePublish)
	mux.HandleFunc("GET /hotspots", s.handleHotSpots)
	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var err error
	s.listener, err = net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.logger.Info("publish server starting", "addr", s.listener.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("publish server stopping")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Addr returns the listener address. Only valid after Run has started.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// publishRequest is the JSON body accepted by POST /publish.
type publishRequest struct {
	Name string            `json:"name"`
	Tags map[string]string `json:"tags"`
}

type publishResponse struct {
	Matches []string `json:"matches"`
}

func (s *Server) handlePublish(w http.ResponseWriter, req *http.Request) {
	var body publishRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}
	if body.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	id := identity.NewIdentity(body.Name, body.Tags)
	matches := s.registry.Publish(id)

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, string(m))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(publishResponse{Matches: ids})
}

func (s *Server) handleHotSpots(w http.ResponseWriter, req *http.Request) {
	const defaultThreshold = 8
	spots := s.registry.HotSpots(defaultThreshold)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(spots)
}

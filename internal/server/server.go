// Package server exposes the staged documentation tree over HTTP for local
// preview, together with health, metrics, and build history endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/timemory/doxsite/internal/history"
	"github.com/timemory/doxsite/internal/logfields"
)

// Options configure the preview server.
type Options struct {
	// Addr is the listen address, e.g. ":9180".
	Addr string

	// DocsRoot is the documentation tree to serve at /.
	DocsRoot string

	// History enables the /api/builds endpoints when non-nil.
	History *history.Store

	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler
}

// Server serves the docs preview and operational endpoints.
type Server struct {
	opts Options
	mux  *http.ServeMux
	srv  *http.Server
}

// New builds the server and its routes.
func New(opts Options) *Server {
	s := &Server{opts: opts, mux: http.NewServeMux()}
	s.routes()
	s.srv = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the route handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/builds", s.handleBuilds)
	s.mux.HandleFunc("GET /api/builds/{id}", s.handleBuild)
	if s.opts.Metrics != nil {
		s.mux.Handle("GET /metrics", s.opts.Metrics)
	}
	if s.opts.DocsRoot != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.opts.DocsRoot)))
	}
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", slog.String("addr", s.opts.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBuilds(w http.ResponseWriter, r *http.Request) {
	if s.opts.History == nil {
		http.Error(w, "build history not enabled", http.StatusNotFound)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	builds, err := s.opts.History.Recent(r.Context(), limit)
	if err != nil {
		slog.Error("listing build history failed", logfields.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, builds)
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	if s.opts.History == nil {
		http.Error(w, "build history not enabled", http.StatusNotFound)
		return
	}

	b, err := s.opts.History.ByID(r.Context(), r.PathValue("id"))
	var notFound history.ErrNotFound
	if errors.As(err, &notFound) {
		http.Error(w, "build not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("loading build failed", logfields.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("writing response failed", logfields.Error(err))
	}
}

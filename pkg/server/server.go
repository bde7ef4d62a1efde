// Package server exposes the cache over HTTP as a JSON API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/apex/log"

	"github.com/askcache-io/askcache/pkg/config"
	"github.com/askcache-io/askcache/pkg/stats"
	"github.com/askcache-io/askcache/pkg/store"
)

// Server is the HTTP front of one deployment instance's store. The store
// lives for the process lifetime and is reset only by the clear endpoint
// or a restart; horizontally scaled deployments each own an independent
// store.
type Server struct {
	cfg   *config.Config
	store *store.Store
	stats *stats.Tracker
	mux   *http.ServeMux
}

// New creates a Server wired with its store and counters.
func New(cfg *config.Config, st *store.Store, tr *stats.Tracker) *Server {
	s := &Server{
		cfg:   cfg,
		store: st,
		stats: tr,
		mux:   http.NewServeMux(),
	}
	s.mux.HandleFunc("/api", s.methods(map[string]http.HandlerFunc{
		http.MethodGet: s.handleIndex,
	}))
	s.mux.HandleFunc("/api/search", s.methods(map[string]http.HandlerFunc{
		http.MethodGet: s.handleSearch,
	}))
	s.mux.HandleFunc("/api/save", s.methods(map[string]http.HandlerFunc{
		http.MethodPost: s.handleSave,
	}))
	s.mux.HandleFunc("/api/questions", s.methods(map[string]http.HandlerFunc{
		http.MethodGet: s.handleQuestions,
	}))
	s.mux.HandleFunc("/api/stats", s.methods(map[string]http.HandlerFunc{
		http.MethodGet: s.handleStats,
	}))
	s.mux.HandleFunc("/api/clear", s.methods(map[string]http.HandlerFunc{
		http.MethodDelete: s.handleClear,
	}))
	s.mux.HandleFunc("/api/question", s.methods(map[string]http.HandlerFunc{
		http.MethodDelete: s.handleDeleteQuestion,
	}))
	s.mux.HandleFunc("/api/health", s.methods(map[string]http.HandlerFunc{
		http.MethodGet: s.handleHealth,
	}))
	s.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.notFound(w)
	})
	return s
}

// ServeHTTP implements http.Handler. Every response carries permissive
// CORS headers; preflight requests short-circuit here.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.WithField("panic", rec).WithField("path", r.URL.Path).Error("handler panicked")
			writeError(w, http.StatusInternalServerError, "server error")
		}
	}()

	s.mux.ServeHTTP(w, r)
}

// methods dispatches by HTTP method, falling through to the JSON 404 so
// that an unknown method gets the endpoint listing rather than a bare 405.
func (s *Server) methods(routes map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h, ok := routes[r.Method]; ok {
			h(w, r)
			return
		}
		s.notFound(w)
	}
}

// ListenAndServe starts the API server with graceful shutdown support.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.cfg.Listen).Info("askcache api listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

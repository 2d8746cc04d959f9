// Package devserver serves the built debug HTML for local development and
// mocks the device settings endpoint.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Config holds server configuration.
type Config struct {
	Addr      string // listen address, e.g. "127.0.0.1:8080"
	DebugHTML string // absolute path of the debug HTML served on /
	Log       zerolog.Logger
}

// Server serves the debug page and records settings sent to /set.
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	page   string

	mu       sync.Mutex
	settings map[string]string
}

// New creates a Server. Call ListenAndServe or Serve to start it.
func New(cfg Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		log:      cfg.Log.With().Str("component", "devserver").Logger(),
		page:     cfg.DebugHTML,
		settings: make(map[string]string),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handlePage)
	s.router.Get("/set", s.handleSet)
	s.router.Get("/settings", s.handleSettings)
}

// ListenAndServe listens on the configured address and serves until ctx
// is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", ln.Addr().String()).Str("page", s.page).Msg("serving")
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
	s.log.Info().Msg("shutting down")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// Settings returns a copy of the recorded settings.
func (s *Server) Settings() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.settings))
	for k, v := range s.settings {
		out[k] = v
	}
	return out
}

// handlePage reads the page on every request so rebuilds show up on reload.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(s.page) // #nosec G304 -- configured output path
	if err != nil {
		s.log.Error().Err(err).Msg("reading debug HTML")
		http.Error(w, "debug HTML not built yet: run webembed build", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if len(query) == 0 {
		http.Error(w, "no setting given", http.StatusBadRequest)
		return
	}

	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s.mu.Lock()
	for _, k := range keys {
		s.settings[k] = query.Get(k)
	}
	s.mu.Unlock()

	for _, k := range keys {
		s.log.Info().Str("key", k).Str("value", query.Get(k)).Msg("setting received")
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Settings()); err != nil {
		s.log.Error().Err(err).Msg("encoding settings")
	}
}

// loggingMiddleware logs each request at debug level.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// Package http serves a finalized region graph over a small read-only API.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/regiongraph/pkg/domain"
	"github.com/aretw0/regiongraph/pkg/export"
)

type published struct {
	ref   string
	world *domain.GraphWorldDefinition
	kept  []string
}

// Server holds the graph currently on display. Publish may be called at any
// time; requests see either the old or the new graph, never a mix.
type Server struct {
	current atomic.Pointer[published]
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server with nothing published.
func NewServer(opts ...Option) *Server {
	s := &Server{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish replaces the graph on display. kept marks regions highlighted in
// the Mermaid view.
func (s *Server) Publish(ref string, world *domain.GraphWorldDefinition, kept []string) {
	s.current.Store(&published{ref: ref, world: world, kept: kept})
}

// Handler returns the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.getHealth)
	r.Get("/graph", s.getGraph)
	r.Get("/graph.mmd", s.getMermaid)
	r.Get("/stats", s.getStats)
	r.Get("/regions/{name}", s.getRegion)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.current.Load() == nil {
		status = "empty"
	}
	s.writeJSON(w, map[string]string{"status": status})
}

// graph returns the published graph or answers 503.
func (s *Server) graph(w http.ResponseWriter) *published {
	p := s.current.Load()
	if p == nil {
		http.Error(w, "no graph published", http.StatusServiceUnavailable)
	}
	return p
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	p := s.graph(w)
	if p == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := (export.JSON{}).Export(r.Context(), w, p.ref, p.world); err != nil {
		s.logger.Error("graph encode failed", "err", err)
	}
}

func (s *Server) getMermaid(w http.ResponseWriter, r *http.Request) {
	p := s.graph(w)
	if p == nil {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := (export.Mermaid{Kept: p.kept}).Export(r.Context(), w, p.ref, p.world); err != nil {
		s.logger.Error("mermaid render failed", "err", err)
	}
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	p := s.graph(w)
	if p == nil {
		return
	}
	s.writeJSON(w, struct {
		Ref string `json:"ref"`
		domain.GraphStats
	}{p.ref, p.world.Stats()})
}

func (s *Server) getRegion(w http.ResponseWriter, r *http.Request) {
	p := s.graph(w)
	if p == nil {
		return
	}
	region, ok := p.world.Region(chi.URLParam(r, "name"))
	if !ok {
		http.Error(w, "region not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, region)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

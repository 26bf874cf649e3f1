// Package http exposes the analysis pipeline over HTTP: operational
// endpoints (health, readiness, metrics) plus the JSON analysis API the
// charting front end consumes.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yunsj111/wedding-rainfall-analysis/internal/analysis"
	"github.com/yunsj111/wedding-rainfall-analysis/internal/domain"
)

// Analyzer runs analysis requests and owns the record cache.
type Analyzer interface {
	Run(ctx context.Context, req analysis.Request) (*analysis.Result, error)
	InvalidateCache()
	CheckReadiness(ctx context.Context) error
}

// Server exposes health, readiness, metrics, and analysis HTTP endpoints.
type Server struct {
	httpServer *http.Server
	analyzer   Analyzer
	logger     *slog.Logger
}

// NewServer creates an HTTP server with operational and analysis routes.
func NewServer(addr string, analyzer Analyzer, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		analyzer: analyzer,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/v1/analysis", s.handleAnalysis)
	mux.HandleFunc("POST /api/v1/cache/invalidate", s.handleInvalidate)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.analyzer.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	req, err := parseAnalysisQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.analyzer.Run(r.Context(), req)
	if err != nil {
		s.writeAnalysisError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newAnalysisResponse(result))
}

func (s *Server) handleInvalidate(w http.ResponseWriter, _ *http.Request) {
	s.analyzer.InvalidateCache()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cache invalidated"})
}

// writeAnalysisError maps pipeline errors to status codes. Unknown location
// and an empty year selection are request-level failures with a user-facing
// message; anything unexpected stays generic.
func (s *Server) writeAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analysis.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrLocationNotFound), errors.Is(err, domain.ErrNoData):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("analysis request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// parseAnalysisQuery binds the query string to an analysis request. Range
// validation happens in the analysis service; this only requires presence
// and integer syntax.
func parseAnalysisQuery(r *http.Request) (analysis.Request, error) {
	q := r.URL.Query()

	location := q.Get("location")
	if location == "" {
		return analysis.Request{}, errors.New("location query parameter is required")
	}

	ints := map[string]*int{
		"year_start": new(int),
		"year_end":   new(int),
		"start_hour": new(int),
		"end_hour":   new(int),
		"month":      new(int),
		"day":        new(int),
	}
	for name, dst := range ints {
		raw := q.Get(name)
		if raw == "" {
			return analysis.Request{}, fmt.Errorf("%s query parameter is required", name)
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return analysis.Request{}, fmt.Errorf("%s must be an integer: got %q", name, raw)
		}
		*dst = v
	}

	return analysis.Request{
		Location:  location,
		YearStart: *ints["year_start"],
		YearEnd:   *ints["year_end"],
		StartHour: *ints["start_hour"],
		EndHour:   *ints["end_hour"],
		Month:     time.Month(*ints["month"]),
		Day:       *ints["day"],
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

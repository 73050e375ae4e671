// Package api exposes the scraping pipeline over HTTP for the web
// front-end: it accepts a free-text search term and returns the finished
// table plus artifact paths.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sammyzayn123/review-scraper/internal/config"
	"github.com/sammyzayn123/review-scraper/internal/observability"
	"github.com/sammyzayn123/review-scraper/internal/pipeline"
	"github.com/sammyzayn123/review-scraper/internal/types"
)

// Runner is the interface the API uses to execute scrape runs.
type Runner interface {
	Run(ctx context.Context, searchTerm string) (*pipeline.Result, error)
}

// Server provides the REST API over the pipeline.
type Server struct {
	mux     *http.ServeMux
	port    int
	runner  Runner
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewServer creates a new API server.
func NewServer(port int, runner Runner, logger *slog.Logger) *Server {
	s := &Server{
		mux:    http.NewServeMux(),
		port:   port,
		runner: runner,
		logger: logger.With("component", "api_server"),
	}

	s.registerRoutes()
	return s
}

// SetMetrics exposes a metrics handler on /metrics.
func (s *Server) SetMetrics(m *observability.Metrics) {
	s.metrics = m
	s.mux.Handle("GET /metrics", m)
}

// ListenAndServe starts the API server and blocks.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.mux)
}

// Handler returns the server's HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("POST /api/review", s.handleReview)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": config.Version,
	})
}

// reviewResponse is the wire shape of a finished run.
type reviewResponse struct {
	SearchTerm string     `json:"search_term"`
	Columns    []string   `json:"columns"`
	Rows       [][]string `json:"rows"`
	CSVPath    string     `json:"csv_path"`
	ImagePath  string     `json:"image_path"`
	ReportPath string     `json:"report_path"`
	TotalFound int        `json:"total_found"`
	Truncated  bool       `json:"truncated"`
	Duration   string     `json:"duration"`
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	start := time.Now()
	result, err := s.runner.Run(r.Context(), body.Query)
	if err != nil {
		s.logger.Error("scrape run failed", "query", body.Query, "error", err)
		status := http.StatusBadGateway
		var perr *types.PipelineError
		if !errors.As(err, &perr) {
			status = http.StatusInternalServerError
		}
		s.jsonResponse(w, status, map[string]string{"error": err.Error()})
		return
	}

	s.logger.Info("scrape run served",
		"query", body.Query,
		"rows", result.Table.Len(),
		"duration", time.Since(start),
	)

	s.jsonResponse(w, http.StatusOK, reviewResponse{
		SearchTerm: body.Query,
		Columns:    types.Columns,
		Rows:       result.Table.Rows(),
		CSVPath:    result.CSVPath,
		ImagePath:  result.ImagePath,
		ReportPath: result.ReportPath,
		TotalFound: result.TotalFound,
		Truncated:  result.Truncated,
		Duration:   result.Duration.String(),
	})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("response encoding failed", "error", err)
	}
}

package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/claude/liftlog/internal/mcp"
)

// Options configures a Server.
type Options struct {
	// Data backs every read endpoint and the MCP tools.
	Data mcp.DataSource
	// Imports enables POST /api/v1/import and GET /api/v1/imports when set.
	Imports Importer
	// APIKey guards the import endpoints.
	APIKey  string
	Version string
	// Registry receives the HTTP metrics. A fresh one is created when nil.
	Registry *prometheus.Registry
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	data     mcp.DataSource
	imports  Importer
	apiKey   string
	log      *slog.Logger
	metrics  *Metrics
	registry *prometheus.Registry
	mcp      http.Handler
	router   chi.Router
	now      func() time.Time
}

// New creates a new Server with all routes configured.
func New(opts Options, log *slog.Logger) *Server {
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}
	s := &Server{
		data:     opts.Data,
		imports:  opts.Imports,
		apiKey:   opts.APIKey,
		log:      log,
		metrics:  NewMetrics(reg),
		registry: reg,
		mcp:      mcpserver.NewStreamableHTTPServer(mcp.New(opts.Data, opts.Version, log)),
		router:   chi.NewRouter(),
		now:      time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(RequestMetrics(s.metrics))
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// MCP streamable HTTP transport
	s.router.Handle("/mcp", s.mcp)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/trainings", s.handleTrainings)
		r.Get("/trainings/{date}", s.handleTrainingDetail)
		r.Get("/progress", s.handleProgress)
		r.Get("/stats", s.handleStats)
		r.Get("/records", s.handleRecords)
		r.Get("/exercises", s.handleExercises)
		r.Get("/summary", s.handleSummary)

		// Raw data for remote MCP clients
		r.Get("/export/trainings", s.handleExportTrainings)
		r.Get("/export/catalog", s.handleExportCatalog)

		if s.imports != nil {
			r.Group(func(r chi.Router) {
				r.Use(APIKeyAuth(s.apiKey))
				r.Post("/import", s.handleImport)
				r.Get("/imports", s.handleImportLogs)
			})
		}
	})
}

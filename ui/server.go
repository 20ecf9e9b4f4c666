package ui

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"

	"dbsinterval/app"
	"dbsinterval/domain/interval"
)

//go:embed templates/*.html static/css/*.css content/*.md
var embeddedFiles embed.FS

// Server represents the web server for the interval calculator UI
type Server struct {
	router      *gin.Engine
	service     *app.EvaluationService
	templates   *template.Template
	assumptions template.HTML
	defaults    app.EvaluationRequest
	logger      *slog.Logger
}

// Config holds UI server settings
type Config struct {
	GinMode        string
	DefaultVariant interval.Variant
}

// NewServer creates a new web server instance
func NewServer(cfg Config, service *app.EvaluationService, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	if cfg.DefaultVariant.Name == "" {
		cfg.DefaultVariant = interval.VariantTEa
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	source, err := embeddedFiles.ReadFile("content/assumptions.md")
	if err != nil {
		return nil, fmt.Errorf("failed to read assumptions: %w", err)
	}

	s := &Server{
		router:      gin.New(),
		service:     service,
		templates:   templates,
		assumptions: renderMarkdown(source),
		defaults:    app.DefaultRequest(cfg.DefaultVariant),
		logger:      logger,
	}

	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes()
	return s, nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/chart.png", s.handleChart)
	s.router.GET("/chart.svg", s.handleChart)
	s.router.GET("/export.xlsx", s.handleExport)
	s.router.GET("/export.csv", s.handleExport)
	s.router.GET("/healthz", s.handleHealth)
}

// Handler returns the router wrapped with response compression.
func (s *Server) Handler() http.Handler {
	return gzhttp.GzipHandler(s.router)
}

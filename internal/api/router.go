// Package api exposes the interval model as a JSON and file-download API.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"dbsinterval/app"
	"dbsinterval/domain/interval"
	"dbsinterval/internal/errors"
	"dbsinterval/ports"
)

// Handler serves the /api/v1 routes
type Handler struct {
	service  *app.EvaluationService
	defaults app.EvaluationRequest
	logger   *slog.Logger
}

// NewHandler creates an API handler. Requests that omit a parameter fall
// back to the calculator defaults for defaultVariant.
func NewHandler(service *app.EvaluationService, defaultVariant interval.Variant, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultVariant.Name == "" {
		defaultVariant = interval.VariantTEa
	}
	return &Handler{
		service:  service,
		defaults: app.DefaultRequest(defaultVariant),
		logger:   logger,
	}
}

// Router builds the chi router with middleware and routes
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", h.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/levels", h.handleLevels)
		r.Get("/variants", h.handleVariants)
		r.Get("/curve", h.handleCurve)
		r.Get("/point", h.handlePoint)
		r.Get("/chart.png", h.handleChart(ports.ChartPNG))
		r.Get("/chart.svg", h.handleChart(ports.ChartSVG))
		r.Get("/export.xlsx", h.handleExport(ports.ExportXLSX))
		r.Get("/export.csv", h.handleExport(ports.ExportCSV))
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusNotFound, errorBody{Code: errors.CodeNotFound, Message: "no route for " + r.URL.Path})
	})
	return r
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Info("api request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

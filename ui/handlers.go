package ui

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dbsinterval/app"
	"dbsinterval/domain/interval"
	"dbsinterval/internal/errors"
)

// control describes one range input on the page.
type control struct {
	Key   string
	Label string
	Min   float64
	Max   float64
	Step  float64
	Value float64
}

type pageData struct {
	Title       string
	Request     app.EvaluationRequest
	Confidence  []interval.ConfidenceLevel
	Variants    []interval.Variant
	Controls    []control
	Evaluation  *interval.Evaluation
	Error       string
	Query       template.URL
	Assumptions template.HTML
}

func controlsFor(p interval.Parameters) []control {
	return []control{
		{Key: interval.KeyTEa, Label: "Total Allowable Error (TEa, %)", Min: 5, Max: 50, Step: 0.5, Value: p.TEa},
		{Key: interval.KeyBias, Label: "Analytical Bias (%)", Min: 0, Max: 20, Step: 0.1, Value: p.Bias},
		{Key: interval.KeyCV, Label: "Analytical CV (%)", Min: 0, Max: 30, Step: 0.1, Value: p.CV},
		{Key: interval.KeyFactor, Label: "% change per mm", Min: 0, Max: 5, Step: 0.01, Value: p.Factor},
		{Key: interval.KeyReference, Label: "Reference DBS diameter", Min: 10, Max: 12, Step: 0.1, Value: p.ReferenceSize},
	}
}

// handleIndex renders the calculator page. Invalid input still renders the
// page with the controls and an error message in place of the results.
func (s *Server) handleIndex(c *gin.Context) {
	req, err := app.RequestFromQuery(c.Request.URL.Query(), s.defaults)
	data := pageData{
		Title:       "Acceptable DBS Size Interval",
		Request:     req,
		Confidence:  interval.ConfidenceLevels,
		Variants:    interval.Variants(),
		Controls:    controlsFor(req.Params),
		Query:       template.URL(req.Query().Encode()),
		Assumptions: s.assumptions,
	}

	status := http.StatusOK
	if err == nil {
		data.Evaluation, err = s.service.Evaluate(c.Request.Context(), req)
	}
	if err != nil {
		status = errors.HTTPStatus(err)
		data.Error = err.Error()
		_ = c.Error(err)
	}
	s.renderTemplate(c, status, "index.html", data)
}

// handleChart serves the chart for the query parameters. The format comes
// from the path extension.
func (s *Server) handleChart(c *gin.Context) {
	format, err := app.ParseChartFormat(extension(c.Request.URL.Path))
	if err != nil {
		s.respondError(c, err)
		return
	}
	req, err := app.RequestFromQuery(c.Request.URL.Query(), s.defaults)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.service.Validate(req.Params); err != nil {
		s.respondError(c, err)
		return
	}
	etag := req.ETag(string(format))
	if notModified(c, etag) {
		return
	}

	var buf bytes.Buffer
	if _, err := s.service.RenderChart(c.Request.Context(), req, format, &buf); err != nil {
		s.respondError(c, err)
		return
	}
	c.Header("ETag", etag)
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, s.service.ChartContentType(format), buf.Bytes())
}

// handleExport serves the sampled curve as a download.
func (s *Server) handleExport(c *gin.Context) {
	format, err := app.ParseExportFormat(extension(c.Request.URL.Path))
	if err != nil {
		s.respondError(c, err)
		return
	}
	req, err := app.RequestFromQuery(c.Request.URL.Query(), s.defaults)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.service.Validate(req.Params); err != nil {
		s.respondError(c, err)
		return
	}
	etag := req.ETag(string(format))
	if notModified(c, etag) {
		return
	}

	var buf bytes.Buffer
	if _, err := s.service.Export(c.Request.Context(), req, format, &buf); err != nil {
		s.respondError(c, err)
		return
	}
	c.Header("ETag", etag)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="dbs-interval-%s.%s"`, req.Variant.Name, format))
	c.Data(http.StatusOK, s.service.ExportContentType(format), buf.Bytes())
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(errors.HTTPStatus(err), gin.H{
		"code":    errors.GetCode(err),
		"message": err.Error(),
	})
}

func notModified(c *gin.Context, etag string) bool {
	if !app.MatchesETag(c.GetHeader("If-None-Match"), etag) {
		return false
	}
	c.Header("ETag", etag)
	c.Status(http.StatusNotModified)
	c.Abort()
	return true
}

func extension(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return ""
}

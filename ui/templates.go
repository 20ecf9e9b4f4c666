package ui

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"github.com/gin-gonic/gin"
)

func parseTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"num": func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) },
		"fixed2": func(f float64) string {
			return strconv.FormatFloat(f, 'f', 2, 64)
		},
		"eqf": func(a, b float64) bool { return a == b },
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// renderTemplate executes a template with the given data
func (s *Server) renderTemplate(c *gin.Context, status int, templateName string, data any) {
	// Render to a buffer first so a template error never leaves a half-written page
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		s.logger.Error("template error", "template", templateName, "data_type", fmt.Sprintf("%T", data), "error", err)
		c.AbortWithStatusJSON(500, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(status)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		s.logger.Warn("error writing template response", "template", templateName, "error", err)
	}
}

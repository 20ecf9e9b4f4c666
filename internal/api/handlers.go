package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"dbsinterval/app"
	"dbsinterval/domain/core"
	"dbsinterval/domain/interval"
	"dbsinterval/internal/errors"
	"dbsinterval/ports"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CurveResponse carries the full sweep for one request.
type CurveResponse struct {
	ID          core.EvaluationID     `json:"id"`
	Variant     string                `json:"variant"`
	Axis        interval.Axis         `json:"axis"`
	Params      interval.Parameters   `json:"params"`
	Points      []interval.CurvePoint `json:"points"`
	Summary     interval.Summary      `json:"summary"`
	Fingerprint core.Fingerprint      `json:"fingerprint"`
}

// PointResponse carries the point estimate and its display state.
type PointResponse struct {
	ID          core.EvaluationID        `json:"id"`
	Variant     string                   `json:"variant"`
	Confidence  interval.ConfidenceLevel `json:"confidence"`
	Params      interval.Parameters      `json:"params"`
	Query       float64                  `json:"query"`
	Point       interval.CurvePoint      `json:"point"`
	Guide       interval.Guide           `json:"guide"`
	Display     interval.Display         `json:"display"`
	Fingerprint core.Fingerprint         `json:"fingerprint"`
	GeneratedAt core.Timestamp           `json:"generated_at"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleLevels(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"levels":  interval.ConfidenceLevels,
		"default": interval.DefaultConfidence(),
	})
}

func (h *Handler) handleVariants(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"variants": interval.Variants()})
}

func (h *Handler) handleCurve(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.evaluate(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, CurveResponse{
		ID:          ev.ID,
		Variant:     ev.Variant.Name,
		Axis:        ev.Curve.Axis,
		Params:      ev.Params,
		Points:      ev.Curve.Points,
		Summary:     ev.Summary,
		Fingerprint: ev.Fingerprint,
	})
}

func (h *Handler) handlePoint(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.evaluate(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, PointResponse{
		ID:          ev.ID,
		Variant:     ev.Variant.Name,
		Confidence:  ev.Confidence,
		Params:      ev.Params,
		Query:       ev.Query,
		Point:       ev.Point,
		Guide:       ev.Guide,
		Display:     ev.Display,
		Fingerprint: ev.Fingerprint,
		GeneratedAt: ev.GeneratedAt,
	})
}

func (h *Handler) evaluate(w http.ResponseWriter, r *http.Request) (*interval.Evaluation, bool) {
	req, err := app.RequestFromQuery(r.URL.Query(), h.defaults)
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}
	ev, err := h.service.Evaluate(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}
	return ev, true
}

func (h *Handler) handleChart(format ports.ChartFormat) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := app.RequestFromQuery(r.URL.Query(), h.defaults)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if err := h.service.Validate(req.Params); err != nil {
			h.writeError(w, err)
			return
		}
		etag := req.ETag(string(format))
		if app.MatchesETag(r.Header.Get("If-None-Match"), etag) {
			w.Header().Set("ETag", etag)
			w.WriteHeader(http.StatusNotModified)
			return
		}

		var buf bytes.Buffer
		if _, err := h.service.RenderChart(r.Context(), req, format, &buf); err != nil {
			h.writeError(w, err)
			return
		}
		w.Header().Set("ETag", etag)
		w.Header().Set("Content-Type", h.service.ChartContentType(format))
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}

func (h *Handler) handleExport(format ports.ExportFormat) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := app.RequestFromQuery(r.URL.Query(), h.defaults)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if err := h.service.Validate(req.Params); err != nil {
			h.writeError(w, err)
			return
		}
		etag := req.ETag(string(format))
		if app.MatchesETag(r.Header.Get("If-None-Match"), etag) {
			w.Header().Set("ETag", etag)
			w.WriteHeader(http.StatusNotModified)
			return
		}

		var buf bytes.Buffer
		if _, err := h.service.Export(r.Context(), req, format, &buf); err != nil {
			h.writeError(w, err)
			return
		}
		w.Header().Set("ETag", etag)
		w.Header().Set("Content-Type", h.service.ExportContentType(format))
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="dbs-interval-%s.%s"`, req.Variant.Name, format))
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("api request failed", "error", err)
	}
	h.writeJSON(w, status, errorBody{Code: errors.GetCode(err), Message: err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("failed to encode response", "error", err, "status", status)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorBody{Code: errors.CodeInternalError, Message: "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

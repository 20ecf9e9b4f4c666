package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbsinterval/adapters/chart"
	"dbsinterval/adapters/excel"
	"dbsinterval/app"
	"dbsinterval/domain/interval"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := app.NewEvaluationService(
		chart.NewRenderer(640, 480),
		excel.NewExporter(excel.DefaultExportConfig(), logger),
		logger,
	)
	return NewHandler(service, interval.VariantTEa, logger).Router()
}

func doGet(t *testing.T, h http.Handler, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLevels(t *testing.T) {
	rec := doGet(t, newTestRouter(t), "/api/v1/levels", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Levels  []interval.ConfidenceLevel `json:"levels"`
		Default interval.ConfidenceLevel   `json:"default"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Levels, 4)
	assert.Equal(t, 1.65, body.Default.Z)
}

func TestVariants(t *testing.T) {
	rec := doGet(t, newTestRouter(t), "/api/v1/variants", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"cv-min"`)
}

func TestPoint_Defaults(t *testing.T) {
	rec := doGet(t, newTestRouter(t), "/api/v1/point", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body PointResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "tea", body.Variant)
	assert.Equal(t, "8.68", body.Display.Min)
	assert.Equal(t, "12.72", body.Display.Max)
	assert.True(t, body.Display.ShowGuides)
	assert.InDelta(t, 8.6398, body.Guide.MinSize, 1e-3)
	assert.InDelta(t, 12.7602, body.Guide.MaxSize, 1e-3)
	assert.NotEmpty(t, body.ID)
}

func TestPoint_ConfidenceLabel(t *testing.T) {
	rec := doGet(t, newTestRouter(t), "/api/v1/point?confidence=99%25+%28two-tailed%29", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body PointResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2.58, body.Params.Z)
	assert.Equal(t, "99% (two-tailed)", body.Confidence.Label)
}

func TestCurve(t *testing.T) {
	rec := doGet(t, newTestRouter(t), "/api/v1/curve?variant=cv", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body CurveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, interval.AxisCV, body.Axis)
	require.Len(t, body.Points, interval.Samples)
	assert.Equal(t, 0.0, body.Points[0].X)
	assert.Equal(t, 30.0, body.Points[interval.Samples-1].X)
	for _, p := range body.Points {
		assert.InDelta(t, 2*body.Params.ReferenceSize, p.MinSize+p.MaxSize, 1e-9)
	}
	assert.Contains(t, rec.Body.String(), `"feasible_from":0,`)
}

func TestErrors(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{name: "zero factor", target: "/api/v1/point?factor=0", status: http.StatusBadRequest, code: "INVALID_INPUT"},
		{name: "subnormal factor point", target: "/api/v1/point?factor=1e-310", status: http.StatusBadRequest, code: "INVALID_INPUT"},
		{name: "subnormal factor curve", target: "/api/v1/curve?factor=1e-310", status: http.StatusBadRequest, code: "INVALID_INPUT"},
		{name: "wildcard match on invalid chart", target: "/api/v1/chart.png?factor=0", status: http.StatusBadRequest, code: "INVALID_INPUT"},
		{name: "wildcard match on invalid export", target: "/api/v1/export.xlsx?reference=9", status: http.StatusBadRequest, code: "INVALID_INPUT"},
		{name: "out of domain", target: "/api/v1/curve?reference=9", status: http.StatusBadRequest, code: "INVALID_INPUT"},
		{name: "unknown variant", target: "/api/v1/curve?variant=bias", status: http.StatusBadRequest, code: "INVALID_INPUT"},
		{name: "bad number", target: "/api/v1/chart.png?tea=lots", status: http.StatusBadRequest, code: "INVALID_INPUT"},
		{name: "unknown route", target: "/api/v1/chart.gif", status: http.StatusNotFound, code: "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(t, h, tt.target, http.Header{"If-None-Match": {"*"}})

			assert.Equal(t, tt.status, rec.Code)
			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestChart(t *testing.T) {
	h := newTestRouter(t)

	rec := doGet(t, h, "/api/v1/chart.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	again := doGet(t, h, "/api/v1/chart.png", http.Header{"If-None-Match": {etag}})
	assert.Equal(t, http.StatusNotModified, again.Code)

	svg := doGet(t, h, "/api/v1/chart.svg", nil)
	require.Equal(t, http.StatusOK, svg.Code)
	assert.Contains(t, svg.Body.String(), "<svg")
	assert.NotEqual(t, etag, svg.Header().Get("ETag"))
}

func TestExport(t *testing.T) {
	h := newTestRouter(t)

	rec := doGet(t, h, "/api/v1/export.csv?variant=cv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "dbs-interval-cv.csv")
	assert.Contains(t, rec.Body.String(), "Max size")

	xlsx := doGet(t, h, "/api/v1/export.xlsx", nil)
	require.Equal(t, http.StatusOK, xlsx.Code)
	assert.True(t, bytes.HasPrefix(xlsx.Body.Bytes(), []byte("PK")))

	etag := xlsx.Header().Get("ETag")
	assert.True(t, strings.HasPrefix(etag, `W/"`), etag)
	again := doGet(t, h, "/api/v1/export.xlsx", http.Header{"If-None-Match": {etag}})
	assert.Equal(t, http.StatusNotModified, again.Code)
	assert.False(t, strings.HasPrefix(rec.Header().Get("ETag"), "W/"))
}

func TestWriteJSON_EncodeFailure(t *testing.T) {
	h := NewHandler(nil, interval.VariantTEa, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec := httptest.NewRecorder()

	h.writeJSON(rec, http.StatusOK, map[string]float64{"x": math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body.Code)
}

func TestHealthz(t *testing.T) {
	rec := doGet(t, newTestRouter(t), "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

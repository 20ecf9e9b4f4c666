package app

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dbsinterval/domain/core"
	"dbsinterval/domain/interval"
	"dbsinterval/internal/errors"
	"dbsinterval/ports"
)

// Mock implementations for testing
type MockChartRenderer struct {
	mock.Mock
}

func (m *MockChartRenderer) Render(ctx context.Context, ev *interval.Evaluation, format ports.ChartFormat, w io.Writer) error {
	args := m.Called(ctx, ev, format, w)
	return args.Error(0)
}

func (m *MockChartRenderer) ContentType(format ports.ChartFormat) string {
	args := m.Called(format)
	return args.String(0)
}

type MockCurveExporter struct {
	mock.Mock
}

func (m *MockCurveExporter) Export(ctx context.Context, ev *interval.Evaluation, format ports.ExportFormat, w io.Writer) error {
	args := m.Called(ctx, ev, format, w)
	return args.Error(0)
}

func (m *MockCurveExporter) ContentType(format ports.ExportFormat) string {
	args := m.Called(format)
	return args.String(0)
}

func TestEvaluate_DefaultRequest(t *testing.T) {
	svc := NewEvaluationService(nil, nil, nil)

	ev, err := svc.Evaluate(context.Background(), DefaultRequest(interval.VariantTEa))
	require.NoError(t, err)

	assert.False(t, ev.ID.String() == "")
	assert.Len(t, ev.Curve.Points, interval.Samples)
	assert.Equal(t, 25.0, ev.Query)
	assert.Equal(t, "95% (one-tailed)", ev.Confidence.Label)

	// metric uses the nearest grid sample, guide uses exact interpolation
	assert.Equal(t, "8.68", ev.Display.Min)
	assert.Equal(t, "12.72", ev.Display.Max)
	assert.True(t, ev.Display.ShowGuides)
	assert.InDelta(t, 8.6398, ev.Guide.MinSize, 1e-4)
	assert.InDelta(t, 12.7602, ev.Guide.MaxSize, 1e-4)

	assert.Greater(t, ev.Summary.FeasibleSamples, 0)
	assert.LessOrEqual(t, ev.Summary.FeasibleFrom, ev.Summary.FeasibleTo)
	assert.InDelta(t, ev.Curve.Points[interval.Samples-1].MaxSize, ev.Summary.HighestMax, 1e-12)
	assert.InDelta(t, ev.Curve.Points[interval.Samples-1].MinSize, ev.Summary.LowestMin, 1e-12)
}

func TestEvaluate_ZeroFactorRejected(t *testing.T) {
	svc := NewEvaluationService(nil, nil, nil)
	req := DefaultRequest(interval.VariantTEa)
	req.Params.Factor = 0

	ev, err := svc.Evaluate(context.Background(), req)
	assert.Nil(t, ev)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrZeroFactor)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestEvaluate_SubnormalFactorRejected(t *testing.T) {
	var svc *EvaluationService
	require.NotPanics(t, func() { svc = NewEvaluationService(nil, nil, nil) })
	req := DefaultRequest(interval.VariantTEa)
	req.Params.Factor = 1e-310

	ev, err := svc.Evaluate(context.Background(), req)
	assert.Nil(t, ev)
	assert.ErrorIs(t, err, core.ErrNonFiniteResult)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestValidate_OutOfDomain(t *testing.T) {
	svc := NewEvaluationService(nil, nil, nil)

	tests := []struct {
		name    string
		mutate  func(p *interval.Parameters)
		message string
	}{
		{"tea high", func(p *interval.Parameters) { p.TEa = 55 }, "tea must be <= 50"},
		{"tea low", func(p *interval.Parameters) { p.TEa = 4.5 }, "tea must be >= 5"},
		{"bias", func(p *interval.Parameters) { p.Bias = -1 }, "bias must be >= 0"},
		{"cv", func(p *interval.Parameters) { p.CV = 31 }, "cv must be <= 30"},
		{"factor", func(p *interval.Parameters) { p.Factor = 6 }, "factor must be <= 5"},
		{"reference", func(p *interval.Parameters) { p.ReferenceSize = 9.9 }, "reference_size must be >= 10"},
		{"z", func(p *interval.Parameters) { p.Z = 2 }, "z must be one of"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := interval.DefaultParameters()
			tt.mutate(&p)
			err := svc.Validate(p)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestEvaluate_MinOnlyVariant(t *testing.T) {
	svc := NewEvaluationService(nil, nil, nil)

	ev, err := svc.Evaluate(context.Background(), DefaultRequest(interval.VariantCVMin))
	require.NoError(t, err)

	assert.Equal(t, interval.AxisCV, ev.Curve.Axis)
	assert.Equal(t, 8.7, ev.Query)
	assert.NotEmpty(t, ev.Display.Min)
	assert.Empty(t, ev.Display.Max)
}

func TestEvaluate_CanceledContext(t *testing.T) {
	svc := NewEvaluationService(nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Evaluate(ctx, DefaultRequest(interval.VariantTEa))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluate_FingerprintStable(t *testing.T) {
	svc := NewEvaluationService(nil, nil, nil)
	req := DefaultRequest(interval.VariantCV)

	a, err := svc.Evaluate(context.Background(), req)
	require.NoError(t, err)
	b, err := svc.Evaluate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, a.Fingerprint, b.Fingerprint)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestRenderChart_DelegatesToRenderer(t *testing.T) {
	renderer := new(MockChartRenderer)
	svc := NewEvaluationService(renderer, nil, nil)
	var buf bytes.Buffer

	renderer.On("Render", mock.Anything, mock.AnythingOfType("*interval.Evaluation"), ports.ChartSVG, &buf).Return(nil)

	ev, err := svc.RenderChart(context.Background(), DefaultRequest(interval.VariantTEa), ports.ChartSVG, &buf)
	require.NoError(t, err)
	assert.NotNil(t, ev)
	renderer.AssertExpectations(t)
}

func TestRenderChart_InvalidInputSkipsRenderer(t *testing.T) {
	renderer := new(MockChartRenderer)
	svc := NewEvaluationService(renderer, nil, nil)
	req := DefaultRequest(interval.VariantTEa)
	req.Params.Factor = 0

	_, err := svc.RenderChart(context.Background(), req, ports.ChartPNG, io.Discard)
	require.Error(t, err)
	renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExport_DelegatesToExporter(t *testing.T) {
	exporter := new(MockCurveExporter)
	svc := NewEvaluationService(nil, exporter, nil)

	exporter.On("Export", mock.Anything, mock.Anything, ports.ExportCSV, io.Discard).Return(nil)
	exporter.On("ContentType", ports.ExportCSV).Return("text/csv")

	_, err := svc.Export(context.Background(), DefaultRequest(interval.VariantTEa), ports.ExportCSV, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", svc.ExportContentType(ports.ExportCSV))
	exporter.AssertExpectations(t)
}

func TestExport_WithoutExporter(t *testing.T) {
	svc := NewEvaluationService(nil, nil, nil)
	_, err := svc.Export(context.Background(), DefaultRequest(interval.VariantTEa), ports.ExportXLSX, io.Discard)
	assert.Equal(t, errors.CodeInternalError, errors.GetCode(err))
}

func TestRequestFromQuery(t *testing.T) {
	base := DefaultRequest(interval.VariantTEa)
	values := url.Values{
		interval.KeyVariant:    {"cv"},
		interval.KeyConfidence: {"99% (two-tailed)"},
		interval.KeyCV:         {"12.5"},
		interval.KeyReference:  {"11"},
	}

	req, err := RequestFromQuery(values, base)
	require.NoError(t, err)

	assert.Equal(t, interval.VariantCV, req.Variant)
	assert.Equal(t, 2.58, req.Params.Z)
	assert.Equal(t, 12.5, req.Params.CV)
	assert.Equal(t, 11.0, req.Params.ReferenceSize)
	assert.Equal(t, base.Params.TEa, req.Params.TEa)

	round, err := RequestFromQuery(req.Query(), base)
	require.NoError(t, err)
	assert.Equal(t, req, round)
}

func TestRequestFromQuery_Errors(t *testing.T) {
	base := DefaultRequest(interval.VariantTEa)

	_, err := RequestFromQuery(url.Values{interval.KeyTEa: {"lots"}}, base)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = RequestFromQuery(url.Values{interval.KeyVariant: {"bias"}}, base)
	assert.ErrorIs(t, err, core.ErrUnknownVariant)

	_, err = RequestFromQuery(url.Values{interval.KeyConfidence: {"90%"}}, base)
	assert.True(t, core.IsInputError(err))
}

func TestParseFormats(t *testing.T) {
	f, err := ParseChartFormat("")
	require.NoError(t, err)
	assert.Equal(t, ports.ChartPNG, f)

	f, err = ParseChartFormat("SVG")
	require.NoError(t, err)
	assert.Equal(t, ports.ChartSVG, f)

	_, err = ParseChartFormat("gif")
	assert.ErrorIs(t, err, core.ErrUnknownFormat)

	e, err := ParseExportFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, ports.ExportCSV, e)

	_, err = ParseExportFormat("json")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestETag_WeakForWorkbooks(t *testing.T) {
	req := DefaultRequest(interval.VariantTEa)

	png := req.ETag(string(ports.ChartPNG))
	xlsx := req.ETag(string(ports.ExportXLSX))

	assert.Regexp(t, `^"[0-9a-f]+-png"$`, png)
	assert.Regexp(t, `^W/"[0-9a-f]+-xlsx"$`, xlsx)
}

func TestMatchesETag(t *testing.T) {
	const strong = `"abc-png"`
	const weak = `W/"abc-xlsx"`

	tests := []struct {
		name   string
		header string
		etag   string
		want   bool
	}{
		{name: "exact", header: strong, etag: strong, want: true},
		{name: "listed", header: `"other", "abc-png"`, etag: strong, want: true},
		{name: "weak header", header: `W/"abc-png"`, etag: strong, want: true},
		{name: "weak etag", header: `"abc-xlsx"`, etag: weak, want: true},
		{name: "weak both", header: weak, etag: weak, want: true},
		{name: "wildcard", header: "*", etag: strong, want: false},
		{name: "empty", header: "", etag: strong, want: false},
		{name: "different", header: `"abd-png"`, etag: strong, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesETag(tt.header, tt.etag))
		})
	}
}

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/montanaflynn/stats"

	"dbsinterval/domain/core"
	"dbsinterval/domain/interval"
	"dbsinterval/internal/errors"
	"dbsinterval/ports"
)

// EvaluationService runs the interval model and hands results to renderers
// and exporters. It holds no per-request state and is safe for concurrent use.
type EvaluationService struct {
	validate *validator.Validate
	renderer ports.ChartRenderer
	exporter ports.CurveExporter
	logger   *slog.Logger
}

// EvaluationRequest defines the inputs of one evaluation
type EvaluationRequest struct {
	Params  interval.Parameters
	Variant interval.Variant
}

// NewEvaluationService creates an evaluation service. renderer and exporter
// may be nil when the caller only needs Evaluate.
func NewEvaluationService(renderer ports.ChartRenderer, exporter ports.CurveExporter, logger *slog.Logger) *EvaluationService {
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("confidence_z", func(fl validator.FieldLevel) bool {
		return interval.IsConfidenceZ(fl.Field().Float())
	}); err != nil {
		panic(fmt.Sprintf("register confidence_z validation: %v", err))
	}

	return &EvaluationService{
		validate: v,
		renderer: renderer,
		exporter: exporter,
		logger:   logger,
	}
}

// Validate checks every parameter against its control domain and rejects a
// zero sensitivity factor.
func (s *EvaluationService) Validate(p interval.Parameters) error {
	if err := s.validate.Struct(p); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return errors.Wrap(err, "parameter validation failed")
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describeFieldError(fe))
		}
		return errors.InvalidInput("invalid parameters: " + strings.Join(msgs, "; "))
	}
	if p.Factor == 0 {
		return errors.Wrap(core.ErrZeroFactor, "invalid parameters")
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", fe.Field(), fe.Param())
	case "confidence_z":
		return fmt.Sprintf("%s must be one of 1.65, 2.33, 1.96, 2.58", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// Evaluate computes the curve, the point estimate and its labels, the
// interpolated guide values and a summary of the sweep.
func (s *EvaluationService) Evaluate(ctx context.Context, req EvaluationRequest) (*interval.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	if err := s.Validate(req.Params); err != nil {
		return nil, err
	}
	variant := req.Variant
	if variant.Name == "" {
		variant = interval.VariantTEa
	}

	curve, err := interval.ComputeCurve(req.Params, variant.Axis)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute curve")
	}

	query := req.Params.ValueOn(variant.Axis)
	point, err := interval.QueryAt(curve, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query curve")
	}
	guide, err := interval.Interpolate(curve, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to interpolate guide values")
	}
	summary, err := summarize(curve, variant.IncludeMax)
	if err != nil {
		return nil, errors.Wrap(err, "failed to summarize curve")
	}

	confidence, _ := interval.ConfidenceForZ(req.Params.Z)
	ev := &interval.Evaluation{
		ID:          core.NewEvaluationID(),
		Variant:     variant,
		Confidence:  confidence,
		Params:      req.Params,
		Query:       query,
		Curve:       curve,
		Point:       point,
		Guide:       guide,
		Display:     interval.Describe(point, req.Params.ReferenceSize, variant.IncludeMax),
		Summary:     summary,
		Fingerprint: req.Params.Fingerprint(variant),
		GeneratedAt: core.Now(),
	}

	s.logger.Debug("evaluation complete",
		"id", ev.ID,
		"variant", variant.Name,
		"query", query,
		"min", ev.Display.Min,
		"max", ev.Display.Max,
		"guides", ev.Display.ShowGuides,
		"elapsed", time.Since(start),
	)
	return ev, nil
}

func summarize(c interval.Curve, includeMax bool) (interval.Summary, error) {
	var sum interval.Summary

	lowest, err := stats.Min(c.MinSizes())
	if err != nil {
		return sum, err
	}
	highest, err := stats.Max(c.MaxSizes())
	if err != nil {
		return sum, err
	}
	margins := make([]float64, len(c.Points))
	for i, p := range c.Points {
		margins[i] = p.MaxMmDifference
	}
	mean, err := stats.Mean(margins)
	if err != nil {
		return sum, err
	}
	sum.LowestMin, sum.HighestMax, sum.MeanMargin = lowest, highest, mean

	for _, p := range c.Points {
		if !interval.GuidesVisible(p, c.Params.ReferenceSize, includeMax) {
			continue
		}
		if sum.FeasibleSamples == 0 {
			sum.FeasibleFrom = p.X
		}
		sum.FeasibleTo = p.X
		sum.FeasibleSamples++
	}
	return sum, nil
}

// RenderChart evaluates req and writes the chart in the requested format.
func (s *EvaluationService) RenderChart(ctx context.Context, req EvaluationRequest, format ports.ChartFormat, w io.Writer) (*interval.Evaluation, error) {
	if s.renderer == nil {
		return nil, errors.InternalError("no chart renderer configured")
	}
	ev, err := s.Evaluate(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.renderer.Render(ctx, ev, format, w); err != nil {
		return nil, errors.Wrapf(err, "failed to render %s chart", format)
	}
	return ev, nil
}

// Export evaluates req and writes the sampled curve as a table.
func (s *EvaluationService) Export(ctx context.Context, req EvaluationRequest, format ports.ExportFormat, w io.Writer) (*interval.Evaluation, error) {
	if s.exporter == nil {
		return nil, errors.InternalError("no curve exporter configured")
	}
	ev, err := s.Evaluate(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.exporter.Export(ctx, ev, format, w); err != nil {
		return nil, errors.Wrapf(err, "failed to export %s", format)
	}
	return ev, nil
}

// ChartContentType reports the MIME type the renderer uses for format.
func (s *EvaluationService) ChartContentType(format ports.ChartFormat) string {
	if s.renderer == nil {
		return "application/octet-stream"
	}
	return s.renderer.ContentType(format)
}

// ExportContentType reports the MIME type the exporter uses for format.
func (s *EvaluationService) ExportContentType(format ports.ExportFormat) string {
	if s.exporter == nil {
		return "application/octet-stream"
	}
	return s.exporter.ContentType(format)
}

// Package chart draws interval evaluations with go-chart.
package chart

import (
	"context"
	"fmt"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"dbsinterval/domain/interval"
	"dbsinterval/internal/errors"
	"dbsinterval/ports"
)

// Axis window of the diameter chart in millimetres.
const (
	yFloor   = 0.0
	yCeiling = 20.0
)

var (
	colorMet    = drawing.ColorFromHex("b6e3b6")
	colorNotMet = drawing.ColorFromHex("f4b6b6")
	colorGrid   = drawing.ColorFromHex("d9d9d9")
	colorInk    = drawing.ColorBlack
)

// Renderer implements ports.ChartRenderer.
type Renderer struct {
	width  int
	height int
}

// NewRenderer creates a renderer producing width x height pixel charts.
func NewRenderer(width, height int) *Renderer {
	return &Renderer{width: width, height: height}
}

// ContentType returns the MIME type for a format
func (r *Renderer) ContentType(format ports.ChartFormat) string {
	if format == ports.ChartSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Render writes the chart for ev to w.
func (r *Renderer) Render(ctx context.Context, ev *interval.Evaluation, format ports.ChartFormat, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ev == nil || len(ev.Curve.Points) < 2 {
		return errors.InvalidInput("chart needs an evaluated curve")
	}

	var provider gochart.RendererProvider
	switch format {
	case ports.ChartPNG:
		provider = gochart.PNG
	case ports.ChartSVG:
		provider = gochart.SVG
	default:
		return errors.InvalidInput(fmt.Sprintf("unsupported chart format %q", format))
	}

	c := r.build(ev)
	if err := c.Render(provider, w); err != nil {
		return errors.RenderError(string(format), err)
	}
	return nil
}

// build assembles the chart. Series are painted in order, and every filled
// series fills down to the x axis, so the shading is layered: the
// not-met band up to the top of the drawing, the met band under the upper
// bound, then the not-met band again under the lower bound.
func (r *Renderer) build(ev *interval.Evaluation) gochart.Chart {
	xs := ev.Curve.Xs()
	lows := clipAll(ev.Curve.MinSizes())
	highs := clipAll(ev.Curve.MaxSizes())
	lo, hi := ev.Curve.Axis.Domain()
	includeMax := ev.Variant.IncludeMax

	top := clip(ev.Summary.HighestMax + 1)
	if !includeMax {
		top = yCeiling
	}

	series := []gochart.Series{
		gochart.ContinuousSeries{
			Name:    "Allowable Total Error limit not met",
			XValues: []float64{lo, hi},
			YValues: []float64{top, top},
			Style:   gochart.Style{StrokeColor: drawing.ColorTransparent, FillColor: colorNotMet},
		},
	}
	if includeMax {
		series = append(series, gochart.ContinuousSeries{
			Name:    "Max acceptable DBS diameter",
			XValues: xs,
			YValues: highs,
			Style:   gochart.Style{StrokeColor: colorInk, StrokeWidth: 2, FillColor: colorMet},
		})
	} else {
		series = append(series, gochart.ContinuousSeries{
			Name:    "Allowable Total Error limit met",
			XValues: []float64{lo, hi},
			YValues: []float64{top, top},
			Style:   gochart.Style{StrokeColor: drawing.ColorTransparent, FillColor: colorMet},
		})
	}
	series = append(series, gochart.ContinuousSeries{
		Name:    "Min acceptable DBS diameter",
		XValues: xs,
		YValues: lows,
		Style:   gochart.Style{StrokeColor: colorInk, StrokeWidth: 2, FillColor: colorNotMet},
	})

	q := ev.Query
	series = append(series, gochart.ContinuousSeries{
		Name:    ev.Curve.Axis.MarkerLabel(),
		XValues: []float64{q, q},
		YValues: []float64{yFloor, top},
		Style:   gochart.Style{StrokeColor: colorInk, StrokeWidth: 1.5, StrokeDashArray: []float64{2, 3}},
	})

	if ev.Display.ShowGuides {
		guides := []float64{ev.Guide.MinSize}
		if includeMax {
			guides = append(guides, ev.Guide.MaxSize)
		}
		for _, g := range guides {
			g = clip(g)
			series = append(series,
				gochart.ContinuousSeries{
					XValues: []float64{lo, q},
					YValues: []float64{g, g},
					Style:   gochart.Style{StrokeColor: colorInk, StrokeWidth: 1, StrokeDashArray: []float64{6, 4}},
				},
				gochart.ContinuousSeries{
					XValues: []float64{q},
					YValues: []float64{g},
					Style:   gochart.Style{StrokeColor: colorInk, StrokeWidth: 1, DotColor: colorInk, DotWidth: 5},
				},
			)
		}
	}

	return gochart.Chart{
		Width:  r.width,
		Height: r.height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 24, Left: 24, Right: 32, Bottom: 96},
		},
		XAxis: gochart.XAxis{
			Name:           ev.Curve.Axis.Label(),
			NameStyle:      gochart.Style{FontSize: 13},
			Range:          &gochart.ContinuousRange{Min: lo, Max: hi},
			Ticks:          ticks(lo, hi, 5),
			GridMajorStyle: gochart.Style{StrokeColor: colorGrid, StrokeWidth: 1},
		},
		YAxis: gochart.YAxis{
			Name:           "DBS diameter (mm)",
			NameStyle:      gochart.Style{FontSize: 13},
			Range:          &gochart.ContinuousRange{Min: yFloor, Max: yCeiling},
			Ticks:          ticks(yFloor, yCeiling, 2.5),
			GridMajorStyle: gochart.Style{StrokeColor: colorGrid, StrokeWidth: 1},
		},
		Series:   series,
		Elements: []gochart.Renderable{legend},
	}
}

func ticks(lo, hi, step float64) []gochart.Tick {
	var out []gochart.Tick
	for v := lo; v <= hi+step/1e6; v += step {
		out = append(out, gochart.Tick{Value: v, Label: formatTick(v)})
	}
	return out
}

func formatTick(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

// clip bounds a value to the drawn y window. The curve itself is unclamped;
// clipping only keeps strokes and fills inside the plot area.
func clip(v float64) float64 {
	return math.Max(yFloor, math.Min(yCeiling, v))
}

func clipAll(vs []float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = clip(v)
	}
	return out
}

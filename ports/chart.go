package ports

import (
	"context"
	"io"

	"dbsinterval/domain/interval"
)

// ChartFormat names an image encoding for rendered charts.
type ChartFormat string

const (
	ChartPNG ChartFormat = "png"
	ChartSVG ChartFormat = "svg"
)

// ChartRenderer draws an evaluation as a 2-D chart.
type ChartRenderer interface {
	// Render writes the encoded chart for ev to w
	Render(ctx context.Context, ev *interval.Evaluation, format ChartFormat, w io.Writer) error

	// ContentType returns the MIME type for a format
	ContentType(format ChartFormat) string
}

package chart

import (
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

type legendEntry struct {
	label string
	color drawing.Color
}

var legendEntries = []legendEntry{
	{"Allowable Total Error limit met", colorMet},
	{"Allowable Total Error limit not met", colorNotMet},
}

// legend draws the two shading swatches centered under the plot area.
func legend(r gochart.Renderer, cb gochart.Box, defaults gochart.Style) {
	const (
		swatch = 14
		gap    = 8
		spread = 32
	)

	r.SetFont(defaults.Font)
	r.SetFontSize(11)
	r.SetFontColor(colorInk)

	widths := make([]int, len(legendEntries))
	total := 0
	for i, e := range legendEntries {
		widths[i] = swatch + gap + r.MeasureText(e.label).Width()
		total += widths[i]
	}
	total += spread * (len(legendEntries) - 1)

	x := cb.Left + (cb.Width()-total)/2
	y := cb.Bottom + 64
	for i, e := range legendEntries {
		r.SetFillColor(e.color)
		r.SetStrokeColor(colorInk)
		r.SetStrokeWidth(1)
		r.MoveTo(x, y)
		r.LineTo(x+swatch, y)
		r.LineTo(x+swatch, y+swatch)
		r.LineTo(x, y+swatch)
		r.Close()
		r.FillStroke()

		r.Text(e.label, x+swatch+gap, y+swatch-2)
		x += widths[i] + spread
	}
}

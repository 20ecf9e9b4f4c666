package excel

import "dbsinterval/domain/interval"

// RawRowData represents a row of raw sheet data as string key-value pairs
type RawRowData map[string]string

// SheetData represents one sheet read back from a workbook
type SheetData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// column pairs a header with the curve field it exports.
type column struct {
	header string
	value  func(interval.CurvePoint) float64
}

// curveColumns lists the exported table layout for an axis.
func curveColumns(axis interval.Axis, includeMax bool) []column {
	xHeader := "TEa (%)"
	if axis == interval.AxisCV {
		xHeader = "Analytical CV (%)"
	}
	cols := []column{
		{xHeader, func(p interval.CurvePoint) float64 { return p.X }},
		{"z×CV (%)", func(p interval.CurvePoint) float64 { return p.ZCV }},
		{"Max allowable bias (%)", func(p interval.CurvePoint) float64 { return p.MaxAllowableBias }},
		{"Max bias (DBS)", func(p interval.CurvePoint) float64 { return p.MaxBiasDBS }},
		{"Max mm difference", func(p interval.CurvePoint) float64 { return p.MaxMmDifference }},
		{"Min size", func(p interval.CurvePoint) float64 { return p.MinSize }},
	}
	if includeMax {
		cols = append(cols, column{"Max size", func(p interval.CurvePoint) float64 { return p.MaxSize }})
	}
	return cols
}

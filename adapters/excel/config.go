package excel

// ExportConfig holds workbook layout settings
type ExportConfig struct {
	CurveSheet      string  `json:"curve_sheet"`
	ParametersSheet string  `json:"parameters_sheet"`
	ColumnWidth     float64 `json:"column_width"`
}

// DefaultExportConfig returns sensible defaults for workbook export
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		CurveSheet:      "Curve",
		ParametersSheet: "Parameters",
		ColumnWidth:     22,
	}
}

package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/xuri/excelize/v2"

	"dbsinterval/domain/interval"
	"dbsinterval/internal/errors"
	"dbsinterval/ports"
)

// Exporter writes evaluated curves as xlsx workbooks or CSV tables. It
// implements ports.CurveExporter.
type Exporter struct {
	config ExportConfig
	logger *slog.Logger
}

// NewExporter creates an exporter with the given layout
func NewExporter(config ExportConfig, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{config: config, logger: logger}
}

// ContentType returns the MIME type for a format
func (e *Exporter) ContentType(format ports.ExportFormat) string {
	if format == ports.ExportCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Export writes ev's curve to w
func (e *Exporter) Export(ctx context.Context, ev *interval.Evaluation, format ports.ExportFormat, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ev == nil || len(ev.Curve.Points) == 0 {
		return errors.InvalidInput("export needs an evaluated curve")
	}

	switch format {
	case ports.ExportXLSX:
		return e.writeWorkbook(ev, w)
	case ports.ExportCSV:
		return e.writeCSV(ev, w)
	default:
		return errors.InvalidInput(fmt.Sprintf("unsupported export format %q", format))
	}
}

func (e *Exporter) writeWorkbook(ev *interval.Evaluation, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", e.config.CurveSheet); err != nil {
		return errors.RenderError("xlsx", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.RenderError("xlsx", err)
	}

	cols := curveColumns(ev.Curve.Axis, ev.Variant.IncludeMax)
	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c.header
	}
	if err := f.SetSheetRow(e.config.CurveSheet, "A1", &header); err != nil {
		return errors.RenderError("xlsx", err)
	}

	for r, p := range ev.Curve.Points {
		row := make([]interface{}, len(cols))
		for i, c := range cols {
			row[i] = c.value(p)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return errors.RenderError("xlsx", err)
		}
		if err := f.SetSheetRow(e.config.CurveSheet, cell, &row); err != nil {
			return errors.RenderError("xlsx", err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(cols))
	if err != nil {
		return errors.RenderError("xlsx", err)
	}
	if err := f.SetColWidth(e.config.CurveSheet, "A", last, e.config.ColumnWidth); err != nil {
		return errors.RenderError("xlsx", err)
	}
	if err := f.SetCellStyle(e.config.CurveSheet, "A1", last+"1", bold); err != nil {
		return errors.RenderError("xlsx", err)
	}

	if err := e.writeParameters(f, ev, bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return errors.RenderError("xlsx", err)
	}
	e.logger.Debug("exported workbook", "id", ev.ID, "rows", len(ev.Curve.Points), "columns", len(cols))
	return nil
}

func (e *Exporter) writeParameters(f *excelize.File, ev *interval.Evaluation, bold int) error {
	sheet := e.config.ParametersSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.RenderError("xlsx", err)
	}

	rows := [][]interface{}{
		{"Parameter", "Value"},
		{interval.KeyVariant, ev.Variant.Name},
		{interval.KeyConfidence, ev.Confidence.Label},
		{interval.KeyZ, ev.Params.Z},
		{interval.KeyTEa, ev.Params.TEa},
		{interval.KeyBias, ev.Params.Bias},
		{interval.KeyCV, ev.Params.CV},
		{interval.KeyFactor, ev.Params.Factor},
		{interval.KeyReference, ev.Params.ReferenceSize},
		{rowMinDisplay, ev.Display.Min},
		{rowMaxDisplay, ev.Display.Max},
		{rowEvaluationID, ev.ID.String()},
		{rowGeneratedAt, ev.GeneratedAt.String()},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.RenderError("xlsx", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.RenderError("xlsx", err)
		}
	}
	if err := f.SetColWidth(sheet, "A", "B", e.config.ColumnWidth); err != nil {
		return errors.RenderError("xlsx", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", bold); err != nil {
		return errors.RenderError("xlsx", err)
	}
	return nil
}

func (e *Exporter) writeCSV(ev *interval.Evaluation, w io.Writer) error {
	cols := curveColumns(ev.Curve.Axis, ev.Variant.IncludeMax)
	cw := csv.NewWriter(w)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.header
	}
	if err := cw.Write(header); err != nil {
		return errors.RenderError("csv", err)
	}

	record := make([]string, len(cols))
	for _, p := range ev.Curve.Points {
		for i, c := range cols {
			record[i] = strconv.FormatFloat(c.value(p), 'f', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return errors.RenderError("csv", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.RenderError("csv", err)
	}
	return nil
}

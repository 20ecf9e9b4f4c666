package excel

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"dbsinterval/domain/core"
	"dbsinterval/domain/interval"
)

// Parameters sheet rows written alongside the interval.Key* rows.
const (
	rowEvaluationID = "evaluation_id"
	rowGeneratedAt  = "generated_at"
	rowMinDisplay   = "min_display"
	rowMaxDisplay   = "max_display"
)

// Workbook is the content of a workbook produced by Exporter.
type Workbook struct {
	EvaluationID core.EvaluationID
	Variant      interval.Variant
	Params       interval.Parameters
	Curve        *SheetData
}

// WorkbookReader reads workbooks produced by Exporter
type WorkbookReader struct {
	config ExportConfig
	logger *slog.Logger
}

// NewWorkbookReader creates a reader for the given layout
func NewWorkbookReader(config ExportConfig, logger *slog.Logger) *WorkbookReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookReader{config: config, logger: logger}
}

// Read restores the recorded parameters and the stored curve table, so an
// exported workbook can be evaluated again and checked against a fresh sweep.
func (r *WorkbookReader) Read(src io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	wb, err := r.readParameters(f)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(r.config.CurveSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.config.CurveSheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("workbook must have at least a header row and one data row")
	}
	wb.Curve = processRows(rows)

	r.logger.Debug("read workbook", "id", wb.EvaluationID, "variant", wb.Variant.Name, "rows", len(wb.Curve.Rows))
	return wb, nil
}

func (r *WorkbookReader) readParameters(f *excelize.File) (*Workbook, error) {
	rows, err := f.GetRows(r.config.ParametersSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.config.ParametersSheet, err)
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		if len(row) >= 2 {
			values[strings.TrimSpace(row[0])] = strings.TrimSpace(row[1])
		}
	}

	wb := &Workbook{}
	if raw := values[rowEvaluationID]; raw != "" {
		id, err := core.ParseEvaluationID(raw)
		if err != nil {
			return nil, err
		}
		wb.EvaluationID = id
	}

	wb.Variant, err = interval.ParseVariant(values[interval.KeyVariant])
	if err != nil {
		return nil, err
	}

	fields := []struct {
		key string
		dst *float64
	}{
		{interval.KeyZ, &wb.Params.Z},
		{interval.KeyTEa, &wb.Params.TEa},
		{interval.KeyBias, &wb.Params.Bias},
		{interval.KeyCV, &wb.Params.CV},
		{interval.KeyFactor, &wb.Params.Factor},
		{interval.KeyReference, &wb.Params.ReferenceSize},
	}
	for _, fld := range fields {
		raw, ok := values[fld.key]
		if !ok {
			return nil, fmt.Errorf("parameter %q missing from workbook", fld.key)
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %q is not a number: %w", fld.key, err)
		}
		*fld.dst = n
	}
	return wb, nil
}

// Verify checks that the stored curve table matches ev's sweep cell by cell,
// within an absolute tolerance.
func (wb *Workbook) Verify(ev *interval.Evaluation, tolerance float64) error {
	if wb.Curve == nil {
		return fmt.Errorf("workbook has no curve sheet")
	}
	cols := curveColumns(ev.Curve.Axis, ev.Variant.IncludeMax)
	if len(wb.Curve.Headers) != len(cols) {
		return fmt.Errorf("curve sheet has %d columns, want %d", len(wb.Curve.Headers), len(cols))
	}
	for i, c := range cols {
		if wb.Curve.Headers[i] != c.header {
			return fmt.Errorf("curve column %d is %q, want %q", i+1, wb.Curve.Headers[i], c.header)
		}
	}
	if len(wb.Curve.Rows) != len(ev.Curve.Points) {
		return fmt.Errorf("curve sheet has %d rows, want %d", len(wb.Curve.Rows), len(ev.Curve.Points))
	}

	for i, p := range ev.Curve.Points {
		row := wb.Curve.Rows[i]
		for _, c := range cols {
			got, err := strconv.ParseFloat(row[c.header], 64)
			if err != nil {
				return fmt.Errorf("row %d %q: %w", i+2, c.header, err)
			}
			if want := c.value(p); math.Abs(got-want) > tolerance {
				return fmt.Errorf("row %d %q is %g, want %g", i+2, c.header, got, want)
			}
		}
	}
	return nil
}

// processRows converts raw string rows into SheetData
func processRows(rows [][]string) *SheetData {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(RawRowData)
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	return &SheetData{
		Headers: headers,
		Rows:    dataRows,
	}
}

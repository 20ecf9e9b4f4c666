package ports

import (
	"context"
	"io"

	"dbsinterval/domain/interval"
)

// ExportFormat names a tabular encoding for a sweep.
type ExportFormat string

const (
	ExportXLSX ExportFormat = "xlsx"
	ExportCSV  ExportFormat = "csv"
)

// CurveExporter writes the sampled curve of an evaluation as a table.
type CurveExporter interface {
	Export(ctx context.Context, ev *interval.Evaluation, format ExportFormat, w io.Writer) error

	// ContentType returns the MIME type for a format
	ContentType(format ExportFormat) string
}

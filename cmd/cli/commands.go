package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dbsinterval/app"
	"dbsinterval/domain/interval"
)

func newPointCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "point",
		Short: "Print the acceptable diameter interval at the selected value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request(cmd)
			if err != nil {
				return err
			}
			ev, err := opts.newService(cmd).Evaluate(commandContext(cmd), req)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"variant":    ev.Variant.Name,
					"confidence": ev.Confidence,
					"params":     ev.Params,
					"query":      ev.Query,
					"point":      ev.Point,
					"guide":      ev.Guide,
					"display":    ev.Display,
				})
			}
			return printPoint(cmd.OutOrStdout(), ev)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func printPoint(w io.Writer, ev *interval.Evaluation) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Variant\t%s\n", ev.Variant.Title)
	if ev.Confidence.Label != "" {
		fmt.Fprintf(tw, "Confidence\t%s (z=%s)\n", ev.Confidence.Label, fmtFloat(ev.Params.Z))
	}
	fmt.Fprintf(tw, "%s\t%s\n", ev.Variant.Axis.MarkerLabel(), fmtFloat(ev.Query))
	fmt.Fprintf(tw, "Nearest sample\t%s\n", strconv.FormatFloat(ev.Point.X, 'f', 4, 64))
	fmt.Fprintf(tw, "Min acceptable DBS diameter (mm)\t%s\n", ev.Display.Min)
	if ev.Variant.IncludeMax {
		fmt.Fprintf(tw, "Max acceptable DBS diameter (mm)\t%s\n", ev.Display.Max)
	}
	fmt.Fprintf(tw, "Limit met\t%t\n", ev.Display.ShowGuides)
	return tw.Flush()
}

func newCurveCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Print the sampled curve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request(cmd)
			if err != nil {
				return err
			}
			ev, err := opts.newService(cmd).Evaluate(commandContext(cmd), req)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"variant": ev.Variant.Name,
					"axis":    ev.Curve.Axis,
					"points":  ev.Curve.Points,
					"summary": ev.Summary,
				})
			}
			return printCurve(cmd.OutOrStdout(), ev)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func printCurve(w io.Writer, ev *interval.Evaluation) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	header := ev.Variant.Axis.Label() + "\tMin size\t"
	if ev.Variant.IncludeMax {
		header += "Max size\t"
	}
	fmt.Fprintln(tw, header)
	for _, p := range ev.Curve.Points {
		row := fmt.Sprintf("%.4f\t%.4f\t", p.X, p.MinSize)
		if ev.Variant.IncludeMax {
			row += fmt.Sprintf("%.4f\t", p.MaxSize)
		}
		fmt.Fprintln(tw, row)
	}
	return tw.Flush()
}

func newChartCmd(opts *options) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render the interval chart to a PNG or SVG file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			chartFormat, err := app.ParseChartFormat(format)
			if err != nil {
				return err
			}
			req, err := opts.request(cmd)
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("dbs-interval-%s.%s", req.Variant.Name, chartFormat)
			}

			var buf bytes.Buffer
			if _, err := opts.newService(cmd).RenderChart(commandContext(cmd), req, chartFormat, &buf); err != nil {
				return err
			}
			return writeFile(cmd.OutOrStdout(), out, buf.Bytes())
		},
	}

	cmd.Flags().StringVar(&format, "format", "png", "Chart format: png|svg")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default dbs-interval-<variant>.<format>)")
	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the sampled curve to an Excel workbook or CSV file",
		Long: `Export the sampled curve to an Excel workbook or CSV file.

Workbooks also record the parameters, so they can be read back with --from.

Example: dbsinterval export --variant cv --format xlsx -o interval.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exportFormat, err := app.ParseExportFormat(format)
			if err != nil {
				return err
			}
			req, err := opts.request(cmd)
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("dbs-interval-%s.%s", req.Variant.Name, exportFormat)
			}

			var buf bytes.Buffer
			if _, err := opts.newService(cmd).Export(commandContext(cmd), req, exportFormat, &buf); err != nil {
				return err
			}
			return writeFile(cmd.OutOrStdout(), out, buf.Bytes())
		},
	}

	cmd.Flags().StringVar(&format, "format", "xlsx", "Export format: xlsx|csv")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default dbs-interval-<variant>.<format>)")
	return cmd
}

func newVerifyCmd(opts *options) *cobra.Command {
	var tolerance float64

	cmd := &cobra.Command{
		Use:   "verify [workbook.xlsx]",
		Short: "Recompute an exported workbook and compare it with the stored curve",
		Long: `Recompute the sweep from the parameters recorded in an exported workbook
and compare every cell of the stored curve sheet with the fresh values.

Example: dbsinterval verify dbs-interval-tea.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := readWorkbook(args[0])
			if err != nil {
				return err
			}
			req := app.EvaluationRequest{Params: wb.Params, Variant: wb.Variant}
			ev, err := opts.newService(cmd).Evaluate(commandContext(cmd), req)
			if err != nil {
				return err
			}
			if err := wb.Verify(ev, tolerance); err != nil {
				return fmt.Errorf("%s does not match its parameters: %w", args[0], err)
			}

			id := wb.EvaluationID.String()
			if id == "" {
				id = "(no evaluation id)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d samples match\n", args[0], id, len(ev.Curve.Points))
			return nil
		},
	}

	cmd.Flags().Float64Var(&tolerance, "tolerance", 1e-9, "Largest accepted absolute difference per cell")
	return cmd
}

func newLevelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List confidence levels and variants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CONFIDENCE\tZ")
			for _, lvl := range interval.ConfidenceLevels {
				fmt.Fprintf(tw, "%s\t%s\n", lvl.Label, fmtFloat(lvl.Z))
			}
			fmt.Fprintln(tw, "\nVARIANT\tDESCRIPTION")
			for _, v := range interval.Variants() {
				fmt.Fprintf(tw, "%s\t%s\n", v.Name, v.Title)
			}
			return tw.Flush()
		},
	}
}

func writeFile(w io.Writer, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(w, "wrote %s (%s)\n", path, humanize.Bytes(uint64(len(data))))
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

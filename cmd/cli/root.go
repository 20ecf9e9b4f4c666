package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"dbsinterval/adapters/chart"
	"dbsinterval/adapters/excel"
	"dbsinterval/app"
	"dbsinterval/domain/interval"
	"dbsinterval/internal"
)

// options holds the flags shared by every command
type options struct {
	variant    string
	confidence string
	z          float64
	tea        float64
	bias       float64
	cv         float64
	factor     float64
	reference  float64
	from       string
	logLevel   string
	width      int
	height     int
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	defaults := interval.DefaultParameters()

	rootCmd := &cobra.Command{
		Use:   "dbsinterval",
		Short: "Acceptable DBS diameter interval calculator",
		Long: `Compute the acceptable dried blood spot diameter interval from analytical
performance parameters.

Parameters not given on the command line keep their defaults, or the values
stored in a previously exported workbook when --from is set.

Example: dbsinterval point --tea 30 --cv 6.5 --confidence "95% (two-tailed)"`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.variant, interval.KeyVariant, interval.VariantTEa.Name, "Swept parameter: tea|cv-min|cv")
	flags.StringVar(&opts.confidence, interval.KeyConfidence, "", `Confidence level label, e.g. "99% (one-tailed)"`)
	flags.Float64Var(&opts.z, interval.KeyZ, defaults.Z, "Confidence multiplier (1.65, 2.33, 1.96 or 2.58)")
	flags.Float64Var(&opts.tea, interval.KeyTEa, defaults.TEa, "Total allowable error (%)")
	flags.Float64Var(&opts.bias, interval.KeyBias, defaults.Bias, "Analytical bias (%)")
	flags.Float64Var(&opts.cv, interval.KeyCV, defaults.CV, "Analytical CV (%)")
	flags.Float64Var(&opts.factor, interval.KeyFactor, defaults.Factor, "Change in result per mm of diameter (%)")
	flags.Float64Var(&opts.reference, interval.KeyReference, defaults.ReferenceSize, "Reference DBS diameter (mm)")
	flags.StringVar(&opts.from, "from", "", "Read parameters from an exported workbook")
	flags.StringVar(&opts.logLevel, "log-level", "WARN", "Log level: ERROR|WARN|INFO|DEBUG")
	flags.IntVar(&opts.width, "width", 1200, "Chart width in pixels")
	flags.IntVar(&opts.height, "height", 900, "Chart height in pixels")

	rootCmd.AddCommand(
		newPointCmd(opts),
		newCurveCmd(opts),
		newChartCmd(opts),
		newExportCmd(opts),
		newVerifyCmd(opts),
		newLevelsCmd(),
	)
	return rootCmd
}

// newService wires the evaluation service with file-producing adapters.
func (o *options) newService(cmd *cobra.Command) *app.EvaluationService {
	logger := internal.NewLogger(cmd.ErrOrStderr(), internal.ParseLevel(o.logLevel), true)
	slog.SetDefault(logger)
	return app.NewEvaluationService(
		chart.NewRenderer(o.width, o.height),
		excel.NewExporter(excel.DefaultExportConfig(), logger),
		logger,
	)
}

// request builds the evaluation request. Only flags the user actually set
// override the base values.
func (o *options) request(cmd *cobra.Command) (app.EvaluationRequest, error) {
	base := app.DefaultRequest(interval.VariantTEa)

	if o.from != "" {
		wb, err := readWorkbook(o.from)
		if err != nil {
			return base, err
		}
		base = app.EvaluationRequest{Params: wb.Params, Variant: wb.Variant}
	}

	values := url.Values{}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case interval.KeyVariant, interval.KeyConfidence, interval.KeyZ, interval.KeyTEa,
			interval.KeyBias, interval.KeyCV, interval.KeyFactor, interval.KeyReference:
			values.Set(f.Name, f.Value.String())
		}
	})
	return app.RequestFromQuery(values, base)
}

func readWorkbook(path string) (*excel.Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	wb, err := excel.NewWorkbookReader(excel.DefaultExportConfig(), slog.Default()).Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return wb, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

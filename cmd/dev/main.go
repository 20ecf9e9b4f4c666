package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dbsinterval/adapters/chart"
	"dbsinterval/adapters/excel"
	"dbsinterval/app"
	"dbsinterval/domain/interval"
	"dbsinterval/internal"
	"dbsinterval/internal/api"
	"dbsinterval/internal/config"
	"dbsinterval/internal/serve"
	"dbsinterval/ports"
	"dbsinterval/ui"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dbsinterval-dev",
		Short: "DBS interval development tools",
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newSmokeTestCmd(),
		newDeterminismTestCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI and the JSON API side by side",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newSmokeTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "smoke",
		Short: "Evaluate, render and export every variant at every confidence level",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSmokeTests(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func newDeterminismTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "determinism",
		Short: "Check that repeated evaluations give identical curves",
		RunE: func(cmd *cobra.Command, args []string) error {
			return testDeterminism(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func newService(logger *slog.Logger, width, height int) *app.EvaluationService {
	return app.NewEvaluationService(
		chart.NewRenderer(width, height),
		excel.NewExporter(excel.DefaultExportConfig(), logger),
		logger,
	)
}

func runServe(ctx context.Context) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := internal.SetupDefault(cfg.Logging.Level, cfg.Logging.NoColor)
	variant, err := cfg.Model.Variant()
	if err != nil {
		return err
	}
	service := newService(logger, cfg.Chart.Width, cfg.Chart.Height)

	server, err := ui.NewServer(ui.Config{GinMode: cfg.Server.GinMode, DefaultVariant: variant}, service, logger)
	if err != nil {
		return err
	}
	apiHandler := api.NewHandler(service, variant, logger)

	servers := []*http.Server{
		serve.NewServer(cfg.Server.Port, server.Handler()),
		serve.NewServer(cfg.API.Port, apiHandler.Router()),
	}
	if cfg.Profiling.Enabled {
		servers = append(servers, serve.ProfilingServer(cfg.Profiling.Port))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve.Run(ctx, logger, cfg.Server.ShutdownTimeout, servers...)
}

func runSmokeTests(ctx context.Context, out io.Writer) error {
	fmt.Fprintln(out, "Running smoke tests...")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := newService(logger, 640, 480)

	type smokeTest struct {
		name string
		fn   func(context.Context) error
	}
	var tests []smokeTest
	for _, variant := range interval.Variants() {
		for _, level := range interval.ConfidenceLevels {
			req := app.DefaultRequest(variant)
			req.Params.Z = level.Z
			tests = append(tests, smokeTest{
				name: fmt.Sprintf("%s/%s", variant.Name, level.Label),
				fn: func(ctx context.Context) error {
					if _, err := service.RenderChart(ctx, req, ports.ChartPNG, io.Discard); err != nil {
						return err
					}
					if _, err := service.RenderChart(ctx, req, ports.ChartSVG, io.Discard); err != nil {
						return err
					}
					if _, err := service.Export(ctx, req, ports.ExportXLSX, io.Discard); err != nil {
						return err
					}
					_, err := service.Export(ctx, req, ports.ExportCSV, io.Discard)
					return err
				},
			})
		}
	}

	passed := 0
	for _, test := range tests {
		fmt.Fprintf(out, "  Running %s...", test.name)
		if err := test.fn(ctx); err != nil {
			fmt.Fprintf(out, " FAILED: %v\n", err)
		} else {
			fmt.Fprintln(out, " PASSED")
			passed++
		}
	}

	fmt.Fprintf(out, "\nSmoke tests: %d/%d passed\n", passed, len(tests))
	if passed < len(tests) {
		return fmt.Errorf("some smoke tests failed")
	}
	return nil
}

func testDeterminism(ctx context.Context, out io.Writer) error {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := app.NewEvaluationService(nil, nil, logger)

	for _, variant := range interval.Variants() {
		req := app.DefaultRequest(variant)
		fmt.Fprintf(out, "Testing determinism for %s...\n", variant.Name)

		first, err := service.Evaluate(ctx, req)
		if err != nil {
			return err
		}
		second, err := service.Evaluate(ctx, req)
		if err != nil {
			return err
		}
		if err := compareEvaluations(first, second); err != nil {
			return fmt.Errorf("determinism test failed for %s: %w", variant.Name, err)
		}
	}

	fmt.Fprintln(out, "Determinism test passed - results identical")
	return nil
}

func compareEvaluations(original, replay *interval.Evaluation) error {
	if original.Fingerprint != replay.Fingerprint {
		return fmt.Errorf("fingerprints differ")
	}
	if len(original.Curve.Points) != len(replay.Curve.Points) {
		return fmt.Errorf("sample counts differ: %d vs %d",
			len(original.Curve.Points), len(replay.Curve.Points))
	}
	for i, p := range original.Curve.Points {
		if p != replay.Curve.Points[i] {
			return fmt.Errorf("sample %d differs: %+v vs %+v", i, p, replay.Curve.Points[i])
		}
	}
	if original.Display != replay.Display {
		return fmt.Errorf("display differs: %+v vs %+v", original.Display, replay.Display)
	}
	return nil
}

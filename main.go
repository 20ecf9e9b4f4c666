package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"dbsinterval/adapters/chart"
	"dbsinterval/adapters/excel"
	"dbsinterval/app"
	"dbsinterval/internal"
	"dbsinterval/internal/config"
	"dbsinterval/internal/serve"
	"dbsinterval/ui"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Warn("could not read .env file", "error", err)
	}

	appConfig, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := internal.SetupDefault(appConfig.Logging.Level, appConfig.Logging.NoColor)

	variant, err := appConfig.Model.Variant()
	if err != nil {
		logger.Error("invalid default variant", "error", err)
		os.Exit(1)
	}
	service := app.NewEvaluationService(
		chart.NewRenderer(appConfig.Chart.Width, appConfig.Chart.Height),
		excel.NewExporter(excel.DefaultExportConfig(), logger),
		logger,
	)

	server, err := ui.NewServer(ui.Config{
		GinMode:        appConfig.Server.GinMode,
		DefaultVariant: variant,
	}, service, logger)
	if err != nil {
		logger.Error("failed to initialize server", "error", err)
		os.Exit(1)
	}

	servers := []*http.Server{serve.NewServer(appConfig.Server.Port, server.Handler())}
	if appConfig.Profiling.Enabled {
		logger.Info("profiling enabled", "hint", "go tool pprof http://localhost:"+appConfig.Profiling.Port+"/debug/pprof/profile?seconds=30")
		servers = append(servers, serve.ProfilingServer(appConfig.Profiling.Port))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting DBS interval calculator", "port", appConfig.Server.Port, "variant", variant.Name)
	if err := serve.Run(ctx, logger, appConfig.Server.ShutdownTimeout, servers...); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

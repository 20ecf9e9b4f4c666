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
	"dbsinterval/internal/api"
	"dbsinterval/internal/config"
	"dbsinterval/internal/serve"
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
	handler := api.NewHandler(service, variant, logger)

	servers := []*http.Server{serve.NewServer(appConfig.API.Port, handler.Router())}
	if appConfig.Profiling.Enabled {
		servers = append(servers, serve.ProfilingServer(appConfig.Profiling.Port))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting DBS interval API", "port", appConfig.API.Port)
	if err := serve.Run(ctx, logger, appConfig.Server.ShutdownTimeout, servers...); err != nil {
		logger.Error("api server failed", "error", err)
		os.Exit(1)
	}
}

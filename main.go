package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"hypoavg/internal"
	"hypoavg/internal/aggregate"
	"hypoavg/internal/api"
	"hypoavg/internal/config"
	"hypoavg/internal/container"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)
	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(appConfig.Storage.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory %s: %v", appConfig.Storage.DataDir, err)
	}

	var registry prometheus.Registerer
	if appConfig.Server.MetricsEnabled {
		registry = prometheus.DefaultRegisterer
	}
	appContainer, err := container.New(ctx, appConfig, registry, logger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}

	// Recompute once at startup so averages reflect whatever is already on disk
	appContainer.Coordinator.Start(ctx)
	appContainer.Coordinator.Trigger()

	if appConfig.Aggregate.WatchDataDir {
		watcher, err := aggregate.NewWatcher(appConfig.Storage.DataDir, appContainer.Coordinator, logger)
		if err != nil {
			log.Fatalf("Failed to create data directory watcher: %v", err)
		}
		defer watcher.Stop()
		go func() {
			if err := watcher.Start(ctx); err != nil {
				logger.Error("data directory watcher stopped: %v", err)
			}
		}()
	}

	server := api.NewServer(appContainer.Observations, appContainer.Coordinator, appContainer.Events,
		appConfig.Server.MetricsEnabled, logger)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting hypoavg server on port %s", appConfig.Server.Port)
		serverErr <- server.Start(":" + appConfig.Server.Port)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown: %v", err)
	}
	if err := appContainer.Shutdown(shutdownCtx); err != nil {
		logger.Error("aggregation did not finish before shutdown timeout: %v", err)
	}
	logger.Info("stopped")
}

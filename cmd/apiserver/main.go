// cmd/apiserver/main.go
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/aleka07/hello-api/pkg/api"
	"github.com/aleka07/hello-api/pkg/config"
	"github.com/aleka07/hello-api/pkg/logging"
	"github.com/aleka07/hello-api/pkg/metrics"
	"github.com/aleka07/hello-api/pkg/middleware"
	"github.com/aleka07/hello-api/pkg/server"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load("")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to set up logger")
	}

	// --- Create Dependencies ---
	deps := api.RouterDeps{Logger: logger}
	if cfg.RateLimitEnabled {
		deps.Limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 0)
	}

	if cfg.OpsAddr != "" {
		deps.Metrics = metrics.New()
	}

	srv := server.New(cfg, logger, api.NewRouter(cfg, deps), api.NewOpsRouter(deps.Metrics, logger))

	// --- Run until signalled ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		stop()
		logger.WithError(err).Fatal("Server failed")
	}
	logger.Info("Application shutdown finished.")
}

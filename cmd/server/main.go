// Package main provides the multi-player server binary: every Telnet
// connection plays its own persisted game.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/grue/internal/app"
	"github.com/cory-johannsen/grue/internal/config"
	"github.com/cory-johannsen/grue/internal/frontend/handlers"
	"github.com/cory-johannsen/grue/internal/frontend/telnet"
	"github.com/cory-johannsen/grue/internal/game/session"
	"github.com/cory-johannsen/grue/internal/observability"
	"github.com/cory-johannsen/grue/internal/server"
	"github.com/cory-johannsen/grue/internal/storage"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	sweepEvery := flag.Duration("sweep-interval", 10*time.Minute, "how often idle sessions are swept")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	game, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("building game", zap.Error(err))
	}

	render := handlers.Renderer{Width: cfg.Telnet.Width, Color: true}
	acceptor := telnet.NewAcceptor(cfg.Telnet, handlers.NewGameHandler(game.Sessions, render, logger), logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("telnet", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	// Redis expires sessions itself.
	if cfg.Storage.SessionTTL > 0 && cfg.Storage.Backend != config.BackendRedis {
		janitor := session.NewJanitor(game.Sessions, cfg.Storage.SessionTTL, *sweepEvery, logger)
		lifecycle.Add("janitor", &server.FuncService{
			StartFn: janitor.Start,
			StopFn:  janitor.Stop,
		})
	}
	if hc, ok := game.Store.(storage.HealthChecker); ok {
		stop := make(chan struct{})
		lifecycle.Add("store-health", &server.FuncService{
			StartFn: func() error {
				ticker := time.NewTicker(30 * time.Second)
				defer ticker.Stop()
				for {
					select {
					case <-stop:
						return nil
					case <-ticker.C:
						if err := hc.Health(ctx, 5*time.Second); err != nil {
							logger.Warn("session store health check failed", zap.Error(err))
						}
					}
				}
			},
			StopFn: func() { close(stop) },
		})
	}
	lifecycle.OnShutdown("game", game.Close)

	logger.Info("server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.String("storage", cfg.Storage.Backend),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

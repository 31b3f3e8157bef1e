// Package main provides the single-player terminal binary. The game reads
// commands from stdin and keeps its log off stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/cory-johannsen/grue/internal/app"
	"github.com/cory-johannsen/grue/internal/config"
	"github.com/cory-johannsen/grue/internal/frontend/handlers"
	"github.com/cory-johannsen/grue/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file; empty uses defaults and GRUE_* variables")
	resume := flag.String("resume", "", "id of a saved game to resume")
	width := flag.Int("width", 78, "wrap output at this column; 0 disables wrapping")
	color := flag.Bool("color", false, "highlight room titles and notices with ANSI colors")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if cfg.Logging.Output == "stdout" {
		cfg.Logging.Output = "stderr"
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	game, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("building game", zap.Error(err))
	}
	defer func() {
		if err := game.Close(); err != nil {
			logger.Warn("closing game", zap.Error(err))
		}
	}()

	console := handlers.NewConsole(game.Sessions, handlers.Renderer{Width: *width, Color: *color}, logger)
	id, err := console.Play(ctx, *resume, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if id == "" {
			os.Exit(1)
		}
	}
	if id != "" {
		fmt.Fprintf(os.Stdout, "Resume with: adventure -resume %s\n", id)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/letscout-hq/letscout/internal/app"
	"github.com/letscout-hq/letscout/internal/config"
	"github.com/letscout-hq/letscout/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "hunter start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("hunter starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hunter, err := app.NewHunter(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize hunter", "error", err)
		return err
	}

	if err := hunter.Run(ctx); err != nil {
		return fmt.Errorf("hunter run: %w", err)
	}

	return nil
}

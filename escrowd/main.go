package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	service, err := NewService(cfg.serviceOptions(), logger)
	if err != nil {
		logger.Fatal("failed to initialize contract", zap.Error(err))
	}

	go serveMetrics(cfg.MetricsAddr, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewServer(cfg, service, logger).Start(ctx); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

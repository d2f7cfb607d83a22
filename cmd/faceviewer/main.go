// Package main is the entry point for the interactive face morph viewer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/facemorph/internal/config"
	"github.com/Faultbox/facemorph/internal/logger"
	"github.com/Faultbox/facemorph/internal/viewer"
	"github.com/Faultbox/facemorph/pkg/flame"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== FaceMorph Viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	model, err := flame.Load(cfg.Data.FlameDir)
	if err != nil {
		logger.Error("failed to load model", zap.String("dir", cfg.Data.FlameDir), zap.Error(err))
		os.Exit(1)
	}

	v, err := viewer.New(cfg, model)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := v.Run(ctx); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}

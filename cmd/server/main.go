// Package main is the entry point for the VinoNote server.
//
// MAIN PACKAGE IN GO:
// main stays minimal. Its job is to:
//  1. Read configuration (config.Load: YAML file + env vars)
//  2. Create the logger
//  3. Start the server and stop it on SIGINT/SIGTERM
//
// All actual logic lives in internal/ packages.
//
// WHY cmd/server/?
// The cmd/ directory holds one directory per executable. This repo has
// two: cmd/server (the web app) and cmd/vininote (the admin CLI).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sakif/vininote/internal/config"
	"github.com/sakif/vininote/internal/logger"
	"github.com/sakif/vininote/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	// === 1. CONFIGURATION ===
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// === 2. LOGGING ===
	log := logger.New(cfg.Log)

	// === 3. SIGNALS ===
	// The context is cancelled on Ctrl+C or SIGTERM; Run then shuts down.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// === 4. SERVER ===
	srv, err := server.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to create server", slog.String("error", err.Error()))
		return err
	}

	// Run blocks until the context is cancelled or the server fails.
	return srv.Run(ctx)
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pumpstation/pumpstation/pkg/log"
	"github.com/pumpstation/pumpstation/pkg/server"
	"github.com/pumpstation/pumpstation/pkg/station"
	"github.com/pumpstation/pumpstation/pkg/storage"

	"github.com/levenlabs/go-lflag"
)

func main() {
	// init packages
	s := storage.Configured()
	st := station.Configured()

	// init server
	srv := server.Configured(s, st)

	// parse flags
	lflag.Configure()

	level, err := log.LevelFromFlags()
	if err != nil {
		panic(err)
	}
	log.SetDefaultLogLevel(level)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	slog.Debug("logger configured", slog.String("level", level.String()))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// If initialization inside lflag.Do failed, we wouldn't be here (panic).
	defer func() {
		if err := s.Close(); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to close storage", "error", err)
		}
	}()

	// Run will block until context is canceled or error happens
	if err := srv.Run(ctx); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "server failed", "error", err)
		os.Exit(1)
	}
	log.Ctx(ctx).InfoContext(ctx, "server exited cleanly")
}

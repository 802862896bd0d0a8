package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ko-stant/building-engine/internal/config"
	"github.com/Ko-stant/building-engine/internal/registry"
	"github.com/Ko-stant/building-engine/internal/telemetry"
	"github.com/Ko-stant/building-engine/internal/ws"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := os.Getenv("BUILDGEN_CONFIG")
	settings, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	logger := settings.Logger(os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, telemetry.DefaultConfig("buildgen-server", config.Version))
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	holder := config.NewHolder(settings)
	if cfgPath != "" {
		if err := config.Watch(ctx, cfgPath, holder, logger); err != nil {
			return err
		}
	}

	reg, err := registry.Open(registry.Config{Path: settings.RegistryDir, Logger: logger})
	if err != nil {
		return err
	}
	defer reg.Close()

	StartProfiling(ProfilingFromEnv(), logger)

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           NewServer(holder, reg, ws.NewHub(logger), logger).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", srv.Addr, "registry", settings.RegistryDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

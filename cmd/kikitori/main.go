package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	audioimpl "github.com/foxseedlab/kikitori/external/audio"
	configloader "github.com/foxseedlab/kikitori/external/config"
	recognitionimpl "github.com/foxseedlab/kikitori/external/recognition"
	repositoryimpl "github.com/foxseedlab/kikitori/external/repository"
	translationimpl "github.com/foxseedlab/kikitori/external/translation"
	webhookimpl "github.com/foxseedlab/kikitori/external/webhook"
	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/foxseedlab/kikitori/internal/pipeline"
	"github.com/samber/do/v2"
)

func main() {
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Debug("startup: configuration loaded", "env", cfg.Env)

	injector := setupDI(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(cfg, injector).ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// Logs go to stderr; stdout carries the transcript.
func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	repositoryimpl.RegisterDI(injector)
	audioimpl.RegisterDI(injector)
	recognitionimpl.RegisterDI(injector)
	translationimpl.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	pipeline.RegisterDI(injector)

	return injector
}

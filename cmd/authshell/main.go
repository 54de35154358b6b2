package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/authshell/authshell/internal/auth"
	"github.com/authshell/authshell/internal/config"
	"github.com/authshell/authshell/internal/infra"
	"github.com/authshell/authshell/internal/kv"
	"github.com/authshell/authshell/internal/logging"
	"github.com/authshell/authshell/internal/notification"
	"github.com/authshell/authshell/internal/remote"
	"github.com/authshell/authshell/internal/server"
	"github.com/authshell/authshell/internal/session"
	"github.com/authshell/authshell/internal/shell"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn("load .env", "error", envErr)
	}

	ctx := context.Background()

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
	}

	backend, err := kv.Open(ctx, kv.Options{
		Driver:      cfg.StoreDriver,
		Namespace:   cfg.StoreNamespace,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
		Redis:       cache,
	})
	if err != nil {
		logger.Error("open session backend", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("close session backend", "error", err)
		}
	}()

	store, err := session.NewStore(backend, cfg.PasswordAtRest)
	if err != nil {
		logger.Error("build session store", "error", err)
		os.Exit(1)
	}

	client := remote.NewClient(cfg.AuthBaseURL, cfg.AuthTimeout)
	ctl := auth.NewController(client, store, logger)
	sh := shell.New(ctl, store, shell.Options{
		SplashDelay: cfg.SplashDelay,
		Notifier:    notification.NewLoggerNotifier(logger),
		Logger:      logger,
	})

	srv, err := server.New(cfg, sh, store, cache, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	logger.Info("starting", "app", cfg.AppName, "env", cfg.AppEnv, "store", cfg.StoreDriver, "auth_base_url", cfg.AuthBaseURL)

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}

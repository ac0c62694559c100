package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/canvas"
	"github.com/meikuraledutech/canvas/anthropic"
	"github.com/meikuraledutech/canvas/internal/api"
	"github.com/meikuraledutech/canvas/internal/logging"
	"github.com/meikuraledutech/canvas/internal/metrics"
	"github.com/meikuraledutech/canvas/memory"
	"github.com/meikuraledutech/canvas/postgres"
	"github.com/meikuraledutech/canvas/redis"
	"github.com/meikuraledutech/canvas/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := loadConfig(path, os.Getenv)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("backend") {
			cfg.Settings.Backend, _ = cmd.Flags().GetString("backend")
			if err := cfg.validate(); err != nil {
				return err
			}
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":3000", "Address to listen on")
	serveCmd.Flags().String("backend", BackendSQLite, "Settings backend: memory, sqlite, redis or postgres")
}

func serve(ctx context.Context, cfg Config) error {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.New(level)

	store, closeStore, err := openSettingsStore(ctx, cfg.Settings)
	if err != nil {
		return err
	}
	defer closeStore()

	settings, err := canvas.LoadSettings(ctx, store, cfg.Settings.Scope)
	if err != nil {
		return err
	}
	logger.Info("settings loaded",
		"backend", cfg.Settings.Backend,
		"scope", settings.Scope(),
		"has_credential", settings.HasCredential(),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	clientOpts := []anthropic.Option{anthropic.WithLogger(logger)}
	if cfg.Anthropic.BaseURL != "" {
		clientOpts = append(clientOpts, anthropic.WithBaseURL(cfg.Anthropic.BaseURL))
	}
	if cfg.Anthropic.Model != "" {
		clientOpts = append(clientOpts, anthropic.WithModel(cfg.Anthropic.Model))
	}

	board := canvas.NewBoard(canvas.WithBoardLogger(logger))
	notices := canvas.NewNoticeQueue(0)
	expander := canvas.NewExpander(board, settings, anthropic.New(clientOpts...),
		canvas.WithExpanderLogger(logger),
		canvas.WithNotifier(notices.Push),
		canvas.WithHooks(m.Hooks()),
		canvas.WithTimeout(cfg.Expansion.Timeout),
		canvas.WithPlaceholderReconciliation(cfg.Expansion.Reconcile),
	)

	app := api.New(api.Deps{
		Board:    board,
		Settings: settings,
		Expander: expander,
		Notices:  notices,
		Gatherer: reg,
		Logger:   logger,
	})

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		serverErrors <- app.Listen(cfg.Addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server: %w", err)

	case sig := <-shutdown:
		logger.Info("shutting down", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(ctx); err != nil {
			logger.Warn("graceful shutdown did not complete", "err", err)
		}
		// In-flight generations settle on their own timeout.
		expander.Wait()
		logger.Info("stopped")
	}
	return nil
}

// openSettingsStore connects the configured backend. The returned func
// releases it.
func openSettingsStore(ctx context.Context, cfg SettingsConfig) (canvas.SettingsStore, func(), error) {
	switch cfg.Backend {
	case BackendMemory:
		return memory.New(), func() {}, nil

	case BackendSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	case BackendRedis:
		var opts []redis.Option
		if cfg.RedisTTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.RedisTTL))
		}
		s := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, opts...)
		return s, func() { _ = s.Close() }, nil

	case BackendPostgres:
		s, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown settings backend %q", cfg.Backend)
}

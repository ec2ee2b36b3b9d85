package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"unitrates/internal/amqp"
	"unitrates/internal/catalog"
	"unitrates/internal/cli"
	apphttp "unitrates/internal/http"
	applog "unitrates/internal/log"
	"unitrates/internal/search"
	"unitrates/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(applog.ComponentApp, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitReadOnlySQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	engine := search.NewEngine(repo, search.TokenSetScorer{}, search.Options{
		CandidateLimit: cfg.CandidateLimit,
		Overfetch:      cfg.OverfetchMultiplier,
	})
	cache := catalog.NewCache()

	// Warm the filter catalog before accepting traffic.
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 30*time.Second)
	snap, err := cache.Snapshot(warmCtx, repo.Identifier(), repo)
	warmCancel()
	if err != nil {
		logger.Error("Failed to load filter catalog", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	logger.Info("Filter catalog loaded",
		"years", len(snap.Years)-1,
		"provinces", len(snap.Provinces)-1,
		"cities", len(snap.Cities)-1)

	srv := apphttp.NewServer(":"+cfg.Port, engine, cache, repo, repo.Identifier(),
		apphttp.SearchDefaults{Limit: cfg.DefaultLimit, MinScore: cfg.DefaultMinScore},
		cfg.ExportRateLimitPerMinute,
		logger.WithComponent(applog.ComponentHTTP))

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	// Optional reload consumer: refresh the catalog when an import
	// publishes a dataset reload.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		refresher := worker.NewRefreshWorker(cache, repo, repo.Identifier())
		go func() {
			if err := refresher.Run(ctx, amqpClient); err != nil && err != context.Canceled {
				logger.Error("Reload consumption failed", "error", err)
			}
		}()
		logger.Info("Catalog reload consumer started", "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - catalog refresh is manual only")
	}

	logger.Info("Starting unitrates server", "port", cfg.Port, "store", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

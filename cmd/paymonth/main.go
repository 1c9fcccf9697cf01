package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"paymonth/internal/amqp"
	"paymonth/internal/cache"
	"paymonth/internal/cli"
	"paymonth/internal/core"
	apphttp "paymonth/internal/http"
	applog "paymonth/internal/log"
	"paymonth/internal/quickinput"
	"paymonth/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg)
	loc := cli.Location(logger, cfg)

	summaries := cache.NewLRUCache[core.PeriodSummary](cfg.CacheSize, cfg.CacheTTL)
	cacheManager := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	cacheManager.Register(summaries)
	cacheManager.StartCleanup(cfg.CacheTTL)

	// Event publishing is optional; without a broker the sheet can be
	// rebuilt with `paymonthctl sync backfill`.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		publisher = client
		logger.Info("AMQP publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP publishing disabled - no AMQP_URL provided")
	}

	periods := services.NewPeriodService(repo, loc)
	stats := services.NewStatsService(repo, periods, summaries)
	transactions := services.NewTransactionService(repo, publisher, stats, quickinput.NewParser(loc))

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Services{
		Transactions: transactions,
		Settings:     services.NewSettingsService(repo),
		Periods:      periods,
		Stats:        stats,
		Health:       repo,
	}, apphttp.Options{
		DefaultUserID:      cfg.DefaultUserID,
		Location:           loc,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})

	ctx, done := cli.GracefulShutdown(context.Background(), logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cacheManager.Stop()
		if err := transactions.Close(); err != nil {
			logger.Error("Failed to release resources", applog.FieldError, err)
		}
	})

	logger.Info("Starting paymonth server",
		"port", cfg.Port,
		"timezone", cfg.DefaultTimezone,
		"db", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minwoopark/infomore/internal/api"
	"github.com/minwoopark/infomore/internal/config"
	"github.com/minwoopark/infomore/internal/crawler"
	"github.com/minwoopark/infomore/internal/database"
	"github.com/minwoopark/infomore/internal/events"
	"github.com/minwoopark/infomore/internal/fetch"
	"github.com/minwoopark/infomore/internal/naver"
	"github.com/minwoopark/infomore/internal/task"
	"github.com/minwoopark/infomore/pkg/logger"
)

func main() {
	once := flag.Bool("once", false, "run a single crawl and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("starting catalog crawler")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connectCtx, connectCancel := context.WithTimeout(ctx, 15*time.Second)
	db, err := database.New(connectCtx, database.Config{
		Host:        cfg.Database.Host,
		Port:        cfg.Database.Port,
		User:        cfg.Database.User,
		Password:    cfg.Database.Password,
		Database:    cfg.Database.DBName,
		SSLMode:     cfg.Database.SSLMode,
		MaxConns:    int32(cfg.Database.MaxConns),
		MinConns:    1,
		MaxConnLife: time.Hour,
		MaxConnIdle: 30 * time.Minute,
	})
	connectCancel()
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database", "host", cfg.Database.Host)

	var publisher crawler.EventPublisher
	if cfg.Redis.Addr != "" {
		p, err := events.NewPublisher(ctx, cfg.Redis.Addr, cfg.Redis.Stream, logger)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer p.Close()
		publisher = p
		logger.Info("event publishing enabled", "stream", cfg.Redis.Stream)
	}

	profile := &naver.Profile{
		CategoryListURL: cfg.Crawl.CategoryListURL,
		BaseURL:         cfg.Crawl.BaseURL,
	}

	runner := crawler.NewRunner(db, profile, fetch.Options{
		Workers:      cfg.Fetcher.Workers,
		Timeout:      cfg.Fetcher.Timeout,
		MaxRetries:   cfg.Fetcher.MaxRetries,
		RetryDelay:   cfg.Fetcher.RetryDelay,
		RateLimitMin: cfg.Fetcher.RateLimitMin,
		RateLimitMax: cfg.Fetcher.RateLimitMax,
		UserAgent:    cfg.Fetcher.UserAgent,
	}, publisher, logger)

	if *once {
		if _, err := runner.RunOnce(ctx); err != nil {
			logger.Error("crawl failed", "error", err)
			os.Exit(1)
		}
		return
	}

	crawlTask := task.NewCrawlTask(runner, cfg.Crawl.Schedule, logger)
	if err := crawlTask.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	handlers := api.NewHandlers(runner, logger)
	server := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
		Handler: handlers.Router(),
	}

	go func() {
		logger.Info("api listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case <-ctx.Done():
	}

	crawlTask.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown failed", "error", err)
	}
}

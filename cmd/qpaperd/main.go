package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shikshalabs/qpaper/internal/async"
	"github.com/shikshalabs/qpaper/internal/common"
	"github.com/shikshalabs/qpaper/internal/export"
	"github.com/shikshalabs/qpaper/internal/extract"
	"github.com/shikshalabs/qpaper/internal/llm"
	"github.com/shikshalabs/qpaper/internal/llm/openai"
	"github.com/shikshalabs/qpaper/internal/pipeline"
	"github.com/shikshalabs/qpaper/internal/repository"
	"github.com/shikshalabs/qpaper/internal/server"
)

func main() {
	logger := common.NewLogger()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("database setup failed", "error", err)
		os.Exit(1)
	}
	defer repository.Close(pool, logger)

	if err := repository.HealthCheck(ctx, pool, cfg.Database.DialTimeout, logger); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}
	if err := repository.EnsureSchema(ctx, pool, logger); err != nil {
		logger.Error("schema setup failed", "error", err)
		os.Exit(1)
	}

	documents := repository.NewDocumentRepository(pool, logger)
	jobs := repository.NewExtractJobRepository(pool, logger)
	questions := repository.NewQuestionRepository(pool, logger)

	var segmenter llm.PageSegmenter
	if cfg.LLM.APIKey != "" {
		segmenter = openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
	}
	extractor := pipeline.NewExtractor(logger, segmenter)
	service := extract.NewService(extractor, jobs, questions, logger)

	queue := async.NewWorkerQueue(service, logger,
		async.WithWorkers(cfg.Extract.Workers),
		async.WithJobTimeout(cfg.Extract.JobTimeout),
	)

	exporter := export.NewService(questions, logger)
	handler := server.NewHandler(documents, jobs, questions, exporter, queue, cfg.Extract.DefaultStrategy, logger)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	queue.Shutdown(shutdownCtx)
	logger.Info("stopped")
}

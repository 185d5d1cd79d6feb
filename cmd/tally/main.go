package main

import (
	"context"
	"net/http"
	"time"

	"tally/internal/ai"
	"tally/internal/cli"
	"tally/internal/core"
	"tally/internal/events"
	apphttp "tally/internal/http"
	"tally/internal/store"
)

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	kv, closeKV := cli.InitKV(logger, cfg)
	defer closeKV()

	// Event publishing is optional; a missing broker only disables the feed.
	var pub store.Publisher
	var closePub func()
	if cfg.AMQPEnabled() {
		p, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Event publishing disabled", "error", err)
		} else {
			pub = p
			closePub = func() { _ = p.Close() }
			logger.Info("Event publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	st := store.New(kv, pub)
	st.LoadPersisted(context.Background())
	if st.Language() == core.English && cfg.DefaultLanguage != "en" {
		st.SetLanguage(context.Background(), core.ParseLanguage(cfg.DefaultLanguage))
	}

	parser := ai.New(ai.Config{
		BaseURL: cfg.AIBaseURL,
		APIKey:  cfg.AIAPIKey,
		Model:   cfg.AIModel,
	})
	if parser.Enabled() {
		logger.Info("AI endpoints enabled", "model", cfg.AIModel)
	} else {
		logger.Info("AI endpoints disabled, fallbacks only")
	}

	srv := apphttp.NewServer(":"+cfg.Port, st, parser, ai.NewInsights(parser))
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
		if closePub != nil {
			closePub()
		}
	})

	logger.Info("Starting tally server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		return
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

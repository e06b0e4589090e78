package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mbaxter/folioview/internal/clients/robinhood"
	"github.com/mbaxter/folioview/internal/clients/yahoo"
	"github.com/mbaxter/folioview/internal/common"
	"github.com/mbaxter/folioview/internal/server"
	"github.com/mbaxter/folioview/internal/services/report"
	"github.com/mbaxter/folioview/internal/services/resolution"
)

func main() {
	// .env is optional; real deployments set env vars directly
	_ = godotenv.Load()

	cfg, err := common.LoadConfig("config.toml", os.Getenv("FOLIO_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := common.NewLogger(cfg.Logging.Level)

	brokerage := robinhood.NewClient(cfg.Clients.Brokerage.Token,
		robinhood.WithBaseURL(cfg.Clients.Brokerage.BaseURL),
		robinhood.WithRateLimit(cfg.Clients.Brokerage.RateLimit),
		robinhood.WithTimeout(cfg.Clients.Brokerage.GetTimeout()),
		robinhood.WithMaxOrderPages(cfg.Clients.Brokerage.MaxOrderPages),
		robinhood.WithLogger(logger),
	)

	market := yahoo.NewClient(
		yahoo.WithBaseURL(cfg.Clients.MarketData.BaseURL),
		yahoo.WithRateLimit(cfg.Clients.MarketData.RateLimit),
		yahoo.WithTimeout(cfg.Clients.MarketData.GetTimeout()),
		yahoo.WithLogger(logger),
	)

	cache := resolution.NewCache(brokerage, market,
		resolution.WithWorkers(cfg.Resolver.Workers),
		resolution.WithFetchTimeout(cfg.Resolver.GetFetchTimeout()),
		resolution.WithLogger(logger),
	)

	reports := report.NewService(brokerage, market, cache, logger,
		report.WithBenchmark(cfg.Benchmark.Symbol, cfg.Benchmark.Name),
	)

	srv := server.NewServer(cfg.Server, reports, logger)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	logger.Info().
		Str("url", fmt.Sprintf("http://localhost:%d", cfg.Server.Port)).
		Str("benchmark", cfg.Benchmark.Symbol).
		Msg("Server ready")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	logger.Info().Msg("Server stopped")
}

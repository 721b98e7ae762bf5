package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"merchant-banklink/internal/config"
	pg "merchant-banklink/internal/infra/db/postgres"
	"merchant-banklink/internal/infra/logging"
	"merchant-banklink/internal/infra/metrics"
	red "merchant-banklink/internal/infra/redis"
	"merchant-banklink/internal/infra/web"
	"merchant-banklink/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Runtime.Dev {
		log.Printf("[DEV MODE] Enabled")
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	nonces := red.NewNonceStore(redisClient, cfg.Banklink.NonceTTL)

	// ---- Banks ----
	banks, err := usecase.BuildBanks(cfg.Banklink)
	if err != nil {
		log.Fatalf("banklink: %v", err)
	}

	// ---- Repositories / use cases ----
	exchangeRepo := pg.NewExchangeRepo(pool)
	txManager := pg.NewTxManager(pool)
	exchangeUC := usecase.NewExchangeUseCase(banks, exchangeRepo, txManager, nonces, cfg.Banklink.SkewWindow, logger)

	// ---- HTTP ----
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Admin.Port),
		Handler: web.NewServer(exchangeUC, banks, cfg.Admin.APIKey, logger).Router(),
	}
	go func() {
		logger.Info().Int("port", cfg.Admin.Port).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		logger.Info().Str("signal", s.String()).Msg("shutting down")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}

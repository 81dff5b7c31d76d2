package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/creditai/pricing-service/internal/config"
	"github.com/creditai/pricing-service/internal/handler"
	"github.com/creditai/pricing-service/internal/integrations/approval"
	"github.com/creditai/pricing-service/internal/integrations/cbr"
	"github.com/creditai/pricing-service/internal/repository"
	"github.com/creditai/pricing-service/internal/service"
	"github.com/creditai/pricing-service/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Rate cache: redis when configured and reachable, in-memory otherwise
	var cache repository.RateCache
	if cfg.RedisAddr != "" {
		redisCache := repository.NewRedisCache(cfg.RedisAddr)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisCache.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Warnf("Redis unavailable at %s, using in-memory cache: %v", cfg.RedisAddr, err)
			cache = repository.NewMemoryCache()
		} else {
			cache = redisCache
		}
	} else {
		cache = repository.NewMemoryCache()
	}

	// Initialize layers
	store := repository.NewFileStore(cfg.SnapshotPath, cfg.LedgerPassphrase)
	agent, err := service.NewPricingAgent(service.NewAgentConfig(cfg), store, logger)
	if err != nil {
		logger.Fatalf("Failed to build pricing agent: %v", err)
	}

	cbrClient := cbr.NewCBRClient(cfg, logger)
	fx := service.NewFXService(cbrClient, cache, cfg.USDINRFallback, logger)

	var predictor service.Predictor
	if cfg.ModelURL != "" {
		predictor = approval.NewClient(cfg.ModelURL, logger)
	} else {
		logger.Warnf("MODEL_URL not set, approval endpoints disabled")
	}
	approvalSvc := service.NewApprovalService(predictor, fx, logger)

	authSvc := service.NewAuthService(cfg, logger)
	notifier := email.NewSender(cfg, logger)

	h := handler.NewHandler(agent, approvalSvc, fx, authSvc, notifier, cfg, logger)
	r := handler.NewRouter(h, cfg)

	// Prime the FX cache; the static fallback covers failures
	refreshCtx, cancelRefresh := context.WithTimeout(context.Background(), 15*time.Second)
	if err := fx.Refresh(refreshCtx); err != nil {
		logger.Warnf("Initial FX refresh failed: %v", err)
	}
	cancelRefresh()

	// Scheduled jobs: daily FX refresh, optional ledger auto-export
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 9 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := fx.Refresh(ctx); err != nil {
			logger.Warnf("Scheduled FX refresh failed: %v", err)
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule FX refresh: %v", err)
	}
	if cfg.ExportCron != "" {
		if _, err := scheduler.AddFunc(cfg.ExportCron, func() {
			if err := h.RunExport(); err != nil {
				logger.Errorf("Scheduled ledger export failed: %v", err)
			}
		}); err != nil {
			logger.Fatalf("Failed to schedule ledger export: %v", err)
		}
	}
	scheduler.Start()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}

	// Final snapshot so a restart can pick the history back up
	if err := h.RunExport(); err != nil {
		logger.Errorf("Final ledger export failed: %v", err)
	}
}

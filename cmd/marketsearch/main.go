package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/marketsearch/internal/config"
	dbValkey "github.com/kailas-cloud/marketsearch/internal/db/valkey"
	"github.com/kailas-cloud/marketsearch/internal/domain/corpus"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/query"
	logpkg "github.com/kailas-cloud/marketsearch/internal/logger"
	"github.com/kailas-cloud/marketsearch/internal/metrics"
	"github.com/kailas-cloud/marketsearch/internal/repository/catalog"
	"github.com/kailas-cloud/marketsearch/internal/repository/querycache"
	"github.com/kailas-cloud/marketsearch/internal/repository/trainlog"
	chiTransport "github.com/kailas-cloud/marketsearch/internal/transport/chi"
	openaiExt "github.com/kailas-cloud/marketsearch/internal/transport/openai"
	healthuc "github.com/kailas-cloud/marketsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/marketsearch/internal/usecase/search"
	"github.com/kailas-cloud/marketsearch/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting marketsearch API server",
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_driver", cfg.Catalog.Driver),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("extractor", cfg.Extractor.Mode),
	)

	metrics.RegisterSearchMetrics()

	// Catalog (source of truth for retrains)
	gdb, err := catalog.Open(&catalog.Config{
		Driver:          cfg.Catalog.Driver,
		DSN:             cfg.Catalog.DSN,
		MaxOpenConns:    cfg.Catalog.MaxOpenConns,
		MaxIdleConns:    cfg.Catalog.MaxIdleConns,
		ConnMaxLifetime: cfg.Catalog.ConnMaxLifetime(),
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open catalog", zap.Error(err))
	}
	catalogRepo := catalog.New(gdb)
	defer func() { _ = catalogRepo.Close() }()

	// Pass nil interfaces (not typed nil pointers!) when the cache is off.
	// Go gotcha: (*querycache.Cache)(nil) wrapped in PageCache != nil.
	var (
		pageCache   searchuc.PageCache
		trainLog    searchuc.TrainLog
		cachePinger healthuc.Pinger
	)
	if cfg.Cache.Enabled {
		store, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(context.Background(),
			time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to cache", zap.Strings("addrs", cfg.Cache.Addrs))

		pageCache = querycache.New(store, cfg.Cache.TTL(), logger)
		trainLog = trainlog.New(store)
		cachePinger = store
	}

	builder, err := corpus.NewBuilder(cfg.Search.BuildWorkers)
	if err != nil {
		logger.Fatal("Failed to create corpus builder", zap.Error(err))
	}
	defer builder.Release()

	searchSvc := searchuc.New(
		catalogRepo, builder, buildExtractor(&cfg.Extractor, logger),
		pageCache, trainLog, cfg.SearchLimits(), logger,
	)
	healthSvc := healthuc.New(catalogRepo, cachePinger, searchSvc)

	if cfg.Search.TrainOnStart {
		go trainOnStart(searchSvc, logger)
	}

	server := chiTransport.NewServer(searchSvc, healthSvc, logger)
	router := chiTransport.NewRouter(server, cfg.Auth.AdminKeys, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildExtractor picks the price-constraint extractor. The LLM extractor
// falls back to the rule-based one on any failure.
func buildExtractor(cfg *config.ExtractorConfig, logger *zap.Logger) query.Extractor {
	rules := query.Rules{}
	if cfg.Mode != config.ExtractorLLM {
		return rules
	}
	logger.Info("LLM extractor enabled", zap.String("model", cfg.Model), zap.String("base_url", cfg.BaseURL))
	return openaiExt.NewExtractor(&openaiExt.Config{
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		Model:    cfg.Model,
		Timeout:  cfg.Timeout(),
		Fallback: rules,
		Logger:   logger,
	})
}

// trainOnStart builds the first snapshot in the background. Until it succeeds
// queries answer "not trained".
func trainOnStart(svc *searchuc.Service, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report, err := svc.Train(ctx)
	if err != nil {
		logger.Error("Initial retrain failed; POST /api/v1/nlp/train to retry", zap.Error(err))
		return
	}
	logger.Info("Initial retrain done",
		zap.Uint64("version", report.Version),
		zap.Int("records", report.Records),
	)
}

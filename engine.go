package marketsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbValkey "github.com/kailas-cloud/marketsearch/internal/db/valkey"
	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/domain/corpus"
	"github.com/kailas-cloud/marketsearch/internal/domain/product"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/query"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/request"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/result"
	"github.com/kailas-cloud/marketsearch/internal/repository/catalog"
	"github.com/kailas-cloud/marketsearch/internal/repository/querycache"
	"github.com/kailas-cloud/marketsearch/internal/repository/trainlog"
	openaiExt "github.com/kailas-cloud/marketsearch/internal/transport/openai"
	healthuc "github.com/kailas-cloud/marketsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/marketsearch/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultCacheTTL         = 5 * time.Minute
)

// Internal interfaces for substitution in tests.
type searchUseCase interface {
	Train(ctx context.Context) (domain.TrainReport, error)
	Query(ctx context.Context, req *request.Request) (result.Page, error)
	Status(ctx context.Context) searchuc.Status
	Config() domain.SearchConfig
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// catalogSource is what the engine needs from a catalog backend.
type catalogSource interface {
	searchuc.Catalog
	healthuc.Pinger
}

// Engine is the in-process search entry point.
type Engine struct {
	search  searchUseCase
	health  healthUseCase
	closers []func() error
	obs     *observer
}

// New creates an Engine. The corpus starts empty: call Train before Query.
// The provided context is used for the cache readiness check.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	def := domain.DefaultSearchConfig()
	cfg := &engineConfig{
		buildWorkers:    def.BuildWorkers,
		defaultPageSize: def.DefaultPageSize,
		maxPageSize:     def.MaxPageSize,
		maxQueryLength:  def.MaxQueryLength,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if !cfg.staticCatalog && cfg.catalogDSN == "" {
		return nil, errors.New("marketsearch: catalog required (use WithPostgres, WithSQLite or WithCatalog)")
	}
	if cfg.defaultPageSize <= 0 || cfg.maxPageSize < cfg.defaultPageSize {
		return nil, fmt.Errorf("marketsearch: invalid page sizes %d/%d", cfg.defaultPageSize, cfg.maxPageSize)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	e := &Engine{obs: obs}
	if err := e.wire(ctx, cfg); err != nil {
		_ = e.Close()
		return nil, err
	}
	return e, nil
}

func (e *Engine) wire(ctx context.Context, cfg *engineConfig) error {
	cat, err := e.openCatalog(cfg)
	if err != nil {
		return err
	}

	// nil interfaces, not typed nil pointers, when no cache is configured.
	var (
		pageCache   searchuc.PageCache
		trainLog    searchuc.TrainLog
		cachePinger healthuc.Pinger
	)
	if len(cfg.cacheAddrs) > 0 {
		store, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.cacheAddrs,
			Password: cfg.cachePassword,
		})
		if err != nil {
			return fmt.Errorf("marketsearch: create valkey store: %w", err)
		}
		e.closers = append(e.closers, func() error { store.Close(); return nil })

		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			return fmt.Errorf("marketsearch: cache not ready: %w", err)
		}
		ttl := cfg.cacheTTL
		if ttl <= 0 {
			ttl = defaultCacheTTL
		}
		pageCache = querycache.New(store, ttl, e.obs.logger)
		trainLog = trainlog.New(store)
		cachePinger = store
	}

	builder, err := corpus.NewBuilder(cfg.buildWorkers)
	if err != nil {
		return fmt.Errorf("marketsearch: %w", err)
	}
	e.closers = append(e.closers, func() error { builder.Release(); return nil })

	svc := searchuc.New(cat, builder, buildExtractor(cfg, e.obs), pageCache, trainLog,
		domain.SearchConfig{
			DefaultPageSize: cfg.defaultPageSize,
			MaxPageSize:     cfg.maxPageSize,
			MaxQueryLength:  cfg.maxQueryLength,
			BuildWorkers:    cfg.buildWorkers,
		}, e.obs.logger)

	e.search = svc
	e.health = healthuc.New(cat, cachePinger, svc)
	return nil
}

func (e *Engine) openCatalog(cfg *engineConfig) (catalogSource, error) {
	if cfg.staticCatalog {
		rows := make([]product.Row, len(cfg.products))
		for i := range cfg.products {
			rows[i] = cfg.products[i].toRow()
		}
		return catalog.NewStatic(rows), nil
	}

	gdb, err := catalog.Open(&catalog.Config{
		Driver: cfg.catalogDriver,
		DSN:    cfg.catalogDSN,
	}, e.obs.logger)
	if err != nil {
		return nil, fmt.Errorf("marketsearch: %w", err)
	}
	repo := catalog.New(gdb)
	e.closers = append(e.closers, repo.Close)
	return repo, nil
}

func buildExtractor(cfg *engineConfig, obs *observer) query.Extractor {
	if cfg.llmModel == "" {
		return query.Rules{}
	}
	return openaiExt.NewExtractor(&openaiExt.Config{
		APIKey:   cfg.llmAPIKey,
		BaseURL:  cfg.llmBaseURL,
		Model:    cfg.llmModel,
		Timeout:  cfg.llmTimeout,
		Fallback: query.Rules{},
		Logger:   obs.logger,
	})
}

// Close releases all resources in reverse order of acquisition.
func (e *Engine) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}

// Train rebuilds the corpus from the catalog. Concurrent calls share one rebuild.
// On failure the previous snapshot keeps serving.
func (e *Engine) Train(ctx context.Context) (report TrainReport, err error) {
	start := time.Now()
	defer func() { e.obs.observe("train", start, err) }()

	r, err := e.search.Train(ctx)
	report = reportFromDomain(&r)
	if err != nil {
		return report, fmt.Errorf("train: %w", err)
	}
	return report, nil
}

// Query returns one page of products matching text. page and pageSize are
// clamped; zero selects the defaults.
func (e *Engine) Query(ctx context.Context, text string, page, pageSize int) (res Page, err error) {
	start := time.Now()
	defer func() { e.obs.observe("query", start, err) }()

	req, err := request.New(text, page, pageSize, e.search.Config())
	if err != nil {
		return Page{}, fmt.Errorf("query: %w", err)
	}
	p, err := e.search.Query(ctx, &req)
	if err != nil {
		return Page{}, fmt.Errorf("query: %w", err)
	}
	return pageFromResult(&p), nil
}

// Status reports the serving snapshot and the last retrain outcome.
func (e *Engine) Status(ctx context.Context) Status {
	st := e.search.Status(ctx)
	return statusFromUseCase(&st)
}

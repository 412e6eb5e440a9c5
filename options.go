package marketsearch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/marketsearch/internal/repository/catalog"
)

// Option configures the Engine.
type Option interface {
	apply(*engineConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*engineConfig)

func (f optionFunc) apply(c *engineConfig) { f(c) }

type engineConfig struct {
	catalogDriver string // "postgres" or "sqlite"
	catalogDSN    string
	products      []Product
	staticCatalog bool

	cacheAddrs    []string
	cachePassword string
	cacheTTL      time.Duration

	llmBaseURL string
	llmAPIKey  string
	llmModel   string
	llmTimeout time.Duration

	buildWorkers    int
	defaultPageSize int
	maxPageSize     int
	maxQueryLength  int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithPostgres reads the catalog from PostgreSQL.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *engineConfig) {
		c.catalogDriver = catalog.DriverPostgres
		c.catalogDSN = dsn
		c.staticCatalog = false
	})
}

// WithSQLite reads the catalog from a SQLite database with the same schema.
func WithSQLite(dsn string) Option {
	return optionFunc(func(c *engineConfig) {
		c.catalogDriver = catalog.DriverSQLite
		c.catalogDSN = dsn
		c.staticCatalog = false
	})
}

// WithCatalog searches a fixed set of products instead of a database.
// The slice is copied.
func WithCatalog(products []Product) Option {
	return optionFunc(func(c *engineConfig) {
		c.products = append([]Product(nil), products...)
		c.staticCatalog = true
	})
}

// WithValkey caches result pages and records retrain outcomes in Valkey or Redis.
// ttl <= 0 uses the default of five minutes.
func WithValkey(addr, password string, ttl time.Duration) Option {
	return optionFunc(func(c *engineConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
		c.cacheTTL = ttl
	})
}

// WithLLMExtractor reads price limits with an OpenAI-compatible chat model.
// Any model failure falls back to the built-in rules.
func WithLLMExtractor(baseURL, apiKey, model string, timeout time.Duration) Option {
	return optionFunc(func(c *engineConfig) {
		c.llmBaseURL = baseURL
		c.llmAPIKey = apiKey
		c.llmModel = model
		c.llmTimeout = timeout
	})
}

// WithBuildWorkers sets how many goroutines tokenize the catalog during a retrain.
// Default: 4. Values <= 1 build serially.
func WithBuildWorkers(n int) Option {
	return optionFunc(func(c *engineConfig) {
		c.buildWorkers = n
	})
}

// WithPageSize sets the default and maximum page sizes. Defaults: 10 and 100.
func WithPageSize(def, maxSize int) Option {
	return optionFunc(func(c *engineConfig) {
		c.defaultPageSize = def
		c.maxPageSize = maxSize
	})
}

// WithMaxQueryLength bounds the accepted query text length. Default: 4096.
func WithMaxQueryLength(n int) Option {
	return optionFunc(func(c *engineConfig) {
		c.maxQueryLength = n
	})
}

// WithLogger enables structured logging of retrains and engine operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *engineConfig) {
		c.logger = l
	})
}

// WithMetrics registers engine metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithMetrics(reg prometheus.Registerer) Option {
	return optionFunc(func(c *engineConfig) {
		c.metricsReg = reg
	})
}

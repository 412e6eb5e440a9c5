// Package config loads the service configuration from config/<env>.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/marketsearch/internal/domain"
)

// Catalog drivers.
const (
	CatalogPostgres = "postgres"
	CatalogSQLite   = "sqlite"
)

// Extractor modes.
const (
	ExtractorRules = "rules"
	ExtractorLLM   = "llm"
)

// dotenvFiles are loaded in order before the YAML is expanded. Variables
// already set in the process environment win.
var dotenvFiles = []string{".env.local", ".env"}

// Config holds the marketsearch service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Cache     CacheConfig     `yaml:"cache"`
	Auth      AuthConfig      `yaml:"auth"`
	Search    SearchConfig    `yaml:"search"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CatalogConfig holds the product catalog database settings.
type CatalogConfig struct {
	Driver             string `yaml:"driver"` // postgres (default), sqlite
	DSN                string `yaml:"dsn"`
	MaxOpenConns       int    `yaml:"max_open_conns"`
	MaxIdleConns       int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeSec int    `yaml:"conn_max_lifetime_sec"`
}

// CacheConfig holds the Valkey/Redis settings for the query cache and train log.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	AdminKeys []string `yaml:"admin_keys"` // guard POST /nlp/train; empty disables the check
}

// SearchConfig holds query limits and retrain settings.
type SearchConfig struct {
	DefaultPageSize int  `yaml:"default_page_size"`
	MaxPageSize     int  `yaml:"max_page_size"`
	MaxQueryLength  int  `yaml:"max_query_length"`
	TrainOnStart    bool `yaml:"train_on_start"`
	BuildWorkers    int  `yaml:"build_workers"`
}

// ExtractorConfig selects how price constraints are read from queries.
type ExtractorConfig struct {
	Mode      string `yaml:"mode"` // rules (default), llm
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// .env.local and .env are loaded first when present.
func Load(env string) (Config, error) {
	if err := LoadDotEnv(dotenvFiles...); err != nil {
		return Config{}, err
	}

	configPath := findConfigPath(env)
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse expands environment variables in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads the dotenv files that exist. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if !fileExists(p) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.Catalog.Driver == "" {
		c.Catalog.Driver = CatalogPostgres
	}
	if c.Catalog.MaxOpenConns <= 0 {
		c.Catalog.MaxOpenConns = 10
	}
	if c.Catalog.MaxIdleConns <= 0 {
		c.Catalog.MaxIdleConns = 2
	}
	if c.Catalog.ConnMaxLifetimeSec <= 0 {
		c.Catalog.ConnMaxLifetimeSec = 300
	}

	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}

	def := domain.DefaultSearchConfig()
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = def.DefaultPageSize
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = def.MaxPageSize
	}
	if c.Search.MaxQueryLength <= 0 {
		c.Search.MaxQueryLength = def.MaxQueryLength
	}
	if c.Search.BuildWorkers <= 0 {
		c.Search.BuildWorkers = def.BuildWorkers
	}

	if c.Extractor.Mode == "" {
		c.Extractor.Mode = ExtractorRules
	}
	if c.Extractor.TimeoutMs <= 0 {
		c.Extractor.TimeoutMs = 2000
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Catalog.Driver {
	case CatalogPostgres, CatalogSQLite:
	default:
		return fmt.Errorf("catalog.driver must be %q or %q, got %q", CatalogPostgres, CatalogSQLite, c.Catalog.Driver)
	}
	if c.Catalog.DSN == "" {
		return errors.New("catalog.dsn is required")
	}

	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return errors.New("cache.addrs is required when cache is enabled")
	}

	if c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search.default_page_size (%d) exceeds search.max_page_size (%d)",
			c.Search.DefaultPageSize, c.Search.MaxPageSize)
	}

	switch c.Extractor.Mode {
	case ExtractorRules:
	case ExtractorLLM:
		if c.Extractor.Model == "" {
			return errors.New("extractor.model is required in llm mode")
		}
	default:
		return fmt.Errorf("extractor.mode must be %q or %q, got %q", ExtractorRules, ExtractorLLM, c.Extractor.Mode)
	}
	return nil
}

// SearchLimits converts the search section to domain settings.
func (c *Config) SearchLimits() domain.SearchConfig {
	return domain.SearchConfig{
		DefaultPageSize: c.Search.DefaultPageSize,
		MaxPageSize:     c.Search.MaxPageSize,
		MaxQueryLength:  c.Search.MaxQueryLength,
		BuildWorkers:    c.Search.BuildWorkers,
	}
}

// ConnMaxLifetime returns the catalog pool connection lifetime.
func (c *CatalogConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeSec) * time.Second
}

// TTL returns the query cache entry lifetime.
func (c *CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}

// Timeout returns the per-request model timeout.
func (c *ExtractorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := env + ".yaml"

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// Relative to the source file, for tests and `go run` from subdirectories.
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// envVarRegex matches ${VAR} and ${VAR:-default}.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

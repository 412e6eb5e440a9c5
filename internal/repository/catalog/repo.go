// Package catalog reads the marketplace product catalog from SQL.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kailas-cloud/marketsearch/internal/domain/product"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const selectColumns = `p.id, p.name, p.brand, p.model, p.condition, p.price,
	c1.name AS category_name, c2.name AS subcategory_name,
	p.sales_area, p.year, p.supplier_id, p.description, p.created_at, p.image_url`

// Config holds connection and pool settings.
type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to the catalog database.
func Open(cfg *Config, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres, "":
		dialector = postgres.Open(cfg.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported catalog driver %q", cfg.Driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{Logger: NewGormLogger(logger)})
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("catalog pool: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return gdb, nil
}

// Repo implements usecase/search.Catalog over GORM.
type Repo struct {
	db *gorm.DB
}

// New creates a catalog repository.
func New(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// FetchAll returns every product with category and subcategory names resolved, ordered by id.
func (r *Repo) FetchAll(ctx context.Context) ([]product.Row, error) {
	var rows []productRow
	err := r.db.WithContext(ctx).
		Table("productsnew AS p").
		Select(selectColumns).
		Joins("LEFT JOIN categories c1 ON p.category_id = c1.id").
		Joins("LEFT JOIN categories c2 ON p.subcategory_id = c2.id").
		Order("p.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	out := make([]product.Row, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

// Ping checks database connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("catalog pool: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping catalog: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (r *Repo) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("catalog pool: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close catalog: %w", err)
	}
	return nil
}

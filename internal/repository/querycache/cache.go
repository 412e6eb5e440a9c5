// Package querycache stores rendered search result pages in Valkey.
package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/marketsearch/internal/db"
	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/result"
)

var keyPrefix = domain.KeyPrefix + "query:"

// store is the consumer interface for the page cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache keeps result pages for ttl. Keys are opaque and already include the
// corpus fingerprint, so entries for a replaced snapshot simply expire.
type Cache struct {
	store  store
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a page cache.
func New(s store, ttl time.Duration, logger *zap.Logger) *Cache {
	return &Cache{store: s, ttl: ttl, logger: logger}
}

// Get returns the cached page for key. A missing or unreadable entry is a miss.
func (c *Cache) Get(ctx context.Context, key string) (result.Page, bool, error) {
	data, err := c.store.Get(ctx, keyPrefix+key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return result.Page{}, false, nil
		}
		return result.Page{}, false, fmt.Errorf("query cache get: %w", err)
	}

	var page result.Page
	if err := json.Unmarshal(data, &page); err != nil {
		c.logger.Warn("Failed to decode cached page", zap.String("key", key), zap.Error(err))
		return result.Page{}, false, nil
	}
	return page, true, nil
}

// Set stores page under key.
func (c *Cache) Set(ctx context.Context, key string, page *result.Page) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("query cache encode: %w", err)
	}
	if err := c.store.SetWithTTL(ctx, keyPrefix+key, data, c.ttl); err != nil {
		return fmt.Errorf("query cache set: %w", err)
	}
	return nil
}

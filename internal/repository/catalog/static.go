package catalog

import (
	"context"

	"github.com/kailas-cloud/marketsearch/internal/domain/product"
)

// Static is an in-memory catalog for embedding and tests.
type Static struct {
	rows []product.Row
}

// NewStatic copies rows into a static catalog.
func NewStatic(rows []product.Row) *Static {
	cp := make([]product.Row, len(rows))
	copy(cp, rows)
	return &Static{rows: cp}
}

// FetchAll returns a copy of the rows.
func (s *Static) FetchAll(_ context.Context) ([]product.Row, error) {
	cp := make([]product.Row, len(s.rows))
	copy(cp, s.rows)
	return cp, nil
}

// Ping always succeeds.
func (s *Static) Ping(_ context.Context) error { return nil }

package search

import (
	"context"

	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/domain/corpus"
	"github.com/kailas-cloud/marketsearch/internal/domain/product"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/query"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/result"
)

// Catalog is the read-only backing product store.
type Catalog interface {
	FetchAll(ctx context.Context) ([]product.Row, error)
}

// RecordBuilder validates and tokenizes catalog rows.
type RecordBuilder interface {
	Build(ctx context.Context, rows []product.Row) ([]product.Record, []corpus.Rejection, error)
}

// Extractor derives a price constraint from query text.
type Extractor interface {
	Extract(ctx context.Context, text string) query.PriceConstraint
}

// NamedExtractor is an Extractor that identifies its configuration (e.g. "rules",
// "llm:gpt-4o-mini"). The name scopes cached result pages.
type NamedExtractor interface {
	Extractor
	Name() string
}

// PageCache stores rendered result pages. Optional.
type PageCache interface {
	Get(ctx context.Context, key string) (result.Page, bool, error)
	Set(ctx context.Context, key string, page *result.Page) error
}

// TrainLog persists the outcome of the latest retrain. Optional.
type TrainLog interface {
	Record(ctx context.Context, report *domain.TrainReport) error
	Last(ctx context.Context) (domain.TrainReport, error)
}

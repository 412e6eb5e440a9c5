package marketsearch

import "github.com/kailas-cloud/marketsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotTrained    = domain.ErrNotTrained
	ErrNoMatches     = domain.ErrNoMatches
	ErrInvalidQuery  = domain.ErrInvalidQuery
	ErrRetrainSource = domain.ErrRetrainSource
	ErrEmptyCatalog  = domain.ErrEmptyCatalog
)

package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/marketsearch/internal/domain"
)

// Request is a validated free-text search with clamped pagination.
type Request struct {
	query    string
	page     int
	pageSize int
}

// New validates a search request. page and pageSize of 0 mean "not supplied".
func New(query string, page, pageSize int, cfg domain.SearchConfig) (Request, error) {
	return FromParams(query, supplied(page), supplied(pageSize), cfg)
}

// FromParams validates a search request whose paging parameters may be absent.
// A nil pageSize selects cfg.DefaultPageSize; a supplied value, including 0, is
// clamped into [1, cfg.MaxPageSize]. A nil or sub-1 page selects page 1.
// The query must contain a non-blank character and fit in cfg.MaxQueryLength bytes.
func FromParams(query string, page, pageSize *int, cfg domain.SearchConfig) (Request, error) {
	if strings.TrimSpace(query) == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidQuery)
	}
	if cfg.MaxQueryLength > 0 && len(query) > cfg.MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, cfg.MaxQueryLength)
	}

	p := 1
	if page != nil {
		p = ClampPage(*page)
	}
	size := cfg.DefaultPageSize
	if pageSize != nil {
		size = *pageSize
	}

	return Request{
		query:    query,
		page:     p,
		pageSize: ClampPageSize(size, cfg.MaxPageSize),
	}, nil
}

func supplied(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

// ClampPage returns page, or 1 when page is below 1.
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// ClampPageSize clamps size into [1, maxSize].
func ClampPageSize(size, maxSize int) int {
	if maxSize < 1 {
		maxSize = 1
	}
	if size < 1 {
		return 1
	}
	if size > maxSize {
		return maxSize
	}
	return size
}

// Query returns the raw search text.
func (r *Request) Query() string { return r.query }

// Page returns the 1-based page number.
func (r *Request) Page() int { return r.page }

// PageSize returns the number of items per page.
func (r *Request) PageSize() int { return r.pageSize }

// Package result projects matched records into client-facing pages.
package result

import (
	"github.com/kailas-cloud/marketsearch/internal/domain/product"
)

// Item is the client-facing projection of a matched record.
type Item struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	NameTokens      []string `json:"nameTokens"`
	Brand           string   `json:"brand"`
	Model           string   `json:"model"`
	Year            int      `json:"year"`
	CategoryName    string   `json:"categoryName"`
	SubcategoryName string   `json:"subcategoryName"`
	Description     string   `json:"description"`
	SupplierID      int64    `json:"supplierId"`
	ImageURL        string   `json:"imageUrl"`
	Condition       string   `json:"condition"`
	SalesArea       string   `json:"salesArea"`
	Price           float64  `json:"price"`
}

// Project reshapes a record for transport.
func Project(r *product.Record) Item {
	tokens := make([]string, len(r.NameTokens()))
	copy(tokens, r.NameTokens())
	return Item{
		ID:              r.ID(),
		Name:            r.Name(),
		NameTokens:      tokens,
		Brand:           r.Brand(),
		Model:           r.Model(),
		Year:            r.Year(),
		CategoryName:    r.CategoryName(),
		SubcategoryName: r.SubcategoryName(),
		Description:     r.Description(),
		SupplierID:      r.SupplierID(),
		ImageURL:        r.ImageURL(),
		Condition:       string(r.Condition()),
		SalesArea:       r.SalesArea(),
		Price:           r.Price(),
	}
}

// Page is one slice of a filtered result set plus its pagination metadata.
// Totals describe the filtered set, not the corpus.
type Page struct {
	Items       []Item `json:"data"`
	TotalItems  int    `json:"totalItems"`
	TotalPages  int    `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
	PageSize    int    `json:"pageSize"`
}

// Paginate slices matches into the requested page. page and pageSize must
// already be clamped (page >= 1, pageSize >= 1). A page past the end has no
// items but keeps well-formed totals.
func Paginate(matches []product.Record, page, pageSize int) Page {
	total := len(matches)
	p := Page{
		Items:       make([]Item, 0),
		TotalItems:  total,
		TotalPages:  (total + pageSize - 1) / pageSize,
		CurrentPage: page,
		PageSize:    pageSize,
	}

	offset := (page - 1) * pageSize
	if offset >= total {
		return p
	}
	end := min(offset+pageSize, total)

	p.Items = make([]Item, 0, end-offset)
	for i := offset; i < end; i++ {
		p.Items = append(p.Items, Project(&matches[i]))
	}
	return p
}

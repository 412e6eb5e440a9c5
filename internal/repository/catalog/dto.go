package catalog

import (
	"time"

	"github.com/kailas-cloud/marketsearch/internal/domain/product"
)

// productRow is one row of the products/categories join. Nullable columns are pointers.
type productRow struct {
	ID              int64
	Name            *string
	Brand           *string
	Model           *string
	Condition       *string
	Price           *float64
	CategoryName    *string
	SubcategoryName *string
	SalesArea       *string
	Year            *int
	SupplierID      *int64
	Description     *string
	CreatedAt       *time.Time
	ImageURL        *string `gorm:"column:image_url"`
}

// toDomain converts NULL text columns to empty strings and keeps a NULL price as nil.
func (r *productRow) toDomain() product.Row {
	row := product.Row{
		ID:              r.ID,
		Name:            str(r.Name),
		Brand:           str(r.Brand),
		Model:           str(r.Model),
		Condition:       str(r.Condition),
		Price:           r.Price,
		CategoryName:    str(r.CategoryName),
		SubcategoryName: str(r.SubcategoryName),
		SalesArea:       str(r.SalesArea),
		Description:     str(r.Description),
		ImageURL:        str(r.ImageURL),
	}
	if r.Year != nil {
		row.Year = *r.Year
	}
	if r.SupplierID != nil {
		row.SupplierID = *r.SupplierID
	}
	if r.CreatedAt != nil {
		row.CreatedAt = *r.CreatedAt
	}
	return row
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

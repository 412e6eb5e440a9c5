package product

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/kailas-cloud/marketsearch/internal/domain/token"
)

// Condition is the wear state of a listed product.
type Condition string

// Condition constants.
const (
	ConditionNone Condition = ""
	ConditionNew  Condition = "new"
	ConditionUsed Condition = "used"
)

// Conditions lists every condition tag a query may mention.
var Conditions = []Condition{ConditionNew, ConditionUsed}

// IsValid checks if the condition is one of the supported values.
func (c Condition) IsValid() bool {
	return c == ConditionNone || c == ConditionNew || c == ConditionUsed
}

// Row is a catalog product as read from the backing store, with category and
// subcategory names already resolved. Price is nil when the column is NULL.
type Row struct {
	ID              int64
	Name            string
	Brand           string
	Model           string
	Condition       string
	Price           *float64
	CategoryName    string
	SubcategoryName string
	SalesArea       string
	Year            int
	SupplierID      int64
	Description     string
	ImageURL        string
	CreatedAt       time.Time
}

// Record is a tokenized, searchable product (immutable value object).
// Slices returned by accessors are shared and must not be modified.
type Record struct {
	id              int64
	name            string
	nameTokens      []string
	brand           string
	model           string
	year            int
	categoryName    string
	subcategoryName string
	description     string
	supplierID      int64
	imageURL        string
	condition       Condition
	salesAreaTokens []string
	price           float64
	createdAt       time.Time
}

// New validates a catalog row and tokenizes its name and sales area.
// Name and sales area must produce at least one token; price must be present
// and non-negative; condition must be new, used, or empty.
func New(row *Row) (Record, error) {
	if strings.TrimSpace(row.Name) == "" {
		return Record{}, fmt.Errorf("product %d: name is required", row.ID)
	}
	if strings.TrimSpace(row.SalesArea) == "" {
		return Record{}, fmt.Errorf("product %d: sales area is required", row.ID)
	}
	if row.Price == nil {
		return Record{}, fmt.Errorf("product %d: price is required", row.ID)
	}
	price := *row.Price
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return Record{}, fmt.Errorf("product %d: invalid price %v", row.ID, price)
	}

	cond := Condition(strings.ToLower(strings.TrimSpace(row.Condition)))
	if !cond.IsValid() {
		return Record{}, fmt.Errorf("product %d: unknown condition %q", row.ID, row.Condition)
	}

	nameTokens := token.Tokenize(row.Name)
	if len(nameTokens) == 0 {
		return Record{}, fmt.Errorf("product %d: name %q has no searchable tokens", row.ID, row.Name)
	}
	areaTokens := token.Tokenize(row.SalesArea)
	if len(areaTokens) == 0 {
		return Record{}, fmt.Errorf("product %d: sales area %q has no searchable tokens", row.ID, row.SalesArea)
	}

	return Record{
		id:              row.ID,
		name:            row.Name,
		nameTokens:      nameTokens,
		brand:           row.Brand,
		model:           row.Model,
		year:            row.Year,
		categoryName:    row.CategoryName,
		subcategoryName: row.SubcategoryName,
		description:     row.Description,
		supplierID:      row.SupplierID,
		imageURL:        row.ImageURL,
		condition:       cond,
		salesAreaTokens: areaTokens,
		price:           price,
		createdAt:       row.CreatedAt,
	}, nil
}

// ID returns the catalog identifier.
func (r *Record) ID() int64 { return r.id }

// Name returns the original product name.
func (r *Record) Name() string { return r.name }

// NameTokens returns the tokenized product name.
func (r *Record) NameTokens() []string { return r.nameTokens }

// Brand returns the manufacturer brand.
func (r *Record) Brand() string { return r.brand }

// Model returns the model string.
func (r *Record) Model() string { return r.model }

// Year returns the manufacture year (0 if unknown).
func (r *Record) Year() int { return r.year }

// CategoryName returns the resolved category name.
func (r *Record) CategoryName() string { return r.categoryName }

// SubcategoryName returns the resolved subcategory name.
func (r *Record) SubcategoryName() string { return r.subcategoryName }

// Description returns the free-text description.
func (r *Record) Description() string { return r.description }

// SupplierID returns the owning supplier identifier.
func (r *Record) SupplierID() int64 { return r.supplierID }

// ImageURL returns the product image reference.
func (r *Record) ImageURL() string { return r.imageURL }

// Condition returns the condition tag (may be empty).
func (r *Record) Condition() Condition { return r.condition }

// SalesAreaTokens returns the tokenized sales area.
func (r *Record) SalesAreaTokens() []string { return r.salesAreaTokens }

// SalesArea returns the sales area tokens rejoined for display.
func (r *Record) SalesArea() string { return strings.Join(r.salesAreaTokens, " ") }

// Price returns the listed price.
func (r *Record) Price() float64 { return r.price }

// CreatedAt returns the listing creation time.
func (r *Record) CreatedAt() time.Time { return r.createdAt }

package marketsearch

import (
	"time"

	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/domain/product"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/result"
	searchuc "github.com/kailas-cloud/marketsearch/internal/usecase/search"
)

// Product is a catalog entry supplied through WithCatalog.
// A nil Price rejects the product at retrain time.
type Product struct {
	ID              int64
	Name            string
	Brand           string
	Model           string
	Condition       string // "new", "used" or empty
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

// Item is a matched product.
type Item struct {
	ID              int64
	Name            string
	NameTokens      []string
	Brand           string
	Model           string
	Year            int
	CategoryName    string
	SubcategoryName string
	Description     string
	SupplierID      int64
	ImageURL        string
	Condition       string
	SalesArea       string
	Price           float64
}

// Page is one page of matches. Totals describe all matches, not the corpus.
type Page struct {
	Items       []Item
	TotalItems  int
	TotalPages  int
	CurrentPage int
	PageSize    int
}

// TrainReport summarizes a retrain attempt.
type TrainReport struct {
	OK          bool
	Version     uint64
	Records     int
	Rejected    int
	Fingerprint string
	TrainedAt   time.Time
	Duration    time.Duration
	Error       string
}

// Status describes the snapshot serving queries and the last retrain.
type Status struct {
	Trained     bool
	Version     uint64
	Records     int
	Fingerprint string
	TrainedAt   time.Time
	LastTrain   *TrainReport
}

func (p *Product) toRow() product.Row {
	return product.Row{
		ID:              p.ID,
		Name:            p.Name,
		Brand:           p.Brand,
		Model:           p.Model,
		Condition:       p.Condition,
		Price:           p.Price,
		CategoryName:    p.CategoryName,
		SubcategoryName: p.SubcategoryName,
		SalesArea:       p.SalesArea,
		Year:            p.Year,
		SupplierID:      p.SupplierID,
		Description:     p.Description,
		ImageURL:        p.ImageURL,
		CreatedAt:       p.CreatedAt,
	}
}

func pageFromResult(p *result.Page) Page {
	items := make([]Item, len(p.Items))
	for i := range p.Items {
		it := &p.Items[i]
		items[i] = Item{
			ID:              it.ID,
			Name:            it.Name,
			NameTokens:      it.NameTokens,
			Brand:           it.Brand,
			Model:           it.Model,
			Year:            it.Year,
			CategoryName:    it.CategoryName,
			SubcategoryName: it.SubcategoryName,
			Description:     it.Description,
			SupplierID:      it.SupplierID,
			ImageURL:        it.ImageURL,
			Condition:       it.Condition,
			SalesArea:       it.SalesArea,
			Price:           it.Price,
		}
	}
	return Page{
		Items:       items,
		TotalItems:  p.TotalItems,
		TotalPages:  p.TotalPages,
		CurrentPage: p.CurrentPage,
		PageSize:    p.PageSize,
	}
}

func reportFromDomain(r *domain.TrainReport) TrainReport {
	return TrainReport{
		OK:          r.Status == domain.TrainOK,
		Version:     r.Version,
		Records:     r.Records,
		Rejected:    r.Rejected,
		Fingerprint: r.Fingerprint,
		TrainedAt:   r.TrainedAt,
		Duration:    r.Duration,
		Error:       r.Error,
	}
}

func statusFromUseCase(st *searchuc.Status) Status {
	out := Status{
		Trained:     st.Trained,
		Version:     st.Version,
		Records:     st.Records,
		Fingerprint: st.Fingerprint,
		TrainedAt:   st.TrainedAt,
	}
	if st.LastTrain != nil {
		r := reportFromDomain(st.LastTrain)
		out.LastTrain = &r
	}
	return out
}

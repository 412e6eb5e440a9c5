package client

import "time"

// Item is a matched product.
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

// QueryResult is one page of matches.
type QueryResult struct {
	Success     bool   `json:"success"`
	Data        []Item `json:"data"`
	TotalItems  int    `json:"totalItems"`
	TotalPages  int    `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
	PageSize    int    `json:"pageSize"`
}

// TrainResult is the outcome of a successful retrain.
type TrainResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Version  uint64 `json:"version"`
	Records  int    `json:"records"`
	Rejected int    `json:"rejected"`
}

// TrainLogEntry is the last recorded retrain.
type TrainLogEntry struct {
	Status      string    `json:"status"`
	Version     uint64    `json:"version"`
	Records     int       `json:"records"`
	Rejected    int       `json:"rejected"`
	Fingerprint string    `json:"fingerprint"`
	TrainedAt   time.Time `json:"trainedAt"`
	DurationMs  int64     `json:"durationMs"`
	Error       string    `json:"error"`
}

// Status describes the snapshot a replica is serving.
type Status struct {
	Trained     bool           `json:"trained"`
	Version     uint64         `json:"version"`
	Records     int            `json:"records"`
	Fingerprint string         `json:"fingerprint"`
	TrainedAt   *time.Time     `json:"trainedAt"`
	LastTrain   *TrainLogEntry `json:"lastTrain"`
}

// Health is the aggregated service health.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

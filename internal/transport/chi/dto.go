package chi

import (
	"time"

	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/result"
	searchuc "github.com/kailas-cloud/marketsearch/internal/usecase/search"
)

// errorCode is the machine-readable error identifier in error responses.
type errorCode string

const (
	codeBadRequest   errorCode = "bad_request"
	codeUnauthorized errorCode = "unauthorized"
	codeNotTrained   errorCode = "not_trained"
	codeNoMatches    errorCode = "no_matches"
	codeTrainFailed  errorCode = "train_failed"
	codeInternal     errorCode = "internal_error"
)

const (
	msgTrained       = "Model trained successfully."
	msgTrainFailed   = "Model training failed."
	msgQueryRequired = "Query is required."
	msgNoMatches     = "No matches found."
	msgNotTrained    = "Model has not been trained yet."
)

type errorResponse struct {
	Success bool      `json:"success"`
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Success     bool          `json:"success"`
	Data        []result.Item `json:"data"`
	TotalItems  int           `json:"totalItems"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
	PageSize    int           `json:"pageSize"`
}

type trainResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Version  uint64 `json:"version"`
	Records  int    `json:"records"`
	Rejected int    `json:"rejected"`
}

type trainLogEntry struct {
	Status      string    `json:"status"`
	Version     uint64    `json:"version,omitempty"`
	Records     int       `json:"records"`
	Rejected    int       `json:"rejected"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	TrainedAt   time.Time `json:"trainedAt"`
	DurationMs  int64     `json:"durationMs"`
	Error       string    `json:"error,omitempty"`
}

type statusResponse struct {
	Trained     bool           `json:"trained"`
	Version     uint64         `json:"version"`
	Records     int            `json:"records"`
	Fingerprint string         `json:"fingerprint,omitempty"`
	TrainedAt   *time.Time     `json:"trainedAt,omitempty"`
	LastTrain   *trainLogEntry `json:"lastTrain,omitempty"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func queryResponseFromPage(p *result.Page) queryResponse {
	data := p.Items
	if data == nil {
		data = []result.Item{}
	}
	return queryResponse{
		Success:     true,
		Data:        data,
		TotalItems:  p.TotalItems,
		TotalPages:  p.TotalPages,
		CurrentPage: p.CurrentPage,
		PageSize:    p.PageSize,
	}
}

func statusResponseFromStatus(st *searchuc.Status) statusResponse {
	resp := statusResponse{
		Trained:     st.Trained,
		Version:     st.Version,
		Records:     st.Records,
		Fingerprint: st.Fingerprint,
	}
	if st.Trained {
		t := st.TrainedAt.UTC()
		resp.TrainedAt = &t
	}
	if st.LastTrain != nil {
		resp.LastTrain = trainLogEntryFromReport(st.LastTrain)
	}
	return resp
}

func trainLogEntryFromReport(r *domain.TrainReport) *trainLogEntry {
	return &trainLogEntry{
		Status:      string(r.Status),
		Version:     r.Version,
		Records:     r.Records,
		Rejected:    r.Rejected,
		Fingerprint: r.Fingerprint,
		TrainedAt:   r.TrainedAt.UTC(),
		DurationMs:  r.Duration.Milliseconds(),
		Error:       r.Error,
	}
}

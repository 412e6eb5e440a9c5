package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/marketsearch/internal/logger"
	healthuc "github.com/kailas-cloud/marketsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/marketsearch/internal/usecase/search"
)

const maxBodyBytes = 64 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the search API.
type Server struct {
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search *searchuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeBadRequest),
		sentinelHandler(domain.ErrNotTrained, http.StatusConflict, codeNotTrained),
		sentinelHandler(domain.ErrNoMatches, http.StatusNotFound, codeNoMatches),
	}
	return s
}

// Train handles POST /api/v1/nlp/train.
func (s *Server) Train(w http.ResponseWriter, r *http.Request) {
	report, err := s.search.Train(r.Context())
	if err != nil {
		logpkg.FromContextOr(r.Context(), s.logger).Error("train request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeTrainFailed, msgTrainFailed)
		return
	}

	writeJSON(w, http.StatusOK, trainResponse{
		Success:  true,
		Message:  msgTrained,
		Version:  report.Version,
		Records:  report.Records,
		Rejected: report.Rejected,
	})
}

// Query handles POST /api/v1/nlp/query?page=&pageSize=.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var body queryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}

	page := queryInt(r, "page")
	pageSize := queryInt(r, "pageSize")

	req, err := request.FromParams(body.Query, page, pageSize, s.search.Config())
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, validationMessage(body.Query, err))
		return
	}

	res, err := s.search.Query(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, queryResponseFromPage(&res))
}

// Status handles GET /api/v1/nlp/status.
func (s *Server) Status(w http.ResponseWriter, r *http.Request) {
	st := s.search.Status(r.Context())
	writeJSON(w, http.StatusOK, statusResponseFromStatus(&st))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// queryInt binds an optional integer query parameter. Missing or malformed
// values bind to nil, which the request layer treats as "use the default".
func queryInt(r *http.Request, name string) *int {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return nil
	}
	return v
}

func validationMessage(query string, err error) string {
	if strings.TrimSpace(query) == "" {
		return msgQueryRequired
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Success: false,
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client message for a sentinel error without exposing internals.
func safeDomainMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		return msgQueryRequired
	case errors.Is(err, domain.ErrNotTrained):
		return msgNotTrained
	case errors.Is(err, domain.ErrNoMatches):
		return msgNoMatches
	default:
		return "internal error"
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Debug("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}

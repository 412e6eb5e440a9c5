package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/domain/corpus"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/match"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/query"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/request"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/result"
	"github.com/kailas-cloud/marketsearch/internal/metrics"
)

const (
	trainKey       = "train"
	retrainTimeout = 10 * time.Minute
)

// Status describes the corpus currently serving queries.
type Status struct {
	Trained     bool
	Version     uint64
	Records     int
	Fingerprint string
	TrainedAt   time.Time
	LastTrain   *domain.TrainReport
}

// Service owns the corpus lifecycle: retrain from the catalog and query the current snapshot.
type Service struct {
	catalog   Catalog
	builder   RecordBuilder
	extractor Extractor
	extractID string
	cache     PageCache
	trainLog  TrainLog
	store     *corpus.Store
	cfg       domain.SearchConfig
	logger    *zap.Logger

	group     singleflight.Group
	lastTrain atomic.Pointer[domain.TrainReport]
	now       func() time.Time
}

// New creates a search service with an empty corpus. cache and trainLog can be nil.
func New(
	catalog Catalog, builder RecordBuilder, extractor Extractor,
	cache PageCache, trainLog TrainLog,
	cfg domain.SearchConfig, logger *zap.Logger,
) *Service {
	if extractor == nil {
		extractor = query.Rules{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		catalog:   catalog,
		builder:   builder,
		extractor: extractor,
		extractID: extractorName(extractor),
		cache:     cache,
		trainLog:  trainLog,
		store:     corpus.NewStore(),
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Config returns the search limits the service validates requests against.
func (s *Service) Config() domain.SearchConfig { return s.cfg }

// Train rebuilds the corpus from the catalog. Concurrent calls share one rebuild.
// The shared rebuild is detached from the caller that started it and bounded by
// retrainTimeout; each caller stops waiting when its own ctx is done.
// On failure the current snapshot keeps serving.
func (s *Service) Train(ctx context.Context) (domain.TrainReport, error) {
	ch := s.group.DoChan(trainKey, func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), retrainTimeout)
		defer cancel()
		return s.train(runCtx)
	})

	select {
	case <-ctx.Done():
		return domain.TrainReport{}, fmt.Errorf("train: %w", ctx.Err())
	case res := <-ch:
		report, _ := res.Val.(domain.TrainReport)
		if res.Shared {
			s.logger.Debug("Retrain coalesced", zap.Uint64("version", report.Version))
		}
		if res.Err != nil {
			return report, res.Err //nolint:wrapcheck // already wrapped in train
		}
		return report, nil
	}
}

func (s *Service) train(ctx context.Context) (domain.TrainReport, error) {
	start := s.now()
	s.logger.Info("Retrain started")

	rows, err := s.catalog.FetchAll(ctx)
	if err != nil {
		return s.trainFailed(ctx, start, 0, fmt.Errorf("%w: %w", domain.ErrRetrainSource, err))
	}
	if len(rows) == 0 {
		return s.trainFailed(ctx, start, 0, domain.ErrEmptyCatalog)
	}

	records, rejected, err := s.builder.Build(ctx, rows)
	if err != nil {
		return s.trainFailed(ctx, start, 0, err)
	}
	for _, rej := range rejected {
		s.logger.Warn("Catalog row rejected",
			zap.Int64("product_id", rej.ID),
			zap.Int("row", rej.Index),
			zap.Error(rej.Err),
		)
	}
	metrics.CorpusRejectedTotal.Add(float64(len(rejected)))

	if len(records) == 0 {
		return s.trainFailed(ctx, start, len(rejected), domain.NewRejectedRows(len(rejected)))
	}

	snap := s.store.Swap(records, s.now())
	report := domain.TrainReport{
		Status:      domain.TrainOK,
		Version:     snap.Version(),
		Records:     snap.Len(),
		Rejected:    len(rejected),
		Fingerprint: snap.Fingerprint(),
		TrainedAt:   snap.TrainedAt(),
		Duration:    s.now().Sub(start),
	}

	metrics.RetrainTotal.WithLabelValues(string(domain.TrainOK)).Inc()
	metrics.RetrainDuration.Observe(report.Duration.Seconds())
	metrics.CorpusRecords.Set(float64(report.Records))

	s.logger.Info("Retrain completed",
		zap.Uint64("version", report.Version),
		zap.Int("records", report.Records),
		zap.Int("rejected", report.Rejected),
		zap.String("fingerprint", report.Fingerprint),
		zap.Duration("duration", report.Duration),
	)
	s.recordTrain(ctx, &report)
	return report, nil
}

func (s *Service) trainFailed(
	ctx context.Context, start time.Time, rejected int, err error,
) (domain.TrainReport, error) {
	report := domain.TrainReport{
		Status:    domain.TrainFailed,
		Rejected:  rejected,
		TrainedAt: s.now(),
		Duration:  s.now().Sub(start),
		Error:     err.Error(),
	}

	metrics.RetrainTotal.WithLabelValues(string(domain.TrainFailed)).Inc()
	metrics.RetrainDuration.Observe(report.Duration.Seconds())

	s.logger.Error("Retrain failed",
		zap.Int("rejected", rejected),
		zap.Duration("duration", report.Duration),
		zap.Error(err),
	)
	s.recordTrain(ctx, &report)
	return report, err
}

// recordTrain keeps the report in memory and, when configured, in the train log.
func (s *Service) recordTrain(ctx context.Context, report *domain.TrainReport) {
	r := *report
	s.lastTrain.Store(&r)
	if s.trainLog == nil {
		return
	}
	if err := s.trainLog.Record(ctx, report); err != nil {
		s.logger.Warn("Failed to record train log", zap.Error(err))
	}
}

// Query matches req against the current snapshot and returns the requested page.
// Returns domain.ErrNotTrained before the first successful retrain and
// domain.ErrNoMatches when the snapshot has no matching record.
func (s *Service) Query(ctx context.Context, req *request.Request) (result.Page, error) {
	snap, ok := s.store.Current()
	if !ok {
		metrics.QueriesTotal.WithLabelValues("not_trained").Inc()
		return result.Page{}, domain.ErrNotTrained
	}

	key := cacheKey(snap.Fingerprint(), s.extractID, req)
	if page, hit := s.cached(ctx, key); hit {
		metrics.QueriesTotal.WithLabelValues("ok").Inc()
		return page, nil
	}

	constraint := s.extractor.Extract(ctx, req.Query())
	parsed := query.Parse(req.Query(), constraint)

	matches := match.Match(snap.Records(), &parsed)
	if len(matches) == 0 {
		metrics.QueriesTotal.WithLabelValues("no_matches").Inc()
		return result.Page{}, domain.ErrNoMatches
	}

	page := result.Paginate(matches, req.Page(), req.PageSize())
	metrics.QueriesTotal.WithLabelValues("ok").Inc()

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, &page); err != nil {
			metrics.QueryCacheTotal.WithLabelValues("error").Inc()
			s.logger.Warn("Failed to cache result page", zap.Error(err))
		}
	}
	return page, nil
}

func (s *Service) cached(ctx context.Context, key string) (result.Page, bool) {
	if s.cache == nil {
		return result.Page{}, false
	}
	page, hit, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.QueryCacheTotal.WithLabelValues("error").Inc()
		s.logger.Warn("Query cache lookup failed", zap.Error(err))
		return result.Page{}, false
	case hit:
		metrics.QueryCacheTotal.WithLabelValues("hit").Inc()
		return page, true
	default:
		metrics.QueryCacheTotal.WithLabelValues("miss").Inc()
		return result.Page{}, false
	}
}

// Trained reports whether a snapshot is serving queries.
func (s *Service) Trained() bool {
	_, ok := s.store.Current()
	return ok
}

// Status reports the serving snapshot and the most recent retrain outcome.
// The train log, when configured, is preferred since it is shared across replicas.
func (s *Service) Status(ctx context.Context) Status {
	var st Status
	if snap, ok := s.store.Current(); ok {
		st.Trained = true
		st.Version = snap.Version()
		st.Records = snap.Len()
		st.Fingerprint = snap.Fingerprint()
		st.TrainedAt = snap.TrainedAt()
	}

	if s.trainLog != nil {
		last, err := s.trainLog.Last(ctx)
		switch {
		case err == nil:
			st.LastTrain = &last
			return st
		case !errors.Is(err, domain.ErrNotTrained):
			s.logger.Warn("Failed to read train log", zap.Error(err))
		}
	}
	if last := s.lastTrain.Load(); last != nil {
		r := *last
		st.LastTrain = &r
	}
	return st
}

// cacheKey identifies a page of results for one snapshot and extractor.
// Whitespace and case are normalized; punctuation is kept because it affects
// price parsing.
func cacheKey(fingerprint, extractor string, req *request.Request) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(req.Query())), " ")
	h := sha256.New()
	for _, part := range []string{
		fingerprint,
		extractor,
		normalized,
		strconv.Itoa(req.Page()),
		strconv.Itoa(req.PageSize()),
	} {
		h.Write([]byte(part))
		h.Write([]byte{'|'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func extractorName(e Extractor) string {
	if n, ok := e.(NamedExtractor); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", e)
}

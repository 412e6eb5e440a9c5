package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search and retrain Prometheus metrics.
var (
	RetrainTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketsearch",
			Name:      "retrain_total",
			Help:      "Total number of corpus retrains",
		},
		[]string{"status"}, // "ok" / "failed"
	)

	RetrainDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "marketsearch",
			Name:      "retrain_duration_seconds",
			Help:      "Corpus retrain duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	CorpusRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "marketsearch",
			Name:      "corpus_records",
			Help:      "Number of records in the current corpus snapshot",
		},
	)

	CorpusRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "marketsearch",
			Name:      "corpus_rejected_total",
			Help:      "Catalog rows rejected while building the corpus",
		},
	)

	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketsearch",
			Name:      "queries_total",
			Help:      "Total number of search queries by outcome",
		},
		[]string{"outcome"}, // "ok" / "no_matches" / "not_trained"
	)

	QueryCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketsearch",
			Name:      "query_cache_total",
			Help:      "Query page cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss" / "error"
	)

	ExtractorRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketsearch",
			Name:      "extractor_requests_total",
			Help:      "Total number of LLM constraint extraction requests",
		},
		[]string{"model", "status"},
	)

	ExtractorRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "marketsearch",
			Name:      "extractor_request_duration_seconds",
			Help:      "LLM constraint extraction request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	ExtractorFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketsearch",
			Name:      "extractor_fallback_total",
			Help:      "LLM extractions replaced by the rule-based extractor",
		},
		[]string{"reason"},
	)
)

var registerSearchOnce sync.Once

// RegisterSearchMetrics registers search metrics with the default registry. Safe to call more than once.
func RegisterSearchMetrics() {
	registerSearchOnce.Do(func() {
		prometheus.MustRegister(
			RetrainTotal,
			RetrainDuration,
			CorpusRecords,
			CorpusRejectedTotal,
			QueriesTotal,
			QueryCacheTotal,
			ExtractorRequestsTotal,
			ExtractorRequestDuration,
			ExtractorFallbackTotal,
		)
	})
}

package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dwsearch/dwsearch/internal/db"
	"github.com/dwsearch/dwsearch/internal/domain/search/query"
)

// Search backend Prometheus metrics.
var (
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Total number of search backend calls",
		},
		[]string{"driver", "op", "status"},
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Search backend call duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"driver", "op"},
	)

	SearchHitsTotal = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_hits",
			Help:      "Total hit count reported per search",
			Buckets:   prometheus.ExponentialBuckets(1, 10, 7),
		},
		[]string{"driver"},
	)
)

var backendMetricsRegistered bool

// RegisterBackendMetrics registers the backend metrics. Must be called once from main.
func RegisterBackendMetrics() {
	if backendMetricsRegistered {
		return
	}
	prometheus.MustRegister(BackendRequestsTotal)
	prometheus.MustRegister(BackendRequestDuration)
	prometheus.MustRegister(SearchHitsTotal)
	backendMetricsRegistered = true
}

// Compile-time check: InstrumentedStore implements db.Store.
var _ db.Store = (*InstrumentedStore)(nil)

// InstrumentedStore records call counts and latency around a db.Store.
type InstrumentedStore struct {
	db.Store
	driver string
}

// InstrumentStore wraps s; driver labels every series.
func InstrumentStore(s db.Store, driver string) *InstrumentedStore {
	return &InstrumentedStore{Store: s, driver: driver}
}

// Search implements db.Searcher.
func (s *InstrumentedStore) Search(ctx context.Context, req *query.Request) (*db.SearchResult, error) {
	done := s.observe(db.OpSearch)
	res, err := s.Store.Search(ctx, req)
	done(err)
	if err == nil && res != nil {
		SearchHitsTotal.WithLabelValues(s.driver).Observe(float64(res.Total))
	}
	return res, err //nolint:wrapcheck // transparent decorator
}

// Count implements db.Searcher.
func (s *InstrumentedStore) Count(ctx context.Context, req *query.Request) (int, error) {
	done := s.observe(db.OpCount)
	n, err := s.Store.Count(ctx, req)
	done(err)
	return n, err //nolint:wrapcheck // transparent decorator
}

// GetDataset implements db.DatasetStore.
func (s *InstrumentedStore) GetDataset(ctx context.Context, index, id string) (*db.Record, error) {
	done := s.observe(db.OpGet)
	rec, err := s.Store.GetDataset(ctx, index, id)
	done(err)
	return rec, err //nolint:wrapcheck // transparent decorator
}

// ListDatasets implements db.DatasetStore.
func (s *InstrumentedStore) ListDatasets(ctx context.Context, index string, limit int) ([]db.Record, error) {
	done := s.observe(db.OpList)
	recs, err := s.Store.ListDatasets(ctx, index, limit)
	done(err)
	return recs, err //nolint:wrapcheck // transparent decorator
}

func (s *InstrumentedStore) observe(op string) func(error) {
	start := time.Now()
	return func(err error) {
		BackendRequestDuration.WithLabelValues(s.driver, op).Observe(time.Since(start).Seconds())
		BackendRequestsTotal.WithLabelValues(s.driver, op, status(err)).Inc()
	}
}

// status classifies an outcome; a missing key is an answer, not a failure.
func status(err error) string {
	switch {
	case err == nil, errors.Is(err, db.ErrKeyNotFound):
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}

// Package metrics instruments the blob store and commit journal with
// Prometheus collectors.
//
// Collectors are registered on a caller-supplied registry so tests and
// multiple servers in one process do not collide on the default one.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
	"github.com/custodia-labs/od-drafter/internal/core/ports/driven"
)

const namespace = "od_drafter"

// Metrics holds the collectors.
type Metrics struct {
	// StoreRequests counts blob store calls.
	// Labels: op (list, download, upload), result (ok, not_found, exists, timeout, error)
	StoreRequests *prometheus.CounterVec

	// StoreLatency measures blob store call duration.
	// Labels: op
	StoreLatency *prometheus.HistogramVec

	// Commits counts journalled commit attempts.
	// Labels: status (applied, already_applied, failed), reason
	Commits *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates and registers the collectors on reg.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		StoreRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "requests_total",
				Help:      "Blob store requests by operation and result",
			},
			[]string{"op", "result"},
		),
		StoreLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "request_duration_seconds",
				Help:      "Blob store request duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"op"},
		),
		Commits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "commit",
				Name:      "attempts_total",
				Help:      "Commit attempts by status and failure reason",
			},
			[]string{"status", "reason"},
		),
		gatherer: reg,
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	m.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	m.StoreRequests.WithLabelValues(op, result(err)).Inc()
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAlreadyExists):
		return "exists"
	case errors.Is(err, domain.ErrStoreTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}

// Ensure the decorators implement the interfaces.
var (
	_ driven.BlobStore     = (*instrumentedStore)(nil)
	_ driven.CommitJournal = (*instrumentedJournal)(nil)
)

type instrumentedStore struct {
	next driven.BlobStore
	m    *Metrics
}

// InstrumentStore wraps store so every call is counted and timed.
func InstrumentStore(store driven.BlobStore, m *Metrics) driven.BlobStore {
	return &instrumentedStore{next: store, m: m}
}

func (s *instrumentedStore) List(ctx context.Context) ([]driven.BlobObject, error) {
	start := time.Now()
	objs, err := s.next.List(ctx)
	s.m.observe("list", start, err)
	return objs, err
}

func (s *instrumentedStore) Download(ctx context.Context, name string) ([]byte, error) {
	start := time.Now()
	data, err := s.next.Download(ctx, name)
	s.m.observe("download", start, err)
	return data, err
}

func (s *instrumentedStore) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	start := time.Now()
	err := s.next.Upload(ctx, name, data, contentType)
	s.m.observe("upload", start, err)
	return err
}

func (s *instrumentedStore) PublicURL(name string) string {
	return s.next.PublicURL(name)
}

type instrumentedJournal struct {
	next driven.CommitJournal
	m    *Metrics
}

// InstrumentJournal wraps journal so every recorded attempt is counted.
// A nil journal counts attempts without persisting them.
func InstrumentJournal(journal driven.CommitJournal, m *Metrics) driven.CommitJournal {
	return &instrumentedJournal{next: journal, m: m}
}

func (j *instrumentedJournal) Record(ctx context.Context, rec domain.CommitRecord) error {
	j.m.Commits.WithLabelValues(rec.Status, rec.Reason).Inc()
	if j.next == nil {
		return nil
	}
	return j.next.Record(ctx, rec)
}

func (j *instrumentedJournal) List(ctx context.Context, base string, limit int) ([]domain.CommitRecord, error) {
	if j.next == nil {
		return nil, domain.ErrNotImplemented
	}
	return j.next.List(ctx, base, limit)
}

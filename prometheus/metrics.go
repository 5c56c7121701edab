// Package prometheus instruments docgap services with Prometheus metrics.
package prometheus

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/docgap"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docgap"

// Metrics holds every collector exported by docgap.
type Metrics struct {
	CacheHits        *prometheus.CounterVec
	CacheMisses      *prometheus.CounterVec
	Generations      *prometheus.CounterVec
	GenerateDuration prometheus.Histogram
	Embeddings       *prometheus.CounterVec
	IssueStatuses    *prometheus.CounterVec
	Runs             *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Object store reads that found a value.",
		}, []string{"cache_type"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Object store reads that found nothing.",
		}, []string{"cache_type"}),
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Generator calls by stop reason.",
		}, []string{"stop_reason"}),
		GenerateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generate_duration_seconds",
			Help:      "Generator call latency.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		}),
		Embeddings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embeddings_total",
			Help:      "Embedder calls by outcome.",
		}, []string{"outcome"}),
		IssueStatuses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issues_validated_total",
			Help:      "Validated issues by status.",
		}, []string{"status"}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Validation runs by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		m.CacheHits,
		m.CacheMisses,
		m.Generations,
		m.GenerateDuration,
		m.Embeddings,
		m.IssueStatuses,
		m.Runs,
	)
	return m
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// cacheType labels a key by its first path segment, e.g. "embeddings".
func cacheType(key string) string {
	if i := strings.IndexByte(key, '/'); i > 0 {
		return key[:i]
	}
	return "other"
}

var _ docgap.ObjectStore = (*ObjectStore)(nil)

// ObjectStore counts cache hits and misses of the wrapped store.
type ObjectStore struct {
	next    docgap.ObjectStore
	metrics *Metrics
}

// NewObjectStore creates a new instrumented ObjectStore.
func NewObjectStore(next docgap.ObjectStore, m *Metrics) *ObjectStore {
	return &ObjectStore{next: next, metrics: m}
}

func (s *ObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.next.Get(ctx, key)
	switch {
	case err == nil:
		s.metrics.CacheHits.WithLabelValues(cacheType(key)).Inc()
	case docgap.ErrorCode(err) == docgap.ENOTFOUND:
		s.metrics.CacheMisses.WithLabelValues(cacheType(key)).Inc()
	}
	return data, err
}

func (s *ObjectStore) Put(ctx context.Context, key string, data []byte) error {
	return s.next.Put(ctx, key, data)
}

func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	return s.next.Delete(ctx, key)
}

var _ docgap.Generator = (*Generator)(nil)

// Generator records latency and stop reasons of the wrapped generator.
type Generator struct {
	next    docgap.Generator
	metrics *Metrics
}

// NewGenerator creates a new instrumented Generator.
func NewGenerator(next docgap.Generator, m *Metrics) *Generator {
	return &Generator{next: next, metrics: m}
}

func (g *Generator) Generate(ctx context.Context, conversation []docgap.Turn, maxTokens int) (*docgap.Generation, error) {
	begin := time.Now()
	gen, err := g.next.Generate(ctx, conversation, maxTokens)
	g.metrics.GenerateDuration.Observe(time.Since(begin).Seconds())

	reason := "error"
	if err == nil && gen != nil {
		reason = string(gen.StopReason)
	}
	g.metrics.Generations.WithLabelValues(reason).Inc()
	return gen, err
}

var _ docgap.Embedder = (*Embedder)(nil)

// Embedder counts calls of the wrapped embedder by outcome.
type Embedder struct {
	next    docgap.Embedder
	metrics *Metrics
}

// NewEmbedder creates a new instrumented Embedder.
func NewEmbedder(next docgap.Embedder, m *Metrics) *Embedder {
	return &Embedder{next: next, metrics: m}
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.next.Embed(ctx, text)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	e.metrics.Embeddings.WithLabelValues(outcome).Inc()
	return vec, err
}

var _ docgap.ProgressPublisher = (*ProgressPublisher)(nil)

// ProgressPublisher counts issue statuses and run outcomes from progress
// events, then forwards them to next, if set.
type ProgressPublisher struct {
	next    docgap.ProgressPublisher
	metrics *Metrics
}

// NewProgressPublisher creates a new ProgressPublisher. next may be nil.
func NewProgressPublisher(next docgap.ProgressPublisher, m *Metrics) *ProgressPublisher {
	return &ProgressPublisher{next: next, metrics: m}
}

func (p *ProgressPublisher) Publish(ctx context.Context, sessionID string, event docgap.ProgressEvent) {
	switch event.Type {
	case docgap.ProgressIssueValidated:
		p.metrics.IssueStatuses.WithLabelValues(string(event.Status)).Inc()
	case docgap.ProgressCompleted:
		p.metrics.Runs.WithLabelValues("completed").Inc()
	case docgap.ProgressFailed:
		p.metrics.Runs.WithLabelValues("failed").Inc()
	}
	if p.next != nil {
		p.next.Publish(ctx, sessionID, event)
	}
}

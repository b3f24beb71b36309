package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/godilite/maturity-engine/internal/assessment"
	"github.com/godilite/maturity-engine/pkg/grpc/server"
)

// Manager owns every collector. It implements assessment.Observer and
// server.RequestRecorder.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	assessments          *prometheus.CounterVec
	assessmentLatency    *prometheus.HistogramVec
	augmentationFailures *prometheus.CounterVec
	questionSets         *prometheus.CounterVec
	questionsServed      prometheus.Histogram

	grpcRequests        *prometheus.CounterVec
	grpcRequestDuration *prometheus.HistogramVec
}

var (
	_ assessment.Observer    = (*Manager)(nil)
	_ server.RequestRecorder = (*Manager)(nil)
)

// NewManager creates and registers all collectors. Go runtime and process collectors
// are included on the manager's own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "maturity",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	auto := promauto.With(m.registry)

	m.assessments = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "assessments_total",
		Help:      "Completed assessments by result source",
	}, []string{"source"})

	m.assessmentLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "assessment_duration_seconds",
		Help:      "Time to produce an assessment, including any AI call",
		Buckets:   m.histogramBuckets,
	}, []string{"source"})

	m.augmentationFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "augmentation_failures_total",
		Help:      "AI calls that fell back to deterministic results, by failure kind",
	}, []string{"kind"})

	m.questionSets = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "question_sets_total",
		Help:      "Question sets served by source",
	}, []string{"source"})

	m.questionsServed = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "question_set_size",
		Help:      "Number of questions per served set",
		Buckets:   prometheus.LinearBuckets(0, 5, 6),
	})

	m.grpcRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "grpc",
		Name:      "requests_total",
		Help:      "Unary gRPC requests by method and status code",
	}, []string{"method", "code"})

	m.grpcRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "grpc",
		Name:      "request_duration_seconds",
		Help:      "Unary gRPC request latency",
		Buckets:   m.histogramBuckets,
	}, []string{"method"})

	return m
}

func (m *Manager) AugmentationFailed(kind assessment.FailureKind) {
	m.augmentationFailures.WithLabelValues(string(kind)).Inc()
}

func (m *Manager) AssessmentCompleted(source assessment.Source, elapsed time.Duration) {
	m.assessments.WithLabelValues(string(source)).Inc()
	m.assessmentLatency.WithLabelValues(string(source)).Observe(elapsed.Seconds())
}

func (m *Manager) QuestionsSelected(source assessment.Source, count int) {
	m.questionSets.WithLabelValues(string(source)).Inc()
	m.questionsServed.Observe(float64(count))
}

func (m *Manager) ObserveRequest(method, code string, duration time.Duration) {
	m.grpcRequests.WithLabelValues(method, code).Inc()
	m.grpcRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// Registry returns the registry the collectors live on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

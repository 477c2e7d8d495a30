package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the registry.
type Metrics struct {
	DelegatesRegistered prometheus.Counter
	CredentialsIssued   prometheus.Counter
	ImpactIssued        prometheus.Counter
	Rejections          *prometheus.CounterVec
	AuditFailures       prometheus.Counter
	CacheLookups        *prometheus.CounterVec
	OperationDuration   *prometheus.HistogramVec
	HTTPLatency         *prometheus.HistogramVec
}

// New creates and registers all metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the metrics on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration panics.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		DelegatesRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "impactledger_delegates_registered_total",
			Help: "Total number of delegates registered",
		}),
		CredentialsIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "impactledger_credentials_issued_total",
			Help: "Total number of credentials issued",
		}),
		ImpactIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "impactledger_impact_issued_total",
			Help: "Sum of impact scores across all issued credentials",
		}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "impactledger_rejections_total",
			Help: "Rejected ledger operations by operation and error code",
		}, []string{"operation", "code"}),
		AuditFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "impactledger_audit_failures_total",
			Help: "Audit events that could not be published",
		}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "impactledger_credential_cache_lookups_total",
			Help: "Credential cache lookups by result",
		}, []string{"result"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "impactledger_operation_duration_seconds",
			Help:    "Duration of ledger operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "impactledger_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

func (m *Metrics) IncrementDelegatesRegistered() {
	m.DelegatesRegistered.Inc()
}

// IncrementCredentialsIssued records one issuance and its score.
func (m *Metrics) IncrementCredentialsIssued(score uint64) {
	m.CredentialsIssued.Inc()
	m.ImpactIssued.Add(float64(score))
}

func (m *Metrics) IncrementRejections(operation, code string) {
	m.Rejections.WithLabelValues(operation, code).Inc()
}

func (m *Metrics) IncrementAuditFailures() {
	m.AuditFailures.Inc()
}

func (m *Metrics) IncCacheHit() {
	m.CacheLookups.WithLabelValues("hit").Inc()
}

func (m *Metrics) IncCacheMiss() {
	m.CacheLookups.WithLabelValues("miss").Inc()
}

// ObserveOperation records the duration of a ledger operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveHTTP(route, status string, elapsed time.Duration) {
	m.HTTPLatency.WithLabelValues(route, status).Observe(elapsed.Seconds())
}

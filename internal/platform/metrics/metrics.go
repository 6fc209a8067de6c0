// Package metrics registers the Prometheus instruments for the identity
// core. Everything goes through the default registry so /metrics is a plain
// promhttp handler.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RegistrationsTotal      *prometheus.CounterVec
	LoginsTotal             *prometheus.CounterVec
	PasswordChangesTotal    prometheus.Counter
	DocumentsUploadedTotal  prometheus.Counter
	VerificationTransitions *prometheus.CounterVec
	RequestLatency          *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RegistrationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nutricore_registrations_total",
			Help: "Successful registrations by role.",
		}, []string{"role"}),
		LoginsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nutricore_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		PasswordChangesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nutricore_password_changes_total",
			Help: "Successful password changes.",
		}),
		DocumentsUploadedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nutricore_documents_uploaded_total",
			Help: "Verification documents uploaded.",
		}),
		VerificationTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nutricore_verification_transitions_total",
			Help: "Verification status transitions by target status.",
		}, []string{"to"}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nutricore_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// ObserveLatency records one request's duration.
func (m *Metrics) ObserveLatency(method, path string, d time.Duration) {
	m.RequestLatency.WithLabelValues(method, path).Observe(d.Seconds())
}

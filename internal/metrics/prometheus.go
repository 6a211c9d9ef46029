package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder on top of Prometheus collectors.
type PrometheusRecorder struct {
	upstreamCalls    *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	enrichments      *prometheus.CounterVec
	unresolvedOwners prometheus.Counter
}

// NewPrometheus creates a PrometheusRecorder and registers its collectors with reg.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	p := &PrometheusRecorder{
		upstreamCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "listhub_upstream_requests_total",
			Help: "Outbound requests to backend services by outcome.",
		}, []string{"service", "operation", "outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "listhub_upstream_request_duration_seconds",
			Help:    "Latency of outbound requests to backend services.",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "operation"}),
		enrichments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "listhub_enrichments_total",
			Help: "Listing enrichment operations by outcome.",
		}, []string{"outcome"}),
		unresolvedOwners: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "listhub_enrichment_unresolved_owners_total",
			Help: "Listings returned with an empty owner placeholder.",
		}),
	}

	reg.MustRegister(
		p.upstreamCalls,
		p.upstreamLatency,
		p.enrichments,
		p.unresolvedOwners,
	)

	return p
}

// ObserveUpstreamCall records the call outcome and latency.
func (p *PrometheusRecorder) ObserveUpstreamCall(service, operation, outcome string, duration time.Duration) {
	p.upstreamCalls.WithLabelValues(service, operation, outcome).Inc()
	p.upstreamLatency.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// IncEnrichment records one enrichment outcome.
func (p *PrometheusRecorder) IncEnrichment(outcome string) {
	p.enrichments.WithLabelValues(outcome).Inc()
}

// AddUnresolvedOwners records listings whose owner could not be resolved.
func (p *PrometheusRecorder) AddUnresolvedOwners(count int) {
	if count <= 0 {
		return
	}
	p.unresolvedOwners.Add(float64(count))
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Upstream call outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeStatusError    = "status_error"
	OutcomeTransportError = "transport_error"
	OutcomeMalformed      = "malformed"
)

// Enrichment outcomes.
const (
	EnrichmentSuccess = "success"
	EnrichmentFailed  = "failed"
)

// Recorder captures metric events for the gateway.
// Implementations can expose these to Prometheus or keep them in memory for tests.
type Recorder interface {
	// Upstream client metrics
	ObserveUpstreamCall(service, operation, outcome string, duration time.Duration)

	// Enrichment metrics
	IncEnrichment(outcome string)
	AddUnresolvedOwners(count int)
}

package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// ObserveUpstreamCall is a no-op.
func (n *NoopRecorder) ObserveUpstreamCall(service, operation, outcome string, duration time.Duration) {
}

// IncEnrichment is a no-op.
func (n *NoopRecorder) IncEnrichment(outcome string) {}

// AddUnresolvedOwners is a no-op.
func (n *NoopRecorder) AddUnresolvedOwners(count int) {}

package metrics

import (
	"sync"
	"time"
)

// UpstreamKey identifies one upstream call series.
type UpstreamKey struct {
	Service   string
	Operation string
	Outcome   string
}

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UpstreamCalls         map[UpstreamKey]uint64
	UpstreamDurationTotal time.Duration
	Enrichments           map[string]uint64
	UnresolvedOwners      uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu                    sync.Mutex
	upstreamCalls         map[UpstreamKey]uint64
	upstreamDurationTotal time.Duration
	enrichments           map[string]uint64
	unresolvedOwners      uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		upstreamCalls: make(map[UpstreamKey]uint64),
		enrichments:   make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make(map[UpstreamKey]uint64, len(m.upstreamCalls))
	for k, v := range m.upstreamCalls {
		calls[k] = v
	}
	enrichments := make(map[string]uint64, len(m.enrichments))
	for k, v := range m.enrichments {
		enrichments[k] = v
	}

	return Snapshot{
		UpstreamCalls:         calls,
		UpstreamDurationTotal: m.upstreamDurationTotal,
		Enrichments:           enrichments,
		UnresolvedOwners:      m.unresolvedOwners,
	}
}

// ObserveUpstreamCall counts one upstream call and its duration.
func (m *InMemoryRecorder) ObserveUpstreamCall(service, operation, outcome string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upstreamCalls[UpstreamKey{Service: service, Operation: operation, Outcome: outcome}]++
	m.upstreamDurationTotal += duration
}

// IncEnrichment increments the enrichment counter for outcome.
func (m *InMemoryRecorder) IncEnrichment(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enrichments[outcome]++
}

// AddUnresolvedOwners adds to the unresolved owner counter.
func (m *InMemoryRecorder) AddUnresolvedOwners(count int) {
	if count <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unresolvedOwners += uint64(count)
}

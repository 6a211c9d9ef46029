package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestInMemoryRecorder_Counts(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.ObserveUpstreamCall("users", "list_all", OutcomeSuccess, 10*time.Millisecond)
	m.ObserveUpstreamCall("users", "list_all", OutcomeSuccess, 5*time.Millisecond)
	m.ObserveUpstreamCall("listings", "list", OutcomeStatusError, time.Millisecond)
	m.IncEnrichment(EnrichmentSuccess)
	m.IncEnrichment(EnrichmentFailed)
	m.AddUnresolvedOwners(3)
	m.AddUnresolvedOwners(0)

	snap := m.Snapshot()

	if got := snap.UpstreamCalls[UpstreamKey{"users", "list_all", OutcomeSuccess}]; got != 2 {
		t.Errorf("users list_all success = %d, want 2", got)
	}
	if got := snap.UpstreamCalls[UpstreamKey{"listings", "list", OutcomeStatusError}]; got != 1 {
		t.Errorf("listings list status_error = %d, want 1", got)
	}
	if snap.UpstreamDurationTotal != 16*time.Millisecond {
		t.Errorf("duration total = %s, want 16ms", snap.UpstreamDurationTotal)
	}
	if snap.Enrichments[EnrichmentSuccess] != 1 || snap.Enrichments[EnrichmentFailed] != 1 {
		t.Errorf("unexpected enrichments: %v", snap.Enrichments)
	}
	if snap.UnresolvedOwners != 3 {
		t.Errorf("unresolved owners = %d, want 3", snap.UnresolvedOwners)
	}
}

func TestInMemoryRecorder_SnapshotIsCopy(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncEnrichment(EnrichmentSuccess)

	snap := m.Snapshot()
	snap.Enrichments[EnrichmentSuccess] = 99

	if got := m.Snapshot().Enrichments[EnrichmentSuccess]; got != 1 {
		t.Errorf("snapshot mutation leaked into recorder: %d", got)
	}
}

func TestInMemoryRecorder_Concurrent(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.ObserveUpstreamCall("users", "create", OutcomeSuccess, time.Millisecond)
		}()
	}
	wg.Wait()

	if got := m.Snapshot().UpstreamCalls[UpstreamKey{"users", "create", OutcomeSuccess}]; got != 50 {
		t.Errorf("calls = %d, want 50", got)
	}
}

func TestNoopRecorder_ImplementsRecorder(t *testing.T) {
	t.Parallel()

	r := NewNoop()
	r.ObserveUpstreamCall("users", "ping", OutcomeSuccess, time.Millisecond)
	r.IncEnrichment(EnrichmentSuccess)
	r.AddUnresolvedOwners(1)
}

func TestPrometheusRecorder_ServesMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)
	p.ObserveUpstreamCall("listings", "list", OutcomeSuccess, 20*time.Millisecond)
	p.IncEnrichment(EnrichmentSuccess)
	p.AddUnresolvedOwners(2)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	expected := []string{
		`listhub_upstream_requests_total{operation="list",outcome="success",service="listings"} 1`,
		`listhub_upstream_request_duration_seconds_count{operation="list",service="listings"} 1`,
		`listhub_enrichments_total{outcome="success"} 1`,
		`listhub_enrichment_unresolved_owners_total 2`,
	}
	for _, want := range expected {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNewPrometheus_DuplicateRegistrationPanics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_ = NewPrometheus(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	_ = NewPrometheus(reg)
}

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBackend is a simple in-memory Backend implementation for tests.
type fakeBackend struct {
	mu sync.Mutex

	counters   []call
	histograms []call
	gauges     []call
	flushCount int
}

type call struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = append(f.counters, call{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histograms = append(f.histograms, call{name, value, labels})
}

func (f *fakeBackend) SetGauge(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gauges = append(f.gauges, call{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCount++
	return nil
}

func swap(t *testing.T) *fakeBackend {
	t.Helper()
	orig := backend
	t.Cleanup(func() { backend = orig })
	fb := &fakeBackend{}
	backend = fb
	return fb
}

func TestRecordStep_SuccessAndFailure(t *testing.T) {
	fb := swap(t)

	RecordStep("sales", "ingest", nil, 2*time.Second)
	RecordStep("sales", "load", errors.New("boom"), 1500*time.Millisecond)

	if len(fb.counters) != 2 || len(fb.histograms) != 2 {
		t.Fatalf("got %d counters, %d histograms; want 2, 2", len(fb.counters), len(fb.histograms))
	}

	c0 := fb.counters[0]
	if c0.name != StepTotal || c0.value != 1 {
		t.Fatalf("counter[0] = %#v", c0)
	}
	if c0.labels["job"] != "sales" || c0.labels["step"] != "ingest" || c0.labels["status"] != "success" {
		t.Fatalf("counter[0].labels = %v", c0.labels)
	}
	if h0 := fb.histograms[0]; h0.name != StepDuration || h0.value < 1.999 || h0.value > 2.001 {
		t.Fatalf("hist[0] = %#v; want ~2s", h0)
	}

	if fb.counters[1].labels["status"] != "failure" {
		t.Fatalf("counter[1].labels[status] = %q; want failure", fb.counters[1].labels["status"])
	}
	if h1 := fb.histograms[1]; h1.value < 1.499 || h1.value > 1.501 {
		t.Fatalf("hist[1].value = %v; want ~1.5", h1.value)
	}
}

func TestRecordCounters(t *testing.T) {
	fb := swap(t)

	RecordRows("sales", "ingested", 3)
	RecordRows("sales", "ingested", 0) // ignored
	RecordRejected("sales", "quantity", 2)
	RecordRejected("sales", "discount", -1) // ignored
	RecordInserted("sales", "orders", 5)
	RecordBatches("sales", "orders", 1)

	want := []call{
		{RowsTotal, 3, Labels{"job": "sales", "kind": "ingested"}},
		{RejectedTotal, 2, Labels{"job": "sales", "rule": "quantity"}},
		{InsertedTotal, 5, Labels{"job": "sales", "table": "orders"}},
		{BatchesTotal, 1, Labels{"job": "sales", "table": "orders"}},
	}
	if len(fb.counters) != len(want) {
		t.Fatalf("got %d counter calls, want %d: %#v", len(fb.counters), len(want), fb.counters)
	}
	for i, w := range want {
		got := fb.counters[i]
		if got.name != w.name || got.value != w.value {
			t.Fatalf("counter[%d] = %#v, want %#v", i, got, w)
		}
		for k, v := range w.labels {
			if got.labels[k] != v {
				t.Fatalf("counter[%d].labels[%s] = %q, want %q", i, k, got.labels[k], v)
			}
		}
	}
}

func TestRecordOrphans_ReportsZero(t *testing.T) {
	fb := swap(t)

	RecordOrphans("sales", "order_items_orders", 0)
	if len(fb.gauges) != 1 || fb.gauges[0].name != IntegrityOrphan || fb.gauges[0].value != 0 {
		t.Fatalf("gauges = %#v", fb.gauges)
	}
}

func TestSetBackendAndFlush(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	SetBackend(fb)
	if backend != fb {
		t.Fatal("SetBackend did not replace global backend")
	}
	if err := Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}
	if fb.flushCount != 1 {
		t.Fatalf("expected flushCount=1, got %d", fb.flushCount)
	}

	SetBackend(nil)
	if backend != fb {
		t.Fatal("SetBackend(nil) should not change backend")
	}
}

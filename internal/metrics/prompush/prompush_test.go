package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"salesetl/internal/metrics"
)

// readCounterValue reads the current value of a Counter for assertions in tests.
func readCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("Counter.Write() error = %v", err)
	}
	return m.GetCounter().GetValue()
}

func readGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()

	m := &dto.Metric{}
	if err := g.Write(m); err != nil {
		t.Fatalf("Gauge.Write() error = %v", err)
	}
	return m.GetGauge().GetValue()
}

// TestNewBackend validates defaults and required inputs.
func TestNewBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		jobName     string
		gatewayURL  string
		wantErr     bool
		wantJobName string
	}{
		{name: "missing gateway URL returns error", jobName: "sales", wantErr: true},
		{name: "empty job name uses default", gatewayURL: "http://pushgateway:9091", wantJobName: "salesetl"},
		{name: "explicit job name is preserved", jobName: "nightly", gatewayURL: "http://pushgateway:9091", wantJobName: "nightly"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := NewBackend(tt.jobName, tt.gatewayURL)
			if tt.wantErr {
				if err == nil || b != nil {
					t.Fatalf("NewBackend(%q, %q) = %v, %v; want nil, error", tt.jobName, tt.gatewayURL, b, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewBackend(%q, %q) error = %v", tt.jobName, tt.gatewayURL, err)
			}
			if b.jobName != tt.wantJobName {
				t.Fatalf("backend.jobName = %q, want %q", b.jobName, tt.wantJobName)
			}
		})
	}
}

// TestIncCounter verifies that IncCounter routes updates to the correct
// collectors and ignores unknown metric names.
func TestIncCounter(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("sales", "http://example.com")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}

	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"job": "sales", "step": "load", "status": "success"})
	b.IncCounter(metrics.RowsTotal, 10, metrics.Labels{"kind": "ingested"})
	b.IncCounter(metrics.RejectedTotal, 2, metrics.Labels{"rule": "quantity"})
	b.IncCounter(metrics.InsertedTotal, 4, metrics.Labels{"table": "orders"})
	b.IncCounter(metrics.BatchesTotal, 1, metrics.Labels{"table": "orders"})
	b.IncCounter(metrics.BatchesTotal, 1, metrics.Labels{"table": "orders"})
	b.IncCounter("unknown_metric", 99, metrics.Labels{"table": "orders"})

	checks := []struct {
		name string
		c    prometheus.Counter
		want float64
	}{
		{"step", b.stepCounter.WithLabelValues("load", "success"), 1},
		{"rows", b.rowCounter.WithLabelValues("ingested"), 10},
		{"rejected", b.rejected.WithLabelValues("quantity"), 2},
		{"inserted", b.inserted.WithLabelValues("orders"), 4},
		{"batches", b.batches.WithLabelValues("orders"), 2},
	}
	for _, c := range checks {
		if got := readCounterValue(t, c.c); got != c.want {
			t.Fatalf("%s counter = %v, want %v", c.name, got, c.want)
		}
	}
}

// TestNilCollectors ensures a zero-value Backend does not panic.
func TestNilCollectors(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"step": "s", "status": "success"})
	b.IncCounter(metrics.RowsTotal, 1, metrics.Labels{"kind": "ingested"})
	b.ObserveHistogram(metrics.StepDuration, 1, metrics.Labels{})
	b.SetGauge(metrics.IntegrityOrphan, 1, metrics.Labels{})
}

// TestSetGauge verifies the last value wins for an orphan check.
func TestSetGauge(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("sales", "http://example.com")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	b.SetGauge(metrics.IntegrityOrphan, 3, metrics.Labels{"check": "orders_customers"})
	b.SetGauge(metrics.IntegrityOrphan, 0, metrics.Labels{"check": "orders_customers"})
	b.SetGauge("other", 5, metrics.Labels{"check": "orders_customers"})

	if got := readGaugeValue(t, b.orphans.WithLabelValues("orders_customers")); got != 0 {
		t.Fatalf("orphans gauge = %v, want 0", got)
	}
}

// TestFlush verifies that Flush pushes the registry to the Pushgateway
// under the job's grouping key.
func TestFlush(t *testing.T) {
	t.Parallel()

	type pushRequestInfo struct {
		method string
		path   string
		body   string
	}
	reqCh := make(chan pushRequestInfo, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		body, _ := io.ReadAll(r.Body)
		reqCh <- pushRequestInfo{method: r.Method, path: r.URL.Path, body: string(body)}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	b, err := NewBackend("nightly", server.URL)
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	b.IncCounter(metrics.RowsTotal, 1, metrics.Labels{"kind": "ingested"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var got pushRequestInfo
	select {
	case got = <-reqCh:
	default:
		t.Fatalf("Flush() did not result in any HTTP request to the Pushgateway")
	}
	if got.method != http.MethodPut {
		t.Fatalf("push method = %q, want PUT", got.method)
	}
	if !strings.Contains(got.path, "/job/nightly") {
		t.Fatalf("push path = %q, want job grouping", got.path)
	}
	if len(got.body) == 0 {
		t.Fatalf("push body is empty")
	}
}

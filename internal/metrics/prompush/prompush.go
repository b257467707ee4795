// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package. A batch run has no scrape endpoint, so collected metrics
// are pushed once at the end of the run by Flush.
//
// The job label is dropped from every series because it is the Pushgateway
// grouping key.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"salesetl/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stepCounter  *prometheus.CounterVec // step, status
	stepDuration *prometheus.SummaryVec // step, status
	rowCounter   *prometheus.CounterVec // kind
	rejected     *prometheus.CounterVec // rule
	inserted     *prometheus.CounterVec // table
	batches      *prometheus.CounterVec // table
	orphans      *prometheus.GaugeVec   // check
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name; defaults to "salesetl".
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "salesetl"
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        prometheus.NewRegistry(),
		stepCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Pipeline step executions, partitioned by step and status.",
		}, []string{"step", "status"}),
		stepDuration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       metrics.StepDuration,
			Help:       "Duration of pipeline steps in seconds, partitioned by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"step", "status"}),
		rowCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.RowsTotal,
			Help: "Rows seen per stage (ingested, cleaned, valid, rejected).",
		}, []string{"kind"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.RejectedTotal,
			Help: "Rows dropped by business rules, partitioned by rule.",
		}, []string{"rule"}),
		inserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.InsertedTotal,
			Help: "Rows inserted, partitioned by table.",
		}, []string{"table"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.BatchesTotal,
			Help: "Insert batches flushed, partitioned by table.",
		}, []string{"table"}),
		orphans: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: metrics.IntegrityOrphan,
			Help: "Rows violating a referential check after the last load.",
		}, []string{"check"}),
	}

	for name, c := range map[string]prometheus.Collector{
		"step counter":  b.stepCounter,
		"step summary":  b.stepDuration,
		"row counter":   b.rowCounter,
		"rejected":      b.rejected,
		"inserted":      b.inserted,
		"batches":       b.batches,
		"orphans gauge": b.orphans,
	} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}
	return b, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	var (
		vec *prometheus.CounterVec
		lv  []string
	)
	switch name {
	case metrics.StepTotal:
		vec, lv = b.stepCounter, []string{labels["step"], labels["status"]}
	case metrics.RowsTotal:
		vec, lv = b.rowCounter, []string{labels["kind"]}
	case metrics.RejectedTotal:
		vec, lv = b.rejected, []string{labels["rule"]}
	case metrics.InsertedTotal:
		vec, lv = b.inserted, []string{labels["table"]}
	case metrics.BatchesTotal:
		vec, lv = b.batches, []string{labels["table"]}
	default:
		return
	}
	if vec == nil {
		return
	}
	vec.WithLabelValues(lv...).Add(delta)
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDuration || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

func (b *Backend) SetGauge(name string, value float64, labels metrics.Labels) {
	if name != metrics.IntegrityOrphan || b.orphans == nil {
		return
	}
	b.orphans.WithLabelValues(labels["check"]).Set(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}

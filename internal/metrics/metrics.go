// Package metrics records operational metrics for a pipeline run behind a
// small pluggable Backend. The default backend is a no-op, so every Record*
// function is always safe to call.
//
// Concrete systems live in subpackages (prompush, datadog) and are installed
// with SetBackend by the process entry point.
package metrics

import "time"

// Metric names emitted by the Record* helpers.
const (
	StepTotal       = "salesetl_step_total"
	StepDuration    = "salesetl_step_duration_seconds"
	RowsTotal       = "salesetl_rows_total"
	RejectedTotal   = "salesetl_rejected_rows_total"
	InsertedTotal   = "salesetl_inserted_rows_total"
	BatchesTotal    = "salesetl_batches_total"
	IntegrityOrphan = "salesetl_integrity_orphans"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// SetGauge records the current value of a gauge.
	SetGauge(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) SetGauge(name string, value float64, labels Labels)         {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep counts one execution of a pipeline step and observes its
// duration, labeled with success or failure.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}
	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRows increments the row counter for a stage, e.g. "ingested",
// "cleaned", "valid" or "rejected".
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{"job": job, "kind": kind})
}

// RecordRejected counts rows dropped by a business rule.
func RecordRejected(job, rule string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RejectedTotal, float64(delta), Labels{"job": job, "rule": rule})
}

// RecordInserted counts rows written to a table.
func RecordInserted(job, table string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(InsertedTotal, float64(delta), Labels{"job": job, "table": table})
}

// RecordBatches counts insert batches flushed to a table.
func RecordBatches(job, table string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(BatchesTotal, float64(delta), Labels{"job": job, "table": table})
}

// RecordOrphans reports the result of one referential integrity check.
func RecordOrphans(job, check string, n int64) {
	backend.SetGauge(IntegrityOrphan, float64(n), Labels{"job": job, "check": check})
}

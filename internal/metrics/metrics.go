// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics of a userclean run.
//
// Backend is the narrow interface concrete metric systems implement; the
// Pushgateway implementation lives in the prompush subpackage. Code outside
// this package records through a Recorder, which defaults to a no-op backend
// so instrumentation is always safe to call.
package metrics

import (
	"time"

	"github.com/nao1215/userclean/internal/model"
)

// Metric names shared by the Recorder and concrete backends.
const (
	StepTotal           = "userclean_step_total"
	StepDurationSeconds = "userclean_step_duration_seconds"
	RecordsTotal        = "userclean_records_total"
	ChunksTotal         = "userclean_chunks_total"
)

// Record kinds reported under RecordsTotal.
const (
	KindInput    = "input"
	KindAccepted = "accepted"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// NopBackend discards everything.
type NopBackend struct{}

func (NopBackend) IncCounter(string, float64, Labels)       {}
func (NopBackend) ObserveHistogram(string, float64, Labels) {}
func (NopBackend) Flush() error                             { return nil }

// Recorder records run metrics for one job on a backend.
type Recorder struct {
	backend Backend
	job     string
}

// NewRecorder creates a recorder. A nil backend records nothing.
func NewRecorder(backend Backend, job string) *Recorder {
	if backend == nil {
		backend = NopBackend{}
	}
	return &Recorder{backend: backend, job: job}
}

// Job returns the job name the recorder labels metrics with.
func (r *Recorder) Job() string {
	return r.job
}

// RecordStep measures latency and success or failure of a pipeline step.
// Its signature matches pipeline.StepObserver.
func (r *Recorder) RecordStep(step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    r.job,
		"step":   step,
		"status": status,
	}

	r.backend.IncCounter(StepTotal, 1, lbls)
	r.backend.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRecords increments the record counter for kind.
// Non-positive deltas are ignored.
func (r *Recorder) RecordRecords(kind string, delta int) {
	if delta <= 0 {
		return
	}
	r.backend.IncCounter(RecordsTotal, float64(delta), Labels{
		"job":  r.job,
		"kind": kind,
	})
}

// RecordChunks increments the chunk counter.
func (r *Recorder) RecordChunks(delta int) {
	if delta <= 0 {
		return
	}
	r.backend.IncCounter(ChunksTotal, float64(delta), Labels{
		"job": r.job,
	})
}

// RecordResult reports the record counts of a finished aggregation.
// Rejections are reported per reason as kind "rejected_<reason>".
func (r *Recorder) RecordResult(res *model.PipelineResult, chunks int) {
	if res == nil {
		return
	}
	r.RecordRecords(KindInput, res.Input)
	r.RecordRecords(KindAccepted, res.Accepted())
	for _, reason := range model.RejectReasons {
		r.RecordRecords("rejected_"+reason.String(), res.Rejections.Get(reason))
	}
	r.RecordChunks(chunks)
}

// Flush delegates to the backend.
func (r *Recorder) Flush() error {
	return r.backend.Flush()
}

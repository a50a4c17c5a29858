// Package metrics instruments the transform pipeline with Prometheus
// collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/gqlc/internal/diag"
)

// Stage outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeDiagnostics = "diagnostics"
	OutcomeError       = "error"
)

// Recorder holds the pipeline collectors. A nil *Recorder records nothing.
type Recorder struct {
	StageTotal    *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	Diagnostics   *prometheus.CounterVec
}

// New creates a Recorder and registers its collectors with reg. A nil reg
// leaves them unregistered.
func New(reg prometheus.Registerer) *Recorder {
	const namespace = "gqlc"

	r := &Recorder{
		StageTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transform",
			Name:      "stage_total",
			Help:      "Count of transform stage runs by outcome",
		}, []string{"stage", "outcome"}),

		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "transform",
			Name:      "stage_duration_seconds",
			Help:      "Histogram of time spent in each transform stage",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 5, 8),
		}, []string{"stage"}),

		Diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Count of diagnostics reported by code",
		}, []string{"code"}),
	}
	if reg != nil {
		reg.MustRegister(r.Collectors()...)
	}
	return r
}

// Collectors returns every collector owned by r.
func (r *Recorder) Collectors() []prometheus.Collector {
	return []prometheus.Collector{r.StageTotal, r.StageDuration, r.Diagnostics}
}

// ObserveStage records one stage run.
func (r *Recorder) ObserveStage(stage, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.StageTotal.WithLabelValues(stage, outcome).Inc()
	r.StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// ObserveDiagnostics counts ds by code.
func (r *Recorder) ObserveDiagnostics(ds diag.Diagnostics) {
	if r == nil {
		return
	}
	for _, d := range ds {
		r.Diagnostics.WithLabelValues(string(d.Code)).Inc()
	}
}

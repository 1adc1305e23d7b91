// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// It adapts the generic metrics.Backend interface to Prometheus by
// mapping the pipeline labels (job, stage, status, kind) onto
// client_golang collectors and pushing them to a Pushgateway instead of
// exposing a scrape endpoint, appropriate for a batch job that exits
// when the run is done. All Prometheus-specific dependencies stay inside
// this package.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"olistdw/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string
	jobName    string
	reg        *prometheus.Registry

	stageCounter  *prometheus.CounterVec // pipeline_stage_total
	stageDuration *prometheus.SummaryVec // pipeline_stage_duration_seconds
	rowCounter    *prometheus.CounterVec // pipeline_rows_total
}

// NewBackend constructs a Pushgateway backend. jobName becomes the
// Pushgateway "job" grouping key.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "olistdw"
	}

	reg := prometheus.NewRegistry()

	stageCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_stage_total",
			Help: "Pipeline stage executions, partitioned by job, stage, and status.",
		},
		[]string{"job", "stage", "status"},
	)
	stageDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "pipeline_stage_duration_seconds",
			Help: "Pipeline stage durations in seconds.",
		},
		[]string{"job", "stage", "status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_rows_total",
			Help: "Rows processed, partitioned by job, stage, and kind.",
		},
		[]string{"job", "stage", "kind"},
	)

	reg.MustRegister(stageCounter, stageDuration, rowCounter)

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		stageCounter:  stageCounter,
		stageDuration: stageDuration,
		rowCounter:    rowCounter,
	}, nil
}

// IncCounter implements metrics.Backend.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "pipeline_stage_total":
		b.stageCounter.With(prometheus.Labels{
			"job":    labels["job"],
			"stage":  labels["stage"],
			"status": labels["status"],
		}).Add(delta)
	case "pipeline_rows_total":
		b.rowCounter.With(prometheus.Labels{
			"job":   labels["job"],
			"stage": labels["stage"],
			"kind":  labels["kind"],
		}).Add(delta)
	}
	// Unknown counters are ignored rather than panicking mid-run.
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "pipeline_stage_duration_seconds" {
		return
	}
	b.stageDuration.With(prometheus.Labels{
		"job":    labels["job"],
		"stage":  labels["stage"],
		"status": labels["status"],
	}).Observe(value)
}

// Flush pushes the collected metrics to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).Gatherer(b.reg).Push()
}

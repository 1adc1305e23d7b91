package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBackend captures calls for assertions.
type recordingBackend struct {
	counters   []recordedMetric
	histograms []recordedMetric
}

type recordedMetric struct {
	name   string
	value  float64
	labels Labels
}

func (r *recordingBackend) IncCounter(name string, delta float64, labels Labels) {
	r.counters = append(r.counters, recordedMetric{name, delta, labels})
}

func (r *recordingBackend) ObserveHistogram(name string, value float64, labels Labels) {
	r.histograms = append(r.histograms, recordedMetric{name, value, labels})
}

func (r *recordingBackend) Flush() error { return nil }

func withBackend(t *testing.T, b Backend) {
	t.Helper()
	prev := backend
	SetBackend(b)
	t.Cleanup(func() { backend = prev })
}

func TestRecordStage(t *testing.T) {
	rec := &recordingBackend{}
	withBackend(t, rec)

	RecordStage("job", "clean_orders", nil, 250*time.Millisecond)
	RecordStage("job", "clean_orders", errors.New("boom"), time.Second)

	require.Len(t, rec.counters, 2)
	assert.Equal(t, "pipeline_stage_total", rec.counters[0].name)
	assert.Equal(t, "success", rec.counters[0].labels["status"])
	assert.Equal(t, "failure", rec.counters[1].labels["status"])

	require.Len(t, rec.histograms, 2)
	assert.Equal(t, "pipeline_stage_duration_seconds", rec.histograms[0].name)
	assert.InDelta(t, 0.25, rec.histograms[0].value, 1e-9)
}

func TestRecordRows(t *testing.T) {
	rec := &recordingBackend{}
	withBackend(t, rec)

	RecordRows("job", "clean_orders", "kept", 96478)
	RecordRows("job", "clean_orders", "kept", 0)
	RecordRows("job", "clean_orders", "kept", -5)

	require.Len(t, rec.counters, 1, "non-positive deltas are dropped")
	assert.Equal(t, float64(96478), rec.counters[0].value)
	assert.Equal(t, "kept", rec.counters[0].labels["kind"])
}

func TestSetBackendNilKeepsCurrent(t *testing.T) {
	rec := &recordingBackend{}
	withBackend(t, rec)

	SetBackend(nil)
	RecordRows("job", "s", "read", 1)
	assert.Len(t, rec.counters, 1)
}

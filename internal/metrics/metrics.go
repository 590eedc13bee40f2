// Package metrics records warp run statistics in a Prometheus registry that can be
// exported to a node_exporter textfile at the end of a batch run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sample outcomes.
const (
	OutcomeInterpolated = "interpolated"
	OutcomeClamped      = "clamped"
	OutcomeFilled       = "filled"
	OutcomeSkipped      = "skipped"
)

// Recorder holds the run metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	cellsTotal    *prometheus.CounterVec
	samplesTotal  *prometheus.CounterVec
	rastersTotal  *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	fieldPixels   prometheus.Gauge
}

// New creates a Recorder backed by its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		cellsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridwarp_cells_total",
				Help: "Number of grid cells processed",
			},
			[]string{"status"}, // status: solved, singular
		),
		samplesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridwarp_samples_total",
				Help: "Number of output samples by resampling outcome",
			},
			[]string{"outcome"},
		),
		rastersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridwarp_rasters_total",
				Help: "Number of rasters warped",
			},
			[]string{"status"}, // status: success, error
		),
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gridwarp_stage_duration_seconds",
				Help:    "Duration of warp stages in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"stage"}, // stage: field, resample, load, save
		),
		fieldPixels: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "gridwarp_field_pixels",
				Help: "Number of entries in the coordinate field",
			},
		),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RecordCells adds solved and singular cell counts.
func (r *Recorder) RecordCells(solved, singular int) {
	if r == nil {
		return
	}
	r.cellsTotal.WithLabelValues("solved").Add(float64(solved))
	r.cellsTotal.WithLabelValues("singular").Add(float64(singular))
}

// RecordSamples adds n samples with the given outcome.
func (r *Recorder) RecordSamples(outcome string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.samplesTotal.WithLabelValues(outcome).Add(float64(n))
}

// RecordRaster counts one warped raster.
func (r *Recorder) RecordRaster(err error) {
	if r == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	r.rastersTotal.WithLabelValues(status).Inc()
}

// SetFieldPixels records the size of the coordinate field.
func (r *Recorder) SetFieldPixels(n int) {
	if r == nil {
		return
	}
	r.fieldPixels.Set(float64(n))
}

// ObserveStage records the duration of a stage.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// WriteTextfile writes the registry in the Prometheus text format, suitable for the
// node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}

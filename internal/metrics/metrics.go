// Package metrics records run gauges and flushes them for the node_exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dietloom"

// Recorder holds the gauges of one run.
type Recorder struct {
	reg          *prometheus.Registry
	records      *prometheus.GaugeVec
	dietTypes    prometheus.Gauge
	stageSeconds *prometheus.GaugeVec
	stageFailed  *prometheus.GaugeVec
	lastSuccess  prometheus.Gauge
}

// NewRecorder registers the run gauges on a private registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Records seen in the last run by kind (loaded, cleaned, excluded).",
		}, []string{"kind"}),
		dietTypes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "diet_types",
			Help:      "Distinct diet types in the last run.",
		}),
		stageSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each stage in the last run.",
		}, []string{"stage"}),
		stageFailed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_failed",
			Help:      "1 when the stage failed in the last run.",
		}, []string{"stage"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}
	r.reg.MustRegister(r.records, r.dietTypes, r.stageSeconds, r.stageFailed, r.lastSuccess)
	return r
}

// ObserveStage records the duration and outcome of a stage.
func (r *Recorder) ObserveStage(stage string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.stageSeconds.WithLabelValues(stage).Set(d.Seconds())
	failed := 0.0
	if err != nil {
		failed = 1
	}
	r.stageFailed.WithLabelValues(stage).Set(failed)
}

// SetCounts records table sizes.
func (r *Recorder) SetCounts(loaded, cleaned, dietTypes int) {
	if r == nil {
		return
	}
	r.records.WithLabelValues("loaded").Set(float64(loaded))
	r.records.WithLabelValues("cleaned").Set(float64(cleaned))
	r.records.WithLabelValues("excluded").Set(float64(loaded - cleaned))
	r.dietTypes.Set(float64(dietTypes))
}

// MarkSuccess stamps the completion time.
func (r *Recorder) MarkSuccess(t time.Time) {
	if r == nil {
		return
	}
	r.lastSuccess.Set(float64(t.Unix()))
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer { return r.reg }

// WriteTextfile writes the gauges in text exposition format to path.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}

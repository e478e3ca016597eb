// Package metrics holds the prometheus collectors of a pipeline run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "media2text"

// File outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
	OutcomeImported  = "imported"
)

// Metrics is registered on its own registry so runs and tests stay isolated.
type Metrics struct {
	Registry *prometheus.Registry

	Files                 *prometheus.CounterVec
	Segments              *prometheus.CounterVec
	GenerationAttempts    *prometheus.CounterVec
	NormalizationFallback prometheus.Counter
	StageDuration         *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Media files handled, by outcome.",
		}, []string{"outcome"}),
		Segments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_total",
			Help:      "Audio segments, by result (transcribed or skipped).",
		}, []string{"result"}),
		GenerationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_attempts_total",
			Help:      "Normalization requests sent to the text generator, by result.",
		}, []string{"result"}),
		NormalizationFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalization_fallbacks_total",
			Help:      "Chunks kept as raw text after every generation attempt failed.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent per pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}, []string{"stage"}),
	}
	m.Registry.MustRegister(m.Files, m.Segments, m.GenerationAttempts, m.NormalizationFallback, m.StageDuration)
	return m
}

// ObserveStage records the time elapsed since start for stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func (m *Metrics) FileOutcome(outcome string) {
	if m == nil {
		return
	}
	m.Files.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Segment(result string) {
	if m == nil {
		return
	}
	m.Segments.WithLabelValues(result).Inc()
}

func (m *Metrics) GenerationAttempt(ok bool) {
	if m == nil {
		return
	}
	result := "error"
	if ok {
		result = "ok"
	}
	m.GenerationAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) Fallback() {
	if m == nil {
		return
	}
	m.NormalizationFallback.Inc()
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}

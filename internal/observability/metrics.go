// Package observability provides Prometheus metrics for the scan pipeline.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry

	PredictionTotal    *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	NotificationsSent  prometheus.Counter
	InferenceDuration  prometheus.Histogram
	ModelLoadedGauge   prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all collectors registered on
// a private registry.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		PredictionTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "counterfront_predictions_total",
				Help: "Total number of prediction requests partitioned by result.",
			},
			[]string{"result"},
		),
		ValidationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "counterfront_validation_failures_total",
				Help: "Total number of rejected uploads partitioned by reason.",
			},
			[]string{"reason"},
		),
		NotificationsSent: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "counterfront_notifications_sent_total",
				Help: "Total number of counterfeit alerts dispatched.",
			},
		),
		InferenceDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "counterfront_inference_duration_seconds",
				Help:    "Time spent in classifier inference.",
				Buckets: prometheus.DefBuckets,
			},
		),
		ModelLoadedGauge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "counterfront_model_loaded",
				Help: "Whether the classifier model is loaded (1) or not (0).",
			},
		),
	}

	collectors := []prometheus.Collector{
		m.PredictionTotal,
		m.ValidationFailures,
		m.NotificationsSent,
		m.InferenceDuration,
		m.ModelLoadedGauge,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics collector: %w", err)
		}
	}

	// A CounterVec exposes no series until a label value is first used, so
	// seed the known labels to make the counters scrapeable from startup.
	for _, result := range []string{"authentic", "counterfeit", "error"} {
		m.PredictionTotal.WithLabelValues(result)
	}
	for _, reason := range []string{"file", "extension", "size", "coordinates", "other"} {
		m.ValidationFailures.WithLabelValues(reason)
	}

	return m, nil
}

// Handler returns an http.Handler serving the metrics in Prometheus format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordPrediction increments the prediction counter for the given result,
// one of "authentic", "counterfeit" or "error".
func (m *Metrics) RecordPrediction(result string) {
	if m == nil {
		return
	}
	m.PredictionTotal.WithLabelValues(result).Inc()
}

// RecordValidationFailure increments the rejected-upload counter.
func (m *Metrics) RecordValidationFailure(reason string) {
	if m == nil {
		return
	}
	m.ValidationFailures.WithLabelValues(reason).Inc()
}

// RecordNotification increments the dispatched-alert counter.
func (m *Metrics) RecordNotification() {
	if m == nil {
		return
	}
	m.NotificationsSent.Inc()
}

// ObserveInference records the duration of one inference call in seconds.
func (m *Metrics) ObserveInference(seconds float64) {
	if m == nil {
		return
	}
	m.InferenceDuration.Observe(seconds)
}

// SetModelLoaded records whether the classifier is usable.
func (m *Metrics) SetModelLoaded(loaded bool) {
	if m == nil {
		return
	}
	if loaded {
		m.ModelLoadedGauge.Set(1)
	} else {
		m.ModelLoadedGauge.Set(0)
	}
}

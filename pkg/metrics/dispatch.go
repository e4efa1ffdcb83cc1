package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics records invoice render/delivery outcomes per channel.
type DispatchMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewDispatchMetrics registers the dispatch metrics on the provided registerer.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	if reg == nil {
		return &DispatchMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "invoice_dispatch_duration_seconds",
		Help:    "Duration of invoice render and delivery in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"channel"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invoice_dispatch_success",
		Help: "Successful invoice deliveries.",
	}, []string{"channel"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invoice_dispatch_failure",
		Help: "Failed invoice deliveries.",
	}, []string{"channel"})
	reg.MustRegister(duration, success, failure)
	return &DispatchMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named delivery channel.
func (d *DispatchMetrics) ObserveDuration(channel string, duration time.Duration) {
	if d == nil || d.duration == nil {
		return
	}
	d.duration.WithLabelValues(normalizeLabel(channel)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named channel.
func (d *DispatchMetrics) IncSuccess(channel string) {
	if d == nil || d.success == nil {
		return
	}
	d.success.WithLabelValues(normalizeLabel(channel)).Inc()
}

// IncFailure increments the failure counter for the named channel.
func (d *DispatchMetrics) IncFailure(channel string) {
	if d == nil || d.failure == nil {
		return
	}
	d.failure.WithLabelValues(normalizeLabel(channel)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

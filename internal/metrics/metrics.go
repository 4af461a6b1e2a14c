// Package metrics records reconciler and provider API metrics with
// Prometheus and writes them to a node-exporter textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "nodefleet"

// Recorder owns a registry and the collectors registered in it. A nil
// *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	reconcileTotal    *prometheus.CounterVec
	reconcileDuration *prometheus.HistogramVec
	instancesTotal    *prometheus.GaugeVec
	apiCallsTotal     *prometheus.CounterVec
	apiLatency        *prometheus.HistogramVec
}

// NewRecorder creates a recorder with a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		reconcileTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reconciler",
				Name:      "operations_total",
				Help:      "Total number of reconciler operations by result",
			},
			[]string{"cluster", "operation", "result"},
		),

		reconcileDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "reconciler",
				Name:      "operation_duration_seconds",
				Help:      "Duration of reconciler operations in seconds",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~34min
			},
			[]string{"cluster", "operation"},
		),

		instancesTotal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "cluster",
				Name:      "instances",
				Help:      "Number of observed instances by status",
			},
			[]string{"cluster", "status"},
		),

		apiCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "provider",
				Name:      "api_calls_total",
				Help:      "Total number of provider API calls by operation and result",
			},
			[]string{"provider", "operation", "result"},
		),

		apiLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "provider",
				Name:      "api_latency_seconds",
				Help:      "Latency of provider API calls in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
			},
			[]string{"provider", "operation"},
		),
	}

	r.registry.MustRegister(
		r.reconcileTotal,
		r.reconcileDuration,
		r.instancesTotal,
		r.apiCallsTotal,
		r.apiLatency,
	)
	return r
}

// Registry returns the registry holding every collector.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RecordOperation records a caller-facing operation and its duration.
func (r *Recorder) RecordOperation(cluster, operation string, err error, duration time.Duration) {
	if r == nil {
		return
	}
	r.reconcileTotal.WithLabelValues(cluster, operation, result(err)).Inc()
	r.reconcileDuration.WithLabelValues(cluster, operation).Observe(duration.Seconds())
}

// RecordInstances sets the observed instance count per status.
func (r *Recorder) RecordInstances(cluster string, counts map[string]int) {
	if r == nil {
		return
	}
	r.instancesTotal.DeletePartialMatch(prometheus.Labels{"cluster": cluster})
	for st, n := range counts {
		r.instancesTotal.WithLabelValues(cluster, st).Set(float64(n))
	}
}

// RecordAPICall records a provider API call.
func (r *Recorder) RecordAPICall(providerName, operation string, err error, latency time.Duration) {
	if r == nil {
		return
	}
	r.apiCallsTotal.WithLabelValues(providerName, operation, result(err)).Inc()
	r.apiLatency.WithLabelValues(providerName, operation).Observe(latency.Seconds())
}

// WriteTextfile writes every metric to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "building_management"

var (
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route template, method and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})

	LifecycleTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lifecycle_transitions_total",
		Help:      "Committed lifecycle transitions by entity type, action and whether they were cascaded.",
	}, []string{"entity", "action", "cascade"})

	LifecycleRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lifecycle_rejections_total",
		Help:      "Lifecycle operations refused with a typed error, by entity type, action and error kind.",
	}, []string{"entity", "action", "kind"})

	PurgedRecords = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "retention_purged_total",
		Help:      "Soft-deleted records permanently removed by the retention job.",
	}, []string{"entity"})
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{HTTPRequestDuration, LifecycleTransitions, LifecycleRejections, PurgedRecords} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

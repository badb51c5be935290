// Package metrics exposes Prometheus collectors for repository calls,
// tenant syncs and ownership transfers.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ownership"

type Collector struct {
	registry *prometheus.Registry

	// Repository service calls
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	// Sync
	syncsTotal     *prometheus.CounterVec
	syncDuration   *prometheus.HistogramVec
	syncObjects    *prometheus.GaugeVec
	lastSyncUnixTS *prometheus.GaugeVec

	// Transfer
	transfersTotal *prometheus.CounterVec
}

// NewCollector registers every collector on a fresh registry together
// with the Go runtime and process collectors.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := &Collector{
		registry: reg,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "qrs_requests_total",
			Help:      "Repository service requests by method, entity type and status code",
		}, []string{"method", "entity", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "qrs_request_duration_seconds",
			Help:      "Repository service request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "entity"}),
		syncsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "syncs_total",
			Help:      "Tenant syncs by result",
		}, []string{"tenant", "result"}),
		syncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of tenant syncs",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"tenant"}),
		syncObjects: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_objects",
			Help:      "Objects written by the last successful sync",
		}, []string{"tenant"}),
		lastSyncUnixTS: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_successful_sync_timestamp_seconds",
			Help:      "Unix time of the last successful sync",
		}, []string{"tenant"}),
		transfersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "object_transfers_total",
			Help:      "Per-object ownership transfer outcomes",
		}, []string{"tenant", "outcome"}),
	}

	reg.MustRegister(
		c.requestsTotal, c.requestDuration,
		c.syncsTotal, c.syncDuration, c.syncObjects, c.lastSyncUnixTS,
		c.transfersTotal,
	)
	return c
}

// ObserveRequest records one repository call. Status 0 means the request
// failed below HTTP.
func (c *Collector) ObserveRequest(method, entityType string, status int, elapsed time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	c.requestsTotal.WithLabelValues(method, entityType, code).Inc()
	c.requestDuration.WithLabelValues(method, entityType).Observe(elapsed.Seconds())
}

func (c *Collector) SyncFinished(slug string, ok bool, objects int, elapsed time.Duration) {
	result := "failure"
	if ok {
		result = "success"
		c.syncObjects.WithLabelValues(slug).Set(float64(objects))
		c.lastSyncUnixTS.WithLabelValues(slug).SetToCurrentTime()
	}
	c.syncsTotal.WithLabelValues(slug, result).Inc()
	c.syncDuration.WithLabelValues(slug).Observe(elapsed.Seconds())
}

func (c *Collector) ObjectTransferred(slug, outcome string) {
	c.transfersTotal.WithLabelValues(slug, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

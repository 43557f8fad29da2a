// Package metrics holds the Prometheus collectors of the marketplace.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "marketplace"

// Metrics is a private registry plus the collectors recorded into it.
// All methods are safe on a nil receiver, which records nothing.
type Metrics struct {
	registry *prometheus.Registry

	operations        *prometheus.CounterVec
	orderAmount       prometheus.Histogram
	httpDuration      *prometheus.HistogramVec
	snapshots         *prometheus.CounterVec
	webhookDeliveries *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Marketplace operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		orderAmount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_amount",
			Help:      "Amount of created orders.",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_total",
			Help:      "State snapshots written to the datastore, by outcome.",
		}, []string{"outcome"}),
		webhookDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_deliveries_total",
			Help:      "Webhook deliveries by event and outcome.",
		}, []string{"event", "outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.operations,
		m.orderAmount,
		m.httpDuration,
		m.snapshots,
		m.webhookDeliveries,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveOperation counts one marketplace operation.
func (m *Metrics) ObserveOperation(op string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome(err)).Inc()
}

// ObserveOrderAmount records the amount of a created order.
func (m *Metrics) ObserveOrderAmount(amount uint32) {
	if m == nil {
		return
	}
	m.orderAmount.Observe(float64(amount))
}

// ObserveHTTP records the latency of one HTTP request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// ObserveSnapshot counts one snapshot attempt.
func (m *Metrics) ObserveSnapshot(err error) {
	if m == nil {
		return
	}
	m.snapshots.WithLabelValues(outcome(err)).Inc()
}

// ObserveWebhookDelivery counts one webhook delivery attempt.
func (m *Metrics) ObserveWebhookDelivery(event string, err error) {
	if m == nil {
		return
	}
	m.webhookDeliveries.WithLabelValues(event, outcome(err)).Inc()
}

// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPRequests counts served requests by method, route pattern and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "budget",
	Name:      "http_requests_total",
	Help:      "HTTP requests served, by method, route and status code.",
}, []string{"method", "route", "status"})

// HTTPRequestDuration observes request latency by method and route pattern.
var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "budget",
	Name:      "http_request_duration_seconds",
	Help:      "HTTP request latency in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route"})

// OperationsCreated counts persisted operations by type.
var OperationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "budget",
	Name:      "operations_created_total",
	Help:      "Operations recorded, by type.",
}, []string{"type"})

// OperationsRejected counts inserts refused by validation, including payloads
// the HTTP layer rejects for missing or malformed fields.
var OperationsRejected = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "budget",
	Name:      "operations_rejected_total",
	Help:      "Operation inserts rejected by validation (missing, malformed or invalid fields) before persistence.",
})

var OperationsDeleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "budget",
	Name:      "operations_deleted_total",
	Help:      "Operations removed.",
})

// Balance is the last computed net balance.
var Balance = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "budget",
	Name:      "balance",
	Help:      "Net balance (income minus expense) at the last computation.",
})

// StoredOperations is the number of operations in the store at the last refresh.
var StoredOperations = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "budget",
	Name:      "stored_operations",
	Help:      "Operations currently stored, as of the last background refresh.",
})

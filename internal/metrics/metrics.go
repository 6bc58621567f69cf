// Package metrics exposes Prometheus counters for HTTP traffic, logins,
// ownership decisions and audit retention.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login results.
const (
	LoginSuccess            = "success"
	LoginUnknownUser        = "unknown_user"
	LoginInvalidCredentials = "invalid_credentials"
	LoginError              = "error"
)

// Metrics contains the application's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	Logins             *prometheus.CounterVec
	OwnershipDecisions *prometheus.CounterVec
	AuditEventsDeleted prometheus.Counter
}

// NewRegistry creates a registry preloaded with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return registry
}

// NewMetrics creates and registers the application metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tasktracker_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tasktracker_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tasktracker_logins_total",
				Help: "Total number of login attempts by result",
			},
			[]string{"result"},
		),
		OwnershipDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tasktracker_ownership_decisions_total",
				Help: "Total number of ownership checks by decision",
			},
			[]string{"decision"},
		),
		AuditEventsDeleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tasktracker_audit_events_deleted_total",
				Help: "Total number of audit events removed by retention cleanup",
			},
		),
	}

	reg.MustRegister(m.HTTPRequests)
	reg.MustRegister(m.HTTPDuration)
	reg.MustRegister(m.Logins)
	reg.MustRegister(m.OwnershipDecisions)
	reg.MustRegister(m.AuditEventsDeleted)

	return m
}

// Handler serves the metrics gathered by g in the Prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Middleware counts requests by matched route template, so path parameters
// do not create new series.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveLogin counts a login attempt. Use the Login* constants.
func (m *Metrics) ObserveLogin(result string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(result).Inc()
}

// ObserveOwnership counts the outcome of an ownership check.
func (m *Metrics) ObserveOwnership(decision string) {
	if m == nil {
		return
	}
	m.OwnershipDecisions.WithLabelValues(decision).Inc()
}

// ObserveAuditCleanup adds the number of audit events a cleanup run removed.
func (m *Metrics) ObserveAuditCleanup(deleted int64) {
	if m == nil || deleted <= 0 {
		return
	}
	m.AuditEventsDeleted.Add(float64(deleted))
}

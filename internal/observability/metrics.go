package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Auth outcomes recorded by RecordAuth
const (
	AuthLoginSuccess  = "login_success"
	AuthLoginFailure  = "login_failure"
	AuthTokenAccepted = "token_accepted"
	AuthTokenRejected = "token_rejected"
	AuthTokenMissing  = "token_missing"
)

// Metrics owns the service collectors and the registry they live in.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        prometheus.Gauge
	authTotal           *prometheus.CounterVec
	cityImportRows      *prometheus.CounterVec
}

// NewMetrics creates the collectors on a fresh registry.
// Process and Go runtime collectors are included.
func NewMetrics() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests processed",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests currently being served",
		}),
		authTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_events_total",
			Help: "Login attempts and token checks by outcome",
		}, []string{"outcome"}),
		cityImportRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "city_import_rows_total",
			Help: "Rows read from the city catalog by result",
		}, []string{"result"}), // result: imported|skipped
	}

	for _, c := range []prometheus.Collector{
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.httpInflight,
		m.authTotal,
		m.cityImportRows,
	} {
		if err := registerCollector(m.registry, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// InflightInc marks a request as started
func (m *Metrics) InflightInc() {
	if m == nil {
		return
	}
	m.httpInflight.Inc()
}

// ObserveHTTP records a finished request
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpInflight.Dec()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// RecordAuth counts an authentication event
func (m *Metrics) RecordAuth(outcome string) {
	if m == nil {
		return
	}
	m.authTotal.WithLabelValues(outcome).Inc()
}

// RecordCityImport counts the rows handled by one catalog import
func (m *Metrics) RecordCityImport(imported, skipped int) {
	if m == nil {
		return
	}
	m.cityImportRows.WithLabelValues("imported").Add(float64(imported))
	m.cityImportRows.WithLabelValues("skipped").Add(float64(skipped))
}

// registerCollector registers c, tolerating an identical collector already present
func registerCollector(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return err
	}
	return nil
}

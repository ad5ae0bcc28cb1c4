// Package metrics defines the Prometheus collectors of the admin app.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "adminx"

// Auth outcomes recorded by the authentication relay.
const (
	AuthAnonymous     = "anonymous"
	AuthAuthenticated = "authenticated"
	AuthFailed        = "failed"
	AuthRedirected    = "redirected"
)

// Compile kinds recorded by the view engine.
const (
	CompileTemplate   = "template"
	CompileStylesheet = "stylesheet"
)

// Metrics holds the collectors of one assembled app. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	authResults      *prometheus.CounterVec
	upstreamRequests *prometheus.CounterVec
	viewCompiles     *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. A nil reg
// creates unregistered collectors.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		authResults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_results_total",
			Help:      "Authentication relay outcomes",
		}, []string{"result"}),

		upstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Identity service responses by status (0 = no response)",
		}, []string{"status"}),

		viewCompiles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_compiles_total",
			Help:      "Template and stylesheet compilations (cache misses)",
		}, []string{"kind"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Request latency by method and status",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
}

func (m *Metrics) AuthResult(result string) {
	if m == nil {
		return
	}
	m.authResults.WithLabelValues(result).Inc()
}

func (m *Metrics) UpstreamResponse(status int) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(strconv.Itoa(status)).Inc()
}

func (m *Metrics) ViewCompiled(kind string) {
	if m == nil {
		return
	}
	m.viewCompiles.WithLabelValues(kind).Inc()
}

func (m *Metrics) RequestServed(method string, status int, latency time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(latency.Seconds())
}

// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "adchub"

// Metrics holds every collector on its own registry
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	ScoresCalculated *prometheus.CounterVec
	SheetActions     *prometheus.CounterVec
	ActiveSheets     prometheus.GaugeFunc
	UpstreamRequests *prometheus.CounterVec
	WebSocketClients prometheus.Gauge
}

// New registers the collectors. activeSheets is sampled at scrape time; it may be nil.
func New(activeSheets func() int) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		Registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route template, method and status code.",
		}, []string{"route", "method", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		ScoresCalculated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scores_calculated_total",
			Help:      "Stateless score calculations by discipline.",
		}, []string{"discipline"}),
		SheetActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheet_actions_total",
			Help:      "Scoresheet actions by discipline and action.",
		}, []string{"discipline", "action"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "robotevents_requests_total",
			Help:      "Requests sent to RobotEvents by operation and outcome.",
		}, []string{"operation", "outcome"}),
		WebSocketClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Connected scoresheet viewers.",
		}),
	}
	reg.MustRegister(m.HTTPRequests, m.HTTPDuration, m.ScoresCalculated, m.SheetActions, m.UpstreamRequests, m.WebSocketClients)

	if activeSheets != nil {
		m.ActiveSheets = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sheets",
			Help:      "Scoresheets held in memory.",
		}, func() float64 { return float64(activeSheets()) })
		reg.MustRegister(m.ActiveSheets)
	}
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// ObserveHTTP records one finished request
func (m *Metrics) ObserveHTTP(route, method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveScore counts a stateless calculation
func (m *Metrics) ObserveScore(discipline string) {
	if m == nil {
		return
	}
	m.ScoresCalculated.WithLabelValues(discipline).Inc()
}

// ObserveSheetAction counts a scoresheet action
func (m *Metrics) ObserveSheetAction(discipline, action string) {
	if m == nil {
		return
	}
	m.SheetActions.WithLabelValues(discipline, action).Inc()
}

// ObserveUpstream counts a RobotEvents call. A nil err is recorded as "ok".
func (m *Metrics) ObserveUpstream(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.UpstreamRequests.WithLabelValues(operation, outcome).Inc()
}

package api

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records backend activity in a Prometheus registry.
type Metrics struct {
	registry        *prom.Registry
	sessionsCreated prom.Counter
	focusSeconds    *prom.CounterVec
	requestDuration *prom.HistogramVec
}

// NewMetrics registers the backend metrics in reg (a fresh registry when nil).
func NewMetrics(reg *prom.Registry) *Metrics {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	m := &Metrics{
		registry: reg,
		sessionsCreated: prom.NewCounter(prom.CounterOpts{
			Namespace: "deepwork",
			Name:      "sessions_created_total",
			Help:      "Focus sessions logged",
		}),
		focusSeconds: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "deepwork",
			Name:      "focus_seconds_total",
			Help:      "Logged focus time by preset length",
		}, []string{"preset"}),
		requestDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "deepwork",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status",
			Buckets:   prom.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
	reg.MustRegister(m.sessionsCreated, m.focusSeconds, m.requestDuration)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (m *Metrics) sessionLogged(seconds int) {
	m.sessionsCreated.Inc()
	m.focusSeconds.WithLabelValues(presetLabel(seconds)).Add(float64(seconds))
}

// presetLabel buckets a session length into the preset it most likely came from.
func presetLabel(seconds int) string {
	switch seconds {
	case 2 * 60:
		return "2m"
	case 5 * 60:
		return "5m"
	case 25 * 60:
		return "25m"
	case 50 * 60:
		return "50m"
	}
	return "custom"
}

package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry        *prometheus.Registry
	toolCalls       *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_mcp_tool_calls_total",
			Help: "Tool calls by tool name and outcome.",
		}, []string{"tool", "outcome"}),
		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "booking_mcp_backend_request_duration_seconds",
			Help:    "Latency of requests to the booking API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"code", "method"}),
	}
	m.registry.MustRegister(m.toolCalls, m.backendDuration)
	return m
}

// instrument wraps the backend transport with a latency histogram.
func (m *metrics) instrument(rt http.RoundTripper) http.RoundTripper {
	return promhttp.InstrumentRoundTripperDuration(m.backendDuration, rt)
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

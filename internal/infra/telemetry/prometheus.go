package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"agenthub/internal/domain"
)

type PrometheusMetrics struct {
	dispatchDuration *prometheus.HistogramVec
	connectAttempts  *prometheus.CounterVec
	oracleTokens     *prometheus.CounterVec
	oracleLatency    *prometheus.HistogramVec
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		dispatchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agenthub_dispatch_duration_seconds",
				Help:    "Duration of dispatched tool calls in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"tool", "server", "status"},
		),
		connectAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agenthub_connect_attempts_total",
				Help: "Total number of server connection attempts",
			},
			[]string{"server", "status"},
		),
		oracleTokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agenthub_oracle_tokens_total",
				Help: "Total number of tokens consumed by oracle calls",
			},
			[]string{"provider", "model"},
		),
		oracleLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agenthub_oracle_latency_seconds",
				Help:    "Latency of oracle calls in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"provider", "model"},
		),
	}
}

func (m *PrometheusMetrics) ObserveDispatch(metric domain.DispatchMetric) {
	status := string(metric.Status)
	m.dispatchDuration.WithLabelValues(metric.Tool, metric.Server, status).Observe(metric.Duration.Seconds())
}

func (m *PrometheusMetrics) ObserveConnect(server string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.connectAttempts.WithLabelValues(server, status).Inc()
}

func (m *PrometheusMetrics) ObserveOracleLatency(provider, model string, duration time.Duration) {
	m.oracleLatency.WithLabelValues(provider, model).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) ObserveOracleTokens(provider, model string, tokens int) {
	m.oracleTokens.WithLabelValues(provider, model).Add(float64(tokens))
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) ObserveDispatch(domain.DispatchMetric) {}

func (NopMetrics) ObserveConnect(string, time.Duration, error) {}

func (NopMetrics) ObserveOracleLatency(string, string, time.Duration) {}

func (NopMetrics) ObserveOracleTokens(string, string, int) {}

var _ domain.Metrics = NopMetrics{}

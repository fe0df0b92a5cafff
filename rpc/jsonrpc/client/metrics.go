package client

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsSubsystem is a subsystem shared by all metrics exposed by this
	// package.
	MetricsSubsystem = "rpc_client"
)

// Metrics contains metrics exposed by the transports.
type Metrics struct {
	// Number of requests sent, by method and transport.
	Requests metrics.Counter
	// Round trip time of unary calls in seconds, by method and transport.
	RequestDuration metrics.Histogram
	// Number of failed unary calls, by method and transport.
	FailedRequests metrics.Counter
	// Number of times the websocket connection was re-established.
	Reconnects metrics.Counter
	// Number of subscription listeners registered on the websocket.
	StreamListeners metrics.Gauge
	// Time between sending a ping and receiving a pong in seconds.
	PingPongLatency metrics.Histogram
}

// PrometheusMetrics returns Metrics build using Prometheus client library.
// Optionally, labels can be provided along with their values ("foo",
// "fooValue").
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}
	return &Metrics{
		Requests: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "requests",
			Help:      "Number of requests sent to the node.",
		}, append(labels, "method", "transport")).With(labelsAndValues...),
		RequestDuration: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "request_duration_seconds",
			Help:      "Round trip time of unary calls.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		}, append(labels, "method", "transport")).With(labelsAndValues...),
		FailedRequests: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "failed_requests",
			Help:      "Number of unary calls that returned a transport error.",
		}, append(labels, "method", "transport")).With(labelsAndValues...),
		Reconnects: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "reconnects",
			Help:      "Number of times the websocket connection was re-established.",
		}, labels).With(labelsAndValues...),
		StreamListeners: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "stream_listeners",
			Help:      "Number of subscription listeners registered on the websocket.",
		}, labels).With(labelsAndValues...),
		PingPongLatency: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "ping_pong_latency_seconds",
			Help:      "Time between sending a websocket ping and receiving its pong.",
			Buckets:   stdprometheus.ExponentialBuckets(0.001, 4, 8),
		}, labels).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		Requests:        discard.NewCounter(),
		RequestDuration: discard.NewHistogram(),
		FailedRequests:  discard.NewCounter(),
		Reconnects:      discard.NewCounter(),
		StreamListeners: discard.NewGauge(),
		PingPongLatency: discard.NewHistogram(),
	}
}

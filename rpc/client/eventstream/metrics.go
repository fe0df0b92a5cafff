package eventstream

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsSubsystem is a subsystem shared by all metrics exposed by this
	// package.
	MetricsSubsystem = "eventstream"
)

// Metrics contains metrics exposed by event streams.
type Metrics struct {
	// Number of subscriptions renewed after a reconnect.
	Restarts metrics.Counter
	// Number of events handed to consumers.
	EventsDelivered metrics.Counter
	// Number of event frames dropped because they could not be decoded.
	EventsDropped metrics.Counter
	// Number of consumers cancelled because they did not drain their buffer.
	ConsumersCanceled metrics.Counter
	// Number of streams currently subscribed.
	Streams metrics.Gauge
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
		Restarts: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "restarts",
			Help:      "Number of subscriptions renewed after a reconnect.",
		}, labels).With(labelsAndValues...),
		EventsDelivered: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "events_delivered",
			Help:      "Number of events handed to consumers.",
		}, labels).With(labelsAndValues...),
		EventsDropped: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "events_dropped",
			Help:      "Number of event frames that could not be decoded.",
		}, labels).With(labelsAndValues...),
		ConsumersCanceled: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "consumers_canceled",
			Help:      "Number of consumers cancelled for not draining their buffer.",
		}, labels).With(labelsAndValues...),
		Streams: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "streams",
			Help:      "Number of streams currently subscribed.",
		}, labels).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		Restarts:          discard.NewCounter(),
		EventsDelivered:   discard.NewCounter(),
		EventsDropped:     discard.NewCounter(),
		ConsumersCanceled: discard.NewCounter(),
		Streams:           discard.NewGauge(),
	}
}

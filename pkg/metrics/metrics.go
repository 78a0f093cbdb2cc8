// Package metrics collects Prometheus metrics for fetches. Instrumentation sits
// around the HTTP transport and around the caller of a fetch, never inside it.
package metrics

import (
	"net/http"

	"github.com/glorpus-work/reqfile/pkg/errors"
	"github.com/glorpus-work/reqfile/pkg/fetch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one reqfile process in a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// requestsTotal counts HTTP round trips by status code and method
	requestsTotal *prometheus.CounterVec
	// requestDuration observes round trip latency until response headers arrive
	requestDuration *prometheus.HistogramVec
	// inFlight is the number of round trips currently in progress
	inFlight prometheus.Gauge
	// fetchesTotal counts finished fetches by result (ok or failure kind)
	fetchesTotal *prometheus.CounterVec
	// bodyBytes observes buffered body sizes
	bodyBytes prometheus.Histogram
	// persistedTotal counts bodies written to a destination
	persistedTotal prometheus.Counter
}

// New creates and registers the collectors under the given namespace.
func New(namespace string) *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "HTTP requests sent, by status code and method.",
		},
		[]string{"code", "method"},
	)
	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time until response headers were received.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"code", "method"},
	)
	m.inFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "in_flight_requests",
		Help:      "HTTP requests currently in flight.",
	})
	m.fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Completed fetches by result.",
		},
		[]string{"result"},
	)
	m.bodyBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "body_bytes",
		Help:      "Size of buffered response bodies.",
		// 1KB .. 1GB
		Buckets: prometheus.ExponentialBuckets(1024, 10, 7),
	})
	m.persistedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "persisted_total",
		Help:      "Response bodies written to their destination.",
	})

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.inFlight,
		m.fetchesTotal,
		m.bodyBytes,
		m.persistedTotal,
	)
	return m
}

// Registry exposes the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// InstrumentClient returns a shallow copy of client whose transport records
// request metrics. A nil client is treated as an http.Client with defaults.
func (m *Metrics) InstrumentClient(client *http.Client) *http.Client {
	var c http.Client
	if client != nil {
		c = *client
	}
	next := c.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	c.Transport = promhttp.InstrumentRoundTripperInFlight(m.inFlight,
		promhttp.InstrumentRoundTripperCounter(m.requestsTotal,
			promhttp.InstrumentRoundTripperDuration(m.requestDuration, next),
		),
	)
	return &c
}

// Observe records the result of a finished fetch.
func (m *Metrics) Observe(out *fetch.Outcome, err error) {
	if err != nil {
		m.fetchesTotal.WithLabelValues(errors.KindOf(err).String()).Inc()
		return
	}
	m.fetchesTotal.WithLabelValues("ok").Inc()
	m.bodyBytes.Observe(float64(out.Size))
	if out.Persisted {
		m.persistedTotal.Inc()
	}
}

// WriteFile writes the current metric values to path in the text exposition
// format, suitable for the node_exporter textfile collector.
func (m *Metrics) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrapf(err, "failed to write metrics to %s", path)
	}
	return nil
}

package restclient

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type clientMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func newClientMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	requestsTotal, err := registerOrReuse(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "participant_api_requests_total",
			Help: "Total number of calls made to the upstream participant API.",
		},
		[]string{"operation", "outcome"},
	))
	if err != nil {
		return nil, err
	}

	requestDuration, err := registerOrReuse(reg, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "participant_api_request_duration_seconds",
			Help:    "Upstream participant API call duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "outcome"},
	))
	if err != nil {
		return nil, err
	}

	return &clientMetrics{requestsTotal: requestsTotal, requestDuration: requestDuration}, nil
}

// registerOrReuse lets several clients share one registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, err
	}
	return c, nil
}

func (m *clientMetrics) observe(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(operation, outcome).Inc()
	m.requestDuration.WithLabelValues(operation, outcome).Observe(elapsed.Seconds())
}

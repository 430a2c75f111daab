package serve

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus metrics for dispatched requests.
type metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// globalMetrics is the singleton instance, registered on first use so
// that importing the package has no side effects.
var (
	globalMetrics     *metrics
	globalMetricsOnce sync.Once
)

func defaultMetrics() *metrics {
	globalMetricsOnce.Do(func() {
		globalMetrics = newMetrics(prometheus.DefaultRegisterer)
	})
	return globalMetrics
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wayfind",
			Name:      "requests_total",
			Help:      "Requests dispatched, by matched route pattern and status",
		}, []string{"route", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wayfind",
			Name:      "request_duration_seconds",
			Help:      "Dispatch plus handler duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
	}
}

func (m *metrics) observe(route string, status int, d time.Duration) {
	if route == "" {
		route = "(unmatched)"
	}
	code := strconv.Itoa(status)
	m.requestsTotal.WithLabelValues(route, code).Inc()
	m.requestDuration.WithLabelValues(code).Observe(d.Seconds())
}

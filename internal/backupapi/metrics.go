package backupapi

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "backup_client"

// RequestKey identifies one request series.
type RequestKey struct {
	Resource  string
	Operation string
	Code      int
}

// Labels returns the metric labels as a slice.
func (k RequestKey) Labels() []string {
	code := "error"
	if k.Code > 0 {
		code = strconv.Itoa(k.Code)
	}
	return []string{k.Resource, k.Operation, code}
}

// RequestMetrics counts backup API requests by resource, operation and
// status code and observes their duration. A transport failure is
// recorded with code "error". A nil *RequestMetrics ignores observations.
type RequestMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRequestMetrics creates the collectors and registers them with reg.
func NewRequestMetrics(reg prometheus.Registerer) (*RequestMetrics, error) {
	m := &RequestMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Backup API requests by resource, operation and HTTP status code",
		}, []string{"resource", "operation", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "Backup API request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource", "operation"}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe records one finished request.
func (m *RequestMetrics) Observe(key RequestKey, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(key.Labels()...).Inc()
	m.duration.WithLabelValues(key.Resource, key.Operation).Observe(d.Seconds())
}

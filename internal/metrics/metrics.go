package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Resolutions     *prometheus.CounterVec
	UpstreamErrors  prometheus.Counter
	UpstreamSeconds *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Resolutions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "stopfinder_resolutions_total",
			Help: "Total number of query resolutions by outcome.",
		}, []string{"outcome"}),
		UpstreamErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "stopfinder_upstream_errors_total",
			Help: "Total number of errors received from upstream APIs.",
		}),
		UpstreamSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stopfinder_upstream_request_duration_seconds",
			Help:    "Duration of requests to upstream APIs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"target"}),
	}
}

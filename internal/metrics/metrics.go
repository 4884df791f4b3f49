package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the service exports. Each instance owns its
// registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	AuthRejections *prometheus.CounterVec
	RateLimited    prometheus.Counter

	StreakJobs        *prometheus.CounterVec
	StreakJobsDropped prometheus.Counter

	DashboardHabits prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		AuthRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_rejections_total",
				Help: "Total number of unauthorized requests",
			},
			[]string{"reason"},
		),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter",
		}),
		StreakJobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "streak_jobs_total",
				Help: "Streak recomputations by outcome",
			},
			[]string{"result"},
		),
		StreakJobsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "streak_jobs_dropped_total",
			Help: "Streak jobs dropped because the queue was full",
		}),
		DashboardHabits: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_habits",
			Help:    "Number of habits in each built dashboard",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.AuthRejections,
		m.RateLimited,
		m.StreakJobs,
		m.StreakJobsDropped,
		m.DashboardHabits,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusCollector struct {
	// Counters
	registrationsTotal *prometheus.CounterVec
	fetchJobsEnqueued  prometheus.Counter
	fetchesFailedTotal prometheus.Counter
	videosIngested     prometheus.Counter

	// Histograms
	fetchDuration prometheus.Histogram
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		registrationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sourcehub_registrations_total",
			Help: "Total number of source registration requests by outcome",
		}, []string{"outcome"}),

		fetchJobsEnqueued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sourcehub_fetch_jobs_enqueued_total",
			Help: "Total number of fetch jobs enqueued",
		}),

		fetchesFailedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sourcehub_fetches_failed_total",
			Help: "Total number of failed feed fetches",
		}),

		videosIngested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sourcehub_videos_ingested_total",
			Help: "Total number of new videos stored from feed fetches",
		}),

		fetchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sourcehub_fetch_duration_seconds",
			Help:    "Duration of feed fetch and ingest cycles",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
	}
}

func (p *PrometheusCollector) RecordRegistration(outcome string) {
	p.registrationsTotal.WithLabelValues(outcome).Inc()
}

func (p *PrometheusCollector) RecordFetchJobEnqueued() {
	p.fetchJobsEnqueued.Inc()
}

func (p *PrometheusCollector) RecordFetchCompleted(duration time.Duration, videos int) {
	p.fetchDuration.Observe(duration.Seconds())
	p.videosIngested.Add(float64(videos))
}

func (p *PrometheusCollector) RecordFetchFailed() {
	p.fetchesFailedTotal.Inc()
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements repository.Metrics using Prometheus.
type Recorder struct {
	fetchTotal   prometheus.Counter
	computeTotal prometheus.Counter
	rows         *prometheus.HistogramVec
	cacheTotal   *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	sinkTotal    *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New creates a recorder registered on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		fetchTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "tapull_fetch_total",
			Help: "Total number of successful stock data fetches",
		}),
		computeTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "tapull_compute_total",
			Help: "Total number of indicator tables computed",
		}),
		rows: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tapull_rows",
				Help:    "Rows per fetched or computed table",
				Buckets: []float64{1, 5, 20, 50, 100, 250, 500, 1000, 2500, 5000},
			},
			[]string{"stage"},
		),
		cacheTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapull_cache_lookups_total",
				Help: "Fetch cache lookups by result",
			},
			[]string{"result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		sinkTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapull_sink_writes_total",
				Help: "Indicator table writes per sink and outcome",
			},
			[]string{"sink", "outcome"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tapull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordFetch records a successful fetch.
func (r *Recorder) RecordFetch(rows int, d time.Duration) {
	r.fetchTotal.Inc()
	r.rows.WithLabelValues("fetch").Observe(float64(rows))
	r.latency.WithLabelValues("fetch").Observe(d.Seconds())
}

// RecordCompute records a successful indicator computation.
func (r *Recorder) RecordCompute(rows int, d time.Duration) {
	r.computeTotal.Inc()
	r.rows.WithLabelValues("compute").Observe(float64(rows))
	r.latency.WithLabelValues("compute").Observe(d.Seconds())
}

// RecordCacheHit records a cache lookup.
func (r *Recorder) RecordCacheHit(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheTotal.WithLabelValues(result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordSink records a write to an output sink.
func (r *Recorder) RecordSink(sink string, ok bool) {
	outcome := "error"
	if ok {
		outcome = "ok"
	}
	r.sinkTotal.WithLabelValues(sink, outcome).Inc()
}

// Nop discards all measurements.
type Nop struct{}

func (Nop) RecordFetch(int, time.Duration)   {}
func (Nop) RecordCompute(int, time.Duration) {}
func (Nop) RecordCacheHit(bool)              {}
func (Nop) RecordError(string)               {}
func (Nop) RecordSink(string, bool)          {}

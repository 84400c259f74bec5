// Package metrics holds the Prometheus collectors for outbound API traffic,
// list pagination and the import worker pool. All methods are safe on a nil *Metrics so callers can
// run without instrumentation.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure kinds recorded by ObserveFailure.
const (
	FailureNetwork = "network"
	FailureDecode  = "decode"
)

// Metrics groups the client-side collectors.
type Metrics struct {
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	failures       *prometheus.CounterVec
	staleResults   prometheus.Counter
	pagesApplied   *prometheus.CounterVec

	queueDepth    prometheus.Gauge
	activeWorkers prometheus.Gauge
	completedJobs prometheus.Counter
	droppedJobs   prometheus.Counter
	jobErrors     prometheus.Counter
	jobDuration   prometheus.Histogram
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests
// to avoid duplicate registration on the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "feedback_api_requests_total",
			Help: "Requests sent to the feedback API by method, path and status code",
		}, []string{"method", "path", "code"}),
		requestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "feedback_api_request_duration_seconds",
			Help:    "Round-trip time of feedback API requests",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "path"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "feedback_api_failures_total",
			Help: "Requests that produced no usable response, by kind",
		}, []string{"method", "path", "kind"}),
		staleResults: factory.NewCounter(prometheus.CounterOpts{
			Name: "feedback_list_stale_results_total",
			Help: "Page results discarded because a refresh superseded them",
		}),
		pagesApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "feedback_list_pages_applied_total",
			Help: "Page results applied to the feedback list, by kind (refresh or more)",
		}, []string{"kind"}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "feedback_import_queue_depth",
			Help: "Current number of import jobs waiting in queue",
		}),
		activeWorkers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "feedback_import_active_workers",
			Help: "Current number of workers processing import jobs",
		}),
		completedJobs: factory.NewCounter(prometheus.CounterOpts{
			Name: "feedback_import_completed_jobs_total",
			Help: "Total number of import jobs run to completion",
		}),
		droppedJobs: factory.NewCounter(prometheus.CounterOpts{
			Name: "feedback_import_dropped_jobs_total",
			Help: "Total number of import jobs dropped due to a full queue",
		}),
		jobErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "feedback_import_errors_total",
			Help: "Total number of import jobs that returned an error",
		}),
		jobDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "feedback_import_job_duration_seconds",
			Help:    "Time taken to execute import jobs",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
	}
}

// ObserveRequest records a completed round trip.
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestLatency.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// ObserveFailure records a request that failed before or after the round trip.
func (m *Metrics) ObserveFailure(method, path, kind string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(method, path, kind).Inc()
}

// StaleResultDiscarded counts a page result dropped for an old generation.
func (m *Metrics) StaleResultDiscarded() {
	if m == nil {
		return
	}
	m.staleResults.Inc()
}

// PageApplied counts a page result merged into the list.
func (m *Metrics) PageApplied(kind string) {
	if m == nil {
		return
	}
	m.pagesApplied.WithLabelValues(kind).Inc()
}

// JobQueued records a job entering the worker queue.
func (m *Metrics) JobQueued() {
	if m == nil {
		return
	}
	m.queueDepth.Inc()
}

// JobDropped records a job rejected by a full queue.
func (m *Metrics) JobDropped() {
	if m == nil {
		return
	}
	m.droppedJobs.Inc()
}

// JobStarted records a worker picking a job off the queue.
func (m *Metrics) JobStarted() {
	if m == nil {
		return
	}
	m.queueDepth.Dec()
	m.activeWorkers.Inc()
}

// JobFinished records a job's completion.
func (m *Metrics) JobFinished(err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	if err != nil {
		m.jobErrors.Inc()
	}
	m.jobDuration.Observe(elapsed.Seconds())
	m.completedJobs.Inc()
	m.activeWorkers.Dec()
}

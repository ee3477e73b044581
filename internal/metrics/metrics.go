// ============================================================================
// Corosched Metrics - Prometheus Monitoring
// ============================================================================
//
// Package: internal/metrics
// File: metrics.go
// Purpose: Collect and expose scheduler metrics for Prometheus monitoring
//
// Monitoring Philosophy:
//   Based on RED (Rate, Errors, Duration) and USE (Utilization, Saturation, Errors)
//   Provides comprehensive scheduler observability
//
// Metric Categories:
//
//   1. Job Counters - Cumulative, monotonically increasing:
//      - corosched_jobs_scheduled_total: Total jobs placed on the ready queue
//      - corosched_jobs_completed_total: Total jobs that ran to completion
//      - corosched_jobs_canceled_total: Total jobs canceled before running
//      - corosched_parent_reschedule_total: Total parent wake-ups via a
//        continuation already attached when its child finished
//
//   2. Status Metrics (Gauge) - Instantaneous values:
//      - corosched_queue_depth: Current ready-queue length
//      - corosched_free_workers: Workers currently idle
//      - corosched_temp_workers_active: Temporary workers currently active
//
// Prometheus Query Examples:
//
//   # Jobs completed per minute
//   rate(corosched_jobs_completed_total[1m])
//
//   # Temp-worker pressure (how often the pool needed extra help)
//   corosched_temp_workers_active
//
// HTTP Endpoint:
//   Exposed via /metrics, scraped by Prometheus. Default port: 9090.
//
// ============================================================================

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector collects Prometheus metrics for a Scheduler and implements
// coro.MetricsSink, so it can be passed directly to coro.WithMetrics.
type Collector struct {
	jobsScheduled     prometheus.Counter
	jobsCompleted     prometheus.Counter
	jobsCanceled      prometheus.Counter
	parentReschedules prometheus.Counter

	queueDepth  prometheus.Gauge
	freeWorkers prometheus.Gauge
	tempWorkers prometheus.Gauge
}

// NewCollector creates and registers a new metrics collector against the
// default Prometheus registry.
func NewCollector() *Collector {
	c := &Collector{
		jobsScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "corosched_jobs_scheduled_total",
			Help: "Total number of jobs placed on the ready queue",
		}),
		jobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "corosched_jobs_completed_total",
			Help: "Total number of jobs that ran to completion",
		}),
		jobsCanceled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "corosched_jobs_canceled_total",
			Help: "Total number of jobs canceled before they started running",
		}),
		parentReschedules: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "corosched_parent_reschedule_total",
			Help: "Total number of times a finished child job woke a parent already waiting via SetContinuation",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "corosched_queue_depth",
			Help: "Current number of jobs waiting on the shared ready queue",
		}),
		freeWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "corosched_free_workers",
			Help: "Current number of idle pool workers, including temporary workers",
		}),
		tempWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "corosched_temp_workers_active",
			Help: "Current number of goroutines acting as temporary workers while awaiting a child job",
		}),
	}

	prometheus.MustRegister(
		c.jobsScheduled,
		c.jobsCompleted,
		c.jobsCanceled,
		c.parentReschedules,
		c.queueDepth,
		c.freeWorkers,
		c.tempWorkers,
	)

	return c
}

// JobScheduled records a job entering the ready queue.
func (c *Collector) JobScheduled() { c.jobsScheduled.Inc() }

// JobCompleted records a job body running to completion.
func (c *Collector) JobCompleted() { c.jobsCompleted.Inc() }

// JobCanceled records a job canceled before it ran.
func (c *Collector) JobCanceled() { c.jobsCanceled.Inc() }

// ParentRescheduled records a finished child job handing off to a parent
// that had already attached a continuation via SetContinuation (the
// Assigned branch of the Open/Assigned/Closed protocol), as opposed to a
// parent that attaches after the child is already done and proceeds
// without ever being woken.
func (c *Collector) ParentRescheduled() { c.parentReschedules.Inc() }

// QueueDepth records the current ready-queue length.
func (c *Collector) QueueDepth(n int) { c.queueDepth.Set(float64(n)) }

// FreeWorkers records the current idle-worker count.
func (c *Collector) FreeWorkers(n int) { c.freeWorkers.Set(float64(n)) }

// TempWorkers records the current temporary-worker count.
func (c *Collector) TempWorkers(n int) { c.tempWorkers.Set(float64(n)) }

// StartServer starts the Prometheus metrics HTTP server on the given
// address (e.g. ":9090").
func StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}

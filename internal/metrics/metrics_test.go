package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollector(t *testing.T) {
	// Reset Prometheus registry to avoid duplicate registration
	prometheus.DefaultRegisterer = prometheus.NewRegistry()

	collector := NewCollector()

	assert.NotNil(t, collector, "NewCollector should return a non-nil collector")
	assert.NotNil(t, collector.jobsScheduled, "jobsScheduled counter should be initialized")
	assert.NotNil(t, collector.jobsCompleted, "jobsCompleted counter should be initialized")
	assert.NotNil(t, collector.jobsCanceled, "jobsCanceled counter should be initialized")
	assert.NotNil(t, collector.parentReschedules, "parentReschedules counter should be initialized")
	assert.NotNil(t, collector.queueDepth, "queueDepth gauge should be initialized")
	assert.NotNil(t, collector.freeWorkers, "freeWorkers gauge should be initialized")
	assert.NotNil(t, collector.tempWorkers, "tempWorkers gauge should be initialized")
}

func TestJobScheduled(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		collector.JobScheduled()
	}, "JobScheduled should not panic")

	for i := 0; i < 5; i++ {
		collector.JobScheduled()
	}
}

func TestJobCompleted(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		collector.JobCompleted()
	}, "JobCompleted should not panic")

	for i := 0; i < 10; i++ {
		collector.JobCompleted()
	}
}

func TestJobCanceled(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		collector.JobCanceled()
	}, "JobCanceled should not panic")

	for i := 0; i < 3; i++ {
		collector.JobCanceled()
	}
}

func TestParentRescheduled(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		collector.ParentRescheduled()
	}, "ParentRescheduled should not panic")

	for i := 0; i < 4; i++ {
		collector.ParentRescheduled()
	}
}

func TestQueueDepthFreeAndTempWorkers(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	testCases := []struct {
		name  string
		depth int
		free  int
		temp  int
	}{
		{"zero values", 0, 0, 0},
		{"normal values", 10, 5, 1},
		{"high depth", 100, 2, 3},
		{"all free", 0, 8, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				collector.QueueDepth(tc.depth)
				collector.FreeWorkers(tc.free)
				collector.TempWorkers(tc.temp)
			}, "gauge updates should not panic")
		})
	}
}

func TestConcurrentMetricUpdates(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	// Prometheus metrics must be safe for concurrent use.
	done := make(chan bool, 100)

	for i := 0; i < 100; i++ {
		go func() {
			collector.JobScheduled()
			collector.JobCompleted()
			collector.QueueDepth(10)
			collector.FreeWorkers(5)
			done <- true
		}()
	}

	for i := 0; i < 100; i++ {
		<-done
	}
}

func TestCollectorIsolation(t *testing.T) {
	// Only one collector can be registered per registry
	prometheus.DefaultRegisterer = prometheus.NewRegistry()

	collector1 := NewCollector()
	require.NotNil(t, collector1)

	// Second collector will panic due to duplicate registration
	// This is expected: a process should have only one collector
	assert.Panics(t, func() {
		NewCollector()
	}, "Creating a second collector should panic due to duplicate registration")
}

func TestMetricOperationSequence(t *testing.T) {
	// Test a typical job handling sequence
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		// 1. Job enters the ready queue
		collector.JobScheduled()
		collector.QueueDepth(1)
		collector.FreeWorkers(0)

		// 2. A worker picks it up
		collector.QueueDepth(0)
		collector.FreeWorkers(0)

		// 3. Job runs to completion
		collector.JobCompleted()
		collector.FreeWorkers(1)
	}, "complete job lifecycle should not panic")
}

func TestMetricOperationWithCancellation(t *testing.T) {
	// Test job cancellation before it ran
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		collector.JobScheduled()
		collector.JobCanceled()
	}, "cancellation before run should not panic")
}

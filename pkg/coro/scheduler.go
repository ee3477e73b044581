package coro

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/beaversched/corosched/pkg/types"
)

// Local aliases keep the state-machine code below readable without a
// types. prefix on every transition.
const (
	stateCreated    = types.Created
	stateScheduled  = types.Scheduled
	stateProcessing = types.Processing
	stateDone       = types.Done
	stateCanceled   = types.Canceled
)

// idleBackoff bounds how long a pool worker or a temporary worker sleeps
// between polls of the ready queue when it finds nothing to run. It takes
// the place of the 5ms idle backoff the teacher's dispatchLoop uses in
// internal/controller/controller.go, at a shorter 2ms.
const idleBackoff = 2 * time.Millisecond

type workerCtxKey struct{}

// isWorkerContext reports whether ctx was created by the scheduler while
// already executing a job body. Scheduling decisions use this to implement
// the eager-dispatch "work-first" heuristic from spec.md §4.H: a job
// scheduled from inside another job's body runs inline instead of taking a
// pointless queue round trip, while one scheduled from outside any worker
// (e.g. the process's main goroutine) is always enqueued for a real worker
// to pick up.
func isWorkerContext(ctx context.Context) bool {
	v, _ := ctx.Value(workerCtxKey{}).(bool)
	return v
}

func withWorkerContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, workerCtxKey{}, true)
}

// MetricsSink receives scheduler events. internal/metrics implements this
// against Prometheus collectors; tests and callers that don't care about
// metrics simply never set one (every call site below is nil-checked).
type MetricsSink interface {
	JobScheduled()
	JobCompleted()
	JobCanceled()
	ParentRescheduled()
	QueueDepth(n int)
	FreeWorkers(n int)
	TempWorkers(n int)
}

// Option configures a Scheduler constructed with New.
type Option func(*Scheduler)

// WithLogger overrides the scheduler's slog.Logger (default slog.Default(),
// matching the teacher's package-level `var log = slog.Default()` idiom).
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// WithMetrics attaches a MetricsSink.
func WithMetrics(m MetricsSink) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// WithJobPanicHandler overrides the default (re-panic) behavior for a
// recovered job-body panic. Matches spec.md §7's default of treating an
// unhandled exception as fatal, while letting a host opt into recording it
// as an ordinary job error instead, the way the teacher's OnOverload-style
// hooks let callers override a default abort.
func WithJobPanicHandler(fn func(recovered any, stack []byte)) Option {
	return func(s *Scheduler) { s.onJobPanic = fn }
}

// Scheduler owns the shared ready queue and the fixed pool of worker
// goroutines that drain it. Construct one with New for an explicitly
// host-managed lifetime, or use Get for a process-wide lazily-created
// default instance.
type Scheduler struct {
	workerCount int
	queue       *jobQueue
	stopCh      chan struct{}
	stopped     atomic.Bool
	wg          sync.WaitGroup

	freeWorkers atomic.Int64
	tempWorkers atomic.Int64

	log        *slog.Logger
	metrics    MetricsSink
	onJobPanic func(recovered any, stack []byte)
}

var (
	defaultScheduler     *Scheduler
	defaultSchedulerOnce sync.Once
)

// Get returns the process-wide default Scheduler, created on first use with
// a worker count from DetectWorkerCount. Unlike the C++ original's racy
// double-checked singleton (flagged in spec.md §9), this uses sync.Once.
func Get() *Scheduler {
	defaultSchedulerOnce.Do(func() {
		defaultScheduler = New(DetectWorkerCount())
	})
	return defaultScheduler
}

// New constructs and starts a Scheduler with the given fixed worker count.
// Prefer this over Get when the caller wants explicit control over the
// scheduler's lifetime (e.g. one scheduler per test).
func New(workerCount int, opts ...Option) *Scheduler {
	if workerCount < 1 {
		workerCount = 1
	}
	s := &Scheduler{
		workerCount: workerCount,
		queue:       newJobQueue(),
		stopCh:      make(chan struct{}),
		log:         slog.Default(),
		onJobPanic:  func(recovered any, stack []byte) { panic(recovered) },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.freeWorkers.Store(int64(workerCount))
	s.startWorkers()
	return s
}

func (s *Scheduler) startWorkers() {
	s.wg.Add(s.workerCount)
	for i := 0; i < s.workerCount; i++ {
		go s.workerLoop()
	}
}

// workerLoop is one of the fixed N pool workers. It owns no state beyond
// "keep draining the shared queue until told to stop" — the equivalent of
// WorkerThreadEntry(uint) in schedule/scheduler.cpp.
func (s *Scheduler) workerLoop() {
	defer s.wg.Done()
	ctx := withWorkerContext(context.Background())
	for {
		select {
		case <-s.stopCh:
			return
		default:
		}
		j, ok := s.queue.Dequeue()
		if !ok {
			select {
			case <-s.stopCh:
				return
			case <-time.After(idleBackoff):
			}
			continue
		}
		s.reportQueueDepth()
		s.freeWorkers.Add(-1)
		s.runBody(ctx, j)
		s.freeWorkers.Add(1)
	}
}

func (s *Scheduler) reportQueueDepth() {
	if s.metrics != nil {
		s.metrics.QueueDepth(s.queue.Len())
		s.metrics.FreeWorkers(int(s.freeWorkers.Load()))
		s.metrics.TempWorkers(int(s.tempWorkers.Load()))
	}
}

// enqueue places a ready job on the shared queue. It is the Go analog of
// Scheduler::EnqueueJob in the original.
func (s *Scheduler) enqueue(j *job) bool {
	ok := s.queue.Enqueue(j)
	if ok && s.metrics != nil {
		s.metrics.JobScheduled()
	}
	return ok
}

// dispatch implements the eager work-first heuristic described on
// isWorkerContext: run inline if we're already executing inside a worker
// (including a temporary one), otherwise enqueue for a real worker to pick
// up. Used by eager Token/Task construction; deferred variants always
// enqueue instead (see token.go).
func (s *Scheduler) dispatch(ctx context.Context, j *job) {
	if !j.p.trySetState(stateCreated, stateScheduled) {
		return
	}
	if isWorkerContext(ctx) {
		s.runBody(ctx, j)
		return
	}
	if !s.enqueue(j) {
		j.p.failClosed()
	}
}

// enqueueDeferred is dispatch's deferred counterpart: always goes through
// the shared queue, never runs inline, matching "deferred schedules only on
// first await or explicit Launch()".
func (s *Scheduler) enqueueDeferred(j *job) {
	if !j.p.trySetState(stateCreated, stateScheduled) {
		return
	}
	if !s.enqueue(j) {
		j.p.failClosed()
	}
}

// runUntilReady is the temporary-worker loop: it behaves exactly like a
// pool worker — drain the shared queue and execute whatever is ready — but
// is bounded by `done` instead of the scheduler's stopCh, and inflates the
// free/temp worker counters for the duration so instrumentation reflects
// the extra capacity. This is the direct translation of
// RegisterAsTempWorker / WorkerThreadEntry(const SysEvent&) from
// schedule/scheduler.cpp: a goroutine that would otherwise block uselessly
// instead keeps the queue moving, which is what prevents a small worker
// pool from deadlocking on a job graph with cross-dependencies.
func (s *Scheduler) runUntilReady(ctx context.Context, done <-chan struct{}) {
	select {
	case <-done:
		return
	default:
	}
	s.tempWorkers.Add(1)
	s.freeWorkers.Add(1)
	defer func() {
		s.tempWorkers.Add(-1)
		s.freeWorkers.Add(-1)
	}()
	workerCtx := withWorkerContext(ctx)
	for {
		select {
		case <-done:
			return
		default:
		}
		j, ok := s.queue.Dequeue()
		if ok {
			s.reportQueueDepth()
			s.runBody(workerCtx, j)
			continue
		}
		select {
		case <-done:
			return
		case <-time.After(idleBackoff):
		}
	}
}

// runBody transitions a job into Processing, runs its body (recovering a
// panic per the onJobPanic hook), then drives it to Done/Canceled and
// wakes its parent. Called both from a pool worker and recursively from
// runUntilReady, since in this design a job's entire nested await chain
// executes on whichever goroutine first dequeued it — there is no separate
// "resume on a different goroutine" step to implement.
func (s *Scheduler) runBody(ctx context.Context, j *job) {
	if j.p.CancelRequested() {
		// CancelRequested only reports the flag Cancel sets before it
		// attempts its own CAS, so Cancel's goroutine and this one may race
		// to actually perform the Scheduled->Canceled transition. Only the
		// winner may run setErrorResult/ScheduleParent, or a parent could be
		// awoken twice, or never. j.p.setErrorResult lives on promiseBase
		// (set by tokenCore), so it is reachable here without job knowing
		// its type.
		if j.p.trySetState(stateScheduled, stateCanceled) {
			if j.p.setErrorResult != nil {
				j.p.setErrorResult(ErrCanceled)
			}
			if s.metrics != nil {
				s.metrics.JobCanceled()
			}
			j.p.ScheduleParent()
		}
		return
	}
	if !j.p.trySetState(stateScheduled, stateProcessing) {
		return
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				stack := make([]byte, 4096)
				n := runtime.Stack(stack, false)
				pe := &JobPanicError{Recovered: r, Stack: stack[:n]}
				s.log.Error("job panicked", "job_id", j.p.ID(), "panic", pe.Error())
				// The body never reached its own setResult, so the promise's
				// result is still zero-valued; record the panic as the
				// job's error before it is marked Done, or a caller awaiting
				// via Task.Result would see (zero, nil) instead of the panic.
				if j.p.setErrorResult != nil {
					j.p.setErrorResult(pe)
				}
				s.onJobPanic(r, pe.Stack)
			}
		}()
		j.body(ctx)
	}()

	j.p.forceSetState(stateDone)
	if s.metrics != nil {
		s.metrics.JobCompleted()
	}
	j.p.ScheduleParent()
}

// Shutdown drains the ready queue, cancels anything still queued, and joins
// every worker goroutine. Unlike the original's destructor (spec.md §9
// flags its workers as "only joined, never told to stop"), this stops
// accepting new work first and then waits, so Shutdown always returns once
// every in-flight job body has finished (or ctx expires first).
func (s *Scheduler) Shutdown(ctx context.Context) error {
	if !s.stopped.CompareAndSwap(false, true) {
		return nil
	}
	close(s.stopCh)
	for _, j := range s.queue.Close() {
		j.p.Cancel()
	}
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) WorkerCount() int       { return s.workerCount }
func (s *Scheduler) FreeWorkerCount() int64 { return s.freeWorkers.Load() }
func (s *Scheduler) TempWorkerCount() int64 { return s.tempWorkers.Load() }
func (s *Scheduler) QueueDepth() int        { return s.queue.Len() }

func (s *Scheduler) requireSameScheduler(owner *Scheduler) {
	if owner != s {
		panic(fmt.Errorf("%w", ErrWrongScheduler))
	}
}

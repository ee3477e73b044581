package coro

import (
	"context"
	"sync"

	"github.com/beaversched/corosched/pkg/types"
)

// Body is the function a Token/Task/ParallelFor participant runs. ctx
// carries the worker-context marker the scheduler needs to apply the
// eager work-first heuristic to any nested scheduling the body performs,
// so job bodies should thread ctx through to any further Schedule/Await
// calls rather than substituting context.Background().
type Body[T any] func(ctx context.Context) (T, error)

// tokenCore is the shared engine behind Token/DeferredToken/Task/DeferredTask:
// a promise plus the job that will run fn exactly once. The promise keeps
// both fn's value and its error; Token exposes only the error, while Task's
// Result returns the value as well, read straight from the promise rather
// than through a Future — the Go counterpart of the original's meta_token
// (futuerPtr == nullptr) vs meta_task (owns a future<T>).
type tokenCore[T any] struct {
	sched      *Scheduler
	p          *promise[T]
	j          *job
	launchOnce sync.Once
}

func newTokenCore[T any](s *Scheduler, fn Body[T]) *tokenCore[T] {
	p := newPromise[T](s)
	c := &tokenCore[T]{sched: s, p: p}
	c.j = newJob(p.promiseBase, func(jctx context.Context) {
		v, err := fn(jctx)
		p.setResult(v, err)
	})
	p.setErrorResult = func(err error) {
		var zero T
		p.setResult(zero, err)
	}
	return c
}

// launch enqueues the job if it has not already been dispatched. Safe to
// call multiple times; only the first has an effect. It is also invoked
// automatically by the first Await on a deferred handle.
func (c *tokenCore[T]) launch() {
	c.launchOnce.Do(func() {
		c.sched.enqueueDeferred(c.j)
	})
}

// awaitDone blocks the calling job until the wrapped job reaches Done or
// Canceled, attaching via the promise's Open/Assigned/Closed continuation
// protocol and falling back to the temporary-worker loop only when the
// child genuinely has not finished yet.
func (c *tokenCore[T]) awaitDone(ctx context.Context) {
	switch c.p.State() {
	case types.Done, types.Canceled:
		return
	}
	woke := make(chan struct{})
	attached := c.p.SetContinuation(func() {
		close(woke)
	})
	if !attached {
		return
	}
	c.sched.runUntilReady(ctx, woke)
}

func (c *tokenCore[T]) release() {
	c.j.release()
}

func (c *tokenCore[T]) scheduler() *Scheduler {
	return c.sched
}

// Token is an eagerly-scheduled, fire-and-forget job handle: its error is
// observable via Await, but its value is discarded (the Go analog of
// token<T> in the original, which never stores into a future).
type Token[T any] struct {
	core *tokenCore[T]
}

// NewToken schedules fn immediately — inline if called from inside another
// job body, or onto the shared queue otherwise (see Scheduler.dispatch).
func NewToken[T any](ctx context.Context, s *Scheduler, fn Body[T]) Token[T] {
	c := newTokenCore(s, fn)
	s.dispatch(ctx, c.j)
	return Token[T]{core: c}
}

// Await blocks until the job finishes, returning its error (the value is
// discarded by design — use Task if you need the result).
func (t Token[T]) Await(ctx context.Context) error {
	t.core.awaitDone(ctx)
	return t.core.p.err
}

// State reports the job's current lifecycle state.
func (t Token[T]) State() types.State { return t.core.p.State() }

// Cancel requests cancellation; see promiseBase.Cancel for the
// non-preemptive semantics.
func (t Token[T]) Cancel() bool { return t.core.p.Cancel() }

// Release drops this handle's reference to the job. Call it once you are
// done observing a Token you do not intend to Await to completion.
func (t Token[T]) Release() { t.core.release() }

// DeferredToken is Token's lazily-scheduled counterpart: the job is created
// but never enqueued until Launch or the first Await (the Go analog of
// deferred_token<T>).
type DeferredToken[T any] struct {
	core *tokenCore[T]
}

// NewDeferredToken creates a job without scheduling it.
func NewDeferredToken[T any](s *Scheduler, fn Body[T]) DeferredToken[T] {
	return DeferredToken[T]{core: newTokenCore(s, fn)}
}

// Launch schedules the job if it has not been scheduled yet. Idempotent.
func (t DeferredToken[T]) Launch() { t.core.launch() }

// Scheduler returns the Scheduler this job was created against.
func (t DeferredToken[T]) Scheduler() *Scheduler { return t.core.scheduler() }

// Await launches the job if needed, then blocks until it finishes,
// returning its error.
func (t DeferredToken[T]) Await(ctx context.Context) error {
	t.core.launch()
	t.core.awaitDone(ctx)
	return t.core.p.err
}

func (t DeferredToken[T]) State() types.State { return t.core.p.State() }
func (t DeferredToken[T]) Cancel() bool       { return t.core.p.Cancel() }
func (t DeferredToken[T]) Release()           { t.core.release() }

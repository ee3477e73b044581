package coro

import (
	"context"

	"github.com/beaversched/corosched/pkg/types"
)

// Task is Token's result-retaining counterpart: Result blocks until the job
// finishes and returns both its value and error (the Go analog of task<T>,
// which owns a future<T> the original's meta_task constructs its base with).
type Task[T any] struct {
	core *tokenCore[T]
}

// NewTask schedules fn immediately, like NewToken, but retains the result.
func NewTask[T any](ctx context.Context, s *Scheduler, fn Body[T]) Task[T] {
	c := newTokenCore(s, fn)
	s.dispatch(ctx, c.j)
	return Task[T]{core: c}
}

// Result blocks until the job finishes and returns its value and error.
func (t Task[T]) Result(ctx context.Context) (T, error) {
	t.core.awaitDone(ctx)
	return t.core.p.value, t.core.p.err
}

func (t Task[T]) State() types.State { return t.core.p.State() }
func (t Task[T]) Cancel() bool       { return t.core.p.Cancel() }
func (t Task[T]) Release()           { t.core.release() }

// DeferredTask is Task's lazily-scheduled counterpart (deferred_task<T>).
type DeferredTask[T any] struct {
	core *tokenCore[T]
}

// NewDeferredTask creates a job without scheduling it.
func NewDeferredTask[T any](s *Scheduler, fn Body[T]) DeferredTask[T] {
	return DeferredTask[T]{core: newTokenCore(s, fn)}
}

// Launch schedules the job if it has not been scheduled yet. Idempotent.
func (t DeferredTask[T]) Launch() { t.core.launch() }

// Result launches the job if needed, then blocks until it finishes,
// returning its value and error.
func (t DeferredTask[T]) Result(ctx context.Context) (T, error) {
	t.core.launch()
	t.core.awaitDone(ctx)
	return t.core.p.value, t.core.p.err
}

func (t DeferredTask[T]) State() types.State { return t.core.p.State() }
func (t DeferredTask[T]) Cancel() bool       { return t.core.p.Cancel() }
func (t DeferredTask[T]) Release()           { t.core.release() }

package coro

import (
	"context"
	"sync"
)

// ParallelFor fans every item out onto the scheduler and returns a deferred
// handle that, once launched, waits for all of them via a CounterEvent
// sized to len(items) — the direct translation of schedule/algorithms.hpp's
// parallel_for: each input gets a small wrapper job that awaits it then
// decrements the shared counter, and the returned job simply awaits that
// counter reaching zero.
//
// Every wrapper is built as a DeferredToken and Launch()ed only after the
// whole batch has been constructed, so all N wrappers are enqueued before
// any of them is awaited. An eagerly-dispatched NewToken would instead run
// inline on the calling goroutine (see Scheduler.dispatch's work-first
// heuristic) and block in it.Await before the loop ever reached the next
// item, serializing the whole batch — the original avoids this because
// co_await job suspends and returns control to the loop immediately.
//
// If more than one item errors, the first error observed (not necessarily
// the first in items, since completion order is unspecified) is returned.
func ParallelFor[T any](s *Scheduler, items []DeferredToken[T]) DeferredToken[struct{}] {
	return NewDeferredToken(s, func(ctx context.Context) (struct{}, error) {
		if len(items) == 0 {
			return struct{}{}, nil
		}
		counter := NewCounterEvent(int64(len(items)))
		var mu sync.Mutex
		var firstErr error
		wrappers := make([]DeferredToken[struct{}], 0, len(items))
		for _, it := range items {
			s.requireSameScheduler(it.Scheduler())
			it := it
			wrappers = append(wrappers, NewDeferredToken[struct{}](s, func(jctx context.Context) (struct{}, error) {
				if err := it.Await(jctx); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
				counter.Decrement(1)
				return struct{}{}, nil
			}))
		}
		for _, w := range wrappers {
			w.Launch()
		}
		counter.WaitOn(ctx, s)
		return struct{}{}, firstErr
	})
}

// SequentialFor awaits each item in slice order before starting the next,
// returning a deferred handle for the whole chain — the translation of
// schedule/algorithms.hpp's sequential_for. The original builds this as a
// fold of chained awaitables to avoid recursing the coroutine machinery;
// in Go a plain loop on the returned job's own goroutine achieves the
// identical ordering guarantee without that concern.
func SequentialFor[T any](s *Scheduler, items []DeferredToken[T]) DeferredToken[struct{}] {
	return NewDeferredToken(s, func(ctx context.Context) (struct{}, error) {
		var lastErr error
		for _, it := range items {
			s.requireSameScheduler(it.Scheduler())
			if err := it.Await(ctx); err != nil && lastErr == nil {
				lastErr = err
			}
		}
		return struct{}{}, lastErr
	})
}

package coro

import (
	"context"
	"sync/atomic"
)

// CounterEvent is a single-consumer countdown latch: it starts at a target
// count, Decrement lowers it, and exactly one call to Wait/WaitOn may block
// on it reaching zero. It underlies both Future[T] (target 1) and
// ParallelFor (target len(jobs)).
//
// "Single-consumer" is not enforced by locking out a second waiter — it is
// a usage contract carried over from the original, whose auto-reset OS
// event wakes only one consumer. The event used here is a closed channel,
// so a second concurrent Wait is released as well.
type CounterEvent struct {
	counter atomic.Int64
	ev      *event
}

// NewCounterEvent creates a counter armed to fire once it is decremented to
// zero or below. target must be >= 0; target == 0 is already ready.
func NewCounterEvent(target int64) *CounterEvent {
	c := &CounterEvent{ev: newEvent()}
	c.counter.Store(target)
	if target <= 0 {
		c.ev.Trigger()
	}
	return c
}

// Decrement lowers the counter by n (default meaning of the original's
// decrement(v=1)) and triggers the event the instant the counter reaches
// zero or below.
func (c *CounterEvent) Decrement(n int64) {
	if n <= 0 {
		n = 1
	}
	before := c.counter.Add(-n) + n
	if before > 0 && before-n <= 0 {
		c.ev.Trigger()
	}
}

// IsReady reports whether the counter has reached zero, without blocking.
func (c *CounterEvent) IsReady() bool {
	return c.counter.Load() <= 0
}

// Wait blocks the calling job until the counter reaches zero. If called
// from inside a job body, the calling goroutine becomes a temporary worker
// for the duration (see Scheduler.runUntilReady) instead of idling, so a
// small worker pool cannot deadlock on a job graph that funnels through a
// counter event.
func (c *CounterEvent) Wait(ctx context.Context) {
	if c.IsReady() {
		return
	}
	Get().runUntilReady(ctx, c.ev.Done())
}

// WaitOn is Wait against an explicit Scheduler instead of the process-wide
// default.
func (c *CounterEvent) WaitOn(ctx context.Context, s *Scheduler) {
	if c.IsReady() {
		return
	}
	s.runUntilReady(ctx, c.ev.Done())
}

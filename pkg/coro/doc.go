// ============================================================================
// Corosched Job Scheduler Engine
// ============================================================================
//
// Package: pkg/coro
// Purpose: A cooperative job scheduler that multiplexes suspendable jobs
//          over a fixed worker pool, built on goroutines instead of
//          stackless coroutines.
//
// Design Principles:
//   1. Bounded concurrency - a fixed number of "worker slots" execute job
//      bodies at any instant; jobs that need to block while awaiting a
//      child register as temporary workers instead of sitting idle, so a
//      small pool never deadlocks on a job graph with cross-dependencies.
//   2. FIFO, no work-stealing - every job shares one ready queue.
//   3. Exactly-once parent wakeup - a child job hands off to at most one
//      waiting parent via a three-state Open/Assigned/Closed race, so a
//      parent attaching a continuation can never miss (or double-receive)
//      the child's completion signal.
//
// Core Types:
//   - Scheduler: owns the worker pool and the shared ready queue.
//   - Token[T]/DeferredToken[T]: fire-and-forget handles to a scheduled job.
//   - Task[T]/DeferredTask[T]: handles that retain the job's result.
//   - CounterEvent: single-consumer countdown latch.
//   - Future[T]: single-value CounterEvent-backed promise.
//
// ============================================================================

// Package coro implements the corosched cooperative job scheduler.
package coro

package coro

import (
	"context"

	"github.com/beaversched/corosched/pkg/types"
)

// job is the scheduler's view of one schedulable unit of work: a body
// closure to run plus the promiseBase other jobs can wait on. It is the Go
// analog of a coroutine frame — except there is no separately-allocated
// frame to free, so "release" only needs to clear references so the
// closure and anything it captured become eligible for garbage collection
// once the last waiter lets go.
type job struct {
	body func(ctx context.Context)
	p    *promiseBase
}

func newJob(p *promiseBase, body func(ctx context.Context)) *job {
	return &job{body: body, p: p}
}

// release implements the "last reference releases the frame" rule from
// spec.md §4.F/§4.H: a holder that is done with a job calls release(); if
// the job has finished AND this was the last outstanding reference, the
// closure is dropped here (its only owner). Otherwise the job is simply
// unmarked and left for whichever reference is actually last.
func (j *job) release() {
	remaining := j.p.UnmarkWaited()
	if remaining == 0 {
		switch j.p.State() {
		case types.Done, types.Canceled:
			j.body = nil
		}
	}
}

package coro

import (
	"fmt"
	"sync/atomic"

	"github.com/beaversched/corosched/pkg/types"
)

var nextJobID atomic.Int64

func allocJobID() types.JobID {
	return types.JobID(nextJobID.Add(1))
}

// promiseBase is the scheduler-facing half of a job: its lifecycle state,
// its waiter refcount, and the Open/Assigned/Closed parent-continuation
// handoff. It holds no result value — promise[T] adds that.
//
// The handoff exists to solve one race: a parent job wants to be woken when
// a child finishes, but the child may finish at any moment, including
// concurrently with the parent's attempt to register. Exactly one of the
// two parties must end up responsible for waking the parent:
//
//   - If the parent attaches first (CAS Open->Assigned succeeds), the
//     child's later completion sees Assigned and invokes the stored
//     continuation.
//   - If the child finishes first (CAS Open->Closed succeeds), the parent's
//     later attach attempt sees the CAS fail against Closed and knows the
//     child is already done, so it must proceed without waiting.
//
// Both parties only ever need a single atomic CAS each; there is no window
// in which a continuation can be both stored and missed.
type promiseBase struct {
	id       types.JobID
	sched    *Scheduler
	state    atomic.Int32
	waiters  atomic.Int32
	canceled atomic.Bool

	parentStatus  atomic.Int32
	continuation  atomic.Pointer[func()]
	continuations atomic.Int32 // diagnostic: SetContinuation call count

	// setErrorResult drives the job's typed result to its zero value plus
	// the given error, for every terminal outcome whose body never reached
	// its own setResult call: cancellation, a closed scheduler rejecting
	// the job, or a recovered body panic. It is set once, by tokenCore,
	// before the promise is published to any other goroutine, so Cancel,
	// failClosed, and the scheduler's panic recovery all read it without
	// extra synchronization.
	setErrorResult func(err error)
}

func newPromiseBase(s *Scheduler) *promiseBase {
	p := &promiseBase{id: allocJobID(), sched: s}
	p.state.Store(int32(types.Created))
	p.parentStatus.Store(int32(types.Open))
	p.waiters.Store(1) // the creator holds the first reference
	return p
}

func (p *promiseBase) ID() types.JobID { return p.id }

func (p *promiseBase) State() types.State {
	return types.State(p.state.Load())
}

// trySetState performs the guarded transition from `from` to `to`,
// returning whether it won the race. Used for every transition in
// spec.md's state diagram so that concurrent attempts (e.g. a cancel
// racing a dispatch) never double-apply.
func (p *promiseBase) trySetState(from, to types.State) bool {
	return p.state.CompareAndSwap(int32(from), int32(to))
}

func (p *promiseBase) forceSetState(to types.State) {
	p.state.Store(int32(to))
}

// MarkWaited records an additional outstanding reference to this job
// (e.g. a second Task wrapping the same promise). Paired with
// UnmarkWaited/Release.
func (p *promiseBase) MarkWaited() {
	p.waiters.Add(1)
}

// UnmarkWaited drops one outstanding reference and reports the count
// remaining. When it reaches zero and the job is Done, the caller owns the
// last release and must tear the job down (see job.release).
func (p *promiseBase) UnmarkWaited() int32 {
	return p.waiters.Add(-1)
}

func (p *promiseBase) WaiterCount() int32 {
	return p.waiters.Load()
}

// SetContinuation attempts to attach fn as the job's parent continuation.
// It returns true if fn will be invoked later (by ScheduleParent, exactly
// once), or false if the job is already done, in which case the caller must
// treat the child as complete immediately and must not expect fn to run.
func (p *promiseBase) SetContinuation(fn func()) bool {
	if n := p.continuations.Add(1); n != 1 {
		panic(fmt.Errorf("%w: job %s", ErrParentProtocolViolation, p.id))
	}
	f := fn
	p.continuation.Store(&f)
	return p.parentStatus.CompareAndSwap(int32(types.Open), int32(types.Assigned))
}

// ScheduleParent is called exactly once, when the job transitions to Done
// or Canceled. It hands off to whichever party is attached, per the race
// described on promiseBase.
func (p *promiseBase) ScheduleParent() {
	if p.parentStatus.CompareAndSwap(int32(types.Open), int32(types.Closed)) {
		// No one had attached; nothing to wake.
		return
	}
	// A continuation was (or is about to be) attached; take ownership of
	// invoking it by swapping to Closed unconditionally.
	p.parentStatus.Store(int32(types.Closed))
	if p.sched != nil && p.sched.metrics != nil {
		p.sched.metrics.ParentRescheduled()
	}
	if fn := p.continuation.Load(); fn != nil {
		(*fn)()
	}
}

// Cancel requests cancellation. It only takes effect if the job has not yet
// started running (Created or Scheduled); a job already Processing runs to
// completion, matching the advisory, non-preemptive cancellation semantics
// decided in SPEC_FULL.md §9.
func (p *promiseBase) Cancel() bool {
	p.canceled.Store(true)
	if p.trySetState(types.Created, types.Canceled) || p.trySetState(types.Scheduled, types.Canceled) {
		if p.setErrorResult != nil {
			p.setErrorResult(ErrCanceled)
		}
		if p.sched != nil && p.sched.metrics != nil {
			p.sched.metrics.JobCanceled()
		}
		p.ScheduleParent()
		return true
	}
	return false
}

func (p *promiseBase) CancelRequested() bool {
	return p.canceled.Load()
}

// failClosed drives a job straight to Canceled with ErrSchedulerClosed
// instead of ErrCanceled, for the one case Cancel doesn't cover: a job
// whose Scheduled->Processing transition never happens because the
// scheduler's queue was closed out from under it by Shutdown. Like Cancel,
// it only takes effect from Created or Scheduled and only the CAS winner
// runs setErrorResult/wakes the parent.
func (p *promiseBase) failClosed() bool {
	if p.trySetState(types.Created, types.Canceled) || p.trySetState(types.Scheduled, types.Canceled) {
		if p.setErrorResult != nil {
			p.setErrorResult(ErrSchedulerClosed)
		}
		p.ScheduleParent()
		return true
	}
	return false
}

// promise adds a typed result slot to promiseBase. The value and err
// fields are written at most once, strictly before the job's state becomes
// Done/Canceled and ScheduleParent is invoked, so every reader that
// observes Done (via the state machine or via awaitDone) is guaranteed to
// see a fully-written result with no additional synchronization.
type promise[T any] struct {
	*promiseBase
	value T
	err   error
}

func newPromise[T any](s *Scheduler) *promise[T] {
	return &promise[T]{promiseBase: newPromiseBase(s)}
}

func (p *promise[T]) setResult(v T, err error) {
	p.value = v
	p.err = err
}

// ============================================================================
// Corosched Core Type Definitions
// ============================================================================
//
// Package: pkg/types
// Purpose: Core domain models shared by the scheduler engine, its admin
//          surface, and its demo CLI.
//
// Design Principles:
//   1. Type Safety - custom types prevent primitive obsession (JobID, State)
//   2. Small surface - the engine itself lives in pkg/coro; this package only
//      holds the identifiers and enums that cross package boundaries.
//
// Core Types:
//   - JobID: process-unique job identifier
//   - State: job lifecycle enum (Created/Scheduled/Processing/Suspended/Done/Canceled)
//   - ParentStatus: three-state parent-continuation handoff enum
//
// ============================================================================

// Package types defines the core domain model for the corosched scheduler.
package types

import "strconv"

// JobID uniquely identifies a job within a single Scheduler's lifetime.
type JobID int64

func (id JobID) String() string { return strconv.FormatInt(int64(id), 10) }

// State is the lifecycle state of a job's promise.
//
// Valid transitions:
//
//	Created    -> Scheduled | Canceled
//	Scheduled  -> Processing | Canceled
//	Processing -> Done
//
// Canceled is entered only from Created or Scheduled; a job already
// Processing runs to Done.
//
// Suspended is never actually entered by pkg/coro: a job's nested awaits
// run to completion on whichever goroutine first dequeued it (see
// Scheduler.runBody in pkg/coro), so there is no separate "parked, waiting to be
// resumed" state to observe from outside. It is kept in the enum because
// it is part of the state space a job's promise conceptually occupies
// while blocked inside Await, even though that block never surfaces here.
type State int32

// Job lifecycle states.
const (
	Unknown State = iota
	Created
	Scheduled
	Processing
	Suspended
	Done
	Canceled
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Scheduled:
		return "scheduled"
	case Processing:
		return "processing"
	case Suspended:
		return "suspended"
	case Done:
		return "done"
	case Canceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// ParentStatus tracks the handoff race between a child job finishing and a
// parent job attaching a continuation to it. Exactly one of the two parties
// wins the CAS from Open; the loser is responsible for driving the handoff
// to completion (either by invoking the continuation immediately, or by
// letting the other party's CAS succeed).
type ParentStatus int32

// Parent-continuation handoff states.
const (
	// Closed means no continuation can ever be attached again: either none
	// was ever registered and the child is done, or one was registered and
	// already invoked.
	Closed ParentStatus = iota
	// Open means a continuation may still be attached.
	Open
	// Assigned means a continuation has been attached but not yet invoked.
	Assigned
)

func (p ParentStatus) String() string {
	switch p {
	case Open:
		return "open"
	case Assigned:
		return "assigned"
	default:
		return "closed"
	}
}

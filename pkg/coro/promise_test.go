package coro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beaversched/corosched/pkg/types"
)

func TestSetContinuationBeforeScheduleParentAttaches(t *testing.T) {
	p := newPromiseBase(nil)
	woke := false
	attached := p.SetContinuation(func() { woke = true })
	assert.True(t, attached)
	assert.False(t, woke)
	p.ScheduleParent()
	assert.True(t, woke)
}

// TestScheduleParentBeforeSetContinuationLosesTheRace is the central race
// the parent-continuation protocol exists to resolve: the child finishes
// (and calls ScheduleParent) before the parent ever attaches. The parent
// must see its attach attempt fail (attached == false) and take
// responsibility for checking completion itself, rather than ever losing
// the wakeup silently.
func TestScheduleParentBeforeSetContinuationLosesTheRace(t *testing.T) {
	p := newPromiseBase(nil)
	p.ScheduleParent()
	woke := false
	attached := p.SetContinuation(func() { woke = true })
	assert.False(t, attached)
	assert.False(t, woke, "continuation must never run once the child is already done")
}

func TestSetContinuationTwiceIsAProtocolViolation(t *testing.T) {
	p := newPromiseBase(nil)
	p.SetContinuation(func() {})
	assert.Panics(t, func() { p.SetContinuation(func() {}) })
}

func TestWaiterCountReachesZeroExactlyOnce(t *testing.T) {
	p := newPromiseBase(nil)
	assert.EqualValues(t, 1, p.WaiterCount())
	p.MarkWaited()
	assert.EqualValues(t, 2, p.WaiterCount())
	assert.EqualValues(t, 1, p.UnmarkWaited())
	assert.EqualValues(t, 0, p.UnmarkWaited())
}

func TestCancelOnlyAppliesBeforeProcessing(t *testing.T) {
	p := newPromiseBase(nil)
	require.True(t, p.trySetState(types.Created, types.Scheduled))
	require.True(t, p.trySetState(types.Scheduled, types.Processing))
	assert.False(t, p.Cancel(), "cancel must not affect a job already Processing")
	assert.Equal(t, types.Processing, p.State())
}

func TestCancelRunsSetErrorResultExactlyOnce(t *testing.T) {
	p := newPromiseBase(nil)
	calls := 0
	var gotErr error
	p.setErrorResult = func(err error) { calls++; gotErr = err }
	assert.True(t, p.Cancel())
	assert.ErrorIs(t, gotErr, ErrCanceled)
	assert.Equal(t, 1, calls)
	// A second Cancel call on an already-canceled promise must not
	// re-trigger setErrorResult or re-wake the parent.
	assert.False(t, p.Cancel())
	assert.Equal(t, 1, calls)
}

package coro

import "sync"

// event is a one-shot, manual-reset wait primitive: Trigger may be called
// any number of times (only the first has an effect) and Done() is
// race-free to call before, during, or after Trigger — the same "maybe
// already happened, maybe not yet" shape as the OS event wrapper the
// original scheduler built its counter event on top of.
type event struct {
	once sync.Once
	ch   chan struct{}
}

func newEvent() *event {
	return &event{ch: make(chan struct{})}
}

// Trigger wakes every current and future waiter. Idempotent.
func (e *event) Trigger() {
	e.once.Do(func() { close(e.ch) })
}

// Done returns a channel that is closed once Trigger has been called.
// Selecting on it is the race-free way to ask "has this fired yet".
func (e *event) Done() <-chan struct{} {
	return e.ch
}

// IsTriggered reports whether Trigger has already been called, without
// blocking.
func (e *event) IsTriggered() bool {
	select {
	case <-e.ch:
		return true
	default:
		return false
	}
}

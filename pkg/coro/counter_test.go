package coro

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterEventFiresAtZero(t *testing.T) {
	c := NewCounterEvent(3)
	assert.False(t, c.IsReady())
	c.Decrement(1)
	c.Decrement(1)
	assert.False(t, c.IsReady())
	c.Decrement(1)
	assert.True(t, c.IsReady())
}

func TestCounterEventZeroTargetIsImmediatelyReady(t *testing.T) {
	c := NewCounterEvent(0)
	assert.True(t, c.IsReady())
}

func TestCounterEventWaitUnblocksOnDecrement(t *testing.T) {
	s := New(2)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	}()

	c := NewCounterEvent(1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
		c.Decrement(1)
	}()

	done := make(chan struct{})
	go func() {
		c.WaitOn(context.Background(), s)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitOn did not unblock after Decrement")
	}
	wg.Wait()
}

func TestFutureSetTwicePanics(t *testing.T) {
	f := NewFuture[int]()
	f.Set(1)
	require.Panics(t, func() { f.Set(2) })
}

func TestFutureGetReturnsSetValue(t *testing.T) {
	s := New(1)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	}()

	f := NewFuture[string]()
	go func() {
		time.Sleep(5 * time.Millisecond)
		f.Set("hello")
	}()
	assert.Equal(t, "hello", f.GetOn(context.Background(), s))
}

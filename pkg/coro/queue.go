package coro

import "sync"

// jobQueue is the single shared FIFO ready-queue. Dequeue never blocks
// (spec.md §4.D): an empty queue just returns ok=false, and callers fall
// back to their own backoff/wait strategy (see Scheduler.runUntilReady).
// There is deliberately no work-stealing or per-worker queue — every
// ready job is dispatched in submission order, matching the Non-goals in
// spec.md §1.
type jobQueue struct {
	mu     sync.Mutex
	items  []*job
	closed bool
}

func newJobQueue() *jobQueue {
	return &jobQueue{}
}

// Enqueue appends a ready job. It is a no-op once Close has been called,
// mirroring the teacher's closed-channel guard in worker_pool.go.
func (q *jobQueue) Enqueue(j *job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, j)
	return true
}

// Dequeue pops the oldest ready job, or (nil, false) if the queue is empty.
func (q *jobQueue) Dequeue() (*job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	j := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return j, true
}

func (q *jobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close prevents further Enqueue calls and returns whatever remained
// queued, for Scheduler.Shutdown to account for (and cancel).
func (q *jobQueue) Close() []*job {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	rest := q.items
	q.items = nil
	return rest
}

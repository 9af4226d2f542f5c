// FILE: lixenwraith/logsink/queue.go
package logsink

import (
	"sync"
	"time"
)

// BoundedQueue is a FIFO queue with a fixed capacity and non-blocking enqueue.
// A capacity <= 0 makes it unbounded. Every accepted item counts as unfinished
// until the consumer calls Done, which is what WaitUntilEmpty waits on.
type BoundedQueue[T any] struct {
	mu       sync.Mutex
	items    []T
	head     int
	capacity int

	unfinished int
	idle       chan struct{} // closed while unfinished == 0
	notEmpty   chan struct{} // capacity 1, a token means "items may be available"
}

// NewBoundedQueue creates a queue with the given capacity
func NewBoundedQueue[T any](capacity int) *BoundedQueue[T] {
	idle := make(chan struct{})
	close(idle)
	return &BoundedQueue[T]{
		capacity: capacity,
		idle:     idle,
		notEmpty: make(chan struct{}, 1),
	}
}

// TryEnqueue appends v if there is room and never blocks
func (q *BoundedQueue[T]) TryEnqueue(v T) bool {
	q.mu.Lock()
	if q.capacity > 0 && q.lenLocked() >= q.capacity {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, v)
	if q.unfinished == 0 {
		q.idle = make(chan struct{})
	}
	q.unfinished++
	q.mu.Unlock()

	q.signal()
	return true
}

// DequeueWithTimeout removes the oldest item, waiting up to timeout for one to arrive
func (q *BoundedQueue[T]) DequeueWithTimeout(timeout time.Duration) (T, bool) {
	if v, ok := q.tryDequeue(); ok {
		return v, true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-q.notEmpty:
			if v, ok := q.tryDequeue(); ok {
				return v, true
			}
		case <-timer.C:
			return q.tryDequeue()
		}
	}
}

func (q *BoundedQueue[T]) tryDequeue() (T, bool) {
	var zero T

	q.mu.Lock()
	if q.lenLocked() == 0 {
		q.mu.Unlock()
		return zero, false
	}
	v := q.items[q.head]
	q.items[q.head] = zero
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 1024 && q.head*2 >= len(q.items) {
		// Compact once the consumed prefix dominates the backing array
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	remaining := q.lenLocked()
	q.mu.Unlock()

	// Pass the token on so other waiting consumers see what is left
	if remaining > 0 {
		q.signal()
	}
	return v, true
}

func (q *BoundedQueue[T]) signal() {
	select {
	case q.notEmpty <- struct{}{}:
	default:
	}
}

func (q *BoundedQueue[T]) lenLocked() int {
	return len(q.items) - q.head
}

// Done marks one dequeued item as processed
func (q *BoundedQueue[T]) Done() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.unfinished <= 0 {
		return
	}
	q.unfinished--
	if q.unfinished == 0 {
		close(q.idle)
	}
}

// IsEmpty reports whether no items are waiting to be dequeued
func (q *BoundedQueue[T]) IsEmpty() bool {
	return q.Len() == 0
}

// Len returns the number of items waiting to be dequeued
func (q *BoundedQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lenLocked()
}

// Cap returns the capacity, <= 0 meaning unbounded
func (q *BoundedQueue[T]) Cap() int {
	return q.capacity
}

// Pending returns the number of accepted items not yet marked Done
func (q *BoundedQueue[T]) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.unfinished
}

// WaitUntilEmpty blocks until every accepted item has been dequeued and marked Done
func (q *BoundedQueue[T]) WaitUntilEmpty() {
	<-q.idleChan()
}

// WaitUntilEmptyTimeout is WaitUntilEmpty bounded by timeout; false on timeout
func (q *BoundedQueue[T]) WaitUntilEmptyTimeout(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-q.idleChan():
		return true
	case <-timer.C:
		return false
	}
}

func (q *BoundedQueue[T]) idleChan() <-chan struct{} {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.idle
}

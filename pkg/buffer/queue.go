package buffer

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrIteratorDone is returned by Next once the write side is closed and every
// queued element has been consumed.
var ErrIteratorDone = errors.New("buffer: iterator done")

// Queue is a thread-safe fixed-capacity FIFO. Add blocks while the queue is
// full and Next blocks while it is empty.
type Queue[T any] struct {
	mu   sync.Mutex
	cond *sync.Cond

	items      []T
	head, size int
	closeWrite bool
	closeErr   error
}

// NewQueue creates a Queue holding at most capacity elements. A capacity
// below 1 is treated as 1.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	q := &Queue[T]{items: make([]T, capacity)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Add appends t, blocking until there is room. It fails once the queue has
// been closed for writing or closed with an error.
func (q *Queue[T]) Add(t T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if q.closeErr != nil {
			return fmt.Errorf("buffer: add to closed queue: %w", q.closeErr)
		}
		if q.closeWrite {
			return fmt.Errorf("buffer: add to closed queue: %w", io.ErrClosedPipe)
		}
		if q.size < len(q.items) {
			break
		}
		q.cond.Wait()
	}
	q.items[(q.head+q.size)%len(q.items)] = t
	q.size++
	q.cond.Broadcast()
	return nil
}

// Next removes and returns the oldest element, blocking until one is
// available. After CloseWrite it drains the remaining elements and then
// returns ErrIteratorDone.
func (q *Queue[T]) Next() (t T, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.size == 0 {
		if q.closeErr != nil {
			return t, fmt.Errorf("buffer: next on closed queue: %w", q.closeErr)
		}
		if q.closeWrite {
			return t, ErrIteratorDone
		}
		q.cond.Wait()
	}
	if q.closeErr != nil {
		return t, fmt.Errorf("buffer: next on closed queue: %w", q.closeErr)
	}
	var zero T
	t = q.items[q.head]
	q.items[q.head] = zero
	q.head = (q.head + 1) % len(q.items)
	q.size--
	q.cond.Broadcast()
	return t, nil
}

// CloseWrite ends the write side. Queued elements remain readable.
func (q *Queue[T]) CloseWrite() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closeWrite {
		q.closeWrite = true
		q.cond.Broadcast()
	}
	return nil
}

// CloseWithError closes both sides. Pending and future Add and Next calls
// return err (io.ErrClosedPipe when err is nil). Only the first error is
// kept.
func (q *Queue[T]) CloseWithError(err error) error {
	if err == nil {
		err = io.ErrClosedPipe
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closeErr == nil {
		q.closeErr = err
		q.closeWrite = true
		q.cond.Broadcast()
	}
	return nil
}

// Close is CloseWithError(io.ErrClosedPipe).
func (q *Queue[T]) Close() error {
	return q.CloseWithError(io.ErrClosedPipe)
}

// Error returns the error the queue was closed with, if any.
func (q *Queue[T]) Error() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closeErr
}

// Len returns the number of queued elements.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

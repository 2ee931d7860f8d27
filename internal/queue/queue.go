// Package queue implements the fixed-capacity single-producer/single-consumer
// channel that carries record messages from the reader thread to the
// summarizer.
package queue

import "context"

// Queue is a bounded blocking FIFO of messages of type T. It is backed by a
// native Go channel: Push blocks when the queue is full, Pop blocks when it
// is empty, and values are delivered in send order. A Queue has exactly one
// producer and one consumer.
type Queue[T any] struct {
	ch chan T
}

// New creates a Queue with the given capacity. Capacity 0 yields an
// unbuffered (fully synchronous) queue.
func New[T any](capacity int) *Queue[T] {
	return &Queue[T]{ch: make(chan T, capacity)}
}

// Push enqueues v, blocking until there is room or ctx is cancelled.
func (q *Queue[T]) Push(ctx context.Context, v T) error {
	select {
	case q.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pop dequeues the next value, blocking until one is available, the queue is
// closed, or ctx is cancelled. ok is false only when the queue is closed and
// drained.
func (q *Queue[T]) Pop(ctx context.Context) (v T, ok bool, err error) {
	select {
	case v, ok = <-q.ch:
		return v, ok, nil
	case <-ctx.Done():
		return v, false, ctx.Err()
	}
}

// Close closes the underlying channel. Only the producer may call Close, and
// only after it has pushed its final message.
func (q *Queue[T]) Close() {
	close(q.ch)
}

// Len reports the number of messages currently buffered. Useful for tests
// and diagnostics only — not part of the synchronization contract.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}

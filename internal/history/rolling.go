// Package history keeps a short, fixed-size window of recent samples.
package history

import (
	"errors"
	"fmt"
	"iter"
)

var (
	ErrInvalidCapacity = errors.New("history capacity must be positive")
	ErrIndexOutOfRange = errors.New("history index out of range")
)

// Rolling is a fixed-capacity buffer ordered most-recent-first. Index 0 is
// the head (newest sample) and Cap()-1 the tail (oldest retained sample).
//
// A new Rolling is zero-filled: until Cap() samples have been pushed the
// older slots hold the zero value of T, and callers see those values as
// regular samples.
type Rolling[T any] struct {
	buf  []T
	head int // slot of the most recent sample
}

// New creates a zero-filled history holding exactly capacity samples.
func New[T any](capacity int) (*Rolling[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	return &Rolling[T]{
		buf: make([]T, capacity),
	}, nil
}

// Push makes val the new head and discards the tail.
func (r *Rolling[T]) Push(val T) {
	r.head = (r.head - 1 + len(r.buf)) % len(r.buf)
	r.buf[r.head] = val
}

// At returns the sample idx positions behind the head.
func (r *Rolling[T]) At(idx int) (T, error) {
	if idx < 0 || idx >= len(r.buf) {
		var zero T
		return zero, fmt.Errorf("%w: index %d, capacity %d", ErrIndexOutOfRange, idx, len(r.buf))
	}
	return r.buf[r.slot(idx)], nil
}

// Head returns the most recent sample.
func (r *Rolling[T]) Head() T {
	return r.buf[r.head]
}

// Tail returns the oldest retained sample.
func (r *Rolling[T]) Tail() T {
	return r.buf[r.slot(len(r.buf)-1)]
}

// Cap returns the fixed capacity.
func (r *Rolling[T]) Cap() int {
	return len(r.buf)
}

// Values returns a copy of the contents, head first.
func (r *Rolling[T]) Values() []T {
	result := make([]T, len(r.buf))
	n := copy(result, r.buf[r.head:])
	copy(result[n:], r.buf[:r.head])
	return result
}

// All yields (index, sample) pairs from head to tail. The contents are
// captured when All is called; pushes made while ranging are not seen.
func (r *Rolling[T]) All() iter.Seq2[int, T] {
	snapshot := r.Values()
	return func(yield func(int, T) bool) {
		for i, v := range snapshot {
			if !yield(i, v) {
				return
			}
		}
	}
}

func (r *Rolling[T]) slot(idx int) int {
	return (r.head + idx) % len(r.buf)
}

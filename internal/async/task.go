// Package async provides a small awaitable result type for work that runs
// off the caller's goroutine.
package async

import (
	"context"
	"sync"
)

// Task is the eventual result of a function started with Go.
type Task[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Go runs fn on a new goroutine and returns a Task for its result.
func Go[T any](fn func() (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.val, t.err = fn()
	}()
	return t
}

// Done returns a channel closed when the result is ready.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Await blocks until the result is ready or ctx is done.
func (t *Task[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.val, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Sequencer hands out monotonically increasing tokens per key and tells
// whether a token is still the newest one issued for its key.
type Sequencer struct {
	mu   sync.Mutex
	last map[string]uint64
}

// Next issues a new token for key.
func (s *Sequencer) Next(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		s.last = make(map[string]uint64)
	}
	s.last[key]++
	return s.last[key]
}

// Current returns the newest token issued for key (0 if none).
func (s *Sequencer) Current(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[key]
}

// IsCurrent reports whether token is the newest issued for key.
func (s *Sequencer) IsCurrent(key string, token uint64) bool {
	return s.Current(key) == token
}

// Snapshot copies the newest token of every key.
func (s *Sequencer) Snapshot() map[string]uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]uint64, len(s.last))
	for k, v := range s.last {
		out[k] = v
	}
	return out
}

// Package store provides a generic in-memory state container that notifies
// subscribers synchronously after every mutation.
//
// A Store holds a value of type T. Domain packages wrap a Store and expose
// their own action methods; callers never mutate the snapshot directly.
// Snapshots are copied by value, so reference fields inside T (maps, slices,
// pointers) must be replaced rather than modified in place by actions.
package store

import "sync"

// Listener is invoked after each mutation with the new and previous snapshots.
type Listener[T any] func(state, prev T)

// Patch mutates a draft copy of the current snapshot. Fields left untouched
// keep their current value, which gives shallow-merge semantics.
type Patch[T any] func(draft *T)

type subscription[T any] struct {
	listener Listener[T]
}

// Store is a reactive state container.
//
// Store is safe for concurrent use. A mutation and the snapshot of listeners
// for its notification pass are taken atomically; the pass itself runs
// outside the lock so listeners may call back into the store.
type Store[T any] struct {
	mu     sync.Mutex
	state  T
	subs   []*subscription[T]
	passes uint64
}

// New creates a store holding initial.
func New[T any](initial T) *Store[T] {
	return &Store[T]{state: initial}
}

// GetState returns the current snapshot.
func (s *Store[T]) GetState() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetState applies patch to a copy of the current snapshot, installs the
// result and notifies every subscriber exactly once before returning.
func (s *Store[T]) SetState(patch Patch[T]) {
	s.Update(func(current T) T {
		next := current
		if patch != nil {
			patch(&next)
		}
		return next
	})
}

// Update replaces the snapshot with fn(current) and notifies subscribers.
// fn must be pure; it runs while the store is locked.
func (s *Store[T]) Update(fn func(current T) T) {
	s.mu.Lock()
	prev := s.state
	s.state = fn(prev)
	next := s.state
	s.passes++
	pass := make([]*subscription[T], len(s.subs))
	copy(pass, s.subs)
	s.mu.Unlock()

	for _, sub := range pass {
		sub.listener(next, prev)
	}
}

// Subscribe registers listener and returns a function that removes it.
// Listeners are notified in subscription order. Unsubscribing during a
// notification pass leaves that pass untouched; the listener is skipped
// from the next pass on.
func (s *Store[T]) Subscribe(listener Listener[T]) (unsubscribe func()) {
	sub := &subscription[T]{listener: listener}

	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, candidate := range s.subs {
				if candidate == sub {
					s.subs = append(s.subs[:i], s.subs[i+1:]...)
					break
				}
			}
		})
	}
}

// Len reports the number of active subscribers.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Passes reports how many notification passes have started.
func (s *Store[T]) Passes() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passes
}

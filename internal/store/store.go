// Package store keeps the latest server snapshot of one kind of data.
package store

import "sync"

type Snapshot[T any] struct {
	Value  T
	Seq    uint64
	Loaded bool
}

// Store holds one snapshot that is only ever replaced as a whole. Readers get
// a copy made by clone, so nothing handed out aliases the stored value.
type Store[T any] struct {
	mu    sync.RWMutex
	cur   Snapshot[T]
	clone func(T) T
}

func New[T any](clone func(T) T) *Store[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Store[T]{clone: clone}
}

// Replace installs v as the snapshot produced by refresh seq. A snapshot
// older than the stored one is rejected and false is returned.
func (s *Store[T]) Replace(seq uint64, v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur.Loaded && seq < s.cur.Seq {
		return false
	}
	s.cur = Snapshot[T]{Value: s.clone(v), Seq: seq, Loaded: true}
	return true
}

func (s *Store[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur = Snapshot[T]{}
}

func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.cur
	if snap.Loaded {
		snap.Value = s.clone(snap.Value)
	}
	return snap
}

package models

import "sync"

// Item is anything that can live in a Store.
type Item interface {
	ItemID() int64
}

// Store is a concurrency-safe ordered collection with a derived filtered
// order. The controller goroutine is the only writer; the UI goroutine reads
// through short-lived locked borrows and never holds a lock across a blocking
// operation.
type Store[T Item] struct {
	mu       sync.RWMutex
	order    []int64
	filtered []int64
	items    map[int64]T
}

// NewStore creates a store containing the given items in order. The filtered
// order starts out identical to the full order.
func NewStore[T Item](items []T) *Store[T] {
	s := &Store[T]{items: make(map[int64]T)}
	for _, it := range items {
		id := it.ItemID()
		s.order = append(s.order, id)
		s.filtered = append(s.filtered, id)
		s.items[id] = it
	}
	return s
}

// Len returns the number of items in the unfiltered collection.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// FilteredLen returns the number of items visible under the current filter.
func (s *Store[T]) FilteredLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filtered)
}

// IsEmpty reports whether the unfiltered collection has no items.
func (s *Store[T]) IsEmpty() bool {
	return s.Len() == 0
}

// FilteredIDAt returns the ID at the given position in the filtered order.
func (s *Store[T]) FilteredIDAt(pos int) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if pos < 0 || pos >= len(s.filtered) {
		return 0, false
	}
	return s.filtered[pos], true
}

// Get returns the item with the given ID.
func (s *Store[T]) Get(id int64) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	return it, ok
}

// Borrow runs fn on the item with the given ID while holding the read lock.
// It reports whether the item existed. fn must not block or re-enter the
// store.
func (s *Store[T]) Borrow(id int64, fn func(T)) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	if !ok {
		return false
	}
	fn(it)
	return true
}

// EachFiltered runs fn over every item in filtered order while holding the
// read lock.
func (s *Store[T]) EachFiltered(fn func(pos int, item T)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, id := range s.filtered {
		if it, ok := s.items[id]; ok {
			fn(i, it)
		}
	}
}

// Each runs fn over every item in unfiltered order while holding the read
// lock.
func (s *Store[T]) Each(fn func(item T)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if it, ok := s.items[id]; ok {
			fn(it)
		}
	}
}

// Add appends an item to the end of both orders.
func (s *Store[T]) Add(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := item.ItemID()
	if _, exists := s.items[id]; !exists {
		s.order = append(s.order, id)
		s.filtered = append(s.filtered, id)
	}
	s.items[id] = item
}

// Remove deletes the item with the given ID from the store.
func (s *Store[T]) Remove(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	s.order = removeID(s.order, id)
	s.filtered = removeID(s.filtered, id)
	return true
}

// Replace swaps the entire contents of the store. The filtered order resets
// to the full order.
func (s *Store[T]) Replace(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = s.order[:0]
	s.filtered = s.filtered[:0]
	s.items = make(map[int64]T, len(items))
	for _, it := range items {
		id := it.ItemID()
		s.order = append(s.order, id)
		s.filtered = append(s.filtered, id)
		s.items[id] = it
	}
}

// Mutate runs fn on the item with the given ID while holding the write lock.
func (s *Store[T]) Mutate(id int64, fn func(T)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return false
	}
	fn(it)
	return true
}

// MutateAll runs fn on every item in order while holding the write lock.
func (s *Store[T]) MutateAll(fn func(T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		if it, ok := s.items[id]; ok {
			fn(it)
		}
	}
}

// ApplyFilter rebuilds the filtered order from the full order, keeping the
// items for which keep returns true.
func (s *Store[T]) ApplyFilter(keep func(T) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filtered = s.filtered[:0]
	for _, id := range s.order {
		if it, ok := s.items[id]; ok && keep(it) {
			s.filtered = append(s.filtered, id)
		}
	}
}

// ClearFilter resets the filtered order to the full order.
func (s *Store[T]) ClearFilter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filtered = append(s.filtered[:0], s.order...)
}

func removeID(ids []int64, id int64) []int64 {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

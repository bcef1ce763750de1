// Package store holds the in-memory, ordered to-do list.
//
// Items are addressed by position. Any mutation shifts the indexes of the
// items after it, so callers must re-read a snapshot before reusing an index.
// A Store is owned by a single goroutine; there is no locking.
package store

import (
	"errors"
	"fmt"

	"github.com/idilsaglam/tada/internal/model"
)

// ErrIndexOutOfRange is matched by every *IndexError.
var ErrIndexOutOfRange = errors.New("index out of range")

// IndexError reports an index outside the valid range for an operation.
type IndexError struct {
	Op    string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index out of range: have %d, got %d", e.Op, e.Len, e.Index)
}

func (e *IndexError) Is(target error) bool { return target == ErrIndexOutOfRange }

// Store is the canonical ordered sequence of items.
type Store struct {
	items []model.Item

	subs   map[int]func([]model.Item)
	nextID int
}

// New returns an empty store.
func New() *Store {
	return &Store{items: []model.Item{}}
}

// Len returns the number of items.
func (s *Store) Len() int { return len(s.items) }

// Insert places item at index, shifting later items by one.
// index must be in [0, Len()].
func (s *Store) Insert(index int, item model.Item) error {
	if index < 0 || index > len(s.items) {
		return &IndexError{Op: "insert", Index: index, Len: len(s.items)}
	}
	s.items = append(s.items, model.Item{})
	copy(s.items[index+1:], s.items[index:])
	s.items[index] = item
	s.notify()
	return nil
}

// Remove deletes and returns the item at index. index must be in [0, Len()).
func (s *Store) Remove(index int) (model.Item, error) {
	if index < 0 || index >= len(s.items) {
		return model.Item{}, &IndexError{Op: "remove", Index: index, Len: len(s.items)}
	}
	it := s.items[index]
	s.items = append(s.items[:index], s.items[index+1:]...)
	s.notify()
	return it, nil
}

// Toggle flips the completion flag of the item at index and returns it.
func (s *Store) Toggle(index int) (model.Item, error) {
	if index < 0 || index >= len(s.items) {
		return model.Item{}, &IndexError{Op: "toggle", Index: index, Len: len(s.items)}
	}
	s.items[index].Completed = !s.items[index].Completed
	it := s.items[index]
	s.notify()
	return it, nil
}

// Snapshot returns a copy of the current sequence.
func (s *Store) Snapshot() []model.Item {
	out := make([]model.Item, len(s.items))
	copy(out, s.items)
	return out
}

// ReplaceAll discards the current content and installs a copy of items.
func (s *Store) ReplaceAll(items []model.Item) {
	s.items = make([]model.Item, len(items))
	copy(s.items, items)
	s.notify()
}

// Subscribe registers fn to be called with a fresh snapshot after every
// change. The returned func removes the subscription.
func (s *Store) Subscribe(fn func([]model.Item)) (cancel func()) {
	if s.subs == nil {
		s.subs = make(map[int]func([]model.Item))
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() { delete(s.subs, id) }
}

func (s *Store) notify() {
	if len(s.subs) == 0 {
		return
	}
	for _, fn := range s.subs {
		fn(s.Snapshot())
	}
}

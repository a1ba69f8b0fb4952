// SortedSet is a persisted ordered set: a SortedMap[T, struct{}] with a
// unit-value codec, so membership costs nothing beyond the key.
package triplestore

import "iter"

type unitCodec struct{}

func (unitCodec) Encode(struct{}) ([]byte, error) { return nil, nil }
func (unitCodec) Decode([]byte) (struct{}, error) { return struct{}{}, nil }

// SortedSet is an ordered set of T, backed by a persisted AA-tree.
type SortedSet[T any] struct {
	m *SortedMap[T, struct{}]
}

// NewSortedSet returns a SortedSet over heap, starting from root (0 for
// an empty set).
func NewSortedSet[T any](heap *Heap, root int64, codec Codec[T]) *SortedSet[T] {
	return &SortedSet[T]{m: NewSortedMap[T, struct{}](heap, root, codec, unitCodec{})}
}

// Root returns the current tree root offset.
func (s *SortedSet[T]) Root() int64 { return s.m.Root() }

// Contains reports whether v is a member.
func (s *SortedSet[T]) Contains(v T) (bool, error) {
	_, ok, err := s.m.Get(v)
	return ok, err
}

// Add inserts v, a no-op if already present.
func (s *SortedSet[T]) Add(v T) error {
	return s.m.Set(v, struct{}{})
}

// Remove deletes v, reporting whether it was present.
func (s *SortedSet[T]) Remove(v T) (bool, error) {
	return s.m.Delete(v)
}

// Clear removes every member, freeing all backing nodes.
func (s *SortedSet[T]) Clear() error {
	return s.m.Clear()
}

// All enumerates every member in ascending order.
func (s *SortedSet[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for k := range s.m.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// From enumerates every member >= from, in ascending order.
func (s *SortedSet[T]) From(from T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for k := range s.m.From(from) {
			if !yield(k) {
				return
			}
		}
	}
}

// SortedMap is a persisted ordered map keyed by bytes produced from a
// Codec[K], iterable in ascending key order via the underlying AA-tree.
// Root offset management (where the tree's root pointer lives) is the
// caller's responsibility — typically a Heap named root or a field in
// another persisted structure.
package triplestore

import "iter"

// SortedMap layers typed keys and values over a persisted AA-tree.
type SortedMap[K, V any] struct {
	tree     *aaTree
	root     int64
	keyCodec Codec[K]
	valCodec Codec[V]
}

// NewSortedMap returns a SortedMap over heap, starting from the given
// root offset (0 for an empty map).
func NewSortedMap[K, V any](heap *Heap, root int64, keyCodec Codec[K], valCodec Codec[V]) *SortedMap[K, V] {
	return &SortedMap[K, V]{tree: newAATree(heap), root: root, keyCodec: keyCodec, valCodec: valCodec}
}

// Root returns the current tree root offset, to be persisted by the
// caller (e.g. via Heap.SetRoot) after mutating calls.
func (m *SortedMap[K, V]) Root() int64 { return m.root }

// Get looks up key, returning ok=false if absent.
func (m *SortedMap[K, V]) Get(key K) (value V, ok bool, err error) {
	var zero V
	kb, err := m.keyCodec.Encode(key)
	if err != nil {
		return zero, false, err
	}
	vb, found, err := m.tree.get(m.root, kb)
	if err != nil || !found {
		return zero, false, err
	}
	v, err := m.valCodec.Decode(vb)
	return v, true, err
}

// Set inserts or overwrites key=value. The map's Root must be
// re-persisted by the caller after this call, since insertion can
// change which node is the root.
func (m *SortedMap[K, V]) Set(key K, value V) error {
	kb, err := m.keyCodec.Encode(key)
	if err != nil {
		return err
	}
	vb, err := m.valCodec.Encode(value)
	if err != nil {
		return err
	}
	newRoot, _, err := m.tree.insert(m.root, kb, vb)
	if err != nil {
		return err
	}
	m.root = newRoot
	return nil
}

// Delete removes key if present, reporting whether it was found.
func (m *SortedMap[K, V]) Delete(key K) (bool, error) {
	kb, err := m.keyCodec.Encode(key)
	if err != nil {
		return false, err
	}
	newRoot, removed, err := m.tree.delete(m.root, kb)
	if err != nil {
		return false, err
	}
	m.root = newRoot
	return removed, nil
}

// Clear removes every entry, freeing all backing nodes and resetting
// the root to empty.
func (m *SortedMap[K, V]) Clear() error {
	if err := m.tree.clearAll(m.root); err != nil {
		return err
	}
	m.root = 0
	return nil
}

// All enumerates every (key, value) pair in ascending key order.
func (m *SortedMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		_, _ = m.tree.ascend(m.root, func(kb, vb []byte) bool {
			k, err := m.keyCodec.Decode(kb)
			if err != nil {
				return false
			}
			v, err := m.valCodec.Decode(vb)
			if err != nil {
				return false
			}
			return yield(k, v)
		})
	}
}

// From enumerates every (key, value) pair with key >= from, in
// ascending order — the primitive behind Range constraint cursors.
func (m *SortedMap[K, V]) From(from K) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		fb, err := m.keyCodec.Encode(from)
		if err != nil {
			return
		}
		_, _ = m.tree.seekAscend(m.root, fb, func(kb, vb []byte) bool {
			k, err := m.keyCodec.Decode(kb)
			if err != nil {
				return false
			}
			v, err := m.valCodec.Decode(vb)
			if err != nil {
				return false
			}
			return yield(k, v)
		})
	}
}

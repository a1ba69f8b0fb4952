// Allocator lifts raw heap offsets into persisted logical objects of a
// Go type T. The three implementations in this package differ only in
// what "persisted" means for a value: Null writes every value to a block
// of its own with no sharing or counting, Singleton deduplicates equal values
// behind one shared, reference-counted offset, and Reference delegates
// entirely to an already-persisted object's own reference count.
package triplestore

// Allocator allocates, looks up, retains, and releases persisted values
// of type T against a Heap.
type Allocator[T any] interface {
	// Alloc persists v, returning its offset. Calling Alloc with an
	// equal value more than once may or may not return the same offset,
	// depending on the implementation.
	Alloc(v T) (int64, error)

	// Get reads the value persisted at offset.
	Get(offset int64) (T, error)

	// Retain increments the reference count at offset, if the
	// implementation tracks one. Implementations that do not track
	// reference counts treat this as a no-op.
	Retain(offset int64) error

	// Release decrements the reference count at offset and frees the
	// underlying storage once it reaches zero.
	Release(offset int64) error
}

// NullAllocator persists each value independently: Alloc always writes
// a fresh block, and Release always frees it immediately, with no
// reference counting. It suits values that are never shared. Each block
// holds the encoded value behind an 8-byte length, since a block's
// payload can be longer than what was written into it.
type NullAllocator[T any] struct {
	heap  *Heap
	codec Codec[T]
}

// NewNullAllocator returns a NullAllocator that encodes values with codec.
func NewNullAllocator[T any](heap *Heap, codec Codec[T]) *NullAllocator[T] {
	return &NullAllocator[T]{heap: heap, codec: codec}
}

func (a *NullAllocator[T]) Alloc(v T) (int64, error) {
	buf, err := a.codec.Encode(v)
	if err != nil {
		return 0, err
	}
	buf = append(encodeI64(int64(len(buf))), buf...)
	offset, err := a.heap.Alloc(int64(len(buf)))
	if err != nil {
		return 0, err
	}
	if err := a.heap.Set(offset, buf); err != nil {
		return 0, err
	}
	if err := a.heap.validateIfConfigured(); err != nil {
		return 0, err
	}
	return offset, nil
}

func (a *NullAllocator[T]) Get(offset int64) (T, error) {
	var zero T
	buf, err := a.heap.Get(offset)
	if err != nil {
		return zero, err
	}
	buf = buf[8 : 8+decodeI64(buf[0:8])]
	return a.codec.Decode(buf)
}

func (a *NullAllocator[T]) Retain(offset int64) error { return nil }

func (a *NullAllocator[T]) Release(offset int64) error {
	if err := a.heap.Free(offset); err != nil {
		return err
	}
	return a.heap.validateIfConfigured()
}

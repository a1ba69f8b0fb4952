package triplestore

// SingletonAllocator interns values: equal values share one persisted,
// reference-counted offset. A probe filter guards the AA-tree index so
// a definite miss never costs a tree descent. The tree is keyed by the
// value's own encoded bytes (via keyCodec) and maps to a small record
// holding the refcount and the offset of the payload: the Codec-encoded
// value behind an 8-byte length, since a block's payload can be longer
// than what was written into it.
type SingletonAllocator[T any] struct {
	heap     *Heap
	codec    Codec[T]
	keyCodec Codec[T]
	index    *SortedMap[T, singletonEntry]
	filter   *probeFilter
}

type singletonEntry struct {
	refcount int64
	offset   int64
}

func (singletonEntryCodec) Encode(e singletonEntry) ([]byte, error) {
	buf := make([]byte, 16)
	putI64(buf[0:8], e.refcount)
	putI64(buf[8:16], e.offset)
	return buf, nil
}

func (singletonEntryCodec) Decode(buf []byte) (singletonEntry, error) {
	return singletonEntry{refcount: getI64(buf[0:8]), offset: getI64(buf[8:16])}, nil
}

type singletonEntryCodec struct{}

func putI64(buf []byte, v int64) { copy(buf, encodeI64(v)) }
func getI64(buf []byte) int64    { return decodeI64(buf) }

// NewSingletonAllocator returns a SingletonAllocator rooted at
// indexRoot (0 for a fresh, empty index), deduplicating values of type
// T by their keyCodec encoding and persisting payloads with codec.
// alg selects the probe filter's hash algorithm; 0 uses the heap's
// HeapConfig.HashAlgorithm.
func NewSingletonAllocator[T any](heap *Heap, indexRoot int64, codec, keyCodec Codec[T], alg int) *SingletonAllocator[T] {
	if alg == 0 {
		alg = heap.config.HashAlgorithm
	}
	a := &SingletonAllocator[T]{
		heap:     heap,
		codec:    codec,
		keyCodec: keyCodec,
		index:    NewSortedMap[T, singletonEntry](heap, indexRoot, keyCodec, singletonEntryCodec{}),
		filter:   newProbeFilter(alg),
	}
	if indexRoot != 0 {
		a.rebuildFilter()
	}
	return a
}

func (a *SingletonAllocator[T]) rebuildFilter() {
	a.filter.Reset()
	for k := range a.index.All() {
		kb, err := a.keyCodec.Encode(k)
		if err != nil {
			continue
		}
		a.filter.Add(string(kb))
	}
}

// IndexRoot returns the current AA-tree root offset backing the
// dedup index, to be persisted by the caller.
func (a *SingletonAllocator[T]) IndexRoot() int64 { return a.index.Root() }

// Alloc returns the shared offset for v, incrementing its reference
// count. If v has not been seen before, it is persisted and the
// refcount starts at 1.
func (a *SingletonAllocator[T]) Alloc(v T) (int64, error) {
	kb, err := a.keyCodec.Encode(v)
	if err != nil {
		return 0, err
	}
	if a.filter.MaybeContains(string(kb)) {
		entry, ok, err := a.index.Get(v)
		if err != nil {
			return 0, err
		}
		if ok {
			entry.refcount++
			if err := a.index.Set(v, entry); err != nil {
				return 0, err
			}
			return entry.offset, nil
		}
	}

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
	if err := a.index.Set(v, singletonEntry{refcount: 1, offset: offset}); err != nil {
		return 0, err
	}
	a.filter.Add(string(kb))
	return offset, a.heap.validateIfConfigured()
}

// Get reads the interned value at offset.
func (a *SingletonAllocator[T]) Get(offset int64) (T, error) {
	var zero T
	buf, err := a.heap.Get(offset)
	if err != nil {
		return zero, err
	}
	buf = buf[8 : 8+decodeI64(buf[0:8])]
	return a.codec.Decode(buf)
}

// Retain increments the reference count for the value currently stored
// at offset.
func (a *SingletonAllocator[T]) Retain(offset int64) error {
	v, err := a.Get(offset)
	if err != nil {
		return err
	}
	entry, ok, err := a.index.Get(v)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCast
	}
	entry.refcount++
	return a.index.Set(v, entry)
}

// Release decrements the reference count for the value at offset,
// freeing both the payload and its dedup-index entry once it reaches
// zero.
func (a *SingletonAllocator[T]) Release(offset int64) error {
	v, err := a.Get(offset)
	if err != nil {
		return err
	}
	entry, ok, err := a.index.Get(v)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCast
	}
	entry.refcount--
	if entry.refcount > 0 {
		return a.index.Set(v, entry)
	}
	if _, err := a.index.Delete(v); err != nil {
		return err
	}
	if err := a.heap.Free(offset); err != nil {
		return err
	}
	return a.heap.validateIfConfigured()
}

// Package triplestore is the storage and indexing core of an RDF-style
// triple store: a variable-block heap over a seekable byte stream, a typed
// allocator layer (null, singleton, reference) that lifts raw offsets into
// persisted logical objects, and a three-level ordered index with
// reader/writer concurrency and constraint-driven enumeration.
//
// Serialization formats, query algebra, and term/namespace parsing are
// external collaborators and are out of scope here; this package exposes
// only Add/Remove/Clear/Contains/Enumerate/Views/Stats over an abstract
// Index.
package triplestore

import "errors"

// Sentinel errors returned by heap, allocator, and index operations.
var (
	// ErrOutOfMemory is returned when the heap's free list has no block
	// large enough to satisfy an allocation.
	ErrOutOfMemory = errors.New("triplestore: out of memory")

	// ErrNullOffset is returned when an operation is called with offset 0.
	ErrNullOffset = errors.New("triplestore: null offset")

	// ErrAlreadyFreed is returned when an offset was freed and is not a
	// plausible allocated block.
	ErrAlreadyFreed = errors.New("triplestore: offset already freed")

	// ErrCorruption is returned when a heap-validation assertion fails.
	// It is fatal: callers must not attempt partial recovery.
	ErrCorruption = errors.New("triplestore: heap corruption")

	// ErrIndexOutOfRange is returned by Heap.Set when the payload is
	// larger than the block's allocated size.
	ErrIndexOutOfRange = errors.New("triplestore: write exceeds block size")

	// ErrMissingConstructor is returned when a ReferenceAllocator has no
	// constructor function to build a T from an offset.
	ErrMissingConstructor = errors.New("triplestore: missing reference constructor")

	// ErrInvalidCast is returned when a ReferenceAllocator is asked to
	// alloc a value that is not a persisted object.
	ErrInvalidCast = errors.New("triplestore: value is not a persisted object")

	// ErrDuplicateRoot is returned by Heap.SetRoot when the name already
	// has a root entry.
	ErrDuplicateRoot = errors.New("triplestore: duplicate root name")

	// ErrRootNotFound is returned by Heap.GetRoot when no root has been
	// registered under the given name.
	ErrRootNotFound = errors.New("triplestore: root not found")

	// ErrClosed is returned when an operation is attempted on a heap or
	// index whose backing stream has already been released.
	ErrClosed = errors.New("triplestore: closed")

	// ErrCapacityTooSmall is returned by NewHeap when the requested
	// capacity cannot hold the header and a minimum free block.
	ErrCapacityTooSmall = errors.New("triplestore: capacity too small")

	// ErrWildcardNotSupported is returned by SixWayStore.Remove, which
	// cannot resolve a wildcard pattern against all six permutations.
	ErrWildcardNotSupported = errors.New("triplestore: wildcard not supported across six-way store")
)

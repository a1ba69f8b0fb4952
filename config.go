// Tunables for heaps, probe filters, and storage strategies.
package triplestore

// Hash algorithm selectors for the probe filter in front of a
// SingletonAllocator's index. AlgFNV1a has no external dependency;
// AlgXXHash3 is the default (fastest); AlgBlake2b gives the best bit
// distribution at extra cost.
const (
	AlgXXHash3 = iota + 1
	AlgFNV1a
	AlgBlake2b
)

// HeapConfig configures a single Heap and the allocators built on it.
// The zero value is valid: NewHeap and OpenHeap fill in defaults.
type HeapConfig struct {
	// HashAlgorithm selects the probe filter hash that a
	// SingletonAllocator built on this heap uses when its alg argument is
	// 0; the filter lets it skip a tree descent on a definite miss. 0
	// here defaults to AlgXXHash3.
	HashAlgorithm int

	// CompressThreshold is a byte length for string-payload
	// compression. No constructor in this package reads it: stringCodec
	// takes its threshold from newStringCodec's argument, and the
	// built-in allocators and Index are used with termCodec, which never
	// compresses.
	CompressThreshold int

	// ValidateOnMutate enables the VALIDATE-mode chain walk after each
	// mutation made through NullAllocator, SingletonAllocator or Index.
	// Heap methods called directly (Alloc, Free, Set, SetRoot,
	// DeleteRoot, GC) do not run it. It is expensive (O(blocks)) and
	// intended for tests and debugging, not production use.
	ValidateOnMutate bool
}

func (c HeapConfig) withDefaults() HeapConfig {
	if c.HashAlgorithm == 0 {
		c.HashAlgorithm = AlgXXHash3
	}
	return c
}

// EnvConfig configures an Env's default HeapConfig and, for file-backed
// strategies, the capacity used when creating a new backing file.
type EnvConfig struct {
	HeapConfig

	// Capacity is the logical size in bytes of a freshly created Heap.
	// Must be at least MinHeapCapacity.
	Capacity int64
}

// MinHeapCapacity is the smallest capacity NewHeap accepts: the 24-byte
// header plus an 8-byte block header and a 16-byte minimum free payload
// (enough to hold the free block's next/prev links).
const MinHeapCapacity = headerSize + blockHeaderSize + minBlockPayload

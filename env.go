// Env is a registry mapping (type tag, name) to a Heap and a root
// offset within it, so callers can look up "the SPO index named
// 'default'" without wiring heap construction and lifecycle management
// themselves. The actual storage topology — one heap per object, one
// shared heap for everything, file- or memory-backed — is delegated to
// a pluggable Strategy, mirroring how a key-value registry lets a
// caller pick a backend by name rather than by constructing it
// directly.
package triplestore

import (
	"fmt"
	"sync"
)

// Strategy constructs and locates the Heap responsible for a given
// (typeTag, name) pair. Implementations decide how many Heaps exist and
// how they map onto Stream resources.
type Strategy interface {
	// HeapFor returns the Heap that should hold the root for
	// (typeTag, name), creating backing storage if this is the first
	// time the pair has been requested.
	HeapFor(typeTag, name string) (*Heap, error)

	// Remove releases any storage the strategy owns for (typeTag, name).
	// It does not free the root's heap contents; call DeleteRoot first.
	Remove(typeTag, name string) error
}

// Env is the (type, name) -> root registry built on top of a Strategy.
type Env struct {
	mu       sync.RWMutex
	strategy Strategy
}

// NewEnv returns an Env backed by strategy.
func NewEnv(strategy Strategy) *Env {
	return &Env{strategy: strategy}
}

func rootName(typeTag, name string) string {
	return fmt.Sprintf("%s:%s", typeTag, name)
}

// Register creates a new root named name under typeTag, pointing at
// offset, in whatever Heap the strategy assigns to that pair. It
// returns ErrDuplicateRoot if the pair is already registered.
func (e *Env) Register(typeTag, name string, offset int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	heap, err := e.strategy.HeapFor(typeTag, name)
	if err != nil {
		return err
	}
	return heap.SetRoot(rootName(typeTag, name), offset)
}

// Lookup returns the Heap and root offset registered for (typeTag, name).
func (e *Env) Lookup(typeTag, name string) (heap *Heap, offset int64, err error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	heap, err = e.strategy.HeapFor(typeTag, name)
	if err != nil {
		return nil, 0, err
	}
	offset, err = heap.GetRoot(rootName(typeTag, name))
	return heap, offset, err
}

// Update rewrites the root offset registered for (typeTag, name).
func (e *Env) Update(typeTag, name string, offset int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	heap, err := e.strategy.HeapFor(typeTag, name)
	if err != nil {
		return err
	}
	if err := heap.DeleteRoot(rootName(typeTag, name)); err != nil && err != ErrRootNotFound {
		return err
	}
	return heap.SetRoot(rootName(typeTag, name), offset)
}

// Forget removes the (typeTag, name) registration and releases any
// storage the strategy owns for it.
func (e *Env) Forget(typeTag, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	heap, err := e.strategy.HeapFor(typeTag, name)
	if err != nil {
		return err
	}
	if err := heap.DeleteRoot(rootName(typeTag, name)); err != nil && err != ErrRootNotFound {
		return err
	}
	return e.strategy.Remove(typeTag, name)
}

// polyInMemoryStrategy gives every (typeTag, name) pair its own
// in-memory Heap — "poly" because distinct objects never share a
// backing stream, which keeps one object's corruption or growth from
// affecting another's at the cost of per-object overhead.
type polyInMemoryStrategy struct {
	mu     sync.Mutex
	config EnvConfig
	heaps  map[string]*Heap
}

// NewPolyInMemoryStrategy returns a Strategy that allocates an
// independent in-memory Heap per (typeTag, name) pair.
func NewPolyInMemoryStrategy(config EnvConfig) Strategy {
	return &polyInMemoryStrategy{config: config, heaps: map[string]*Heap{}}
}

func (s *polyInMemoryStrategy) HeapFor(typeTag, name string) (*Heap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := rootName(typeTag, name)
	if h, ok := s.heaps[key]; ok {
		return h, nil
	}
	h, err := NewHeap(NewMemStream(s.config.Capacity), s.config.Capacity, s.config.HeapConfig)
	if err != nil {
		return nil, err
	}
	s.heaps[key] = h
	return h, nil
}

func (s *polyInMemoryStrategy) Remove(typeTag, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.heaps, rootName(typeTag, name))
	return nil
}

// singleInMemoryStrategy keeps every (typeTag, name) pair's root in one
// shared in-memory Heap — "single" because all objects share a backing
// stream, trading isolation for a single allocator's worth of
// bookkeeping and coalescing.
type singleInMemoryStrategy struct {
	heap *Heap
}

// NewSingleInMemoryStrategy returns a Strategy backed by one shared
// in-memory Heap for every (typeTag, name) pair.
func NewSingleInMemoryStrategy(config EnvConfig) (Strategy, error) {
	heap, err := NewHeap(NewMemStream(config.Capacity), config.Capacity, config.HeapConfig)
	if err != nil {
		return nil, err
	}
	return &singleInMemoryStrategy{heap: heap}, nil
}

func (s *singleInMemoryStrategy) HeapFor(typeTag, name string) (*Heap, error) {
	return s.heap, nil
}

func (s *singleInMemoryStrategy) Remove(typeTag, name string) error {
	return nil
}

// singleInFileStrategy is the single-heap strategy backed by a file
// Stream (typically *os.File) instead of memory, for durable storage.
type singleInFileStrategy struct {
	heap *Heap
}

// NewSingleInFileStrategy returns a Strategy backed by one shared Heap
// over stream. If fresh is true, a new heap is formatted on stream with
// config.Capacity; otherwise the existing heap is reopened.
func NewSingleInFileStrategy(stream Stream, fresh bool, config EnvConfig) (Strategy, error) {
	var heap *Heap
	var err error
	if fresh {
		heap, err = NewHeap(stream, config.Capacity, config.HeapConfig)
	} else {
		heap, err = OpenHeap(stream, config.HeapConfig)
	}
	if err != nil {
		return nil, err
	}
	return &singleInFileStrategy{heap: heap}, nil
}

func (s *singleInFileStrategy) HeapFor(typeTag, name string) (*Heap, error) {
	return s.heap, nil
}

func (s *singleInFileStrategy) Remove(typeTag, name string) error {
	return nil
}

// Heap is a variable-block allocator over a seekable byte stream: an
// in-memory buffer or a file. It owns the stream exclusively for its
// lifetime (no distributed or multi-process access; see Non-goals) and
// guards all structural access with a single reader/writer lock.
package triplestore

import (
	"fmt"
	"io"
	"sync"
)

// Stream is the minimal backing-store contract a Heap needs: positional
// reads and writes. *os.File satisfies it directly, matching the
// teacher's use of os.File.ReadAt/WriteAt throughout its read/write
// primitives; MemStream (memstream.go) gives an in-memory equivalent.
type Stream interface {
	io.ReaderAt
	io.WriterAt
}

// Heap is a byte-addressable block allocator over a Stream. The zero
// value is not usable; construct one with NewHeap or OpenHeap.
type Heap struct {
	mu     sync.RWMutex
	stream Stream
	hdr    heapHeader
	config HeapConfig
	closed bool
}

// NewHeap creates a fresh heap on an empty, writable stream with the
// given logical capacity. capacity must be at least MinHeapCapacity.
func NewHeap(stream Stream, capacity int64, config HeapConfig) (*Heap, error) {
	if capacity < MinHeapCapacity {
		return nil, ErrCapacityTooSmall
	}
	config = config.withDefaults()

	h := &Heap{stream: stream, config: config}
	h.hdr = heapHeader{
		total:        capacity,
		freeListHead: headerSize + blockHeaderSize,
		rootListHead: 0,
	}
	if err := h.writeRaw(0, h.hdr.encode()); err != nil {
		return nil, err
	}

	// A single free block spans the remaining bytes, with no neighbours.
	freeOff := int64(headerSize)
	freePayload := capacity - headerSize - blockHeaderSize
	if err := h.writeRaw(freeOff, encodeI64(-freePayload)); err != nil {
		return nil, err
	}
	links := make([]byte, minBlockPayload)
	copy(links[0:8], encodeI64(0))  // next
	copy(links[8:16], encodeI64(0)) // prev
	if err := h.writeRaw(freeOff+blockHeaderSize, links); err != nil {
		return nil, err
	}
	return h, nil
}

// OpenHeap reopens a heap from a non-empty stream, reading total_size and
// the free-list/root-list heads from the existing header. All other
// state (block boundaries) is recoverable by walking blocks on demand.
func OpenHeap(stream Stream, config HeapConfig) (*Heap, error) {
	config = config.withDefaults()
	buf := make([]byte, headerSize)
	if _, err := stream.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("triplestore: read heap header: %w", err)
	}
	return &Heap{stream: stream, hdr: decodeHeapHeader(buf), config: config}, nil
}

// Close marks the heap closed: afterwards Alloc and every operation that
// checks a block's size return ErrClosed. The heap keeps its stream
// field and does not close the stream itself — the caller owns that
// lifecycle decision (e.g. *os.File.Close).
func (h *Heap) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

func (h *Heap) readRaw(off int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := h.stream.ReadAt(buf, off); err != nil && err != io.EOF {
		return nil, err
	}
	return buf, nil
}

func (h *Heap) writeRaw(off int64, data []byte) error {
	_, err := h.stream.WriteAt(data, off)
	return err
}

// blockSizeWord reads the signed size word at a block's header offset
// (blockOff, not the payload offset).
func (h *Heap) blockSizeWord(blockOff int64) (int64, error) {
	buf, err := h.readRaw(blockOff, blockHeaderSize)
	if err != nil {
		return 0, err
	}
	return decodeI64(buf), nil
}

// payloadOffset/blockOffset convert between a block's header offset and
// the offset of its payload (what callers see as an "offset").
func payloadOffset(blockOff int64) int64 { return blockOff + blockHeaderSize }
func blockOffset(payloadOff int64) int64 { return payloadOff - blockHeaderSize }

// SizeOf returns the payload length of the allocated block at offset.
func (h *Heap) SizeOf(offset int64) (int64, error) {
	if offset == 0 {
		return 0, ErrNullOffset
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sizeOfLocked(offset)
}

func (h *Heap) sizeOfLocked(offset int64) (int64, error) {
	if h.closed {
		return 0, ErrClosed
	}
	blockOff := blockOffset(offset)
	if blockOff < headerSize || blockOff >= h.hdr.total {
		return 0, ErrAlreadyFreed
	}
	sz, err := h.blockSizeWord(blockOff)
	if err != nil {
		return 0, err
	}
	if sz <= 0 {
		return 0, ErrAlreadyFreed
	}
	return sz, nil
}

// IsValid reports whether offset was returned by Alloc and has not since
// been passed to Free.
func (h *Heap) IsValid(offset int64) bool {
	if offset == 0 {
		return false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	blockOff := blockOffset(offset)
	if blockOff < headerSize || blockOff >= h.hdr.total {
		return false
	}
	sz, err := h.blockSizeWord(blockOff)
	return err == nil && sz > 0
}

// Get returns a copy of the payload bytes at offset.
func (h *Heap) Get(offset int64) ([]byte, error) {
	if offset == 0 {
		return nil, ErrNullOffset
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	sz, err := h.sizeOfLocked(offset)
	if err != nil {
		return nil, err
	}
	return h.readRaw(offset, int(sz))
}

// Set overwrites the payload bytes at offset. len(data) must not exceed
// the block's allocated size.
func (h *Heap) Set(offset int64, data []byte) error {
	if offset == 0 {
		return ErrNullOffset
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	sz, err := h.sizeOfLocked(offset)
	if err != nil {
		return err
	}
	if int64(len(data)) > sz {
		return ErrIndexOutOfRange
	}
	return h.writeRaw(offset, data)
}

// Reader returns a bounded reader over the payload at offset, starting
// at pos bytes into the payload. It refuses reads outside
// [0, size_of(offset)). The returned reader does not hold the heap's
// lock; callers are responsible for external synchronization around
// cursor-style I/O (the Index does this).
func (h *Heap) Reader(offset int64, pos int64) (io.Reader, error) {
	sz, err := h.SizeOf(offset)
	if err != nil {
		return nil, err
	}
	if pos < 0 || pos > sz {
		return nil, ErrIndexOutOfRange
	}
	return io.NewSectionReader(readerAtFunc(h.readAt), offset+pos, sz-pos), nil
}

// Writer returns a bounded writer over the payload at offset, starting
// at pos bytes into the payload.
func (h *Heap) Writer(offset int64, pos int64) (io.Writer, error) {
	sz, err := h.SizeOf(offset)
	if err != nil {
		return nil, err
	}
	if pos < 0 || pos > sz {
		return nil, ErrIndexOutOfRange
	}
	return &sectionWriter{stream: h.stream, base: offset, pos: pos, limit: sz}, nil
}

func (h *Heap) readAt(p []byte, off int64) (int, error) {
	return h.stream.ReadAt(p, off)
}

// readerAtFunc adapts a func(p, off) (int, error) to io.ReaderAt.
type readerAtFunc func([]byte, int64) (int, error)

func (f readerAtFunc) ReadAt(p []byte, off int64) (int, error) { return f(p, off) }

// sectionWriter is a writer bounded to [base, base+limit) of a Stream,
// refusing writes that would cross the limit — the writer-side
// counterpart to io.SectionReader, which has no such writer.
type sectionWriter struct {
	stream Stream
	base   int64
	pos    int64
	limit  int64
}

func (w *sectionWriter) Write(p []byte) (int, error) {
	if w.pos+int64(len(p)) > w.limit {
		return 0, ErrIndexOutOfRange
	}
	n, err := w.stream.WriteAt(p, w.base+w.pos)
	w.pos += int64(n)
	return n, err
}

// Heap header and block-header binary layout. The format is fixed by the
// external interface (little-endian, 8-byte words) so it is encoded with
// encoding/binary rather than any general-purpose serialization library:
// no such library can own a byte-exact, position-addressed layout like
// this one.
package triplestore

import "encoding/binary"

const (
	// headerSize is the fixed size of the heap header: total_size,
	// free_list_head, root_list_head, each an 8-byte little-endian int64.
	headerSize = 24

	// blockHeaderSize is the size of a block's leading size word.
	blockHeaderSize = 8

	// minBlockPayload is the smallest payload a block can have: enough
	// to hold a free block's next/prev links.
	minBlockPayload = 16

	// splitRemainderMin is the smallest payload, plus its own header,
	// worth leaving behind when an allocation splits a free block.
	splitRemainderMin = minBlockPayload + blockHeaderSize
)

// heapHeader is the in-memory mirror of the 24-byte on-stream header.
type heapHeader struct {
	total        int64
	freeListHead int64
	rootListHead int64
}

func decodeHeapHeader(buf []byte) heapHeader {
	return heapHeader{
		total:        int64(binary.LittleEndian.Uint64(buf[0:8])),
		freeListHead: int64(binary.LittleEndian.Uint64(buf[8:16])),
		rootListHead: int64(binary.LittleEndian.Uint64(buf[16:24])),
	}
}

func (h heapHeader) encode() []byte {
	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(h.total))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(h.freeListHead))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(h.rootListHead))
	return buf
}

// encodeI64/decodeI64 are used for the size word, and for the next/prev
// links embedded in a free block's payload.
func encodeI64(v int64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(v))
	return buf
}

func decodeI64(buf []byte) int64 {
	return int64(binary.LittleEndian.Uint64(buf))
}

// GC, Validate, and the diagnostic surface (Stats, Dump). Free already
// coalesces a freed block with its immediately following neighbour; GC
// additionally walks the entire block chain once, in address order,
// coalescing every adjacent pair of free blocks regardless of which one
// was freed more recently, and rebuilds the free list from scratch
// rather than trusting its incremental state.
package triplestore

import (
	"fmt"
	"log"

	json "github.com/goccy/go-json"
)

// Stats summarises a heap's block layout.
type Stats struct {
	TotalBytes     int64
	AllocatedBytes int64
	FreeBytes      int64
	AllocatedCount int
	FreeCount      int
}

// Stats walks the block chain and reports current occupancy. It does
// not mutate anything.
func (h *Heap) Stats() (Stats, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.walkStats()
}

func (h *Heap) walkStats() (Stats, error) {
	var s Stats
	s.TotalBytes = h.hdr.total
	cur := int64(headerSize)
	for cur < h.hdr.total {
		sz, err := h.blockSizeWord(cur)
		if err != nil {
			return s, err
		}
		if sz < 0 {
			s.FreeCount++
			s.FreeBytes += -sz
		} else {
			s.AllocatedCount++
			s.AllocatedBytes += sz
		}
		cur += blockHeaderSize + abs64(sz)
	}
	return s, nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// GC performs a full chain-walk coalesce and rebuilds the free list. It
// is safe to call at any time but is O(blocks); callers doing heavy
// churn should schedule it rather than call it after every mutation.
func (h *Heap) GC() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	type span struct {
		off  int64
		size int64
		free bool
	}
	var spans []span
	cur := int64(headerSize)
	for cur < h.hdr.total {
		sz, err := h.blockSizeWord(cur)
		if err != nil {
			return err
		}
		spans = append(spans, span{off: cur, size: abs64(sz), free: sz < 0})
		cur += blockHeaderSize + abs64(sz)
	}

	// Merge adjacent free spans.
	merged := spans[:0]
	for _, sp := range spans {
		if n := len(merged); n > 0 && merged[n-1].free && sp.free {
			merged[n-1].size += blockHeaderSize + sp.size
			continue
		}
		merged = append(merged, sp)
	}

	coalesced := len(spans) - len(merged)
	if coalesced > 0 {
		log.Printf("triplestore: gc coalesced %d adjacent free block(s)", coalesced)
	}

	var prevFreeOff int64
	h.hdr.freeListHead = 0
	for _, sp := range merged {
		if sp.free {
			if err := h.writeRaw(sp.off, encodeI64(-sp.size)); err != nil {
				return err
			}
			payloadOff := payloadOffset(sp.off)
			links := make([]byte, 16)
			copy(links[0:8], encodeI64(0))
			copy(links[8:16], encodeI64(prevFreeOff))
			if err := h.writeRaw(payloadOff, links); err != nil {
				return err
			}
			if prevFreeOff != 0 {
				if err := h.writeLink(prevFreeOff, 0, payloadOff); err != nil {
					return err
				}
			} else {
				h.hdr.freeListHead = payloadOff
			}
			prevFreeOff = payloadOff
		} else {
			if err := h.writeRaw(sp.off, encodeI64(sp.size)); err != nil {
				return err
			}
		}
	}
	return h.writeRaw(0, h.hdr.encode())
}

// Validate walks the entire block chain, checking that block sizes sum
// to the declared total and that the free list contains exactly the
// blocks marked free in the chain. It is intended for tests and for
// HeapConfig.ValidateOnMutate, not hot paths.
func (h *Heap) Validate() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.validateLocked()
}

func (h *Heap) validateLocked() error {
	free := map[int64]bool{}
	cur := h.hdr.freeListHead
	for cur != 0 {
		if free[cur] {
			return fmt.Errorf("%w: cyclic free list at %d", ErrCorruption, cur)
		}
		free[cur] = true
		next, err := h.readLink(cur, 0)
		if err != nil {
			return err
		}
		cur = next
	}

	seen := 0
	total := int64(headerSize)
	for total < h.hdr.total {
		sz, err := h.blockSizeWord(total)
		if err != nil {
			return err
		}
		payloadOff := payloadOffset(total)
		if sz < 0 {
			if !free[payloadOff] {
				return fmt.Errorf("%w: free block %d missing from free list", ErrCorruption, payloadOff)
			}
			seen++
		}
		total += blockHeaderSize + abs64(sz)
	}
	if total != h.hdr.total {
		return fmt.Errorf("%w: block chain sums to %d, header declares %d", ErrCorruption, total, h.hdr.total)
	}
	if seen != len(free) {
		return fmt.Errorf("%w: free list has %d entries, chain walk found %d free blocks", ErrCorruption, len(free), seen)
	}
	return nil
}

func (h *Heap) validateIfConfigured() error {
	if !h.config.ValidateOnMutate {
		return nil
	}
	return h.validateLocked()
}

// dumpView is the JSON-friendly projection Dump returns.
type dumpView struct {
	Stats Stats            `json:"stats"`
	Roots map[string]int64 `json:"roots"`
}

// Dump renders a snapshot of the heap's occupancy and named roots as
// indented JSON, for diagnostics and golden-file tests.
func (h *Heap) Dump() ([]byte, error) {
	h.mu.RLock()
	stats, err := h.walkStats()
	if err != nil {
		h.mu.RUnlock()
		return nil, err
	}
	roots := map[string]int64{}
	cur := h.hdr.rootListHead
	for cur != 0 {
		next, value, name, err := h.readRootEntry(cur)
		if err != nil {
			h.mu.RUnlock()
			return nil, err
		}
		roots[name] = value
		cur = next
	}
	h.mu.RUnlock()

	return json.MarshalIndent(dumpView{Stats: stats, Roots: roots}, "", "  ")
}

package triplestore

// Alloc and Free implement a first-fit allocator over a doubly linked
// free list threaded through block payloads (next at payload[0:8], prev
// at payload[8:16]). A block's header is a signed int64 size word:
// positive for allocated, negative for free. Free blocks large enough to
// leave a useful remainder behind are split; Free coalesces with the
// immediately following block only (a full chain-walk coalesce is left
// to gc).

// Alloc reserves a block of at least n payload bytes and returns its
// payload offset. It returns ErrOutOfMemory if no free block is large
// enough.
func (h *Heap) Alloc(n int64) (int64, error) {
	if n < minBlockPayload {
		n = minBlockPayload
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.allocLocked(n)
}

func (h *Heap) allocLocked(n int64) (int64, error) {
	if h.closed {
		return 0, ErrClosed
	}
	var prevFree int64 // payload offset of previous free block in the list, 0 if head
	cur := h.hdr.freeListHead
	for cur != 0 {
		blockOff := blockOffset(cur)
		sz, err := h.blockSizeWord(blockOff)
		if err != nil {
			return 0, err
		}
		free := -sz
		if free >= n {
			next, err := h.readLink(cur, 0)
			if err != nil {
				return 0, err
			}
			if free-n >= splitRemainderMin {
				if err := h.splitBlock(blockOff, n, prevFree, cur, next); err != nil {
					return 0, err
				}
			} else {
				if err := h.unlinkFree(prevFree, cur, next); err != nil {
					return 0, err
				}
				if err := h.writeRaw(blockOff, encodeI64(free)); err != nil {
					return 0, err
				}
			}
			return cur, nil
		}
		prevFree = cur
		next, err := h.readLink(cur, 0)
		if err != nil {
			return 0, err
		}
		cur = next
	}
	return 0, ErrOutOfMemory
}

// splitBlock carves an n-byte allocation off the front of the free block
// at blockOff and leaves the remainder (still free) linked in its place.
func (h *Heap) splitBlock(blockOff, n, prevFree, self, next int64) error {
	sz, err := h.blockSizeWord(blockOff)
	if err != nil {
		return err
	}
	free := -sz
	remainderPayload := free - n - blockHeaderSize
	remainderBlockOff := blockOff + blockHeaderSize + n
	remainderPayloadOff := payloadOffset(remainderBlockOff)

	if err := h.writeRaw(remainderBlockOff, encodeI64(-remainderPayload)); err != nil {
		return err
	}
	links := make([]byte, 16)
	copy(links[0:8], encodeI64(next))
	copy(links[8:16], encodeI64(prevFree))
	if err := h.writeRaw(remainderPayloadOff, links); err != nil {
		return err
	}
	if err := h.relinkNeighbours(prevFree, remainderPayloadOff, next); err != nil {
		return err
	}
	if next != 0 {
		if err := h.writeLink(next, 8, remainderPayloadOff); err != nil {
			return err
		}
	}
	return h.writeRaw(blockOff, encodeI64(n))
}

// unlinkFree removes self from the free list, splicing prevFree (or the
// head) directly to next.
func (h *Heap) unlinkFree(prevFree, self, next int64) error {
	return h.relinkNeighbours(prevFree, next, 0)
}

// relinkNeighbours points prevFree's next link (or the free-list head)
// at newNode, and if newNode is nonzero, points newNode's prev link back
// at prevFree. unusedNext is accepted for symmetry with callers that
// already have the old next in hand but is not otherwise consulted.
func (h *Heap) relinkNeighbours(prevFree, newNode, unusedNext int64) error {
	_ = unusedNext
	if prevFree == 0 {
		h.hdr.freeListHead = newNode
		if err := h.writeRaw(0, h.hdr.encode()); err != nil {
			return err
		}
	} else if err := h.writeLink(prevFree, 0, newNode); err != nil {
		return err
	}
	if newNode != 0 {
		if err := h.writeLink(newNode, 8, prevFree); err != nil {
			return err
		}
	}
	return nil
}

// readLink/writeLink access the next (slot 0) or prev (slot 8) pointer
// embedded in a free block's payload at the given payload offset.
func (h *Heap) readLink(payloadOff int64, slot int) (int64, error) {
	buf, err := h.readRaw(payloadOff+int64(slot), 8)
	if err != nil {
		return 0, err
	}
	return decodeI64(buf), nil
}

func (h *Heap) writeLink(payloadOff int64, slot int, v int64) error {
	return h.writeRaw(payloadOff+int64(slot), encodeI64(v))
}

// Free releases the block at offset back to the free list. If the block
// immediately following it (by address) is also free, the two are
// coalesced into a single block; this is the only coalescing Free does,
// since a block header carries no link back to the preceding block. The
// result is inserted at the head of the free list.
// A full walk that also coalesces with a preceding free neighbour is
// performed by gc.
func (h *Heap) Free(offset int64) error {
	if offset == 0 {
		return ErrNullOffset
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.freeLocked(offset)
}

func (h *Heap) freeLocked(offset int64) error {
	sz, err := h.sizeOfLocked(offset)
	if err != nil {
		return err
	}
	blockOff := blockOffset(offset)
	nextBlockOff := blockOff + blockHeaderSize + sz

	free := sz
	if nextBlockOff < h.hdr.total {
		nextSz, err := h.blockSizeWord(nextBlockOff)
		if err != nil {
			return err
		}
		if nextSz < 0 {
			nextPayloadOff := payloadOffset(nextBlockOff)
			nextFree := -nextSz
			nextNext, err := h.readLink(nextPayloadOff, 0)
			if err != nil {
				return err
			}
			nextPrev, err := h.readLink(nextPayloadOff, 8)
			if err != nil {
				return err
			}
			if err := h.relinkNeighbours(nextPrev, nextNext, 0); err != nil {
				return err
			}
			free += blockHeaderSize + nextFree
		}
	}

	if err := h.writeRaw(blockOff, encodeI64(-free)); err != nil {
		return err
	}
	oldHead := h.hdr.freeListHead
	links := make([]byte, 16)
	copy(links[0:8], encodeI64(oldHead))
	copy(links[8:16], encodeI64(0))
	if err := h.writeRaw(offset, links); err != nil {
		return err
	}
	if oldHead != 0 {
		if err := h.writeLink(oldHead, 8, offset); err != nil {
			return err
		}
	}
	h.hdr.freeListHead = offset
	return h.writeRaw(0, h.hdr.encode())
}

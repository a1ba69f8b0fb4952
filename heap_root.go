package triplestore

import (
	"fmt"
	"iter"
)

// Named roots let a Heap remember a handful of entry-point offsets
// (an AA-tree root, an Env's registry root, and so on) across reopen.
// Roots are stored as a singly linked list of small allocated blocks:
//
//	next int64 | value int64 | nameLen int64 | name []byte
//
// threaded from the header's root_list_head. The list is expected to
// stay short (tens of entries at most) so linear lookup is adequate.

const rootEntryFixed = 24 // next + value + nameLen

// SetRoot records offset as the root named name. It returns
// ErrDuplicateRoot if name is already registered; use DeleteRoot first
// to replace one.
func (h *Heap) SetRoot(name string, offset int64) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, _, err := h.findRoot(name); err == nil {
		return ErrDuplicateRoot
	}

	n := rootEntryFixed + len(name)
	entryOff, err := h.allocLocked(int64(n))
	if err != nil {
		return err
	}
	buf := make([]byte, n)
	copy(buf[0:8], encodeI64(h.hdr.rootListHead))
	copy(buf[8:16], encodeI64(offset))
	copy(buf[16:24], encodeI64(int64(len(name))))
	copy(buf[24:], name)
	if err := h.writeRaw(entryOff, buf); err != nil {
		return err
	}
	h.hdr.rootListHead = entryOff
	return h.writeRaw(0, h.hdr.encode())
}

// GetRoot returns the offset registered under name, or ErrRootNotFound.
func (h *Heap) GetRoot(name string) (int64, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, value, err := h.findRoot(name)
	return value, err
}

// DeleteRoot removes the root named name and frees its entry block.
// It does not free the value it pointed to.
func (h *Heap) DeleteRoot(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var prevOff int64
	cur := h.hdr.rootListHead
	for cur != 0 {
		next, _, nm, err := h.readRootEntry(cur)
		if err != nil {
			return err
		}
		if nm == name {
			if prevOff == 0 {
				h.hdr.rootListHead = next
				if err := h.writeRaw(0, h.hdr.encode()); err != nil {
					return err
				}
			} else {
				if err := h.rewriteRootNext(prevOff, next); err != nil {
					return err
				}
			}
			return h.freeLocked(cur)
		}
		prevOff = cur
		cur = next
	}
	return ErrRootNotFound
}

// Roots lazily enumerates every registered (name, offset) pair. The
// returned sequence holds the heap's read lock for its entire
// lifetime, so a consumer must drain or break out of it promptly.
func (h *Heap) Roots() iter.Seq2[string, int64] {
	return func(yield func(string, int64) bool) {
		h.mu.RLock()
		defer h.mu.RUnlock()
		cur := h.hdr.rootListHead
		for cur != 0 {
			next, value, name, err := h.readRootEntry(cur)
			if err != nil {
				return
			}
			if !yield(name, value) {
				return
			}
			cur = next
		}
	}
}

func (h *Heap) findRoot(name string) (entryOff, value int64, err error) {
	cur := h.hdr.rootListHead
	for cur != 0 {
		next, val, nm, err := h.readRootEntry(cur)
		if err != nil {
			return 0, 0, err
		}
		if nm == name {
			return cur, val, nil
		}
		cur = next
	}
	return 0, 0, ErrRootNotFound
}

func (h *Heap) readRootEntry(entryOff int64) (next, value int64, name string, err error) {
	sz, err := h.sizeOfLocked(entryOff)
	if err != nil {
		return 0, 0, "", err
	}
	if sz < rootEntryFixed {
		return 0, 0, "", fmt.Errorf("triplestore: %w: short root entry", ErrCorruption)
	}
	buf, err := h.readRaw(entryOff, int(sz))
	if err != nil {
		return 0, 0, "", err
	}
	next = decodeI64(buf[0:8])
	value = decodeI64(buf[8:16])
	nameLen := decodeI64(buf[16:24])
	return next, value, string(buf[24 : 24+nameLen]), nil
}

func (h *Heap) rewriteRootNext(entryOff, next int64) error {
	return h.writeRaw(entryOff, encodeI64(next))
}

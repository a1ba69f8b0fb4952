// Core allocator lifecycle tests: alloc/free/get/set, free-list
// coalescing, and header persistence across reopen. Together these
// tests are the functional specification of the heap — if one of them
// fails, a fundamental allocator guarantee has been broken.
package triplestore

import (
	"bytes"
	"testing"
)

func newTestHeap(t *testing.T, capacity int64) *Heap {
	t.Helper()
	h, err := NewHeap(NewMemStream(capacity), capacity, HeapConfig{})
	if err != nil {
		t.Fatalf("NewHeap: %v", err)
	}
	return h
}

func TestAllocGetSetRoundTrip(t *testing.T) {
	h := newTestHeap(t, 4096)

	off, err := h.Alloc(32)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if !h.IsValid(off) {
		t.Fatalf("offset %d should be valid after Alloc", off)
	}

	payload := []byte("hello, heap")
	if err := h.Set(off, payload); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := h.Get(off)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got[:len(payload)], payload) {
		t.Errorf("got %q, want %q", got[:len(payload)], payload)
	}
}

func TestFreeInvalidatesOffset(t *testing.T) {
	h := newTestHeap(t, 4096)
	off, _ := h.Alloc(32)
	if err := h.Free(off); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if h.IsValid(off) {
		t.Errorf("offset should be invalid after Free")
	}
	if _, err := h.Get(off); err != ErrAlreadyFreed {
		t.Errorf("Get after Free: got %v, want ErrAlreadyFreed", err)
	}
}

func TestAllocTooLargeFails(t *testing.T) {
	h := newTestHeap(t, 128)
	if _, err := h.Alloc(4096); err != ErrOutOfMemory {
		t.Errorf("Alloc beyond capacity: got %v, want ErrOutOfMemory", err)
	}
}

func TestSetBeyondBlockSizeFails(t *testing.T) {
	h := newTestHeap(t, 4096)
	off, _ := h.Alloc(8)
	if err := h.Set(off, make([]byte, 4096)); err != ErrIndexOutOfRange {
		t.Errorf("oversized Set: got %v, want ErrIndexOutOfRange", err)
	}
}

// TestFreeCoalescesFollowingNeighbour verifies that freeing a block
// merges it with an immediately following free block, so a sequence of
// small allocations followed by frees doesn't permanently fragment the
// heap into unusably small pieces.
func TestFreeCoalescesFollowingNeighbour(t *testing.T) {
	h := newTestHeap(t, 4096)

	a, _ := h.Alloc(64)
	b, _ := h.Alloc(64)
	statsBefore, err := h.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	if err := h.Free(b); err != nil {
		t.Fatalf("Free b: %v", err)
	}
	if err := h.Free(a); err != nil {
		t.Fatalf("Free a: %v", err)
	}

	statsAfter, err := h.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if statsAfter.FreeBytes <= statsBefore.FreeBytes {
		t.Errorf("expected free bytes to grow after freeing both blocks")
	}

	// A single large allocation should now succeed where it would have
	// needed two separate blocks before coalescing.
	if _, err := h.Alloc(100); err != nil {
		t.Errorf("Alloc after coalesce: %v", err)
	}
}

func TestSplitLeavesUsableRemainder(t *testing.T) {
	h := newTestHeap(t, 4096)
	off, err := h.Alloc(32)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if err := h.Free(off); err != nil {
		t.Fatalf("Free: %v", err)
	}
	// After the initial free block is split down to 32 bytes and freed
	// again, a second independent 32-byte allocation should still work.
	second, err := h.Alloc(32)
	if err != nil {
		t.Fatalf("Alloc second: %v", err)
	}
	if !h.IsValid(second) {
		t.Errorf("second allocation should be valid")
	}
}

func TestRootsPersistAcrossReopen(t *testing.T) {
	stream := NewMemStream(4096)
	h, err := NewHeap(stream, 4096, HeapConfig{})
	if err != nil {
		t.Fatalf("NewHeap: %v", err)
	}
	off, _ := h.Alloc(16)
	if err := h.SetRoot("main", off); err != nil {
		t.Fatalf("SetRoot: %v", err)
	}

	h2, err := OpenHeap(stream, HeapConfig{})
	if err != nil {
		t.Fatalf("OpenHeap: %v", err)
	}
	got, err := h2.GetRoot("main")
	if err != nil {
		t.Fatalf("GetRoot: %v", err)
	}
	if got != off {
		t.Errorf("GetRoot after reopen: got %d, want %d", got, off)
	}
}

func TestDuplicateRootRejected(t *testing.T) {
	h := newTestHeap(t, 4096)
	off, _ := h.Alloc(16)
	if err := h.SetRoot("dup", off); err != nil {
		t.Fatalf("SetRoot: %v", err)
	}
	if err := h.SetRoot("dup", off); err != ErrDuplicateRoot {
		t.Errorf("second SetRoot: got %v, want ErrDuplicateRoot", err)
	}
}

func TestDeleteRootThenLookupFails(t *testing.T) {
	h := newTestHeap(t, 4096)
	off, _ := h.Alloc(16)
	_ = h.SetRoot("r", off)
	if err := h.DeleteRoot("r"); err != nil {
		t.Fatalf("DeleteRoot: %v", err)
	}
	if _, err := h.GetRoot("r"); err != ErrRootNotFound {
		t.Errorf("GetRoot after delete: got %v, want ErrRootNotFound", err)
	}
}

func TestRootsEnumeratesAll(t *testing.T) {
	h := newTestHeap(t, 4096)
	names := []string{"a", "b", "c"}
	for _, n := range names {
		off, _ := h.Alloc(16)
		if err := h.SetRoot(n, off); err != nil {
			t.Fatalf("SetRoot(%s): %v", n, err)
		}
	}
	seen := map[string]bool{}
	for name := range h.Roots() {
		seen[name] = true
	}
	for _, n := range names {
		if !seen[n] {
			t.Errorf("Roots() missing %q", n)
		}
	}
}

func TestGCKeepsHeapValidWithNonAdjacentFrees(t *testing.T) {
	h := newTestHeap(t, 4096)
	a, _ := h.Alloc(32)
	b, _ := h.Alloc(32)
	c, _ := h.Alloc(32)
	_ = b
	if err := h.Free(a); err != nil {
		t.Fatalf("Free a: %v", err)
	}
	if err := h.Free(c); err != nil {
		t.Fatalf("Free c: %v", err)
	}
	if err := h.GC(); err != nil {
		t.Fatalf("GC: %v", err)
	}
	if err := h.Validate(); err != nil {
		t.Errorf("Validate after GC: %v", err)
	}
}

func TestValidateCatchesNothingOnHealthyHeap(t *testing.T) {
	h := newTestHeap(t, 4096)
	for range 10 {
		off, err := h.Alloc(16)
		if err != nil {
			t.Fatalf("Alloc: %v", err)
		}
		if err := h.Free(off); err != nil {
			t.Fatalf("Free: %v", err)
		}
	}
	if err := h.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestDumpProducesJSON(t *testing.T) {
	h := newTestHeap(t, 4096)
	off, _ := h.Alloc(16)
	_ = h.SetRoot("x", off)
	buf, err := h.Dump()
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if !bytes.Contains(buf, []byte(`"x"`)) {
		t.Errorf("Dump output missing root name: %s", buf)
	}
}

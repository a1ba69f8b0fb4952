// SortedMap/SortedSet tests exercise the persisted AA-tree through its
// typed wrappers: insert, overwrite, delete, and ascending enumeration,
// including From for range-style seeks.
package triplestore

import (
	"sort"
	"testing"
)

func TestSortedMapSetGetDelete(t *testing.T) {
	h := newTestHeap(t, 1<<16)
	m := NewSortedMap[Term, Term](h, 0, termCodec{}, termCodec{})

	if err := m.Set("b", "2"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := m.Get("b")
	if err != nil || !ok || v != "2" {
		t.Fatalf("Get: got (%q, %v, %v)", v, ok, err)
	}

	if _, ok, _ := m.Get("missing"); ok {
		t.Errorf("Get(missing) should report ok=false")
	}

	removed, err := m.Delete("b")
	if err != nil || !removed {
		t.Fatalf("Delete: got (%v, %v)", removed, err)
	}
	if _, ok, _ := m.Get("b"); ok {
		t.Errorf("Get after Delete should report ok=false")
	}
}

func TestSortedMapOverwrite(t *testing.T) {
	h := newTestHeap(t, 1<<16)
	m := NewSortedMap[Term, Term](h, 0, termCodec{}, termCodec{})

	if err := m.Set("k", "short"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	// A longer value forces the node's block to grow past its original
	// allocation, exercising the free-and-reallocate path.
	if err := m.Set("k", "a considerably longer replacement value"); err != nil {
		t.Fatalf("Set (grow): %v", err)
	}
	v, ok, err := m.Get("k")
	if err != nil || !ok || v != "a considerably longer replacement value" {
		t.Fatalf("Get after grow: got (%q, %v, %v)", v, ok, err)
	}
}

func TestSortedMapAscendingOrder(t *testing.T) {
	h := newTestHeap(t, 1<<16)
	m := NewSortedMap[Term, Term](h, 0, termCodec{}, termCodec{})

	keys := []string{"delta", "alpha", "charlie", "bravo", "echo"}
	for _, k := range keys {
		if err := m.Set(k, k); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}

	var got []string
	for k := range m.All() {
		got = append(got, k)
	}
	want := append([]string(nil), keys...)
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("All(): got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("All()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSortedMapFromSeeksForward(t *testing.T) {
	h := newTestHeap(t, 1<<16)
	m := NewSortedMap[Term, Term](h, 0, termCodec{}, termCodec{})
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		_ = m.Set(k, k)
	}
	var got []string
	for k := range m.From("c") {
		got = append(got, k)
	}
	want := []string{"c", "d", "e"}
	if len(got) != len(want) {
		t.Fatalf("From(c): got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("From(c)[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSortedMapSurvivesManyInsertsAndDeletes(t *testing.T) {
	h := newTestHeap(t, 1<<20)
	m := NewSortedMap[Term, Term](h, 0, termCodec{}, termCodec{})

	const n = 200
	for i := range n {
		k := string(rune('a' + i%26))
		k = k + string(rune('0'+i/26))
		if err := m.Set(k, k); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}
	count := 0
	for range m.All() {
		count++
	}
	if count != n {
		t.Errorf("after inserts: got %d entries, want %d", count, n)
	}

	deleted := 0
	for i := range n {
		if i%2 != 0 {
			continue
		}
		k := string(rune('a'+i%26)) + string(rune('0'+i/26))
		if ok, err := m.Delete(k); err != nil {
			t.Fatalf("Delete(%s): %v", k, err)
		} else if ok {
			deleted++
		}
	}
	count = 0
	for range m.All() {
		count++
	}
	if count != n-deleted {
		t.Errorf("after deletes: got %d entries, want %d", count, n-deleted)
	}
}

func TestSortedMapClear(t *testing.T) {
	h := newTestHeap(t, 1<<16)
	m := NewSortedMap[Term, Term](h, 0, termCodec{}, termCodec{})
	for _, k := range []string{"a", "b", "c"} {
		_ = m.Set(k, k)
	}

	if err := m.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if m.Root() != 0 {
		t.Errorf("Root after Clear = %d, want 0", m.Root())
	}
	count := 0
	for range m.All() {
		count++
	}
	if count != 0 {
		t.Errorf("All() after Clear: got %d entries, want 0", count)
	}

	// A cleared map is still usable.
	if err := m.Set("d", "d"); err != nil {
		t.Fatalf("Set after Clear: %v", err)
	}
	if v, ok, _ := m.Get("d"); !ok || v != "d" {
		t.Errorf("Get after Set-after-Clear: got (%q, %v)", v, ok)
	}
}

func TestSortedSetAddContainsRemove(t *testing.T) {
	h := newTestHeap(t, 1<<16)
	s := NewSortedSet[Term](h, 0, termCodec{})

	if err := s.Add("x"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	ok, err := s.Contains("x")
	if err != nil || !ok {
		t.Fatalf("Contains: got (%v, %v)", ok, err)
	}
	// Adding the same member twice is a no-op, not an error.
	if err := s.Add("x"); err != nil {
		t.Fatalf("Add (duplicate): %v", err)
	}

	removed, err := s.Remove("x")
	if err != nil || !removed {
		t.Fatalf("Remove: got (%v, %v)", removed, err)
	}
	if ok, _ := s.Contains("x"); ok {
		t.Errorf("Contains after Remove should be false")
	}
}

func TestSortedSetClear(t *testing.T) {
	h := newTestHeap(t, 1<<16)
	s := NewSortedSet[Term](h, 0, termCodec{})
	for _, v := range []string{"x", "y", "z"} {
		_ = s.Add(v)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if s.Root() != 0 {
		t.Errorf("Root after Clear = %d, want 0", s.Root())
	}
	if ok, _ := s.Contains("x"); ok {
		t.Errorf("Contains after Clear should be false")
	}
	count := 0
	for range s.All() {
		count++
	}
	if count != 0 {
		t.Errorf("All() after Clear: got %d entries, want 0", count)
	}
}

func TestSortedSetAllInOrder(t *testing.T) {
	h := newTestHeap(t, 1<<16)
	s := NewSortedSet[Term](h, 0, termCodec{})
	for _, v := range []string{"z", "m", "a", "q"} {
		_ = s.Add(v)
	}
	var got []string
	for v := range s.All() {
		got = append(got, v)
	}
	want := []string{"a", "m", "q", "z"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("All()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

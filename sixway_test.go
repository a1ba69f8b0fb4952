// SixWayStore tests confirm that Add/Remove/Contains keep all six
// permutations in agreement and that BestPermutation picks a
// permutation whose leading columns are bound whenever one exists.
package triplestore

import "testing"

func newTestSixWay(t *testing.T, h *Heap) *SixWayStore {
	t.Helper()
	return NewSixWayStore(
		NewIndex(h, 0), NewIndex(h, 0), NewIndex(h, 0),
		NewIndex(h, 0), NewIndex(h, 0), NewIndex(h, 0),
	)
}

func TestSixWayAddVisibleFromEveryPermutation(t *testing.T) {
	h := newTestHeap(t, 1<<20)
	store := newTestSixWay(t, h)

	if err := store.Add("s", "p", "o"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	cases := []struct {
		perm                        Permutation
		primary, secondary, ternary Term
	}{
		{PermSPO, "s", "p", "o"},
		{PermSOP, "s", "o", "p"},
		{PermPSO, "p", "s", "o"},
		{PermPOS, "p", "o", "s"},
		{PermOSP, "o", "s", "p"},
		{PermOPS, "o", "p", "s"},
	}
	for _, c := range cases {
		ok, err := store.Index(c.perm).Contains(c.primary, c.secondary, c.ternary)
		if err != nil || !ok {
			t.Errorf("permutation %d: Contains(%q,%q,%q) got (%v, %v)", c.perm, c.primary, c.secondary, c.ternary, ok, err)
		}
	}
}

func TestSixWayRemoveClearsAllPermutations(t *testing.T) {
	h := newTestHeap(t, 1<<20)
	store := newTestSixWay(t, h)
	_ = store.Add("s", "p", "o")

	if err := store.Remove("s", "p", "o"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	ok, err := store.Contains("s", "p", "o")
	if err != nil || ok {
		t.Errorf("Contains after Remove: got (%v, %v), want false", ok, err)
	}
	perms := []Permutation{PermSPO, PermSOP, PermPSO, PermPOS, PermOSP, PermOPS}
	terms := [][3]Term{{"s", "p", "o"}, {"s", "o", "p"}, {"p", "s", "o"}, {"p", "o", "s"}, {"o", "s", "p"}, {"o", "p", "s"}}
	for i, perm := range perms {
		tt := terms[i]
		if ok, err := store.Index(perm).Contains(tt[0], tt[1], tt[2]); err != nil || ok {
			t.Errorf("permutation %d after Remove: Contains(%q,%q,%q) got (%v, %v), want false", perm, tt[0], tt[1], tt[2], ok, err)
		}
	}
}

func TestSixWayRemoveRejectsWildcard(t *testing.T) {
	h := newTestHeap(t, 1<<20)
	store := newTestSixWay(t, h)
	_ = store.Add("s", "p", "o")
	if err := store.Remove("s", "", "o"); err != ErrWildcardNotSupported {
		t.Errorf("Remove with wildcard: got %v, want ErrWildcardNotSupported", err)
	}
}

func TestBestPermutationPrefersBoundLeadingColumns(t *testing.T) {
	if got := BestPermutation(true, true, false); got != PermSPO {
		t.Errorf("subject+predicate bound: got %v, want PermSPO", got)
	}
	if got := BestPermutation(false, false, true); got != PermOSP {
		t.Errorf("object-only bound: got %v, want PermOSP", got)
	}
	if got := BestPermutation(false, false, false); got != PermSPO {
		t.Errorf("nothing bound: got %v, want PermSPO (full scan fallback)", got)
	}
}

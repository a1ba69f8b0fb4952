// SixWayStore composes six Index permutations of the same underlying
// triples — SPO, SOP, PSO, POS, OSP, OPS, named for which column is
// primary/secondary/ternary in each — so that any combination of bound
// and unbound columns has a permutation whose leading columns are the
// bound ones, letting Enumerate prune with a lookup or seek instead of
// a full scan. This is a direct, mechanical consequence of composing
// several Index values over the same triples: nothing here is an index
// feature in its own right.
package triplestore

// Permutation identifies one of the six column orderings a
// SixWayStore maintains.
type Permutation int

const (
	PermSPO Permutation = iota
	PermSOP
	PermPSO
	PermPOS
	PermOSP
	PermOPS
)

// SixWayStore keeps one Index per Permutation, all mutated together so
// they always agree on which triples exist.
type SixWayStore struct {
	indexes [6]*Index
}

// NewSixWayStore returns a SixWayStore backed by the given Index per
// permutation, in Permutation order (SPO, SOP, PSO, POS, OSP, OPS).
func NewSixWayStore(spo, sop, pso, pos, osp, ops *Index) *SixWayStore {
	return &SixWayStore{indexes: [6]*Index{spo, sop, pso, pos, osp, ops}}
}

// Index returns the Index maintaining the given permutation.
func (s *SixWayStore) Index(p Permutation) *Index {
	return s.indexes[p]
}

// Roots returns the current root offset of each permutation's Index, in
// Permutation order, for the caller to persist (e.g. via six Env roots).
func (s *SixWayStore) Roots() [6]int64 {
	var roots [6]int64
	for i, idx := range s.indexes {
		roots[i] = idx.Root()
	}
	return roots
}

// Add inserts (subject, predicate, object) into all six permutations.
// If a later permutation's Add fails, earlier permutations have
// already been updated; callers that need atomicity across the six
// should serialize calls to SixWayStore behind their own lock and
// treat a partial failure as requiring Remove cleanup or a restart from
// a known-good root snapshot.
func (s *SixWayStore) Add(subject, predicate, object Term) error {
	terms := [6][3]Term{
		{subject, predicate, object},
		{subject, object, predicate},
		{predicate, subject, object},
		{predicate, object, subject},
		{object, subject, predicate},
		{object, predicate, subject},
	}
	for i, idx := range s.indexes {
		t := terms[i]
		if err := idx.Add(t[0], t[1], t[2]); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes (subject, predicate, object) from all six
// permutations. Wildcards (the empty string) are not supported here
// since removing a partial pattern from one permutation does not
// determine which rows to remove from the other five; use Index.Remove
// directly on a single permutation for wildcard deletes.
func (s *SixWayStore) Remove(subject, predicate, object Term) error {
	if subject == "" || predicate == "" || object == "" {
		return ErrWildcardNotSupported
	}
	terms := [6][3]Term{
		{subject, predicate, object},
		{subject, object, predicate},
		{predicate, subject, object},
		{predicate, object, subject},
		{object, subject, predicate},
		{object, predicate, subject},
	}
	for i, idx := range s.indexes {
		t := terms[i]
		if err := idx.Remove(t[0], t[1], t[2]); err != nil {
			return err
		}
	}
	return nil
}

// Contains reports whether (subject, predicate, object) is present,
// checked against the SPO permutation.
func (s *SixWayStore) Contains(subject, predicate, object Term) (bool, error) {
	return s.indexes[PermSPO].Contains(subject, predicate, object)
}

// BestPermutation picks the permutation whose leading columns are bound
// (KindSpecific) as early as possible, given which of subject/
// predicate/object are specifically constrained. It is a static,
// structural choice — it does not consult cardinality statistics — but
// it always avoids a full scan when at least one column is bound.
func BestPermutation(subjectBound, predicateBound, objectBound bool) Permutation {
	switch {
	case subjectBound && predicateBound:
		return PermSPO
	case subjectBound && objectBound:
		return PermSOP
	case predicateBound && objectBound:
		return PermPOS
	case subjectBound:
		return PermSPO
	case predicateBound:
		return PermPSO
	case objectBound:
		return PermOSP
	default:
		return PermSPO
	}
}

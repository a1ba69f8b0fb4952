// Index is a three-level ordered structure — Map<Term, Map<Term,
// Set<Term>>> — persisted entirely through SortedMap and SortedSet over
// a single Heap. The outer two levels store offsets to the next level's
// tree root rather than nested values directly, so every level is its
// own independently navigable persisted structure.
package triplestore

import (
	"iter"
	"sync"
)

// Index is a three-level ordered index over (primary, secondary,
// ternary) Triples, with reader/writer concurrency: Add/Remove take the
// write lock, Contains/Enumerate/Views take the read lock, and every
// iterator produced by Enumerate holds that read lock for its entire
// lifetime.
type Index struct {
	mu   sync.RWMutex
	heap *Heap
	root int64 // top-level SortedMap[Term, int64] root: primary -> second-level root
}

// NewIndex returns an Index over heap, starting from root (0 for an
// empty index).
func NewIndex(heap *Heap, root int64) *Index {
	return &Index{heap: heap, root: root}
}

// Root returns the current top-level tree root offset, to be persisted
// by the caller (typically via an Env root).
func (idx *Index) Root() int64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.root
}

func (idx *Index) topMap() *SortedMap[Term, int64] {
	return NewSortedMap[Term, int64](idx.heap, idx.root, termCodec{}, int64Codec{})
}

func secondMap(heap *Heap, root int64) *SortedMap[Term, int64] {
	return NewSortedMap[Term, int64](heap, root, termCodec{}, int64Codec{})
}

func thirdSet(heap *Heap, root int64) *SortedSet[Term] {
	return NewSortedSet[Term](heap, root, termCodec{})
}

// Add inserts (primary, secondary, ternary) into the index. It is a
// no-op if the triple is already present.
func (idx *Index) Add(primary, secondary, ternary Term) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	top := idx.topMap()
	secondRoot, ok, err := top.Get(primary)
	if err != nil {
		return err
	}
	second := secondMap(idx.heap, secondRoot)
	if !ok {
		second = secondMap(idx.heap, 0)
	}

	thirdRoot, ok, err := second.Get(secondary)
	if err != nil {
		return err
	}
	third := thirdSet(idx.heap, thirdRoot)
	if !ok {
		third = thirdSet(idx.heap, 0)
	}

	if err := third.Add(ternary); err != nil {
		return err
	}
	if err := second.Set(secondary, third.Root()); err != nil {
		return err
	}
	if err := top.Set(primary, second.Root()); err != nil {
		return err
	}
	idx.root = top.Root()
	return idx.heap.validateIfConfigured()
}

// Remove deletes triples matching (primary, secondary, ternary). The
// empty string in the secondary or ternary position is a wildcard:
// Remove("s", "", "") deletes every triple with primary "s",
// Remove("s", "", "o") deletes "o" under every secondary of "s",
// Remove("s", "p", "") deletes every triple with that (primary,
// secondary) pair, and all three non-empty removes exactly one triple.
// The primary is not a wildcard: an empty primary is looked up as the
// empty term, so Remove("", ...) touches only triples whose primary is
// the empty string. A wildcard remove empties the
// intermediate container(s) it touches but does not delete the mapping
// entries that reach them — primary and (primary, secondary) keep
// pointing at an empty child structure rather than disappearing, so a
// later Add under the same prefix reuses the same mapping entry and a
// direct Enumerate/View still reports the (empty) container. Clear is
// the only operation that actually wipes mapping entries.
func (idx *Index) Remove(primary, secondary, ternary Term) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	top := idx.topMap()
	secondRoot, ok, err := top.Get(primary)
	if err != nil || !ok {
		return err
	}
	second := secondMap(idx.heap, secondRoot)

	if secondary == "" {
		var secondaries []Term
		for s := range second.All() {
			secondaries = append(secondaries, s)
		}
		for _, s := range secondaries {
			thirdRoot, ok, err := second.Get(s)
			if err != nil || !ok {
				continue
			}
			third := thirdSet(idx.heap, thirdRoot)
			if ternary == "" {
				if err := third.Clear(); err != nil {
					return err
				}
			} else if _, err := third.Remove(ternary); err != nil {
				return err
			}
			if err := second.Set(s, third.Root()); err != nil {
				return err
			}
		}
		if err := top.Set(primary, second.Root()); err != nil {
			return err
		}
		idx.root = top.Root()
		return idx.heap.validateIfConfigured()
	}

	thirdRoot, ok, err := second.Get(secondary)
	if err != nil || !ok {
		return err
	}
	third := thirdSet(idx.heap, thirdRoot)

	if ternary == "" {
		if err := third.Clear(); err != nil {
			return err
		}
	} else {
		if _, err := third.Remove(ternary); err != nil {
			return err
		}
	}
	if err := second.Set(secondary, third.Root()); err != nil {
		return err
	}
	if err := top.Set(primary, second.Root()); err != nil {
		return err
	}
	idx.root = top.Root()
	return idx.heap.validateIfConfigured()
}

// Clear removes every triple, freeing every persisted node across all
// three levels and resetting the index to empty. Unlike Remove's
// wildcard forms, Clear wipes the outer map itself rather than leaving
// emptied mapping entries behind.
func (idx *Index) Clear() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	top := idx.topMap()
	for _, secondRoot := range top.All() {
		if secondRoot == 0 {
			continue
		}
		second := secondMap(idx.heap, secondRoot)
		for _, thirdRoot := range second.All() {
			if thirdRoot == 0 {
				continue
			}
			if err := thirdSet(idx.heap, thirdRoot).Clear(); err != nil {
				return err
			}
		}
		if err := second.Clear(); err != nil {
			return err
		}
	}
	if err := top.Clear(); err != nil {
		return err
	}
	idx.root = top.Root()
	return idx.heap.validateIfConfigured()
}

// Contains reports whether (primary, secondary, ternary) is present.
func (idx *Index) Contains(primary, secondary, ternary Term) (bool, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	secondRoot, ok, err := idx.topMap().Get(primary)
	if err != nil || !ok {
		return false, err
	}
	thirdRoot, ok, err := secondMap(idx.heap, secondRoot).Get(secondary)
	if err != nil || !ok {
		return false, err
	}
	return thirdSet(idx.heap, thirdRoot).Contains(ternary)
}

// ContainsPrimary reports whether any triple has the given primary.
// A primary whose secondaries all point at leaf sets emptied by a
// wildcard Remove does not count — membership requires at least one
// non-empty leaf set beneath it, not merely a surviving mapping entry.
func (idx *Index) ContainsPrimary(primary Term) (bool, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	secondRoot, ok, err := idx.topMap().Get(primary)
	if err != nil || !ok {
		return false, err
	}
	for _, thirdRoot := range secondMap(idx.heap, secondRoot).All() {
		if thirdRoot != 0 {
			return true, nil
		}
	}
	return false, nil
}

// ContainsPair reports whether any triple has the given (primary,
// secondary) pair, under the same non-empty-container rule as
// ContainsPrimary.
func (idx *Index) ContainsPair(primary, secondary Term) (bool, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	secondRoot, ok, err := idx.topMap().Get(primary)
	if err != nil || !ok {
		return false, err
	}
	thirdRoot, ok, err := secondMap(idx.heap, secondRoot).Get(secondary)
	if err != nil || !ok {
		return false, err
	}
	return thirdRoot != 0, nil
}

// View returns a lazy View over idx restricted by the given
// constraints, without enumerating anything until the caller ranges
// over its Rows.
func (idx *Index) View(primary, secondary, ternary Constraint) View {
	return NewConstrainedView(idx, primary, secondary, ternary)
}

// Views returns a View over the concatenation of one ConstrainedView
// per element of patterns, each a (primary, secondary, ternary)
// constraint triple — see UnionView for its no-deduplication contract.
func (idx *Index) Views(patterns ...[3]Constraint) View {
	members := make([]View, len(patterns))
	for i, p := range patterns {
		members[i] = NewConstrainedView(idx, p[0], p[1], p[2])
	}
	return NewUnionView(members...)
}

// IndexStats summarises the shape of an Index's contents: how many
// distinct primaries and (primary, secondary) pairs currently hold at
// least one triple, and the total row count. Empty intermediate
// containers left behind by a wildcard Remove are not counted.
type IndexStats struct {
	Primaries int
	Pairs     int
	Rows      int
}

// Stats walks the entire index and reports its current shape. It does
// not mutate anything but is O(rows); callers on a hot path should
// cache the result rather than call it after every mutation.
func (idx *Index) Stats() (IndexStats, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var s IndexStats
	for _, secondRoot := range idx.topMap().All() {
		if secondRoot == 0 {
			continue
		}
		second := secondMap(idx.heap, secondRoot)
		pairsBefore := s.Pairs
		for _, thirdRoot := range second.All() {
			if thirdRoot == 0 {
				continue
			}
			s.Pairs++
			for range thirdSet(idx.heap, thirdRoot).All() {
				s.Rows++
			}
		}
		if s.Pairs > pairsBefore {
			s.Primaries++
		}
	}
	return s, nil
}

// Enumerate lazily yields every Row matching the given constraints, one
// level at a time (primary, then secondary, then ternary), pruning each
// level with the cheapest traversal its Constraint allows: Any scans
// every entry, Specific does one lookup, Range seeks to the lower bound
// and scans forward filtering against the upper, and Set does one
// lookup per candidate value. The returned sequence acquires the
// index's read lock before the first yield and holds it until the
// caller stops ranging over the sequence or it is exhausted.
func (idx *Index) Enumerate(primary, secondary, ternary Constraint) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		idx.mu.RLock()
		defer idx.mu.RUnlock()
		idx.enumerateLocked(primary, secondary, ternary, yield)
	}
}

func (idx *Index) enumerateLocked(primary, secondary, ternary Constraint, yield func(Row, error) bool) {
	top := idx.topMap()
	constrainMap(top, primary, func(p Term, secondRoot int64) bool {
		second := secondMap(idx.heap, secondRoot)
		return constrainMap(second, secondary, func(s Term, thirdRoot int64) bool {
			third := thirdSet(idx.heap, thirdRoot)
			return constrainSet(third, ternary, func(t Term) bool {
				return yield(rowFor(primary, secondary, p, s, t), nil)
			})
		})
	})
}

// rowFor trims leading constrained columns off a result row: a fully
// specific primary+secondary constraint yields just the ternary value,
// a specific-primary-only constraint yields (secondary, ternary), and
// anything broader yields the full (primary, secondary, ternary) row.
func rowFor(primaryC, secondaryC Constraint, p, s, t Term) Row {
	if primaryC.Kind == KindSpecific {
		if secondaryC.Kind == KindSpecific {
			return Row{t}
		}
		return Row{s, t}
	}
	return Row{p, s, t}
}

// constrainMap dispatches a level stored as a SortedMap[Term, int64]
// according to c, calling visit(key, value) for each matching entry in
// ascending key order. It returns false if the caller stopped early.
func constrainMap(m *SortedMap[Term, int64], c Constraint, visit func(Term, int64) bool) bool {
	switch c.Kind {
	case KindSpecific:
		v, ok, err := m.Get(c.Value)
		if err != nil || !ok {
			return true
		}
		return visit(c.Value, v)
	case KindSet:
		for _, candidate := range c.Values {
			v, ok, err := m.Get(candidate)
			if err != nil || !ok {
				continue
			}
			if !visit(candidate, v) {
				return false
			}
		}
		return true
	case KindRange:
		for k, v := range m.From(c.Lo) {
			if !c.LoInclusive && k == c.Lo {
				continue
			}
			if c.HiInclusive {
				if k > c.Hi {
					break
				}
			} else if k >= c.Hi {
				break
			}
			if !visit(k, v) {
				return false
			}
		}
		return true
	default: // KindAny
		for k, v := range m.All() {
			if !visit(k, v) {
				return false
			}
		}
		return true
	}
}

// constrainSet is constrainMap's counterpart for the innermost
// SortedSet[Term] level.
func constrainSet(s *SortedSet[Term], c Constraint, visit func(Term) bool) bool {
	switch c.Kind {
	case KindSpecific:
		ok, err := s.Contains(c.Value)
		if err != nil || !ok {
			return true
		}
		return visit(c.Value)
	case KindSet:
		for _, candidate := range c.Values {
			ok, err := s.Contains(candidate)
			if err != nil || !ok {
				continue
			}
			if !visit(candidate) {
				return false
			}
		}
		return true
	case KindRange:
		for v := range s.From(c.Lo) {
			if !c.LoInclusive && v == c.Lo {
				continue
			}
			if c.HiInclusive {
				if v > c.Hi {
					break
				}
			} else if v >= c.Hi {
				break
			}
			if !visit(v) {
				return false
			}
		}
		return true
	default: // KindAny
		for v := range s.All() {
			if !visit(v) {
				return false
			}
		}
		return true
	}
}

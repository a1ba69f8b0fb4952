// View is a lazy, read-locked cursor handle over part of an Index:
// either one constrained traversal or a union of several. Views exist
// so a caller building a composite query (e.g. across the six
// permutation indexes a full triple store composes) can hold cursors
// without committing to materialising their rows until enumeration
// actually happens.
package triplestore

import "iter"

// View produces Rows lazily.
type View interface {
	Rows() iter.Seq2[Row, error]
}

// ConstrainedView wraps a single Enumerate call against one Index.
type ConstrainedView struct {
	idx                         *Index
	primary, secondary, ternary Constraint
}

// NewConstrainedView returns a View over idx restricted by the given
// constraints.
func NewConstrainedView(idx *Index, primary, secondary, ternary Constraint) ConstrainedView {
	return ConstrainedView{idx: idx, primary: primary, secondary: secondary, ternary: ternary}
}

// Rows enumerates the matching rows, holding idx's read lock for the
// sequence's lifetime exactly as Index.Enumerate does.
func (v ConstrainedView) Rows() iter.Seq2[Row, error] {
	return v.idx.Enumerate(v.primary, v.secondary, v.ternary)
}

// UnionView concatenates several Views in order, as if their rows had
// been appended. It does not deduplicate — the same row yielded by two
// member views is yielded twice — since eliminating that requires
// knowing how rows from distinct indexes correspond, which is caller
// domain knowledge.
type UnionView struct {
	members []View
}

// NewUnionView returns a View over the concatenation of members.
func NewUnionView(members ...View) UnionView {
	return UnionView{members: members}
}

// Rows enumerates each member view in turn, stopping early if the
// caller breaks out of the range. Each member's own lock discipline
// applies independently: a member's read lock is held only while its
// own rows are being produced, not for the union's entire lifetime.
func (v UnionView) Rows() iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		for _, m := range v.members {
			cont := true
			for row, err := range m.Rows() {
				if !yield(row, err) {
					cont = false
					break
				}
			}
			if !cont {
				return
			}
		}
	}
}

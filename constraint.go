// Constraint describes how a single level of an Index query is bound:
// unconstrained, pinned to one value, bounded to a range, or limited to
// a fixed set of values. Index.Enumerate and the view types dispatch on
// a Constraint's kind to choose the cheapest available traversal.
package triplestore

import "slices"

// ConstraintKind identifies which shape of restriction a Constraint
// carries.
type ConstraintKind int

const (
	// KindAny matches every value at this level — a full scan.
	KindAny ConstraintKind = iota
	// KindSpecific matches exactly one value — a single lookup.
	KindSpecific
	// KindRange matches values within [Lo, Hi] (bounds inclusive per
	// LoInclusive/HiInclusive) — a seek followed by a bounded scan.
	KindRange
	// KindSet matches any value in Values — one lookup per candidate.
	KindSet
)

// Constraint restricts one level (primary, secondary, or ternary) of an
// Index traversal.
type Constraint struct {
	Kind        ConstraintKind
	Value       Term
	Lo, Hi      Term
	LoInclusive bool
	HiInclusive bool
	Values      []Term
}

// Any matches every value.
func Any() Constraint { return Constraint{Kind: KindAny} }

// Specific matches exactly value.
func Specific(value Term) Constraint { return Constraint{Kind: KindSpecific, Value: value} }

// Range matches values between lo and hi, with inclusivity controlled
// independently at each bound.
func Range(lo, hi Term, loInclusive, hiInclusive bool) Constraint {
	return Constraint{Kind: KindRange, Lo: lo, Hi: hi, LoInclusive: loInclusive, HiInclusive: hiInclusive}
}

// SetOf matches any of values. Values holds a sorted copy with
// duplicates removed, so a Set traversal visits matches in ascending
// order, once each.
func SetOf(values ...Term) Constraint {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return Constraint{Kind: KindSet, Values: slices.Compact(sorted)}
}

// matches reports whether v satisfies the constraint. Index traversal
// does not call it: constrainMap and constrainSet check Range bounds
// and Set membership themselves.
func (c Constraint) matches(v Term) bool {
	switch c.Kind {
	case KindAny:
		return true
	case KindSpecific:
		return v == c.Value
	case KindRange:
		if c.LoInclusive {
			if v < c.Lo {
				return false
			}
		} else if v <= c.Lo {
			return false
		}
		if c.HiInclusive {
			if v > c.Hi {
				return false
			}
		} else if v >= c.Hi {
			return false
		}
		return true
	case KindSet:
		for _, candidate := range c.Values {
			if v == candidate {
				return true
			}
		}
		return false
	default:
		return false
	}
}

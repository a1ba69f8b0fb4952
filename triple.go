// Term, Triple, and Row: the data model shared by every layer above the
// heap. A Term is an opaque UTF-8 string; equality and ordering are Go's
// built-in byte-wise string comparison, which is already invariant-culture
// byte-wise as the data model requires.
package triplestore

// Term is an opaque UTF-8 string atomic to the store. The empty string is
// a valid term and is used as the "unconstrained" sentinel in Remove.
type Term = string

// Triple is an ordered (primary, secondary, ternary) record of Terms.
type Triple struct {
	Primary   Term
	Secondary Term
	Ternary   Term
}

// Row is one result of Enumerate. Its length depends on how many leading
// components of the query were constrained to a single specific value:
// a fully-specific primary+secondary query yields 1-column rows ([t]), a
// specific-primary query yields 2-column rows ([s, t]), and a general
// query yields 3-column rows ([p, s, t]).
type Row []Term

// Package comparator provides a capability-checked three-way comparison contract
// and a composite that delegates to the first comparator able to order a pair.
//
// A Comparator first answers whether it can order a pair (Accepts) and only then
// orders it (Compare). Composites let mixed-shape values be sorted with one
// comparator: numbers by Numeric, strings by String, and so on.
package comparator

// Comparator orders pairs of values it accepts
type Comparator interface {
	// Accepts reports whether the comparator can meaningfully order (a, b).
	// Must be a pure predicate.
	Accepts(a, b any) bool

	// Compare returns a negative number, zero or a positive number when a < b,
	// a == b or a > b. Only defined when Accepts(a, b) is true.
	Compare(a, b any) int
}

// sign normalizes a comparison result to -1, 0 or 1
func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

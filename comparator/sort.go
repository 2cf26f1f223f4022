package comparator

import "slices"

// Sort stable-sorts items in ascending order according to c.
// Pairs c does not accept compare as equal.
func Sort[T any](items []T, c Comparator) {
	slices.SortStableFunc(items, CompareFunc[T](c))
}

// IsSorted reports whether items are in ascending order according to c
func IsSorted[T any](items []T, c Comparator) bool {
	return slices.IsSortedFunc(items, CompareFunc[T](c))
}

// CompareFunc adapts c to the func(a, b T) int shape used by the slices package
func CompareFunc[T any](c Comparator) func(a, b T) int {
	return func(a, b T) int {
		if !c.Accepts(a, b) {
			return 0
		}
		return sign(c.Compare(a, b))
	}
}

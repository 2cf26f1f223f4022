// Package prioritylist provides a container that keeps items ordered by
// priority (higher first) and, within one priority, by insertion order.
package prioritylist

import (
	"cmp"
	"slices"

	"github.com/KOMKZ/go-yogan-event/comparator"
)

// Entry is one stored item
type Entry[T any] struct {
	Item     T
	Priority int
	Seq      uint64 // insertion sequence, unique within a List
}

// List keeps entries sorted by (Priority desc, Seq asc).
// The zero value is ready to use. List is not safe for concurrent use;
// callers that share one guard it themselves.
type List[T any] struct {
	entries []Entry[T]
	nextSeq uint64
	order   func(a, b Entry[T]) int
}

// EntryOrder orders entries by priority, highest first, then by insertion sequence
func EntryOrder[T any]() comparator.Comparator {
	return comparator.Typed(func(a, b Entry[T]) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
}

// New creates an empty list
func New[T any]() *List[T] {
	return &List[T]{}
}

// Add inserts item after every entry with a priority >= priority and returns its sequence number
func (l *List[T]) Add(item T, priority int) uint64 {
	l.nextSeq++
	e := Entry[T]{Item: item, Priority: priority, Seq: l.nextSeq}

	if l.order == nil {
		l.order = comparator.CompareFunc[Entry[T]](EntryOrder[T]())
	}
	// e has the highest sequence, so it lands after every entry of its priority
	i, _ := slices.BinarySearchFunc(l.entries, e, l.order)
	l.entries = slices.Insert(l.entries, i, e)
	return e.Seq
}

// RemoveFunc removes every entry whose item matches and returns how many were removed.
// The scan runs over a snapshot, so match may not observe its own removals.
func (l *List[T]) RemoveFunc(match func(e Entry[T]) bool) int {
	snapshot := slices.Clone(l.entries)
	kept := l.entries[:0]
	removed := 0
	for _, e := range snapshot {
		if match(e) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	clear(l.entries[len(kept):])
	l.entries = kept
	return removed
}

// RemoveSeq removes the entry with the given sequence number
func (l *List[T]) RemoveSeq(seq uint64) bool {
	return l.RemoveFunc(func(e Entry[T]) bool { return e.Seq == seq }) > 0
}

// Items returns the items in priority order as a fresh slice
func (l *List[T]) Items() []T {
	items := make([]T, len(l.entries))
	for i, e := range l.entries {
		items[i] = e.Item
	}
	return items
}

// Entries returns a copy of the ordered entries
func (l *List[T]) Entries() []Entry[T] {
	return slices.Clone(l.entries)
}

// Len returns the number of entries
func (l *List[T]) Len() int {
	return len(l.entries)
}

// IsEmpty reports whether the list has no entries
func (l *List[T]) IsEmpty() bool {
	return len(l.entries) == 0
}

// Clear removes every entry; sequence numbers keep increasing
func (l *List[T]) Clear() {
	l.entries = nil
}

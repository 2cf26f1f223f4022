package comparator

import (
	"reflect"
	"slices"
	"sync"
)

// AppendIndex inserts at the end of the sequence
const AppendIndex = -1

// Composite delegates each comparison to the first comparator in its sequence
// that accepts the pair. The last successful comparator is remembered and tried
// first on the next call, so runs of same-shaped pairs skip the scan.
//
// Composite is itself a Comparator and is safe for concurrent use.
type Composite struct {
	mu          sync.RWMutex
	comparators []Comparator // copy-on-write, never mutated in place
	version     uint64       // bumped on every sequence change
	last        Comparator   // usage hint, always a member of comparators
}

// NewComposite creates a composite holding cs in order
func NewComposite(cs ...Comparator) (*Composite, error) {
	c := &Composite{}
	if len(cs) == 0 {
		return c, nil
	}
	if err := c.AddComparators(cs, AppendIndex); err != nil {
		return nil, err
	}
	return c, nil
}

// Accepts reports whether any comparator in the sequence accepts (a, b)
func (c *Composite) Accepts(a, b any) bool {
	c.mu.RLock()
	seq := c.comparators
	c.mu.RUnlock()

	for _, cmp := range seq {
		if cmp.Accepts(a, b) {
			return true
		}
	}
	return false
}

// Compare orders (a, b) with the first accepting comparator.
// Returns -1, 0 or 1; a pair nobody accepts compares as equal.
func (c *Composite) Compare(a, b any) int {
	c.mu.RLock()
	last := c.last
	seq := c.comparators
	version := c.version
	c.mu.RUnlock()

	if last != nil && last.Accepts(a, b) {
		return sign(last.Compare(a, b))
	}

	for _, cmp := range seq {
		if cmp.Accepts(a, b) {
			c.remember(cmp, version)
			return sign(cmp.Compare(a, b))
		}
	}
	c.remember(nil, version)
	return 0
}

// remember caches cmp unless the sequence changed since it was read
func (c *Composite) remember(cmp Comparator, version uint64) {
	c.mu.Lock()
	if c.version == version {
		c.last = cmp
	}
	c.mu.Unlock()
}

// AddComparator inserts cmp at index; AppendIndex (-1) appends.
func (c *Composite) AddComparator(cmp Comparator, index int) error {
	return c.AddComparators([]Comparator{cmp}, index)
}

// AddComparators inserts cs at index keeping their order; AppendIndex (-1) appends.
// Nothing is inserted when any element is nil or the index is out of range.
func (c *Composite) AddComparators(cs []Comparator, index int) error {
	for i, cmp := range cs {
		if isNil(cmp) {
			return ErrInvalidArgument.WithMsg("comparator must not be nil").WithData("position", i)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.comparators)
	if index == AppendIndex {
		index = n
	}
	if index < 0 || index > n {
		return ErrIndexOutOfRange.
			WithMsgf("comparator index %d outside [0, %d]", index, n).
			WithFields(map[string]any{"index": index, "length": n})
	}
	if len(cs) == 0 {
		return nil
	}

	c.comparators = slices.Insert(slices.Clone(c.comparators), index, cs...)
	c.version++
	return nil
}

// RemoveComparator removes the first occurrence of cmp and returns it.
// Returns false when cmp is not in the sequence.
func (c *Composite) RemoveComparator(cmp Comparator) (Comparator, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(cmp)
	if i < 0 {
		return nil, false
	}

	removed := c.comparators[i]
	c.comparators = slices.Delete(slices.Clone(c.comparators), i, i+1)
	c.version++
	if c.last != nil && c.indexOf(c.last) < 0 {
		c.last = nil
	}
	return removed, true
}

// ContainsComparator reports whether cmp is in the sequence
func (c *Composite) ContainsComparator(cmp Comparator) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexOf(cmp) >= 0
}

// ClearComparators empties the sequence and drops the cached comparator
func (c *Composite) ClearComparators() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.comparators = nil
	c.last = nil
	c.version++
}

// Comparator returns the comparator at index, or nil when out of range
func (c *Composite) Comparator(index int) Comparator {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if index < 0 || index >= len(c.comparators) {
		return nil
	}
	return c.comparators[index]
}

// Comparators returns a copy of the sequence
func (c *Composite) Comparators() []Comparator {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.comparators)
}

// Len returns the sequence length
func (c *Composite) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.comparators)
}

// indexOf finds cmp by identity; caller holds the lock
func (c *Composite) indexOf(cmp Comparator) int {
	for i, existing := range c.comparators {
		if same(existing, cmp) {
			return i
		}
	}
	return -1
}

// same is identity equality. Comparators whose dynamic type is not comparable
// never match; use pointer comparators when removal matters.
func same(a, b Comparator) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func isNil(cmp Comparator) bool {
	if cmp == nil {
		return true
	}
	v := reflect.ValueOf(cmp)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan:
		return v.IsNil()
	}
	return false
}

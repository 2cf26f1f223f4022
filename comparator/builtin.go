package comparator

import (
	"cmp"
	"reflect"
	"strings"
	"time"
)

// Numeric orders any two Go integer or floating point values, including named
// numeric types. Mixed signed/unsigned/float pairs are ordered by value.
type Numeric struct{}

// Accepts both operands are numeric
func (Numeric) Accepts(a, b any) bool {
	_, okA := numberOf(a)
	_, okB := numberOf(b)
	return okA && okB
}

// Compare orders two numbers
func (Numeric) Compare(a, b any) int {
	x, _ := numberOf(a)
	y, _ := numberOf(b)
	return x.compare(y)
}

type numberKind int

const (
	kindSigned numberKind = iota
	kindUnsigned
	kindFloat
)

type number struct {
	kind numberKind
	i    int64
	u    uint64
	f    float64
}

func numberOf(v any) (number, bool) {
	if v == nil {
		return number{}, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return number{kind: kindSigned, i: rv.Int(), f: float64(rv.Int())}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return number{kind: kindUnsigned, u: rv.Uint(), f: float64(rv.Uint())}, true
	case reflect.Float32, reflect.Float64:
		return number{kind: kindFloat, f: rv.Float()}, true
	}
	return number{}, false
}

func (x number) compare(y number) int {
	switch {
	case x.kind == kindSigned && y.kind == kindSigned:
		return cmp.Compare(x.i, y.i)
	case x.kind == kindUnsigned && y.kind == kindUnsigned:
		return cmp.Compare(x.u, y.u)
	case x.kind == kindSigned && y.kind == kindUnsigned:
		if x.i < 0 {
			return -1
		}
		return cmp.Compare(uint64(x.i), y.u)
	case x.kind == kindUnsigned && y.kind == kindSigned:
		if y.i < 0 {
			return 1
		}
		return cmp.Compare(x.u, uint64(y.i))
	}
	return cmp.Compare(x.f, y.f)
}

// String orders string values (including named string types)
type String struct {
	FoldCase bool // compare case-insensitively
}

// Accepts both operands are strings
func (String) Accepts(a, b any) bool {
	return isString(a) && isString(b)
}

// Compare orders two strings lexically
func (s String) Compare(a, b any) int {
	x := reflect.ValueOf(a).String()
	y := reflect.ValueOf(b).String()
	if s.FoldCase {
		x, y = strings.ToLower(x), strings.ToLower(y)
	}
	return strings.Compare(x, y)
}

func isString(v any) bool {
	return v != nil && reflect.ValueOf(v).Kind() == reflect.String
}

// Time orders time.Time values
type Time struct{}

// Accepts both operands are time.Time
func (Time) Accepts(a, b any) bool {
	_, okA := a.(time.Time)
	_, okB := b.(time.Time)
	return okA && okB
}

// Compare orders two instants
func (Time) Compare(a, b any) int {
	return a.(time.Time).Compare(b.(time.Time))
}

// FuncComparator adapts a pair of functions to Comparator
type FuncComparator struct {
	accepts func(a, b any) bool
	compare func(a, b any) int
}

// NewFunc builds a comparator from an accepts predicate and a compare function
func NewFunc(accepts func(a, b any) bool, compare func(a, b any) int) *FuncComparator {
	return &FuncComparator{accepts: accepts, compare: compare}
}

// Typed builds a comparator accepting pairs whose dynamic types are both T
func Typed[T any](compare func(a, b T) int) *FuncComparator {
	return NewFunc(
		func(a, b any) bool {
			_, okA := a.(T)
			_, okB := b.(T)
			return okA && okB
		},
		func(a, b any) int {
			return compare(a.(T), b.(T))
		},
	)
}

// Accepts delegates to the accepts function
func (f *FuncComparator) Accepts(a, b any) bool {
	return f.accepts(a, b)
}

// Compare delegates to the compare function
func (f *FuncComparator) Compare(a, b any) int {
	return f.compare(a, b)
}

// KeyComparator orders values by a selected key, e.g. a struct field
type KeyComparator struct {
	key   func(v any) (any, bool)
	inner Comparator
}

// By orders values by key(v) using inner. A value whose key cannot be
// extracted is not accepted.
func By(key func(v any) (any, bool), inner Comparator) *KeyComparator {
	return &KeyComparator{key: key, inner: inner}
}

// Accepts both keys extract and inner accepts them
func (k *KeyComparator) Accepts(a, b any) bool {
	ka, okA := k.key(a)
	kb, okB := k.key(b)
	return okA && okB && k.inner.Accepts(ka, kb)
}

// Compare orders the extracted keys
func (k *KeyComparator) Compare(a, b any) int {
	ka, _ := k.key(a)
	kb, _ := k.key(b)
	return k.inner.Compare(ka, kb)
}

type reversed struct {
	inner Comparator
}

// Reverse inverts the order of c
func Reverse(c Comparator) Comparator {
	return &reversed{inner: c}
}

func (r *reversed) Accepts(a, b any) bool {
	return r.inner.Accepts(a, b)
}

func (r *reversed) Compare(a, b any) int {
	return r.inner.Compare(b, a)
}

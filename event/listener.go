package event

import (
	"context"
	"reflect"
	"unsafe"
)

// Listener reacts to an event in either phase
type Listener interface {
	// Handle event.
	// Returning ErrStopPropagation consumes the event; any other error aborts the dispatch.
	Handle(ctx context.Context, event Event) error
}

// ListenerFunc functional listener adapter
type ListenerFunc func(ctx context.Context, event Event) error

// Handle implements Listener
func (f ListenerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// sameListener reports reference identity. Funcs compare by closure, so two
// closures built from one literal are distinct listeners. Comparable values
// use ==, anything else never matches.
func sameListener(a, b Listener) bool {
	if a == nil || b == nil {
		return a == b
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Kind() == reflect.Func {
		return funcData(a) == funcData(b)
	}
	if !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}

// funcData is the data word of l; for func listeners it points at the closure
func funcData(l Listener) unsafe.Pointer {
	return (*[2]unsafe.Pointer)(unsafe.Pointer(&l))[1]
}

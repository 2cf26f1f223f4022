package errcode

import (
	"fmt"
	"sync"
)

// Registry guards against two packages claiming the same code
type Registry struct {
	mu     sync.RWMutex
	codes  map[int]string // code -> module:msgKey
	locked bool
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{codes: make(map[int]string)}
}

var globalRegistry = NewRegistry()

// Register records err in the global registry and returns it.
// Panics when the code is already taken by a different module:msgKey.
func Register(err *LayeredError) *LayeredError {
	return globalRegistry.Register(err)
}

// Register records err and returns it. Re-registering the same key is a no-op.
func (r *Registry) Register(err *LayeredError) *LayeredError {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.locked {
		panic(fmt.Sprintf("errcode registry is locked, cannot register code %d", err.Code()))
	}

	key := err.Module() + ":" + err.MsgKey()
	if existing, ok := r.codes[err.Code()]; ok {
		if existing != key {
			panic(fmt.Sprintf("error code conflict: %d is registered as %s, cannot register as %s",
				err.Code(), existing, key))
		}
		return err
	}

	r.codes[err.Code()] = key
	return err
}

// Lock rejects further registrations
func (r *Registry) Lock() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked = true
}

// Unlock allows registrations again
func (r *Registry) Unlock() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked = false
}

// IsLocked reports whether the registry is locked
func (r *Registry) IsLocked() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locked
}

// All returns a copy of the registered codes
func (r *Registry) All() map[int]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := make(map[int]string, len(r.codes))
	for k, v := range r.codes {
		codes[k] = v
	}
	return codes
}

// Count returns the number of registered codes
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codes)
}

// Lookup returns the module:msgKey registered for code in the global registry
func Lookup(code int) (string, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	key, ok := globalRegistry.codes[code]
	return key, ok
}

// LockGlobalRegistry locks the global registry, typically once startup finished
func LockGlobalRegistry() {
	globalRegistry.Lock()
}

// UnlockGlobalRegistry unlocks the global registry
func UnlockGlobalRegistry() {
	globalRegistry.Unlock()
}

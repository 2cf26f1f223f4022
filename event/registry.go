package event

import (
	"sort"
	"sync"

	"github.com/KOMKZ/go-yogan-event/prioritylist"
)

// Registry keeps one priority-ordered listener list per event name.
// An unregistered name and a name with no listeners look the same to callers.
type Registry struct {
	mu     sync.RWMutex
	lists  map[string]*prioritylist.List[listenerEntry]
	nextID uint64
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		lists: make(map[string]*prioritylist.List[listenerEntry]),
	}
}

// Add registers listener for name and returns its id
func (r *Registry) Add(name string, listener Listener, priority int, once bool) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	list, ok := r.lists[name]
	if !ok {
		list = prioritylist.New[listenerEntry]()
		r.lists[name] = list
	}
	list.Add(listenerEntry{id: r.nextID, listener: listener, once: once}, priority)
	return r.nextID
}

// Remove drops every registration of listener under name and returns how many were removed
func (r *Registry) Remove(name string, listener Listener) int {
	return r.removeFunc(name, func(e listenerEntry) bool {
		return sameListener(e.listener, listener)
	})
}

// RemoveID drops the registration with id
func (r *Registry) RemoveID(name string, id uint64) bool {
	return r.removeFunc(name, func(e listenerEntry) bool {
		return e.id == id
	}) > 0
}

func (r *Registry) removeFunc(name string, match func(listenerEntry) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, ok := r.lists[name]
	if !ok {
		return 0
	}
	removed := list.RemoveFunc(func(e prioritylist.Entry[listenerEntry]) bool {
		return match(e.Item)
	})
	if list.IsEmpty() {
		delete(r.lists, name)
	}
	return removed
}

// List returns the listeners of name in delivery order
func (r *Registry) List(name string) []Listener {
	entries := r.snapshot(name)
	listeners := make([]Listener, len(entries))
	for i, e := range entries {
		listeners[i] = e.listener
	}
	return listeners
}

// All returns the ordered listeners of every registered name
func (r *Registry) All() map[string][]Listener {
	all := make(map[string][]Listener)
	for _, name := range r.Names() {
		if listeners := r.List(name); len(listeners) > 0 {
			all[name] = listeners
		}
	}
	return all
}

// Has reports whether name has at least one listener
func (r *Registry) Has(name string) bool {
	return r.Count(name) > 0
}

// Count returns the number of listeners of name
func (r *Registry) Count(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if list, ok := r.lists[name]; ok {
		return list.Len()
	}
	return 0
}

// Total returns the number of listeners across all names
func (r *Registry) Total() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, list := range r.lists {
		total += list.Len()
	}
	return total
}

// Names returns the registered event names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.lists))
	for name := range r.lists {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Clear removes every registration
func (r *Registry) Clear() {
	r.mu.Lock()
	r.lists = make(map[string]*prioritylist.List[listenerEntry])
	r.mu.Unlock()
}

// snapshot copies the ordered entries of name; later mutations do not affect it
func (r *Registry) snapshot(name string) []listenerEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list, ok := r.lists[name]
	if !ok {
		return nil
	}
	return list.Items()
}

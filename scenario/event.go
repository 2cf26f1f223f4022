package scenario

import (
	"slices"
	"sync"

	"github.com/KOMKZ/go-yogan-event/event"
)

// Event records which rules saw it and the tags they added
type Event struct {
	event.BaseEvent

	mu      sync.Mutex
	tags    []string
	invoked []string
}

// NewEvent creates a scenario event
func NewEvent(name string) *Event {
	return &Event{BaseEvent: event.NewEvent(name)}
}

// Tags tags added so far, in order
func (e *Event) Tags() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.tags)
}

// Invoked rule labels in invocation order
func (e *Event) Invoked() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.invoked)
}

func (e *Event) addTag(tag string) {
	e.mu.Lock()
	e.tags = append(e.tags, tag)
	e.mu.Unlock()
}

func (e *Event) record(label string) {
	e.mu.Lock()
	e.invoked = append(e.invoked, label)
	e.mu.Unlock()
}

package event

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Event is the value passed through both dispatch phases.
// Implementations are usually a struct embedding BaseEvent, passed by pointer.
type Event interface {
	// Name event name (such as "user.created")
	Name() string
	SetName(name string)

	// Dispatcher the dispatcher currently delivering the event
	Dispatcher() Dispatcher
	SetDispatcher(d Dispatcher)

	// IsConsumed reports whether a listener halted delivery
	IsConsumed() bool
	// Consume halts delivery; there is no way back
	Consume()
}

// BaseEvent can be embedded into concrete events
type BaseEvent struct {
	id         string
	name       string
	occurredAt time.Time
	dispatcher Dispatcher
	consumed   bool
}

// NewEvent creates a base event with a fresh id
func NewEvent(name string) BaseEvent {
	return BaseEvent{
		id:         uuid.NewString(),
		name:       name,
		occurredAt: time.Now(),
	}
}

// ID returns the event id, used for log and trace correlation
func (e *BaseEvent) ID() string {
	return e.id
}

func (e *BaseEvent) Name() string {
	return e.name
}

func (e *BaseEvent) SetName(name string) {
	e.name = name
}

// OccurredAt returns the creation time
func (e *BaseEvent) OccurredAt() time.Time {
	return e.occurredAt
}

func (e *BaseEvent) Dispatcher() Dispatcher {
	return e.dispatcher
}

func (e *BaseEvent) SetDispatcher(d Dispatcher) {
	e.dispatcher = d
}

func (e *BaseEvent) IsConsumed() bool {
	return e.consumed
}

func (e *BaseEvent) Consume() {
	e.consumed = true
}

// identified is implemented by events carrying an id
type identified interface {
	ID() string
}

func eventID(e Event) string {
	if ide, ok := e.(identified); ok {
		return ide.ID()
	}
	return ""
}

// isNilEvent also catches a typed nil pointer stored in the interface
func isNilEvent(e Event) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// userEvent embeds BaseEvent the way application events do
type userEvent struct {
	BaseEvent
	UserID int
	Tags   []string
}

func newUserEvent(id int) *userEvent {
	return &userEvent{BaseEvent: NewEvent(""), UserID: id}
}

func TestNewEvent(t *testing.T) {
	before := time.Now()
	e := NewEvent("user.created")

	assert.Equal(t, "user.created", e.Name())
	assert.NotEmpty(t, e.ID())
	assert.False(t, e.OccurredAt().Before(before))
	assert.False(t, e.IsConsumed())
	assert.Nil(t, e.Dispatcher())
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	a, b := NewEvent("x"), NewEvent("x")
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestBaseEvent_Consume(t *testing.T) {
	e := newUserEvent(1)
	e.Consume()
	e.Consume()
	assert.True(t, e.IsConsumed())
}

func TestBaseEvent_SetName(t *testing.T) {
	e := newUserEvent(1)
	e.SetName("user.deleted")
	assert.Equal(t, "user.deleted", e.Name())
}

func TestIsNilEvent(t *testing.T) {
	var typed *userEvent
	assert.True(t, isNilEvent(nil))
	assert.True(t, isNilEvent(typed))
	assert.False(t, isNilEvent(newUserEvent(1)))
}

func TestEventID(t *testing.T) {
	e := newUserEvent(1)
	assert.Equal(t, e.ID(), eventID(e))
}

// ===== listener identity =====

type pointerListener struct {
	name  string
	calls int
}

func (l *pointerListener) Handle(context.Context, Event) error {
	l.calls++
	return nil
}

type valueListener struct{ name string }

func (l valueListener) Handle(context.Context, Event) error { return nil }

type sliceListener []string

func (l sliceListener) Handle(context.Context, Event) error { return nil }

func topLevelListener(context.Context, Event) error { return nil }

func otherTopLevelListener(context.Context, Event) error { return nil }

func TestListenerFunc_Handle(t *testing.T) {
	var received Event
	fn := ListenerFunc(func(ctx context.Context, e Event) error {
		received = e
		return nil
	})

	e := newUserEvent(7)
	assert.NoError(t, fn.Handle(context.Background(), e))
	assert.Same(t, e, received)
}

func TestSameListener(t *testing.T) {
	p1, p2 := &pointerListener{}, &pointerListener{}

	assert.True(t, sameListener(p1, p1))
	assert.False(t, sameListener(p1, p2), "distinct pointers are different listeners")

	assert.True(t, sameListener(valueListener{"a"}, valueListener{"a"}))
	assert.False(t, sameListener(valueListener{"a"}, valueListener{"b"}))

	assert.True(t, sameListener(ListenerFunc(topLevelListener), ListenerFunc(topLevelListener)))
	assert.False(t, sameListener(ListenerFunc(topLevelListener), ListenerFunc(otherTopLevelListener)))

	closures := make([]Listener, 2)
	for i := range closures {
		closures[i] = ListenerFunc(func(ctx context.Context, e Event) error {
			_ = i
			return nil
		})
	}
	assert.True(t, sameListener(closures[0], closures[0]))
	assert.False(t, sameListener(closures[0], closures[1]), "closures of one literal are distinct")

	assert.False(t, sameListener(p1, ListenerFunc(topLevelListener)))
	assert.False(t, sameListener(sliceListener{"a"}, sliceListener{"a"}), "incomparable values never match")
	assert.False(t, sameListener(p1, nil))
}

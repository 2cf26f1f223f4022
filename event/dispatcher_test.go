package event

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/KOMKZ/go-yogan-event/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"
)

func newTestDispatcher(opts ...DispatcherOption) *dispatcher {
	return NewDispatcher(append([]DispatcherOption{WithLogger(logger.NewNop())}, opts...)...)
}

// tagListener appends its tag to a shared log, then runs then
type tagListener struct {
	tag  string
	log  *[]string
	then func(e Event) error
}

func (l *tagListener) Handle(ctx context.Context, e Event) error {
	*l.log = append(*l.log, l.tag)
	if l.then != nil {
		return l.then(e)
	}
	return nil
}

func tag(log *[]string, name string) *tagListener {
	return &tagListener{tag: name, log: log}
}

func consumeAfter(log *[]string, name string) *tagListener {
	return &tagListener{tag: name, log: log, then: func(e Event) error {
		e.Consume()
		return nil
	}}
}

var ctx = context.Background()

func TestDispatch_PriorityOrder(t *testing.T) {
	d := newTestDispatcher()
	var log []string

	d.AddHandler("e", tag(&log, "h0"), WithPriority(5))
	d.AddHandler("e", tag(&log, "h1"), WithPriority(1))
	d.AddHandler("e", tag(&log, "h2"), WithPriority(5))
	d.AddHandler("e", tag(&log, "h3"))

	_, err := d.Dispatch(ctx, "e", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"h0", "h2", "h1", "h3"}, log)
}

func TestDispatch_FiltersRunBeforeHandlers(t *testing.T) {
	d := newTestDispatcher()
	var log []string

	// a high-priority handler still runs after the lowest-priority filter
	d.AddHandler("e", tag(&log, "handler"), WithPriority(100))
	d.AddFilter("e", tag(&log, "filter-low"), WithPriority(-5))
	d.AddFilter("e", tag(&log, "filter-high"), WithPriority(5))

	_, err := d.Dispatch(ctx, "e", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"filter-high", "filter-low", "handler"}, log)
}

func TestDispatch_FilterConsumesSkipsHandlers(t *testing.T) {
	d := newTestDispatcher()
	var log []string

	d.AddFilter("e", consumeAfter(&log, "veto"), WithPriority(10))
	d.AddFilter("e", tag(&log, "later-filter"))
	d.AddHandler("e", tag(&log, "h1"))
	d.AddHandler("e", tag(&log, "h2"))

	result, err := d.Dispatch(ctx, "e", newUserEvent(1))
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, []string{"veto"}, log)
}

func TestDispatch_HandlerConsumesAfterTwo(t *testing.T) {
	d := newTestDispatcher()
	var log []string

	d.AddHandler("e", tag(&log, "h1"))
	d.AddHandler("e", consumeAfter(&log, "h2"))
	d.AddHandler("e", tag(&log, "h3"))
	d.AddHandler("e", tag(&log, "h4"))

	result, err := d.Dispatch(ctx, "e", newUserEvent(1))
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, []string{"h1", "h2"}, log)
}

func TestDispatch_ReturnsSameEvent(t *testing.T) {
	d := newTestDispatcher()
	d.AddFilter("user.created", ListenerFunc(func(ctx context.Context, e Event) error {
		e.(*userEvent).Tags = append(e.(*userEvent).Tags, "filtered")
		return nil
	}))
	d.AddHandler("user.created", ListenerFunc(func(ctx context.Context, e Event) error {
		e.(*userEvent).Tags = append(e.(*userEvent).Tags, "handled")
		return nil
	}))

	in := newUserEvent(42)
	result, err := d.Dispatch(ctx, "user.created", in)
	require.NoError(t, err)

	require.NotNil(t, result)
	assert.Same(t, in, result)
	assert.Equal(t, "user.created", result.Name())
	assert.Equal(t, Dispatcher(d), result.Dispatcher())
	assert.Equal(t, []string{"filtered", "handled"}, in.Tags)
}

func TestDispatch_NoListeners(t *testing.T) {
	d := newTestDispatcher()

	in := newUserEvent(1)
	result, err := d.Dispatch(ctx, "nobody.listens", in)
	require.NoError(t, err)
	assert.Same(t, in, result)
}

func TestDispatch_SynthesizesEvent(t *testing.T) {
	d := newTestDispatcher()
	var seen Event
	d.AddHandler("tick", ListenerFunc(func(ctx context.Context, e Event) error {
		seen = e
		return nil
	}))

	result, err := d.Dispatch(ctx, "tick", nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Same(t, seen, result)
	assert.Equal(t, "tick", result.Name())
	assert.NotEmpty(t, eventID(result))

	var typed *userEvent
	result, err = d.Dispatch(ctx, "tick", typed)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.IsType(t, &BaseEvent{}, result)
}

func TestDispatch_RenamesEvent(t *testing.T) {
	d := newTestDispatcher()
	e := &BaseEvent{}
	*e = NewEvent("original")

	result, err := d.Dispatch(ctx, "renamed", e)
	require.NoError(t, err)
	assert.Equal(t, "renamed", result.Name())
}

func TestDispatch_PreConsumedEvent(t *testing.T) {
	d := newTestDispatcher()
	var log []string
	d.AddFilter("e", tag(&log, "f"))
	d.AddHandler("e", tag(&log, "h"))

	in := newUserEvent(1)
	in.Consume()

	result, err := d.Dispatch(ctx, "e", in)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Empty(t, log)
}

func TestDispatch_StopPropagation(t *testing.T) {
	d := newTestDispatcher()
	var log []string

	d.AddHandler("e", &tagListener{tag: "stop", log: &log, then: func(Event) error {
		return ErrStopPropagation
	}})
	d.AddHandler("e", tag(&log, "never"))

	in := newUserEvent(1)
	result, err := d.Dispatch(ctx, "e", in)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.True(t, in.IsConsumed())
	assert.Equal(t, []string{"stop"}, log)
}

func TestDispatch_ListenerErrorFailsFast(t *testing.T) {
	boom := errors.New("boom")

	t.Run("handler error", func(t *testing.T) {
		d := newTestDispatcher()
		var log []string
		d.AddHandler("e", tag(&log, "h1"))
		d.AddHandler("e", &tagListener{tag: "h2", log: &log, then: func(Event) error { return boom }})
		d.AddHandler("e", tag(&log, "h3"))

		result, err := d.Dispatch(ctx, "e", newUserEvent(1))
		assert.Same(t, boom, err)
		assert.Nil(t, result)
		assert.Equal(t, []string{"h1", "h2"}, log)
	})

	t.Run("filter error skips handlers", func(t *testing.T) {
		d := newTestDispatcher()
		var log []string
		d.AddFilter("e", &tagListener{tag: "f", log: &log, then: func(Event) error { return boom }})
		d.AddHandler("e", tag(&log, "h"))

		_, err := d.Dispatch(ctx, "e", nil)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"f"}, log)
	})
}

func TestDispatch_ListenerErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	d := NewDispatcher(WithLogger(logger.FromZap(zap.New(core), "event")))

	d.AddHandler("order.paid", ListenerFunc(func(context.Context, Event) error {
		return errors.New("mailer down")
	}))
	_, _ = d.Dispatch(ctx, "order.paid", nil)

	failures := logs.FilterMessage("event listener failed").All()
	require.Len(t, failures, 1)
	fields := failures[0].ContextMap()
	assert.Equal(t, "order.paid", fields["event"])
	assert.Equal(t, "bubble", fields["phase"])
	assert.Equal(t, "mailer down", fields["error"])
}

func TestDispatch_PanicPropagates(t *testing.T) {
	d := newTestDispatcher()
	d.AddHandler("e", ListenerFunc(func(context.Context, Event) error {
		panic("listener bug")
	}))

	assert.PanicsWithValue(t, "listener bug", func() {
		_, _ = d.Dispatch(ctx, "e", nil)
	})
}

func TestDispatch_RemoveDuringDispatch(t *testing.T) {
	d := newTestDispatcher()
	var log []string

	victim := tag(&log, "victim")
	d.AddHandler("e", &tagListener{tag: "remover", log: &log, then: func(Event) error {
		d.RemoveHandler("e", victim)
		return nil
	}}, WithPriority(10))
	d.AddHandler("e", victim)

	_, err := d.Dispatch(ctx, "e", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"remover", "victim"}, log, "current dispatch keeps its snapshot")

	log = nil
	_, err = d.Dispatch(ctx, "e", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"remover"}, log, "later dispatches see the removal")
}

func TestDispatch_AddDuringDispatch(t *testing.T) {
	d := newTestDispatcher()
	var log []string

	late := tag(&log, "late")
	d.AddHandler("e", &tagListener{tag: "adder", log: &log, then: func(Event) error {
		if d.HandlerCount("e") == 1 {
			d.AddHandler("e", late)
		}
		return nil
	}})

	_, _ = d.Dispatch(ctx, "e", nil)
	assert.Equal(t, []string{"adder"}, log)

	log = nil
	_, _ = d.Dispatch(ctx, "e", nil)
	assert.Equal(t, []string{"adder", "late"}, log)
}

func TestDispatch_HandlerSnapshotTakenAtBubbleStart(t *testing.T) {
	d := newTestDispatcher()
	var log []string

	d.AddFilter("e", &tagListener{tag: "filter", log: &log, then: func(Event) error {
		d.AddHandler("e", tag(&log, "added-by-filter"))
		return nil
	}}, WithOnce())

	_, err := d.Dispatch(ctx, "e", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"filter", "added-by-filter"}, log)
}

func TestDispatch_Reentrant(t *testing.T) {
	d := newTestDispatcher()
	var log []string
	depth := 0

	d.AddHandler("order.paid", &tagListener{tag: "paid", log: &log, then: func(e Event) error {
		_, err := e.Dispatcher().Dispatch(ctx, "mail.send", nil)
		return err
	}})
	d.AddHandler("order.paid", tag(&log, "paid-after"), WithPriority(-1))
	d.AddHandler("mail.send", tag(&log, "mail"))

	d.AddHandler("countdown", &tagListener{tag: "tick", log: &log, then: func(e Event) error {
		depth++
		if depth < 3 {
			_, err := d.Dispatch(ctx, "countdown", nil)
			return err
		}
		return nil
	}})

	_, err := d.Dispatch(ctx, "order.paid", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"paid", "mail", "paid-after"}, log)

	log = nil
	_, err = d.Dispatch(ctx, "countdown", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"tick", "tick", "tick"}, log)
}

func TestDispatch_Once(t *testing.T) {
	d := newTestDispatcher()
	var log []string

	d.AddHandler("e", tag(&log, "once"), WithOnce())
	d.AddHandler("e", tag(&log, "always"))

	_, _ = d.Dispatch(ctx, "e", nil)
	_, _ = d.Dispatch(ctx, "e", nil)

	assert.Equal(t, []string{"once", "always", "always"}, log)
	assert.Equal(t, 1, d.HandlerCount("e"))
}

func TestDispatch_OnceSkippedWhenEarlierListenerConsumes(t *testing.T) {
	d := newTestDispatcher()
	var log []string

	d.AddHandler("e", consumeAfter(&log, "consumer"), WithPriority(1))
	d.AddHandler("e", tag(&log, "once"), WithOnce())

	_, _ = d.Dispatch(ctx, "e", nil)
	assert.Equal(t, 2, d.HandlerCount("e"), "a once listener that never ran stays registered")
}

func TestDispatch_OnceUnderConcurrency(t *testing.T) {
	d := newTestDispatcher()
	var calls atomic.Int32
	d.AddHandler("e", ListenerFunc(func(context.Context, Event) error {
		calls.Add(1)
		return nil
	}), WithOnce())

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			_, err := d.Dispatch(ctx, "e", nil)
			return err
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), calls.Load())
}

func TestRegistration_Queries(t *testing.T) {
	d := newTestDispatcher()
	var log []string
	f, h := tag(&log, "f"), tag(&log, "h")

	assert.False(t, d.HasFilters("e"))
	assert.Empty(t, d.Filters("e"))

	d.AddFilter("e", f)
	d.AddHandler("e", h)
	d.AddHandler("other", h)

	assert.True(t, d.HasFilters("e"))
	assert.False(t, d.HasFilters("other"))
	assert.Equal(t, []Listener{f}, d.Filters("e"))
	assert.Equal(t, []Listener{h}, d.Handlers("e"))
	assert.Equal(t, map[string][]Listener{"e": {f}}, d.AllFilters())
	assert.Equal(t, map[string][]Listener{"e": {h}, "other": {h}}, d.AllHandlers())
	assert.Equal(t, 1, d.FilterCount("e"))

	d.RemoveFilter("e", f)
	d.RemoveHandler("e", h)
	assert.False(t, d.HasFilters("e"))
	assert.False(t, d.HasHandlers("e"))
	assert.True(t, d.HasHandlers("other"))
	assert.NotContains(t, d.AllHandlers(), "e")
}

func TestRegistration_RemoveAllCopies(t *testing.T) {
	d := newTestDispatcher()
	var log []string
	h := tag(&log, "h")

	d.AddHandler("e", h)
	d.AddHandler("e", h, WithPriority(3))
	d.RemoveHandler("e", h)

	_, _ = d.Dispatch(ctx, "e", nil)
	assert.Empty(t, log)
}

func TestRegistration_RemoveByFuncValue(t *testing.T) {
	d := newTestDispatcher()
	d.AddFilter("e", ListenerFunc(topLevelListener))
	d.AddFilter("e", ListenerFunc(otherTopLevelListener))

	d.RemoveFilter("e", ListenerFunc(topLevelListener))
	assert.Equal(t, 1, d.FilterCount("e"))
}

func TestRegistration_RemoveClosureFromLoop(t *testing.T) {
	d := newTestDispatcher()
	var mu sync.Mutex
	var calls []int

	listeners := make([]Listener, 3)
	for i := range listeners {
		listeners[i] = ListenerFunc(func(ctx context.Context, e Event) error {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, i)
			return nil
		})
		d.AddHandler("x", listeners[i])
	}

	d.RemoveHandler("x", listeners[0])
	require.Equal(t, 2, d.HandlerCount("x"))

	_, err := d.Dispatch(context.Background(), "x", nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, calls)
}

func TestRegistration_Unsubscribe(t *testing.T) {
	d := newTestDispatcher()
	var log []string
	h := tag(&log, "h")

	first := d.AddHandler("e", h)
	d.AddHandler("e", h)

	first()
	first()
	assert.Equal(t, 1, d.HandlerCount("e"), "unsubscribe removes only its own registration")
}

func TestRegistration_InvalidIsNoop(t *testing.T) {
	d := newTestDispatcher()

	unsubscribe := d.AddHandler("", ListenerFunc(topLevelListener))
	assert.NotPanics(t, func() { unsubscribe() })
	unsubscribe = d.AddFilter("e", nil)
	assert.NotPanics(t, func() { unsubscribe() })

	assert.Empty(t, d.AllHandlers())
	assert.Empty(t, d.AllFilters())
}

func TestReset(t *testing.T) {
	d := newTestDispatcher()
	d.AddFilter("e", ListenerFunc(topLevelListener))
	d.AddHandler("e", ListenerFunc(topLevelListener))

	d.Reset()
	assert.False(t, d.HasFilters("e"))
	assert.False(t, d.HasHandlers("e"))
}

func TestInterceptors(t *testing.T) {
	t.Run("outermost first", func(t *testing.T) {
		d := newTestDispatcher()
		var log []string
		d.Use(func(ctx context.Context, e Event, next Next) error {
			log = append(log, "outer-before")
			err := next(ctx, e)
			log = append(log, "outer-after")
			return err
		})
		d.Use(func(ctx context.Context, e Event, next Next) error {
			log = append(log, "inner")
			return next(ctx, e)
		})
		d.AddFilter("e", tag(&log, "filter"))
		d.AddHandler("e", tag(&log, "handler"))

		_, err := d.Dispatch(ctx, "e", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"outer-before", "inner", "filter", "handler", "outer-after"}, log)
	})

	t.Run("veto by consuming", func(t *testing.T) {
		d := newTestDispatcher()
		var log []string
		d.Use(func(ctx context.Context, e Event, next Next) error {
			e.Consume()
			return next(ctx, e)
		})
		d.AddHandler("e", tag(&log, "handler"))

		result, err := d.Dispatch(ctx, "e", nil)
		require.NoError(t, err)
		assert.Nil(t, result)
		assert.Empty(t, log)
	})

	t.Run("interceptor error", func(t *testing.T) {
		d := newTestDispatcher()
		denied := errors.New("denied")
		d.Use(func(context.Context, Event, Next) error { return denied })

		result, err := d.Dispatch(ctx, "e", nil)
		assert.Same(t, denied, err)
		assert.Nil(t, result)
	})

	t.Run("nil interceptor ignored", func(t *testing.T) {
		d := newTestDispatcher()
		d.Use(nil)
		_, err := d.Dispatch(ctx, "e", nil)
		assert.NoError(t, err)
	})
}

func TestConcurrentRegistrationAndDispatch(t *testing.T) {
	d := newTestDispatcher()
	var calls atomic.Int64

	var g errgroup.Group
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			unsubscribe := d.AddHandler("e", ListenerFunc(func(context.Context, Event) error {
				calls.Add(1)
				return nil
			}), WithPriority(i))
			for j := 0; j < 20; j++ {
				if _, err := d.Dispatch(ctx, "e", nil); err != nil {
					return err
				}
			}
			unsubscribe()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.False(t, d.HasHandlers("e"))
	assert.GreaterOrEqual(t, calls.Load(), int64(20*20))
}

func TestDispatch_EventsAreIndependent(t *testing.T) {
	d := newTestDispatcher()
	var mu sync.Mutex
	seen := map[int]int{}
	d.AddHandler("user.created", ListenerFunc(func(ctx context.Context, e Event) error {
		mu.Lock()
		seen[e.(*userEvent).UserID]++
		mu.Unlock()
		return nil
	}))

	var g errgroup.Group
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			_, err := d.Dispatch(ctx, "user.created", newUserEvent(i))
			return err
		})
	}
	require.NoError(t, g.Wait())
	assert.Len(t, seen, 10)
}

// Package event is an in-process, two-phase event dispatcher.
//
// Filters run first (capturing phase) and may veto or transform an event;
// handlers run next (bubbling phase). Any listener can consume the event,
// which stops delivery and makes Dispatch return no result.
package event

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/KOMKZ/go-yogan-event/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// UnsubscribeFunc removes exactly the registration that returned it
type UnsubscribeFunc func()

// Phase dispatch phase
type Phase string

const (
	PhaseCapture Phase = "capture" // filters
	PhaseBubble  Phase = "bubble"  // handlers
)

// Outcome how a dispatch ended
type Outcome string

const (
	OutcomeCompleted       Outcome = "completed"
	OutcomeConsumedCapture Outcome = "consumed_capture"
	OutcomeConsumedBubble  Outcome = "consumed_bubble"
	OutcomeConsumed        Outcome = "consumed" // before any listener ran
	OutcomeError           Outcome = "error"
)

// Dispatcher event dispatcher interface
type Dispatcher interface {
	// AddFilter registers a capturing-phase listener
	AddFilter(name string, listener Listener, opts ...SubscribeOption) UnsubscribeFunc
	// RemoveFilter removes every registration of listener under name
	RemoveFilter(name string, listener Listener)
	// Filters returns the filters of name in delivery order
	Filters(name string) []Listener
	// AllFilters returns the filters of every event name
	AllFilters() map[string][]Listener
	HasFilters(name string) bool

	// AddHandler registers a bubbling-phase listener
	AddHandler(name string, listener Listener, opts ...SubscribeOption) UnsubscribeFunc
	// RemoveHandler removes every registration of listener under name
	RemoveHandler(name string, listener Listener)
	// Handlers returns the handlers of name in delivery order
	Handlers(name string) []Listener
	// AllHandlers returns the handlers of every event name
	AllHandlers() map[string][]Listener
	HasHandlers(name string) bool

	// Dispatch delivers e (or a new event when e is nil) to the filters, then the handlers of name.
	// It returns the event, or nil when a listener consumed it.
	// A listener error stops delivery and is returned as is.
	Dispatch(ctx context.Context, name string, e Event) (Event, error)

	// Use registers a global interceptor
	Use(interceptor Interceptor)
}

// dispatcher event dispatcher implementation
type dispatcher struct {
	filters  *Registry
	handlers *Registry

	mu           sync.RWMutex
	interceptors []Interceptor

	logger  *logger.CtxZapLogger
	metrics *Metrics
	tracer  trace.Tracer
}

// NewDispatcher creates an event dispatcher
func NewDispatcher(opts ...DispatcherOption) *dispatcher {
	d := &dispatcher{
		filters:  NewRegistry(),
		handlers: NewRegistry(),
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = logger.GetLogger("event")
	}
	if d.metrics != nil {
		d.metrics.SetListenerCountCallback(func() int64 {
			return int64(d.filters.Total() + d.handlers.Total())
		})
	}

	return d
}

func (d *dispatcher) AddFilter(name string, listener Listener, opts ...SubscribeOption) UnsubscribeFunc {
	return d.subscribe(d.filters, name, listener, opts)
}

func (d *dispatcher) RemoveFilter(name string, listener Listener) {
	d.filters.Remove(name, listener)
}

func (d *dispatcher) Filters(name string) []Listener {
	return d.filters.List(name)
}

func (d *dispatcher) AllFilters() map[string][]Listener {
	return d.filters.All()
}

func (d *dispatcher) HasFilters(name string) bool {
	return d.filters.Has(name)
}

// FilterCount number of filters of name
func (d *dispatcher) FilterCount(name string) int {
	return d.filters.Count(name)
}

func (d *dispatcher) AddHandler(name string, listener Listener, opts ...SubscribeOption) UnsubscribeFunc {
	return d.subscribe(d.handlers, name, listener, opts)
}

func (d *dispatcher) RemoveHandler(name string, listener Listener) {
	d.handlers.Remove(name, listener)
}

func (d *dispatcher) Handlers(name string) []Listener {
	return d.handlers.List(name)
}

func (d *dispatcher) AllHandlers() map[string][]Listener {
	return d.handlers.All()
}

func (d *dispatcher) HasHandlers(name string) bool {
	return d.handlers.Has(name)
}

// HandlerCount number of handlers of name
func (d *dispatcher) HandlerCount(name string) int {
	return d.handlers.Count(name)
}

// Reset drops every filter and handler; interceptors are kept
func (d *dispatcher) Reset() {
	d.filters.Clear()
	d.handlers.Clear()
}

func (d *dispatcher) subscribe(reg *Registry, name string, listener Listener, opts []SubscribeOption) UnsubscribeFunc {
	if name == "" || listener == nil {
		return func() {}
	}

	var o subscribeOptions
	for _, opt := range opts {
		opt(&o)
	}

	id := reg.Add(name, listener, o.priority, o.once)
	return func() {
		reg.RemoveID(name, id)
	}
}

// Use registers a global interceptor; the first registered runs outermost
func (d *dispatcher) Use(interceptor Interceptor) {
	if interceptor == nil {
		return
	}
	d.mu.Lock()
	d.interceptors = append(d.interceptors, interceptor)
	d.mu.Unlock()
}

// Dispatch runs the capturing phase, then, unless the event was consumed, the bubbling phase
func (d *dispatcher) Dispatch(ctx context.Context, name string, e Event) (Event, error) {
	if isNilEvent(e) {
		created := NewEvent(name)
		e = &created
	}
	e.SetName(name)
	e.SetDispatcher(d)

	start := time.Now()
	var span trace.Span
	if d.tracer != nil {
		ctx, span = d.tracer.Start(ctx, "event.dispatch "+name,
			trace.WithAttributes(
				attribute.String("event.name", name),
				attribute.String("event.id", eventID(e)),
			))
		defer span.End()
	}

	d.mu.RLock()
	interceptors := slices.Clone(d.interceptors)
	d.mu.RUnlock()

	var consumedIn Phase
	propagate := func(ctx context.Context, e Event) error {
		phase, err := d.propagate(ctx, name, e)
		consumedIn = phase
		return err
	}
	err := chain(propagate, interceptors)(ctx, e)

	outcome := OutcomeCompleted
	switch {
	case err != nil:
		outcome = OutcomeError
	case e.IsConsumed() && consumedIn == PhaseCapture:
		outcome = OutcomeConsumedCapture
	case e.IsConsumed() && consumedIn == PhaseBubble:
		outcome = OutcomeConsumedBubble
	case e.IsConsumed():
		outcome = OutcomeConsumed
	}

	d.metrics.RecordDispatch(ctx, name, outcome, time.Since(start))
	if span != nil {
		span.SetAttributes(attribute.String("event.outcome", string(outcome)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}

	if err != nil {
		return nil, err
	}
	if e.IsConsumed() {
		return nil, nil
	}
	return e, nil
}

// propagate runs both phases and reports the phase that consumed the event or failed.
// An empty phase means the event was already consumed.
func (d *dispatcher) propagate(ctx context.Context, name string, e Event) (Phase, error) {
	if e.IsConsumed() {
		return "", nil
	}

	if err := d.runPhase(ctx, PhaseCapture, d.filters, name, e); err != nil {
		return PhaseCapture, err
	}
	if e.IsConsumed() {
		return PhaseCapture, nil
	}

	if err := d.runPhase(ctx, PhaseBubble, d.handlers, name, e); err != nil {
		return PhaseBubble, err
	}
	return PhaseBubble, nil
}

// runPhase calls the listeners snapshotted at phase start until one consumes e or fails
func (d *dispatcher) runPhase(ctx context.Context, phase Phase, reg *Registry, name string, e Event) error {
	entries := reg.snapshot(name)

	for i, entry := range entries {
		if e.IsConsumed() {
			return nil
		}
		// another dispatch may already have run this once-listener
		if entry.once && !reg.RemoveID(name, entry.id) {
			continue
		}

		d.metrics.RecordListenerCall(ctx, name, phase)
		if err := entry.listener.Handle(ctx, e); err != nil {
			if errors.Is(err, ErrStopPropagation) {
				e.Consume()
			} else {
				d.logger.ErrorCtx(ctx, "event listener failed",
					zap.String("event", name),
					zap.String("phase", string(phase)),
					zap.Int("index", i),
					zap.Error(err))
				return err
			}
		}

		if e.IsConsumed() {
			d.logger.DebugCtx(ctx, "event consumed",
				zap.String("event", name),
				zap.String("phase", string(phase)),
				zap.Int("index", i))
		}
	}
	return nil
}

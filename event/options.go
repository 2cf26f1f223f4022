package event

import (
	"github.com/KOMKZ/go-yogan-event/logger"
	"go.opentelemetry.io/otel/trace"
)

// listener entry; the priority lives in the prioritylist entry
type listenerEntry struct {
	id       uint64   // unique within a Registry (for unsubscribing)
	listener Listener // listener
	once     bool     // remove after the first invocation
}

type subscribeOptions struct {
	priority int
	once     bool
}

// SubscribeOption subscription options
type SubscribeOption func(*subscribeOptions)

// WithPriority sets the priority.
// Higher numbers run first; equal priorities run in registration order. Default 0.
func WithPriority(priority int) SubscribeOption {
	return func(o *subscribeOptions) {
		o.priority = priority
	}
}

// WithOnce runs the listener at most once, then unsubscribes it
func WithOnce() SubscribeOption {
	return func(o *subscribeOptions) {
		o.once = true
	}
}

// DispatcherOption dispatcher configuration options
type DispatcherOption func(*dispatcher)

// WithLogger sets the dispatcher logger (default: module "event")
func WithLogger(l *logger.CtxZapLogger) DispatcherOption {
	return func(d *dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithMetrics records dispatch metrics; m must be registered to take effect
func WithMetrics(m *Metrics) DispatcherOption {
	return func(d *dispatcher) {
		d.metrics = m
	}
}

// WithTracer opens one span per dispatch
func WithTracer(tracer trace.Tracer) DispatcherOption {
	return func(d *dispatcher) {
		d.tracer = tracer
	}
}

package event

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsConfig holds configuration for event metrics
type MetricsConfig struct {
	Enabled             bool `mapstructure:"enabled"`
	RecordListenerCount bool `mapstructure:"record_listener_count"`
}

// Metrics implements component.MetricsProvider for dispatch instrumentation.
// A nil *Metrics records nothing.
type Metrics struct {
	config     MetricsConfig
	registered atomic.Bool
	mu         sync.Mutex

	dispatched       metric.Int64Counter
	listenerCalls    metric.Int64Counter
	dispatchDuration metric.Float64Histogram
	listenerGauge    metric.Int64ObservableGauge

	listenerCount atomic.Pointer[func() int64]
}

// NewMetrics creates a metrics provider
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{config: cfg}
}

// MetricsName returns the metrics group name
func (m *Metrics) MetricsName() string {
	return "event"
}

// IsMetricsEnabled returns whether metrics collection is enabled
func (m *Metrics) IsMetricsEnabled() bool {
	return m.config.Enabled
}

// RegisterMetrics creates every instrument on meter; repeated calls are no-ops
func (m *Metrics) RegisterMetrics(meter metric.Meter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered.Load() {
		return nil
	}

	var err error
	m.dispatched, err = meter.Int64Counter(
		"event_dispatched_total",
		metric.WithDescription("Total number of dispatch calls by outcome"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return err
	}

	m.listenerCalls, err = meter.Int64Counter(
		"event_listener_calls_total",
		metric.WithDescription("Total number of listener invocations by phase"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return err
	}

	m.dispatchDuration, err = meter.Float64Histogram(
		"event_dispatch_duration_seconds",
		metric.WithDescription("Dispatch duration distribution"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	if m.config.RecordListenerCount {
		m.listenerGauge, err = meter.Int64ObservableGauge(
			"event_listeners",
			metric.WithDescription("Currently registered filters and handlers"),
			metric.WithUnit("{listener}"),
			metric.WithInt64Callback(m.collectListenerCount),
		)
		if err != nil {
			return err
		}
	}

	m.registered.Store(true)
	return nil
}

func (m *Metrics) collectListenerCount(_ context.Context, observer metric.Int64Observer) error {
	if fn := m.listenerCount.Load(); fn != nil {
		observer.Observe((*fn)())
	}
	return nil
}

// SetListenerCountCallback sets the source of the event_listeners gauge
func (m *Metrics) SetListenerCountCallback(callback func() int64) {
	m.listenerCount.Store(&callback)
}

// RecordDispatch records one finished dispatch
func (m *Metrics) RecordDispatch(ctx context.Context, name string, outcome Outcome, duration time.Duration) {
	if !m.IsRegistered() {
		return
	}

	m.dispatched.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", name),
		attribute.String("outcome", string(outcome)),
	))
	m.dispatchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("event", name),
	))
}

// RecordListenerCall records one listener invocation
func (m *Metrics) RecordListenerCall(ctx context.Context, name string, phase Phase) {
	if !m.IsRegistered() {
		return
	}

	m.listenerCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", name),
		attribute.String("phase", string(phase)),
	))
}

// IsRegistered returns whether metrics have been registered
func (m *Metrics) IsRegistered() bool {
	return m != nil && m.registered.Load()
}

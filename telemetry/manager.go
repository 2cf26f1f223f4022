package telemetry

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/KOMKZ/go-yogan-event/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
	otelTrace "go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// Manager owns the tracer provider, the meter provider and the metrics registry
type Manager struct {
	config         Config
	logger         *logger.CtxZapLogger
	writer         io.Writer
	extraReaders   []sdkmetric.Reader
	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	registry       *MetricsRegistry
	mu             sync.RWMutex
}

// Option configures a Manager
type Option func(*Manager)

// WithManagerLogger sets the manager logger
func WithManagerLogger(l *logger.CtxZapLogger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithWriter redirects the stdout exporters
func WithWriter(w io.Writer) Option {
	return func(m *Manager) {
		m.writer = w
	}
}

// WithReader adds a metric reader next to the exporter (e.g. a ManualReader in tests)
func WithReader(r sdkmetric.Reader) Option {
	return func(m *Manager) {
		m.extraReaders = append(m.extraReaders, r)
	}
}

// NewManager creates a telemetry manager; nothing is built until Start
func NewManager(config Config, opts ...Option) *Manager {
	m := &Manager{
		config: config,
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logger.GetLogger("telemetry")
	}
	m.registry = NewMetricsRegistry(nil, WithLogger(m.logger))
	return m
}

// Start builds the providers and installs them as otel globals
func (m *Manager) Start(ctx context.Context) error {
	if err := m.config.Validate(); err != nil {
		return err
	}
	if !m.config.Enabled {
		m.logger.DebugCtx(ctx, "telemetry disabled, skipping initialization")
		return nil
	}

	res, err := m.createResource(ctx)
	if err != nil {
		return err
	}

	tp, err := m.createTracerProvider(res)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.tracerProvider = tp
	m.mu.Unlock()
	otel.SetTracerProvider(tp)

	if m.config.Metrics.Enabled {
		mp, err := m.createMeterProvider(res)
		if err != nil {
			_ = shutdownTracer(ctx, tp)
			return err
		}
		otel.SetMeterProvider(mp)

		m.mu.Lock()
		m.meterProvider = mp
		m.registry = NewMetricsRegistry(mp,
			WithNamespace(m.config.Metrics.Namespace),
			WithBaseLabels(baseLabels(m.config.Metrics.Labels)),
			WithLogger(m.logger),
		)
		m.mu.Unlock()
	}

	m.logger.InfoCtx(ctx, "telemetry started",
		zap.String("service_name", m.config.ServiceName),
		zap.String("exporter", m.config.Exporter.Type),
		zap.Bool("metrics", m.config.Metrics.Enabled))
	return nil
}

// Shutdown flushes and stops both providers
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	tp, mp := m.tracerProvider, m.meterProvider
	m.tracerProvider, m.meterProvider = nil, nil
	m.mu.Unlock()

	var errs []error
	if tp != nil {
		errs = append(errs, shutdownTracer(ctx, tp))
	}
	if mp != nil {
		errs = append(errs, shutdownMeter(ctx, mp))
	}
	return errors.Join(errs...)
}

// TracerProvider returns the active provider, a noop one when disabled
func (m *Manager) TracerProvider() otelTrace.TracerProvider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.tracerProvider == nil {
		return tracenoop.NewTracerProvider()
	}
	return m.tracerProvider
}

// GetTracer obtains a tracer
func (m *Manager) GetTracer(name string) otelTrace.Tracer {
	return m.TracerProvider().Tracer(name)
}

// MetricsRegistry returns where components register their metrics
func (m *Manager) MetricsRegistry() *MetricsRegistry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registry
}

// IsEnabled whether telemetry is enabled
func (m *Manager) IsEnabled() bool {
	return m.config.Enabled
}

// GetConfig returns the configuration
func (m *Manager) GetConfig() Config {
	return m.config
}

func baseLabels(labels map[string]string) []attribute.KeyValue {
	kvs := make([]attribute.KeyValue, 0, len(labels))
	for k, v := range labels {
		kvs = append(kvs, attribute.String(k, v))
	}
	return kvs
}

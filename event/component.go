package event

import (
	"context"
	"fmt"

	"github.com/KOMKZ/go-yogan-event/component"
	"github.com/KOMKZ/go-yogan-event/logger"
	"go.opentelemetry.io/otel/trace"
)

// Component event component
type Component struct {
	dispatcher *dispatcher
	metrics    *Metrics
	logger     *logger.CtxZapLogger
	config     Config

	collector      component.MetricsCollector
	tracerProvider trace.TracerProvider
	loggers        *logger.Manager
}

// NewComponent creates the event component
func NewComponent() *Component {
	return &Component{}
}

// Name returns the component name
func (c *Component) Name() string {
	return component.ComponentEvent
}

// DependsOn returns the components initialized before this one
func (c *Component) DependsOn() []string {
	return []string{
		component.ComponentConfig,
		component.ComponentLogger,
		component.ComponentTelemetry,
	}
}

// SetMetricsCollector sets where metrics get registered (call before Init)
func (c *Component) SetMetricsCollector(collector component.MetricsCollector) {
	c.collector = collector
}

// SetTracerProvider sets the span source (call before Init)
func (c *Component) SetTracerProvider(tp trace.TracerProvider) {
	c.tracerProvider = tp
}

// SetLoggerManager resolves the component logger from m instead of the global manager
func (c *Component) SetLoggerManager(m *logger.Manager) {
	c.loggers = m
}

// Init loads the "event" section and builds the dispatcher
func (c *Component) Init(ctx context.Context, loader component.ConfigLoader) error {
	c.config = DefaultConfig()
	if loader != nil && loader.IsSet("event") {
		if err := loader.Unmarshal("event", &c.config); err != nil {
			return fmt.Errorf("load event config: %w", err)
		}
	}
	if err := c.config.Validate(); err != nil {
		return err
	}

	if c.loggers != nil {
		c.logger = c.loggers.GetLogger(c.config.LoggerName)
	} else {
		c.logger = logger.GetLogger(c.config.LoggerName)
	}
	if !c.config.Enabled {
		c.logger.InfoCtx(ctx, "event component disabled")
		return nil
	}

	opts := []DispatcherOption{WithLogger(c.logger)}

	if c.config.Metrics.Enabled && c.collector != nil && c.collector.IsEnabled() {
		c.metrics = NewMetrics(c.config.Metrics)
		if err := c.collector.Register(c.metrics); err != nil {
			return fmt.Errorf("register event metrics: %w", err)
		}
		opts = append(opts, WithMetrics(c.metrics))
	}

	if c.config.Tracing.Enabled && c.tracerProvider != nil {
		opts = append(opts, WithTracer(c.tracerProvider.Tracer(c.config.Tracing.TracerName)))
	}

	c.dispatcher = NewDispatcher(opts...)
	c.logger.DebugCtx(ctx, fmt.Sprintf("event component initialized (metrics=%t, tracing=%t)",
		c.metrics != nil, c.config.Tracing.Enabled && c.tracerProvider != nil))
	return nil
}

// Start starts the component
func (c *Component) Start(ctx context.Context) error {
	return nil
}

// Stop drops every registered listener
func (c *Component) Stop(ctx context.Context) error {
	if c.dispatcher != nil {
		c.dispatcher.Reset()
		c.logger.DebugCtx(ctx, "event component stopped")
	}
	return nil
}

// Shutdown lets samber/do stop the component with the injector
func (c *Component) Shutdown(ctx context.Context) error {
	return c.Stop(ctx)
}

// GetDispatcher returns the dispatcher, nil when disabled
func (c *Component) GetDispatcher() Dispatcher {
	if c.dispatcher == nil {
		return nil
	}
	return c.dispatcher
}

// GetMetrics returns the metrics provider, nil when metrics are off
func (c *Component) GetMetrics() *Metrics {
	return c.metrics
}

// Config returns the loaded configuration
func (c *Component) Config() Config {
	return c.config
}

// IsEnabled reports whether a dispatcher is available
func (c *Component) IsEnabled() bool {
	return c.config.Enabled && c.dispatcher != nil
}

package telemetry

import (
	"sync"

	"github.com/KOMKZ/go-yogan-event/component"
	"github.com/KOMKZ/go-yogan-event/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

// MetricsRegistry hands namespaced meters from one MeterProvider to the
// components that record metrics. A registry built without a provider is
// disabled: it registers nothing and its meters are noop.
type MetricsRegistry struct {
	provider   metric.MeterProvider
	namespace  string
	baseLabels []attribute.KeyValue
	logger     *logger.CtxZapLogger

	mu         sync.Mutex
	meters     map[string]metric.Meter
	registered map[string]struct{}
}

// MetricsRegistryOption configures a MetricsRegistry
type MetricsRegistryOption func(*MetricsRegistry)

// WithNamespace prefixes meter names with namespace and "_"
func WithNamespace(namespace string) MetricsRegistryOption {
	return func(r *MetricsRegistry) {
		r.namespace = namespace
	}
}

// WithBaseLabels attributes every component adds to its measurements
func WithBaseLabels(labels []attribute.KeyValue) MetricsRegistryOption {
	return func(r *MetricsRegistry) {
		r.baseLabels = labels
	}
}

func WithLogger(l *logger.CtxZapLogger) MetricsRegistryOption {
	return func(r *MetricsRegistry) {
		r.logger = l
	}
}

// NewMetricsRegistry creates a registry over mp; nil mp gives a disabled registry
func NewMetricsRegistry(mp metric.MeterProvider, opts ...MetricsRegistryOption) *MetricsRegistry {
	r := &MetricsRegistry{
		provider:   mp,
		namespace:  "yogan",
		meters:     make(map[string]metric.Meter),
		registered: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.GetLogger("telemetry")
	}
	return r
}

// Register lets provider create its instruments on the meter named after it.
// Disabled registries and providers are skipped without error.
func (r *MetricsRegistry) Register(provider component.MetricsProvider) error {
	if provider == nil {
		return ErrInvalidProvider.WithMsg("metrics provider is nil")
	}
	if !r.IsEnabled() || !provider.IsMetricsEnabled() {
		return nil
	}

	name := provider.MetricsName()
	if name == "" {
		return ErrInvalidProvider.WithMsg("metrics provider name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.registered[name]; ok {
		return ErrProviderRegistered.WithData("provider", name)
	}
	if err := provider.RegisterMetrics(r.meterLocked(name)); err != nil {
		return ErrInvalidProvider.Wrap(err).WithData("provider", name)
	}
	r.registered[name] = struct{}{}

	r.logger.Debug("metrics provider registered", zap.String("provider", name))
	return nil
}

// Registered reports whether a provider named name was registered
func (r *MetricsRegistry) Registered(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.registered[name]
	return ok
}

// GetMeter returns the cached meter {namespace}_{name}
func (r *MetricsRegistry) GetMeter(name string) metric.Meter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meterLocked(name)
}

func (r *MetricsRegistry) meterLocked(name string) metric.Meter {
	if meter, ok := r.meters[name]; ok {
		return meter
	}

	meterName := name
	if r.namespace != "" {
		meterName = r.namespace + "_" + name
	}

	var meter metric.Meter
	if r.provider == nil {
		meter = noop.NewMeterProvider().Meter(meterName)
	} else {
		meter = r.provider.Meter(meterName)
	}
	r.meters[name] = meter
	return meter
}

func (r *MetricsRegistry) GetBaseLabels() []attribute.KeyValue {
	return append([]attribute.KeyValue(nil), r.baseLabels...)
}

func (r *MetricsRegistry) IsEnabled() bool {
	return r.provider != nil
}

var _ component.MetricsCollector = (*MetricsRegistry)(nil)

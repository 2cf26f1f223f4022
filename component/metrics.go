package component

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsProvider is implemented by components that expose otel instruments
type MetricsProvider interface {
	// MetricsName group name, also used as the meter name
	MetricsName() string

	// RegisterMetrics creates the instruments on meter
	RegisterMetrics(meter metric.Meter) error

	IsMetricsEnabled() bool
}

// MetricsCollector registers providers against a shared MeterProvider
type MetricsCollector interface {
	Register(provider MetricsProvider) error

	GetMeter(name string) metric.Meter

	GetBaseLabels() []attribute.KeyValue

	IsEnabled() bool
}

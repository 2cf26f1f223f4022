package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// createMeterProvider builds the meter provider; the none exporter keeps
// instruments working without exporting anything
func (m *Manager) createMeterProvider(res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	switch m.config.Exporter.Type {
	case ExporterStdout:
		exporterOpts := []stdoutmetric.Option{stdoutmetric.WithWriter(m.writer)}
		if m.config.Exporter.PrettyPrint {
			exporterOpts = append(exporterOpts, stdoutmetric.WithPrettyPrint())
		}
		exporter, err := stdoutmetric.New(exporterOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout metrics exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(m.config.Metrics.ExportInterval),
			sdkmetric.WithTimeout(m.config.Metrics.ExportTimeout),
		)))
	case ExporterNone:
	default:
		return nil, fmt.Errorf("unsupported metrics exporter type: %s", m.config.Exporter.Type)
	}

	for _, reader := range m.extraReaders {
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	return sdkmetric.NewMeterProvider(opts...), nil
}

// shutdownMeter flushes and stops every reader
func shutdownMeter(ctx context.Context, mp *sdkmetric.MeterProvider) error {
	if err := mp.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown meter provider failed: %w", err)
	}
	return nil
}

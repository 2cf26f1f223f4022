package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
)

// createTracerProvider builds the tracer provider for the configured exporter
func (m *Manager) createTracerProvider(res *resource.Resource) (*trace.TracerProvider, error) {
	exporter, err := m.createSpanExporter()
	if err != nil {
		return nil, fmt.Errorf("create span exporter failed: %w", err)
	}

	opts := []trace.TracerProviderOption{
		trace.WithResource(res),
		trace.WithSampler(m.createSampler()),
	}

	if exporter != nil {
		if m.config.Batch.Enabled {
			opts = append(opts, trace.WithBatcher(exporter,
				trace.WithMaxQueueSize(m.config.Batch.MaxQueueSize),
				trace.WithMaxExportBatchSize(m.config.Batch.MaxExportBatchSize),
				trace.WithBatchTimeout(m.config.Batch.ScheduleDelay),
				trace.WithExportTimeout(m.config.Batch.ExportTimeout),
			))
		} else {
			opts = append(opts, trace.WithSyncer(exporter))
		}
	}

	return trace.NewTracerProvider(opts...), nil
}

// createSpanExporter returns nil for the none exporter
func (m *Manager) createSpanExporter() (trace.SpanExporter, error) {
	switch m.config.Exporter.Type {
	case ExporterStdout:
		opts := []stdouttrace.Option{stdouttrace.WithWriter(m.writer)}
		if m.config.Exporter.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		return stdouttrace.New(opts...)
	case ExporterNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", m.config.Exporter.Type)
	}
}

func (m *Manager) createSampler() trace.Sampler {
	switch m.config.Sampler.Type {
	case "always_on":
		return trace.AlwaysSample()
	case "always_off":
		return trace.NeverSample()
	case "trace_id_ratio":
		return trace.TraceIDRatioBased(m.config.Sampler.Ratio)
	default:
		return trace.ParentBased(trace.AlwaysSample())
	}
}

// shutdownTracer flushes pending spans
func shutdownTracer(ctx context.Context, tp *trace.TracerProvider) error {
	if err := tp.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown tracer provider failed: %w", err)
	}
	return nil
}

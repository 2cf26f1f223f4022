// Package telemetry builds the OpenTelemetry tracer and meter providers
// used by the dispatcher: stdout exporters for local runs, or disabled.
package telemetry

import (
	"time"

	"github.com/KOMKZ/go-yogan-event/validator"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Exporter types
const (
	ExporterStdout = "stdout"
	ExporterNone   = "none"
)

// Config OpenTelemetry settings
type Config struct {
	Enabled        bool                   `mapstructure:"enabled"`
	ServiceName    string                 `mapstructure:"service_name"`
	ServiceVersion string                 `mapstructure:"service_version"`
	Exporter       ExporterConfig         `mapstructure:"exporter"`
	Sampler        SamplerConfig          `mapstructure:"sampler"`
	ResourceAttrs  map[string]interface{} `mapstructure:"resource_attributes"` // nested maps are flattened
	Batch          BatchConfig            `mapstructure:"batch"`
	Metrics        MetricsConfig          `mapstructure:"metrics"`
}

// ExporterConfig exporter settings
type ExporterConfig struct {
	Type        string `mapstructure:"type"` // stdout, none
	PrettyPrint bool   `mapstructure:"pretty_print"`
}

// SamplerConfig sampling settings
type SamplerConfig struct {
	Type  string  `mapstructure:"type"`  // always_on, always_off, trace_id_ratio, parent_based_always_on
	Ratio float64 `mapstructure:"ratio"` // trace_id_ratio only
}

// BatchConfig span batching; disabled means spans export synchronously
type BatchConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	MaxQueueSize       int           `mapstructure:"max_queue_size"`
	MaxExportBatchSize int           `mapstructure:"max_export_batch_size"`
	ScheduleDelay      time.Duration `mapstructure:"schedule_delay"`
	ExportTimeout      time.Duration `mapstructure:"export_timeout"`
}

// MetricsConfig meter provider settings
type MetricsConfig struct {
	Enabled        bool              `mapstructure:"enabled"`
	ExportInterval time.Duration     `mapstructure:"export_interval"`
	ExportTimeout  time.Duration     `mapstructure:"export_timeout"`
	Namespace      string            `mapstructure:"namespace"` // meter name prefix
	Labels         map[string]string `mapstructure:"labels"`    // base labels handed to providers
}

// DefaultConfig telemetry off, stdout exporter when turned on
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "eventctl",
		ServiceVersion: "1.0.0",
		Exporter: ExporterConfig{
			Type: ExporterStdout,
		},
		Sampler: SamplerConfig{
			Type:  "parent_based_always_on",
			Ratio: 1.0,
		},
		ResourceAttrs: make(map[string]interface{}),
		Batch: BatchConfig{
			Enabled:            true,
			MaxQueueSize:       2048,
			MaxExportBatchSize: 512,
			ScheduleDelay:      5 * time.Second,
			ExportTimeout:      30 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled:        false,
			ExportInterval: 10 * time.Second,
			ExportTimeout:  5 * time.Second,
			Namespace:      "yogan",
			Labels:         make(map[string]string),
		},
	}
}

// Validate checks the configuration; a disabled config is always valid
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	return validator.ValidateRequest(validatable(func() error {
		return validation.ValidateStruct(&c,
			validation.Field(&c.ServiceName, validation.Required),
			validation.Field(&c.Exporter, validation.By(func(any) error {
				return validation.Validate(c.Exporter.Type,
					validation.Required, validation.In(ExporterStdout, ExporterNone))
			})),
			validation.Field(&c.Sampler, validation.By(func(any) error {
				if err := validation.Validate(c.Sampler.Type, validation.Required,
					validation.In("always_on", "always_off", "trace_id_ratio", "parent_based_always_on")); err != nil {
					return err
				}
				if c.Sampler.Type == "trace_id_ratio" {
					return validation.Validate(c.Sampler.Ratio, validation.Min(0.0), validation.Max(1.0))
				}
				return nil
			})),
			validation.Field(&c.Batch, validation.By(func(any) error {
				if !c.Batch.Enabled {
					return nil
				}
				return validation.ValidateStruct(&c.Batch,
					validation.Field(&c.Batch.MaxQueueSize, validation.Required, validation.Min(1)),
					validation.Field(&c.Batch.MaxExportBatchSize, validation.Required, validation.Min(1)),
				)
			})),
			validation.Field(&c.Metrics, validation.By(func(any) error {
				if !c.Metrics.Enabled {
					return nil
				}
				return validation.ValidateStruct(&c.Metrics,
					validation.Field(&c.Metrics.ExportInterval, validation.Required),
				)
			})),
		)
	}))
}

type validatable func() error

func (f validatable) Validate() error {
	return f()
}

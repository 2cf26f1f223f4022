package event

import (
	"github.com/KOMKZ/go-yogan-event/validator"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config event component settings
type Config struct {
	Enabled    bool          `mapstructure:"enabled"`
	LoggerName string        `mapstructure:"logger_name"`
	PoolSize   int           `mapstructure:"pool_size"` // workers used by concurrent producers such as eventctl bench
	Metrics    MetricsConfig `mapstructure:"metrics"`
	Tracing    TracingConfig `mapstructure:"tracing"`
}

// TracingConfig span settings
type TracingConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	TracerName string `mapstructure:"tracer_name"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Enabled:    true,
		LoggerName: "event",
		PoolSize:   100,
		Tracing: TracingConfig{
			TracerName: "github.com/KOMKZ/go-yogan-event/event",
		},
	}
}

// Validate implements validator.Validatable
func (c Config) Validate() error {
	return validator.ValidateRequest(validatableFunc(func() error {
		return validation.ValidateStruct(&c,
			validation.Field(&c.LoggerName, validation.Required),
			validation.Field(&c.PoolSize, validation.Required, validation.Min(1), validation.Max(100000)),
			validation.Field(&c.Tracing, validation.By(func(any) error {
				if c.Tracing.Enabled && c.Tracing.TracerName == "" {
					return validation.NewError("validation_tracer_name", "tracer_name is required when tracing is enabled")
				}
				return nil
			})),
		)
	}))
}

type validatableFunc func() error

func (f validatableFunc) Validate() error {
	return f()
}

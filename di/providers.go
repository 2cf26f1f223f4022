package di

import (
	"context"
	"fmt"

	"github.com/KOMKZ/go-yogan-event/component"
	"github.com/KOMKZ/go-yogan-event/config"
	"github.com/KOMKZ/go-yogan-event/event"
	"github.com/KOMKZ/go-yogan-event/logger"
	"github.com/KOMKZ/go-yogan-event/telemetry"
	"github.com/samber/do/v2"
)

// ConfigOptions config component options
type ConfigOptions struct {
	ConfigPath   string      // directory holding config.yaml
	ConfigPrefix string      // environment variable prefix
	Env          string      // environment name, default config.GetEnv()
	Flags        interface{} // `config`-tagged flags struct
}

// ProvideConfigLoader creates the config.Loader provider. No dependencies.
func ProvideConfigLoader(opts ConfigOptions) func(do.Injector) (*config.Loader, error) {
	return config.ProvideLoader(config.ProvideLoaderOptions{
		ConfigPath:   opts.ConfigPath,
		ConfigPrefix: opts.ConfigPrefix,
		Env:          opts.Env,
		Flags:        opts.Flags,
	})
}

// ProvideLoggerManager reads the "logger" section; defaults when absent
func ProvideLoggerManager(i do.Injector) (*logger.Manager, error) {
	cfg := logger.DefaultManagerConfig()

	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return logger.NewManager(cfg), nil
	}
	if loader.IsSet("logger") {
		if err := loader.Unmarshal("logger", &cfg); err != nil {
			return nil, fmt.Errorf("load logger config: %w", err)
		}
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return logger.NewManager(cfg), nil
}

// ProvideCtxLogger creates a module logger provider
func ProvideCtxLogger(moduleName string) func(do.Injector) (*logger.CtxZapLogger, error) {
	return func(i do.Injector) (*logger.CtxZapLogger, error) {
		mgr, err := do.Invoke[*logger.Manager](i)
		if err != nil {
			// fall back to the global logger
			return logger.GetLogger(moduleName), nil
		}
		return mgr.GetLogger(moduleName), nil
	}
}

// ProvideTelemetryManager reads the "telemetry" section and starts the providers
func ProvideTelemetryManager(i do.Injector) (*telemetry.Manager, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return nil, err
	}

	cfg := telemetry.DefaultConfig()
	if loader.IsSet("telemetry") {
		if err := loader.Unmarshal("telemetry", &cfg); err != nil {
			return nil, fmt.Errorf("load telemetry config: %w", err)
		}
	}

	opts := []telemetry.Option{}
	if mgr, err := do.Invoke[*logger.Manager](i); err == nil {
		opts = append(opts, telemetry.WithManagerLogger(mgr.GetLogger(component.ComponentTelemetry)))
	}

	m := telemetry.NewManager(cfg, opts...)
	if err := m.Start(context.Background()); err != nil {
		return nil, err
	}
	return m, nil
}

// ProvideEventComponent builds the event component on top of config, logger and telemetry
func ProvideEventComponent(i do.Injector) (*event.Component, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return nil, err
	}

	c := event.NewComponent()
	if mgr, err := do.Invoke[*logger.Manager](i); err == nil {
		c.SetLoggerManager(mgr)
	}
	if tm, err := do.Invoke[*telemetry.Manager](i); err == nil {
		c.SetMetricsCollector(tm.MetricsRegistry())
		c.SetTracerProvider(tm.TracerProvider())
	}

	ctx := context.Background()
	if err := c.Init(ctx, loader); err != nil {
		return nil, err
	}
	if err := c.Start(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// ProvideDispatcher exposes the component dispatcher; fails when the component is disabled
func ProvideDispatcher(i do.Injector) (event.Dispatcher, error) {
	c, err := do.Invoke[*event.Component](i)
	if err != nil {
		return nil, err
	}
	if !c.IsEnabled() {
		return nil, ErrComponentNotFound("event dispatcher")
	}
	return c.GetDispatcher(), nil
}

// ErrComponentNotFound component not found error
func ErrComponentNotFound(name string) error {
	return &ComponentNotFoundError{Name: name}
}

// ComponentNotFoundError component not found error type
type ComponentNotFoundError struct {
	Name string
}

func (e *ComponentNotFoundError) Error() string {
	return "component not found: " + e.Name
}

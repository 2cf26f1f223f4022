package di

import (
	"github.com/samber/do/v2"
)

// RegisterCoreProviders registers every component provider, lazily, by dependency layer
func RegisterCoreProviders(injector *do.RootScope, opts ConfigOptions) {
	// Layer 0: config (no dependencies)
	do.Provide(injector, ProvideConfigLoader(opts))

	// Layer 1: logger
	do.Provide(injector, ProvideLoggerManager)

	// Layer 2: telemetry
	do.Provide(injector, ProvideTelemetryManager)

	// Layer 3: event
	do.Provide(injector, ProvideEventComponent)
	do.Provide(injector, ProvideDispatcher)
}

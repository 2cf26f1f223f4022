// Package component defines the lifecycle contracts shared by the event kit
package component

import "context"

// Component is a unit with an Init/Start/Stop lifecycle
type Component interface {
	// Name unique component name
	Name() string

	// DependsOn names of components that must be initialized first
	DependsOn() []string

	// Init reads configuration and builds internal state
	Init(ctx context.Context, loader ConfigLoader) error

	// Start begins serving
	Start(ctx context.Context) error

	// Stop releases resources
	Stop(ctx context.Context) error
}

// Package di wires the config, logger, telemetry and event components into a
// samber/do injector.
package di

import "github.com/samber/do/v2"

// Injector type alias
type Injector = do.Injector

// RootScope type alias
type RootScope = do.RootScope

// New creates a root injector
var New = do.New

// NewWithOpts creates a root injector with options
var NewWithOpts = do.NewWithOpts

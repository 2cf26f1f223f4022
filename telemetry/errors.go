package telemetry

import "github.com/KOMKZ/go-yogan-event/errcode"

var (
	ErrInvalidProvider = errcode.Register(errcode.New(21, 1, "telemetry",
		"error.telemetry.invalid_provider", "invalid metrics provider"))
	ErrProviderRegistered = errcode.Register(errcode.New(21, 2, "telemetry",
		"error.telemetry.provider_registered", "metrics provider already registered"))
)

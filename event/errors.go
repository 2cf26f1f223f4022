package event

import "errors"

// ErrStopPropagation consumes the event (not considered an error).
// When a listener returns it, later listeners do not run and Dispatch returns no result.
var ErrStopPropagation = errors.New("stop propagation")

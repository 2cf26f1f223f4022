package event

import "context"

// Next continues with the next interceptor, and finally both dispatch phases
type Next func(ctx context.Context, event Event) error

// Interceptor wraps a whole dispatch.
// It may consume the event or skip next to veto delivery; it must pass the same event on.
type Interceptor func(ctx context.Context, event Event, next Next) error

// chain wraps handler so that interceptors[0] runs outermost
func chain(handler Next, interceptors []Interceptor) Next {
	for i := len(interceptors) - 1; i >= 0; i-- {
		interceptor := interceptors[i]
		next := handler
		handler = func(ctx context.Context, event Event) error {
			return interceptor(ctx, event, next)
		}
	}
	return handler
}

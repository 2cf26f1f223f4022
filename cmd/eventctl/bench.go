package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KOMKZ/go-yogan-event/di"
	"github.com/KOMKZ/go-yogan-event/event"
	"github.com/KOMKZ/go-yogan-event/flagx"
	"github.com/panjf2000/ants/v2"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

type benchOptions struct {
	Workers      int    `flag:"workers,w" usage:"ants pool size (default event.pool_size)"`
	Events       int    `flag:"events,n" default:"10000" usage:"number of dispatches"`
	Listeners    int    `flag:"listeners,l" default:"8" usage:"handlers registered on the event"`
	ConsumeEvery int    `flag:"consume-every" usage:"a filter consumes every Nth event, 0 never"`
	Name         string `flag:"name" default:"bench.event" usage:"event name"`
}

type benchResult struct {
	Events        int
	Workers       int
	Completed     int64
	Consumed      int64
	Errors        int64
	ListenerCalls int64
	Elapsed       time.Duration
}

// Throughput dispatches per second
func (r benchResult) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Events) / r.Elapsed.Seconds()
}

type benchEvent struct {
	event.BaseEvent
	seq int
}

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Dispatch events concurrently from an ants worker pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts benchOptions
			if err := flagx.ParseFlags(cmd, &opts); err != nil {
				return err
			}

			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context(), func(ctx context.Context, app *di.Application) error {
				d := app.Dispatcher()
				if d == nil {
					return errEventDisabled
				}
				if opts.Workers <= 0 {
					opts.Workers = do.MustInvoke[*event.Component](app.Injector()).Config().PoolSize
				}

				result, err := runBench(ctx, d, opts)
				if err != nil {
					return err
				}
				writeBench(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}
	mustBind(cmd, &benchOptions{})
	return cmd
}

// runBench registers the bench listeners, fans the dispatches out over the
// pool and removes the listeners again
func runBench(ctx context.Context, d event.Dispatcher, opts benchOptions) (benchResult, error) {
	if opts.Workers <= 0 || opts.Events < 0 || opts.Listeners < 0 {
		return benchResult{}, fmt.Errorf("invalid bench options: workers=%d events=%d listeners=%d",
			opts.Workers, opts.Events, opts.Listeners)
	}

	result := benchResult{Events: opts.Events, Workers: opts.Workers}

	var unsubscribes []event.UnsubscribeFunc
	defer func() {
		for _, unsubscribe := range unsubscribes {
			unsubscribe()
		}
	}()

	if opts.ConsumeEvery > 0 {
		every := opts.ConsumeEvery
		unsubscribes = append(unsubscribes, d.AddFilter(opts.Name, event.ListenerFunc(
			func(ctx context.Context, e event.Event) error {
				if be, ok := e.(*benchEvent); ok && be.seq%every == 0 {
					e.Consume()
				}
				return nil
			})))
	}
	for i := 0; i < opts.Listeners; i++ {
		unsubscribes = append(unsubscribes, d.AddHandler(opts.Name, event.ListenerFunc(
			func(ctx context.Context, e event.Event) error {
				atomic.AddInt64(&result.ListenerCalls, 1)
				return nil
			}), event.WithPriority(i%3)))
	}

	pool, err := ants.NewPool(opts.Workers)
	if err != nil {
		return result, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	start := time.Now()
	for i := 1; i <= opts.Events; i++ {
		if ctx.Err() != nil {
			break
		}

		e := &benchEvent{BaseEvent: event.NewEvent(opts.Name), seq: i}
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			out, err := d.Dispatch(ctx, opts.Name, e)
			switch {
			case err != nil:
				atomic.AddInt64(&result.Errors, 1)
			case out == nil:
				atomic.AddInt64(&result.Consumed, 1)
			default:
				atomic.AddInt64(&result.Completed, 1)
			}
		}); err != nil {
			wg.Done()
			wg.Wait()
			return result, fmt.Errorf("submit dispatch %d: %w", i, err)
		}
	}
	wg.Wait()
	result.Elapsed = time.Since(start)

	return result, ctx.Err()
}

func writeBench(out io.Writer, r benchResult) {
	fmt.Fprintf(out, "events:         %d\n", r.Events)
	fmt.Fprintf(out, "workers:        %d\n", r.Workers)
	fmt.Fprintf(out, "completed:      %d\n", r.Completed)
	fmt.Fprintf(out, "consumed:       %d\n", r.Consumed)
	fmt.Fprintf(out, "errors:         %d\n", r.Errors)
	fmt.Fprintf(out, "listener calls: %d\n", r.ListenerCalls)
	fmt.Fprintf(out, "elapsed:        %s\n", r.Elapsed.Round(time.Microsecond))
	fmt.Fprintf(out, "throughput:     %.0f events/s\n", r.Throughput())
}

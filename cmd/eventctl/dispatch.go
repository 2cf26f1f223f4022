package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/KOMKZ/go-yogan-event/di"
	"github.com/KOMKZ/go-yogan-event/flagx"
	"github.com/KOMKZ/go-yogan-event/scenario"
	"github.com/spf13/cobra"
)

type dispatchOptions struct {
	Format string `flag:"format,o" default:"text" usage:"report format: text or json"`
	Strict bool   `flag:"strict" usage:"exit non-zero when any event fails"`
}

var errEventDisabled = errors.New("event component is disabled (event.enabled=false)")

func newDispatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dispatch [event...]",
		Short: "Register the scenario rules and dispatch events",
		Long: "Registers every rule of the scenario section as a filter or handler, then dispatches\n" +
			"the events given as arguments (or scenario.events) and prints one report per event.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts dispatchOptions
			if err := flagx.ParseFlags(cmd, &opts); err != nil {
				return err
			}
			if opts.Format != "text" && opts.Format != "json" {
				return fmt.Errorf("unknown format %q", opts.Format)
			}

			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context(), func(ctx context.Context, app *di.Application) error {
				return runDispatch(ctx, app, args, opts, cmd.OutOrStdout())
			})
		},
	}
	mustBind(cmd, &dispatchOptions{})
	return cmd
}

func runDispatch(ctx context.Context, app *di.Application, args []string, opts dispatchOptions, out io.Writer) error {
	d := app.Dispatcher()
	if d == nil {
		return errEventDisabled
	}

	cfg, err := scenario.LoadConfig(app.ConfigLoader())
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = cfg.Events
	}
	if len(names) == 0 {
		return errors.New("no events to dispatch: pass names or set scenario.events")
	}

	runner := scenario.NewRunner(d, app.Logger())
	defer runner.Close()
	if err := runner.Register(cfg.Rules); err != nil {
		return err
	}

	reports, err := runner.Run(ctx, names)
	if writeErr := writeReports(out, opts.Format, reports); writeErr != nil {
		return writeErr
	}
	if err != nil {
		return err
	}
	if opts.Strict && scenario.Failed(reports) {
		return errors.New("one or more events failed")
	}
	return nil
}

func writeReports(out io.Writer, format string, reports []scenario.Report) error {
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EVENT\tOUTCOME\tTAGS\tINVOKED\tERROR")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.Event, r.Outcome, dash(strings.Join(r.Tags, ",")), dash(strings.Join(r.Invoked, " ")), dash(r.Error))
	}
	return w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

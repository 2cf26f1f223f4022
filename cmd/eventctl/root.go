package main

import (
	"fmt"

	"github.com/KOMKZ/go-yogan-event/di"
	"github.com/KOMKZ/go-yogan-event/flagx"
	"github.com/spf13/cobra"
)

// globalOptions persistent flags; `config` tags feed the config loader
type globalOptions struct {
	ConfigPath string `flag:"config,c" persistent:"true" default:"./configs" usage:"config directory"`
	Env        string `flag:"env" persistent:"true" usage:"environment name (default $APP_ENV, then dev)"`
	EnvPrefix  string `flag:"env-prefix" persistent:"true" default:"EVENTCTL" usage:"environment variable prefix"`
	LogLevel   string `flag:"log-level" persistent:"true" usage:"override logger.level" config:"logger.level"`
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "eventctl",
		Short:         "Two-phase event dispatch toolkit",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	mustBind(root, &globalOptions{})

	root.AddCommand(newDispatchCmd(), newBenchCmd(), newVersionCmd())
	return root
}

// newApp builds the application from the persistent flags of cmd
func newApp(cmd *cobra.Command) (*di.Application, error) {
	var opts globalOptions
	if err := flagx.ParseFlags(cmd, &opts); err != nil {
		return nil, err
	}

	return di.NewApplication(
		di.WithName("eventctl"),
		di.WithVersion(version),
		di.WithConfigPath(opts.ConfigPath),
		di.WithConfigPrefix(opts.EnvPrefix),
		di.WithEnv(opts.Env),
		di.WithFlags(&opts),
	), nil
}

// mustBind panics on malformed flag tags; they are fixed at compile time
func mustBind(cmd *cobra.Command, target interface{}) {
	if err := flagx.BindFlags(cmd, target); err != nil {
		panic(fmt.Sprintf("bind flags of %s: %v", cmd.Name(), err))
	}
}

package config

import (
	"fmt"

	"github.com/samber/do/v2"
)

// ProvideLoaderOptions options for ProvideLoader
type ProvideLoaderOptions struct {
	ConfigPath   string      // config directory
	ConfigPrefix string      // environment variable prefix
	Env          string      // environment name, default GetEnv()
	Flags        interface{} // `config`-tagged flags struct
}

// ProvideLoader creates the *Loader provider. Config has no dependencies.
//
//	do.Provide(injector, config.ProvideLoader(config.ProvideLoaderOptions{
//	    ConfigPath:   "./configs",
//	    ConfigPrefix: "EVENTCTL",
//	}))
//	loader := do.MustInvoke[*config.Loader](injector)
func ProvideLoader(opts ProvideLoaderOptions) func(do.Injector) (*Loader, error) {
	return func(i do.Injector) (*Loader, error) {
		if opts.ConfigPath == "" {
			opts.ConfigPath = "./configs"
		}

		loader, err := NewLoaderBuilder().
			WithConfigPath(opts.ConfigPath).
			WithEnvPrefix(opts.ConfigPrefix).
			WithEnv(opts.Env).
			WithFlags(opts.Flags).
			Build()
		if err != nil {
			return nil, fmt.Errorf("config loader build failed: %w", err)
		}
		return loader, nil
	}
}

// ProvideLoaderValue registers an already built loader (tests, embedding)
func ProvideLoaderValue(loader *Loader) func(do.Injector) (*Loader, error) {
	return func(i do.Injector) (*Loader, error) {
		return loader, nil
	}
}

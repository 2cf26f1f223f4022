package di

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/KOMKZ/go-yogan-event/config"
	"github.com/KOMKZ/go-yogan-event/errcode"
	"github.com/KOMKZ/go-yogan-event/event"
	"github.com/KOMKZ/go-yogan-event/logger"
	"github.com/samber/do/v2"
	"go.uber.org/zap"
)

// AppState application state
type AppState int

const (
	StateInit AppState = iota
	StateSetup
	StateRunning
	StateStopping
	StateStopped
)

// String state name
func (s AppState) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateSetup:
		return "Setup"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Application owns the injector and drives component lifecycle
type Application struct {
	injector *do.RootScope

	configOpts   ConfigOptions
	configLoader *config.Loader

	logger     *logger.CtxZapLogger
	dispatcher event.Dispatcher

	state AppState
	mu    sync.RWMutex

	name    string
	version string

	onSetup    func(*Application) error
	onShutdown func(context.Context) error
}

// AppOption application option
type AppOption func(*Application)

// WithConfigPath sets the config directory
func WithConfigPath(path string) AppOption {
	return func(app *Application) {
		app.configOpts.ConfigPath = path
	}
}

// WithConfigPrefix sets the environment variable prefix
func WithConfigPrefix(prefix string) AppOption {
	return func(app *Application) {
		app.configOpts.ConfigPrefix = prefix
	}
}

// WithEnv sets the environment name
func WithEnv(env string) AppOption {
	return func(app *Application) {
		app.configOpts.Env = env
	}
}

// WithFlags sets the `config`-tagged flags struct
func WithFlags(flags interface{}) AppOption {
	return func(app *Application) {
		app.configOpts.Flags = flags
	}
}

// WithName sets the application name, also the application logger module
func WithName(name string) AppOption {
	return func(app *Application) {
		app.name = name
	}
}

// WithVersion sets the application version
func WithVersion(version string) AppOption {
	return func(app *Application) {
		app.version = version
	}
}

// WithOnSetup runs after the core components are ready
func WithOnSetup(fn func(*Application) error) AppOption {
	return func(app *Application) {
		app.onSetup = fn
	}
}

// WithOnShutdown runs before the injector shuts down
func WithOnShutdown(fn func(context.Context) error) AppOption {
	return func(app *Application) {
		app.onShutdown = fn
	}
}

// NewApplication creates an application
func NewApplication(opts ...AppOption) *Application {
	app := &Application{
		injector:   do.New(),
		configOpts: ConfigOptions{ConfigPath: "./configs"},
		state:      StateInit,
		name:       "eventctl",
		version:    "0.0.1",
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Injector returns the root scope
func (app *Application) Injector() *do.RootScope {
	return app.injector
}

// Logger returns the application logger
func (app *Application) Logger() *logger.CtxZapLogger {
	return app.logger
}

// ConfigLoader returns the config loader
func (app *Application) ConfigLoader() *config.Loader {
	return app.configLoader
}

// Dispatcher returns the event dispatcher, nil when the event component is disabled
func (app *Application) Dispatcher() event.Dispatcher {
	return app.dispatcher
}

// State returns the current state
func (app *Application) State() AppState {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.state
}

func (app *Application) setState(state AppState) {
	app.mu.Lock()
	defer app.mu.Unlock()
	app.state = state
}

// Setup registers the providers and resolves config, logger and the dispatcher
func (app *Application) Setup() error {
	app.setState(StateSetup)

	RegisterCoreProviders(app.injector, app.configOpts)
	do.Provide(app.injector, ProvideCtxLogger(app.name))

	loader, err := do.Invoke[*config.Loader](app.injector)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}
	app.configLoader = loader

	appLogger, err := do.Invoke[*logger.CtxZapLogger](app.injector)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	app.logger = appLogger

	comp, err := do.Invoke[*event.Component](app.injector)
	if err != nil {
		return fmt.Errorf("init event component: %w", err)
	}
	app.dispatcher = comp.GetDispatcher()

	// every package-level error code is registered by now
	errcode.LockGlobalRegistry()

	app.logger.Debug("application setup complete",
		zap.String("name", app.name),
		zap.String("version", app.version),
		zap.Strings("config_files", loader.GetLoadedFiles()),
		zap.Bool("event_enabled", comp.IsEnabled()),
	)

	if app.onSetup != nil {
		if err := app.onSetup(app); err != nil {
			return fmt.Errorf("setup callback: %w", err)
		}
	}
	return nil
}

// Run sets up, runs fn with a context cancelled on SIGINT/SIGTERM, then shuts down
func (app *Application) Run(ctx context.Context, fn func(context.Context, *Application) error) error {
	if err := app.Setup(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.setState(StateRunning)
	runErr := fn(ctx, app)

	if err := app.Shutdown(context.WithoutCancel(ctx)); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Shutdown stops components in reverse dependency order
func (app *Application) Shutdown(ctx context.Context) error {
	app.setState(StateStopping)

	if app.onShutdown != nil {
		if err := app.onShutdown(ctx); err != nil && app.logger != nil {
			app.logger.Warn("shutdown callback failed", zap.Error(err))
		}
	}

	if err := app.injector.Shutdown(); err != nil && app.logger != nil {
		app.logger.Warn("injector shutdown failed", zap.Error(err))
	}

	app.setState(StateStopped)
	return nil
}

// HealthCheck reports every service implementing a health check
func (app *Application) HealthCheck() map[string]error {
	return app.injector.HealthCheck()
}

// IsHealthy whether every health check passed
func (app *Application) IsHealthy() bool {
	for _, err := range app.HealthCheck() {
		if err != nil {
			return false
		}
	}
	return true
}

package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/apikit/cache"
	"github.com/kbukum/apikit/component"
	"github.com/kbukum/apikit/dispatch"
	"github.com/kbukum/apikit/httpclient"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
	"github.com/kbukum/apikit/redis"
)

// App owns the components of one apikit process and the Dispatcher built
// on top of them.
type App struct {
	Name       string
	Version    string
	Cfg        *Config
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	telemetry       *observability.Telemetry
	http            *httpclient.Component
	redis           *redis.Component
	store           cache.Store
	ownsStore       bool
	dispatcher      *dispatch.Dispatcher

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp applies defaults, validates cfg, initializes the logger and
// registers the components cfg asks for. Nothing is started yet.
func NewApp(cfg *Config, opts ...Option) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	app := &App{
		Name:            cfg.Name,
		Version:         cfg.Version,
		Cfg:             cfg,
		gracefulTimeout: 15 * time.Second,
	}

	o := resolveOptions(opts)
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(cfg.Logging)
		app.Logger = logger.GetGlobalLogger()
	}
	logger.Register("dispatch", app.Logger.WithComponent("dispatch"))
	app.Components = component.NewRegistry(app.Logger)
	app.Summary = NewSummary(cfg.Name, cfg.Version)
	app.telemetry = o.telemetry
	app.store = o.store

	if app.store == nil && cfg.Redis.Enabled && cfg.Cache.Backend == cache.BackendRedis {
		app.redis = redis.NewComponent(cfg.Redis, app.Logger)
		if err := app.RegisterComponent(app.redis); err != nil {
			return nil, err
		}
	}
	app.http = httpclient.NewComponent(cfg.HTTP, httpclient.WithLogger(app.Logger))
	if err := app.RegisterComponent(app.http); err != nil {
		return nil, err
	}
	return app, nil
}

// RegisterComponent adds a component to the application's registry.
func (a *App) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// Dispatcher returns the dispatcher built by Start, or nil before it.
func (a *App) Dispatcher() *dispatch.Dispatcher {
	return a.dispatcher
}

// Store returns the cache store the dispatcher reads, or nil before Start.
func (a *App) Store() cache.Store {
	return a.store
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// RunTask starts the application, runs task and shuts down when the task
// returns or the process receives SIGINT or SIGTERM. The task error wins
// over a shutdown error.
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.Shutdown(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// Start initializes telemetry, starts every component, builds the
// dispatcher and runs the start and ready hooks.
func (a *App) Start(ctx context.Context) error {
	start := time.Now()

	a.Logger.Debug("Starting application", logger.Fields("name", a.Name, "version", a.Version))

	if a.telemetry == nil {
		t, err := observability.Init(ctx, a.Cfg.Observability, a.Name, a.Version, a.Logger)
		if err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		a.telemetry = t
	}
	if err := a.RegisterComponent(a.telemetry.Component()); err != nil {
		return err
	}

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start components: %w", err)
	}

	if err := a.buildDispatcher(); err != nil {
		a.abortStart(ctx)
		return err
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		a.abortStart(ctx)
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.Fields("error", err.Error()))
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		a.abortStart(ctx)
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	return nil
}

// abortStart undoes a partial Start: started components are stopped and a
// store opened by the app is closed.
func (a *App) abortStart(ctx context.Context) {
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Warn("Stopping components after failed start", logger.ErrorFields("stop_components", err))
	}
	if a.ownsStore && a.store != nil {
		_ = a.store.Close()
		a.store = nil
		a.ownsStore = false
	}
}

func (a *App) buildDispatcher() error {
	if a.store == nil {
		if a.redis != nil {
			a.store = cache.Namespace(a.redis.Store(), a.Cfg.Cache.Namespace)
		} else {
			s, err := cache.Open(a.Cfg.Cache)
			if err != nil {
				return err
			}
			a.store = s
			a.ownsStore = true
		}
	}

	metrics, err := observability.NewMetrics(a.telemetry.Meter())
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	a.dispatcher = dispatch.New(a.http.Adapter(),
		dispatch.WithBaseURL(a.Cfg.HTTP.BaseURL),
		dispatch.WithCache(a.store),
		dispatch.WithBackoff(a.Cfg.Retry),
		dispatch.WithLogger(logger.Get("dispatch")),
		dispatch.WithMetrics(metrics),
		dispatch.WithTracer(a.telemetry.Tracer()),
	)
	return nil
}

// Shutdown waits for pending async completions, runs the stop hooks and
// stops all components within the graceful timeout.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	if a.dispatcher != nil {
		a.dispatcher.Wait()
	}

	var shutdownErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.ErrorFields("stop_hooks", err))
		shutdownErr = err
	}

	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.ErrorFields("stop_components", err))
		shutdownErr = err
	}

	if a.ownsStore {
		if err := a.store.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	a.Logger.Debug("Application shutdown complete")
	return shutdownErr
}

// Package app wires drawstorm together: configuration, logging, the event
// bus, open documents with their histories, and edit scripts.
package app

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/drawstorm/internal/config"
	"github.com/dshills/drawstorm/internal/engine/history"
	"github.com/dshills/drawstorm/internal/engine/scene"
	"github.com/dshills/drawstorm/internal/event"
	"github.com/dshills/drawstorm/internal/logging"
)

// Application owns the shared infrastructure and the open documents.
type Application struct {
	mu sync.RWMutex

	// Core infrastructure
	config *config.Config
	logger *logging.Logger
	bus    *event.Bus

	// Document management
	documents *DocumentManager

	// Supporting components
	metrics *Metrics
	subs    *subscriptionManager
	watcher *config.Watcher

	closed atomic.Bool
	opts   Options
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// LogLevel overrides logging.level when set.
	LogLevel string

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer

	// WatchConfig reloads ConfigPath when it changes.
	WatchConfig bool

	// ScriptTimeout bounds each script run. Defaults to DefaultScriptTimeout.
	ScriptTimeout time.Duration

	// Loader reads the configuration. Defaults to config.NewLoader().
	Loader *config.Loader
}

// New loads the configuration and creates an Application with no
// documents open.
func New(opts Options) (*Application, error) {
	if opts.Loader == nil {
		opts.Loader = config.NewLoader()
	}
	if opts.ScriptTimeout <= 0 {
		opts.ScriptTimeout = DefaultScriptTimeout
	}

	cfg, err := opts.Loader.Load(opts.ConfigPath)
	if err != nil {
		return nil, NewComponentError("config", "load", err)
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}

	app := &Application{
		config: cfg,
		logger: logging.New(logging.Config{
			Level:  cfg.LogLevel(),
			Output: opts.LogOutput,
			Prefix: "drawstorm",
		}).WithComponent("app"),
		bus:       event.NewBus(),
		documents: NewDocumentManager(),
		metrics:   NewMetrics(),
		opts:      opts,
	}

	app.subs = newSubscriptionManager(app)
	if err := app.subs.setupSubscriptions(); err != nil {
		return nil, NewComponentError("events", "subscribe", err)
	}

	if opts.WatchConfig && opts.ConfigPath != "" {
		w, err := opts.Loader.Watch(opts.ConfigPath, app.applyConfig,
			config.WithWatchErrors(func(err error) {
				app.logger.Warn("config reload: %v", err)
			}))
		if err != nil {
			app.logger.Warn("config watch disabled: %v", NewComponentError("config", "watch", err))
		} else {
			app.watcher = w
		}
	}

	app.logger.Debug("started: %s", cfg)
	return app, nil
}

// applyConfig installs a reloaded configuration. Open documents keep the
// history settings they were created with.
func (app *Application) applyConfig(cfg *config.Config) {
	if app.opts.LogLevel != "" {
		cfg.Logging.Level = app.opts.LogLevel
	}

	app.mu.Lock()
	app.config = cfg
	app.mu.Unlock()

	app.logger.SetLevel(cfg.LogLevel())
	app.publish(context.Background(), event.NewEvent(event.TopicConfigChanged, event.ConfigChanged{
		Path:       app.opts.ConfigPath,
		LogLevel:   cfg.Logging.Level,
		Strategy:   string(cfg.History.Strategy),
		MaxEntries: cfg.History.MaxEntries,
	}, "config"))
}

// OpenDocument creates a document configured from the current history
// settings and makes it active. opts are applied after the defaults.
func (app *Application) OpenDocument(ctx context.Context, opts ...scene.Option) (*scene.Document, error) {
	if app.closed.Load() {
		return nil, ErrShutdown
	}
	cfg := app.Config()

	base := []scene.Option{
		scene.WithStrategy(cfg.History.Strategy),
		scene.WithMaxEntries(cfg.History.MaxEntries),
		scene.WithBus(app.bus),
		scene.WithLogger(app.logger),
	}
	doc := scene.New(append(base, opts...)...)
	if err := app.documents.Add(doc); err != nil {
		doc.Close()
		return nil, NewOperationError("open", string(doc.ID()), err)
	}

	app.publish(ctx, event.NewEvent(event.TopicDocumentOpened, lifecycle(doc), "app"))
	return doc, nil
}

// CloseDocument closes a document and releases its history.
func (app *Application) CloseDocument(ctx context.Context, id history.HostID) error {
	doc, err := app.documents.Remove(id)
	if err != nil {
		return NewOperationError("close", string(id), err)
	}
	doc.Close()
	app.publish(ctx, event.NewEvent(event.TopicDocumentClosed, lifecycle(doc), "app"))
	return nil
}

func lifecycle(doc *scene.Document) event.DocumentLifecycle {
	return event.DocumentLifecycle{
		Document: string(doc.ID()),
		Name:     doc.Name(),
		Strategy: string(doc.Strategy()),
	}
}

func (app *Application) publish(ctx context.Context, ev any) {
	if err := app.bus.Publish(ctx, ev); err != nil {
		app.logger.Warn("publish: %v", err)
	}
}

// Shutdown stops the config watcher and closes every open document. It is
// safe to call more than once.
func (app *Application) Shutdown() error {
	if app.closed.Swap(true) {
		return nil
	}

	var errs ErrorList
	if app.watcher != nil {
		errs.Add(app.watcher.Close())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, doc := range app.documents.List() {
		errs.Add(app.CloseDocument(ctx, doc.ID()))
	}

	app.subs.unsubscribeAll()
	return errs.AsError()
}

// IsClosed reports whether Shutdown was called.
func (app *Application) IsClosed() bool {
	return app.closed.Load()
}

// Config returns the current configuration.
func (app *Application) Config() *config.Config {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.config
}

// Logger returns the application logger.
func (app *Application) Logger() *logging.Logger {
	return app.logger
}

// EventBus returns the application event bus.
func (app *Application) EventBus() *event.Bus {
	return app.bus
}

// Documents returns the document manager.
func (app *Application) Documents() *DocumentManager {
	return app.documents
}

// Metrics returns the activity counters.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

package scene

import (
	"github.com/dshills/drawstorm/internal/config"
	"github.com/dshills/drawstorm/internal/engine/history"
	"github.com/dshills/drawstorm/internal/event"
	"github.com/dshills/drawstorm/internal/logging"
)

// Option configures a Document.
type Option func(*Document)

// WithID sets the document id. A random id is used otherwise.
func WithID(id history.HostID) Option {
	return func(d *Document) {
		if id != "" {
			d.id = id
		}
	}
}

// WithName sets the document name.
func WithName(name string) Option {
	return func(d *Document) {
		d.name = name
	}
}

// WithFirstPage sets the id and name of the page a new document starts with.
func WithFirstPage(spec PageSpec) Option {
	return func(d *Document) {
		d.first = spec
	}
}

// WithStrategy selects how the document's edits are scoped for undo.
func WithStrategy(s config.Strategy) Option {
	return func(d *Document) {
		if s != "" {
			d.strategy = s
		}
	}
}

// WithMaxEntries bounds each history timeline. Zero means unbounded.
func WithMaxEntries(n int) Option {
	return func(d *Document) {
		d.maxEntries = n
	}
}

// WithBus publishes page and history events on bus.
func WithBus(bus *event.Bus) Option {
	return func(d *Document) {
		d.bus = bus
	}
}

// WithLogger sets the document logger.
func WithLogger(l *logging.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithNotifier registers an additional receiver of availability changes.
func WithNotifier(n history.Notifier) Option {
	return func(d *Document) {
		d.notifier = n
	}
}

package history

import "github.com/dshills/drawstorm/internal/logging"

// Option configures a DocumentHistory or PageHistory.
type Option func(*core)

// WithLogger sets the logger used for swallowed redo failures and skipped
// entries.
func WithLogger(l *logging.Logger) Option {
	return func(c *core) {
		if l != nil {
			c.logger = l.WithComponent("history")
		}
	}
}

// WithNotifier sets the receiver of undo/redo availability changes.
func WithNotifier(n Notifier) Option {
	return func(c *core) {
		c.notifier = n
	}
}

// WithMaxEntries bounds each timeline. Zero, the default, means unbounded.
// When the bound is exceeded the oldest whole batch groups are evicted.
func WithMaxEntries(max int) Option {
	return func(c *core) {
		if max >= 0 {
			c.maxEntries = max
		}
	}
}

// core holds what both history strategies share: gesture batching, the
// replay guard and configuration.
type core struct {
	batch BatchToken
	guard replayGuard

	logger     *logging.Logger
	notifier   Notifier
	maxEntries int
}

func newCore(opts []Option) core {
	c := core{logger: logging.Null()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// BeginGesture starts a new user gesture. Commands added until the next
// Begin/EndGesture share one batch token and undo as one step.
func (c *core) BeginGesture() {
	c.batch = ""
}

// EndGesture closes the current gesture so the next command starts a new batch.
func (c *core) EndGesture() {
	c.batch = ""
}

// CurrentBatch returns the token of the open gesture, or "" if none has
// been assigned yet.
func (c *core) CurrentBatch() BatchToken {
	return c.batch
}

// Replaying reports whether an undo or redo is in progress.
func (c *core) Replaying() bool {
	return c.guard.active()
}

// stamp assigns cmd its batch token. An explicit token is kept unless it
// would make its batch non-contiguous in t.
func (c *core) stamp(cmd *Command, t *timeline) {
	if cmd.batch != "" {
		if cmd.batch == t.lastBatch() || !t.hasBatch(cmd.batch) {
			return
		}
		c.logger.Debug("batch %s is not contiguous, starting a new one", cmd.batch)
		cmd.batch = NewBatchToken()
		return
	}
	if c.batch == "" {
		c.batch = NewBatchToken()
	}
	cmd.batch = c.batch
}

func (c *core) notify(host HostID, before, after State) {
	if c.notifier != nil && before != after {
		c.notifier.HistoryChanged(host, after)
	}
}

// replayGuard suppresses recording while a replay mutates live objects.
// enter returns the release function, meant to be deferred, so the guard
// cannot stay engaged after an error or panic.
type replayGuard struct {
	depth int
}

func (g *replayGuard) enter() func() {
	g.depth++
	return func() { g.depth-- }
}

func (g *replayGuard) active() bool {
	return g.depth > 0
}

// Gesturer is implemented by both history strategies.
type Gesturer interface {
	BeginGesture()
	EndGesture()
}

// GestureScope provides a convenient way to batch commands using defer.
// Usage:
//
//	func dragSelection(h *DocumentHistory, ...) {
//	    defer GestureScopeOf(h).End()
//	    // ... record several commands ...
//	}
type GestureScope struct {
	g      Gesturer
	active bool
}

// GestureScopeOf begins a gesture on g and returns its scope.
func GestureScopeOf(g Gesturer) *GestureScope {
	g.BeginGesture()
	return &GestureScope{g: g, active: true}
}

// End ends the gesture. Safe to call multiple times; only the first call
// has effect.
func (s *GestureScope) End() {
	if s.active {
		s.g.EndGesture()
		s.active = false
	}
}

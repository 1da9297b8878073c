package event

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/drawstorm/internal/event/topic"
)

// Handler processes events.
type Handler interface {
	Handle(ctx context.Context, event any) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event any) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// Priority determines handler order; lower values run first.
type Priority int

// Common priorities.
const (
	PriorityCritical Priority = 0
	PriorityHigh     Priority = 100
	PriorityNormal   Priority = 500
	PriorityLow      Priority = 1000
)

// FilterFunc decides whether an event is delivered to a subscription.
type FilterFunc func(event any) bool

type subscriptionConfig struct {
	priority Priority
	filter   FilterFunc
	once     bool
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*subscriptionConfig)

// WithPriority sets the handler priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(c *subscriptionConfig) { c.priority = p }
}

// WithFilter only delivers events for which fn returns true.
func WithFilter(fn FilterFunc) SubscriptionOption {
	return func(c *subscriptionConfig) { c.filter = fn }
}

// Once cancels the subscription after its first delivery.
func Once() SubscriptionOption {
	return func(c *subscriptionConfig) { c.once = true }
}

// Subscription is a registered handler for a topic pattern.
type Subscription struct {
	id      string
	pattern topic.Topic
	handler Handler
	config  subscriptionConfig
	seq     uint64

	cancelled atomic.Bool
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string { return s.id }

// Topic returns the subscribed pattern.
func (s *Subscription) Topic() topic.Topic { return s.pattern }

// IsActive reports whether the subscription still receives events.
func (s *Subscription) IsActive() bool { return !s.cancelled.Load() }

// Stats holds bus counters.
type Stats struct {
	Published     uint64
	Delivered     uint64
	HandlerErrors uint64
	Subscriptions int
}

// Bus is a synchronous, priority-ordered event bus. Handlers run on the
// publishing goroutine, in priority order and then subscription order.
type Bus struct {
	mu   sync.RWMutex
	subs []*Subscription
	seq  uint64

	published     atomic.Uint64
	delivered     atomic.Uint64
	handlerErrors atomic.Uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers handler for every topic matching pattern.
func (b *Bus) Subscribe(pattern topic.Topic, handler Handler, opts ...SubscriptionOption) (*Subscription, error) {
	if !pattern.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTopic, pattern)
	}
	if handler == nil {
		return nil, ErrNilHandler
	}
	cfg := subscriptionConfig{priority: PriorityNormal}
	for _, opt := range opts {
		opt(&cfg)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	sub := &Subscription{
		id:      uuid.NewString(),
		pattern: pattern,
		handler: handler,
		config:  cfg,
		seq:     b.seq,
	}
	b.subs = append(b.subs, sub)
	sort.SliceStable(b.subs, func(i, j int) bool {
		if b.subs[i].config.priority != b.subs[j].config.priority {
			return b.subs[i].config.priority < b.subs[j].config.priority
		}
		return b.subs[i].seq < b.subs[j].seq
	})
	return sub, nil
}

// SubscribeFunc is Subscribe for a plain function.
func (b *Bus) SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn, opts...)
}

// Unsubscribe removes sub.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s == sub {
			s.cancelled.Store(true)
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// Publish delivers event to every matching subscription and returns the
// joined handler errors. Handler panics are recovered as PanicError.
func (b *Bus) Publish(ctx context.Context, event any) error {
	tp, ok := event.(TopicProvider)
	if !ok {
		return fmt.Errorf("%w: %T carries no topic", ErrInvalidEvent, event)
	}
	t := tp.EventTopic()
	if !t.IsValid() || t.IsWildcard() {
		return fmt.Errorf("%w: %q", ErrInvalidTopic, t)
	}
	b.published.Add(1)

	b.mu.RLock()
	matched := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if t.Matches(s.pattern) {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	var errs []error
	for _, s := range matched {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if s.config.filter != nil && !s.config.filter(event) {
			continue
		}
		if s.config.once {
			if !s.cancelled.CompareAndSwap(false, true) {
				continue
			}
			_ = b.Unsubscribe(s)
		} else if s.cancelled.Load() {
			continue
		}
		if err := b.deliver(ctx, s, t, event); err != nil {
			b.handlerErrors.Add(1)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) deliver(ctx context.Context, s *Subscription, t topic.Topic, event any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{SubscriptionID: s.id, Topic: t.String(), Value: r}
		}
	}()
	b.delivered.Add(1)
	if herr := s.handler.Handle(ctx, event); herr != nil {
		return &HandlerError{SubscriptionID: s.id, Topic: t.String(), Err: herr}
	}
	return nil
}

// Stats returns a snapshot of the bus counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	n := len(b.subs)
	b.mu.RUnlock()
	return Stats{
		Published:     b.published.Load(),
		Delivered:     b.delivered.Load(),
		HandlerErrors: b.handlerErrors.Load(),
		Subscriptions: n,
	}
}

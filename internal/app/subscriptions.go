package app

import (
	"context"
	"sync"

	"github.com/dshills/drawstorm/internal/event"
	"github.com/dshills/drawstorm/internal/event/topic"
)

// subscriptionManager manages event bus subscriptions for the application.
type subscriptionManager struct {
	mu            sync.Mutex
	subscriptions []*event.Subscription
	app           *Application
}

// newSubscriptionManager creates a new subscription manager.
func newSubscriptionManager(app *Application) *subscriptionManager {
	return &subscriptionManager{app: app}
}

// setupSubscriptions registers all event subscriptions.
func (sm *subscriptionManager) setupSubscriptions() error {
	handlers := []struct {
		topic topic.Topic
		fn    event.HandlerFunc
	}{
		{event.TopicHistoryChanged, sm.onHistoryChanged},
		{event.TopicPageActivated, sm.onPageActivated},
		{event.TopicDocumentWildcard, sm.onDocumentLifecycle},
		{event.TopicConfigChanged, sm.onConfigChanged},
	}
	for _, h := range handlers {
		// Bookkeeping runs after every other subscriber has seen the event.
		if err := sm.subscribe(h.topic, h.fn, event.WithPriority(event.PriorityLow)); err != nil {
			sm.unsubscribeAll()
			return err
		}
	}
	return nil
}

func (sm *subscriptionManager) subscribe(t topic.Topic, fn event.HandlerFunc, opts ...event.SubscriptionOption) error {
	sub, err := sm.app.bus.SubscribeFunc(t, fn, opts...)
	if err != nil {
		return err
	}
	sm.mu.Lock()
	sm.subscriptions = append(sm.subscriptions, sub)
	sm.mu.Unlock()
	return nil
}

// unsubscribeAll removes every subscription this manager created.
func (sm *subscriptionManager) unsubscribeAll() {
	sm.mu.Lock()
	subs := sm.subscriptions
	sm.subscriptions = nil
	sm.mu.Unlock()

	for _, sub := range subs {
		_ = sm.app.bus.Unsubscribe(sub)
	}
}

func (sm *subscriptionManager) onHistoryChanged(_ context.Context, ev any) error {
	p, ok := event.PayloadAs[event.HistoryChanged](ev)
	if !ok {
		return nil
	}
	sm.app.metrics.RecordHistoryChange()
	sm.app.logger.WithFields(map[string]any{
		"document": p.Document,
		"host":     p.Host,
	}).Debug("history changed: undo=%t redo=%t", p.CanUndo, p.CanRedo)
	return nil
}

func (sm *subscriptionManager) onPageActivated(_ context.Context, ev any) error {
	p, ok := event.PayloadAs[event.PageActivated](ev)
	if !ok {
		return nil
	}
	sm.app.metrics.RecordPageActivation()
	sm.app.logger.WithField("document", p.Document).Debug("page %s activated", p.Page)
	return nil
}

func (sm *subscriptionManager) onDocumentLifecycle(_ context.Context, ev any) error {
	p, ok := event.PayloadAs[event.DocumentLifecycle](ev)
	if !ok {
		return nil
	}
	switch ev.(event.TopicProvider).EventTopic() {
	case event.TopicDocumentOpened:
		sm.app.metrics.RecordDocumentOpened()
		sm.app.logger.WithField("strategy", p.Strategy).Info("opened document %s", p.Document)
	case event.TopicDocumentClosed:
		sm.app.metrics.RecordDocumentClosed()
		sm.app.logger.Info("closed document %s", p.Document)
	}
	return nil
}

func (sm *subscriptionManager) onConfigChanged(_ context.Context, ev any) error {
	p, ok := event.PayloadAs[event.ConfigChanged](ev)
	if !ok {
		return nil
	}
	sm.app.metrics.RecordConfigReload()
	sm.app.logger.Info("reloaded %s: log=%s history=%s", p.Path, p.LogLevel, p.Strategy)
	return nil
}

package event

import "github.com/dshills/drawstorm/internal/event/topic"

// Topics published by drawstorm components.
const (
	TopicHistoryChanged   topic.Topic = "history.changed"
	TopicPageChanged      topic.Topic = "page.changed"
	TopicPageActivated    topic.Topic = "page.activated"
	TopicDocumentOpened   topic.Topic = "document.opened"
	TopicDocumentClosed   topic.Topic = "document.closed"
	TopicDocumentWildcard topic.Topic = "document.*"
	TopicPageWildcard     topic.Topic = "page.*"
	TopicConfigChanged    topic.Topic = "config.changed"
)

// HistoryChanged reports new undo/redo availability for a history host
// (a page for page-scoped histories, the document otherwise).
type HistoryChanged struct {
	Document string
	Host     string
	CanUndo  bool
	CanRedo  bool
}

// PageChanged is published when a document starts switching pages.
type PageChanged struct {
	Document string
	From     string
	To       string
}

// PageActivated is published once the new active page is live.
type PageActivated struct {
	Document string
	Page     string
}

// DocumentLifecycle is the payload of document.opened and document.closed.
type DocumentLifecycle struct {
	Document string
	Name     string
	Strategy string
}

// ConfigChanged is published after the configuration file was reloaded.
type ConfigChanged struct {
	Path       string
	LogLevel   string
	Strategy   string
	MaxEntries int
}

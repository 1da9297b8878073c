package scene

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/dshills/drawstorm/internal/config"
	"github.com/dshills/drawstorm/internal/engine/history"
	"github.com/dshills/drawstorm/internal/event"
	"github.com/dshills/drawstorm/internal/logging"
)

// PageSpec names a page to create. An empty ID is replaced by a random one.
type PageSpec struct {
	ID   history.HostID
	Name string
}

// Document is an ordered set of pages together with the history that owns
// their edits. It implements history.Document.
//
// Document is not safe for concurrent use.
type Document struct {
	id       history.HostID
	name     string
	strategy config.Strategy
	first    PageSpec
	tracking bool
	closed   bool

	pages  []*Page
	active history.HostID

	docHistory  *history.DocumentHistory
	pageHistory *history.PageHistory
	gestures    int

	maxEntries int
	bus        *event.Bus
	logger     *logging.Logger
	notifier   history.Notifier
}

// New creates a document with a single empty page.
func New(opts ...Option) *Document {
	d := &Document{
		id:       history.HostID(uuid.NewString()),
		strategy: config.StrategyDocument,
		tracking: true,
		logger:   logging.Null(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.WithComponent("scene").WithField("document", string(d.id))

	hopts := []history.Option{
		history.WithLogger(d.logger),
		history.WithMaxEntries(d.maxEntries),
		history.WithNotifier(history.NotifierFunc(d.historyChanged)),
	}
	if d.strategy == config.StrategyPage {
		d.pageHistory = history.NewPageHistory(hopts...)
	} else {
		d.docHistory = history.NewDocumentHistory(d, hopts...)
	}

	first := d.first
	if first.ID == "" {
		first.ID = history.HostID(uuid.NewString())
	}
	if first.Name == "" {
		first.Name = "Page 1"
	}
	d.pages = []*Page{newPage(first.ID, first.Name, d)}
	d.active = first.ID
	return d
}

// ID returns the document id.
func (d *Document) ID() history.HostID { return d.id }

// Name returns the document name.
func (d *Document) Name() string { return d.name }

// Strategy returns the history strategy.
func (d *Document) Strategy() config.Strategy { return d.strategy }

// HostID implements history.Host.
func (d *Document) HostID() history.HostID { return d.id }

// EnableHistory implements history.Host.
func (d *Document) EnableHistory() bool { return d.tracking }

// SetHistoryEnabled turns recording of page-level edits on or off.
func (d *Document) SetHistoryEnabled(enabled bool) { d.tracking = enabled }

// History implements history.Host.
func (d *Document) History() history.Recorder { return d.recorder() }

func (d *Document) recorder() history.Recorder {
	if d.pageHistory != nil {
		return d.pageHistory
	}
	return d.docHistory
}

func (d *Document) gesturer() history.Gesturer {
	if d.pageHistory != nil {
		return d.pageHistory
	}
	return d.docHistory
}

// DocumentHistory returns the shared timeline, or nil under the page strategy.
func (d *Document) DocumentHistory() *history.DocumentHistory { return d.docHistory }

// PageHistory returns the per-page timelines, or nil under the document strategy.
func (d *Document) PageHistory() *history.PageHistory { return d.pageHistory }

// Pages returns the pages in order.
func (d *Document) Pages() []*Page {
	return slices.Clone(d.pages)
}

// PageByID returns the page with id.
func (d *Document) PageByID(id history.HostID) (*Page, bool) {
	for _, p := range d.pages {
		if p.id == id {
			return p, true
		}
	}
	return nil, false
}

// Active returns the visible page.
func (d *Document) Active() *Page {
	p, _ := d.PageByID(d.active)
	return p
}

// Page implements history.Document.
func (d *Document) Page(id history.HostID) (history.ObjectHost, bool) {
	p, ok := d.PageByID(id)
	if !ok {
		return nil, false
	}
	return p, true
}

// ActivePage implements history.Document.
func (d *Document) ActivePage() history.ObjectHost {
	if p := d.Active(); p != nil {
		return p
	}
	return nil
}

// ActivatePage implements history.Document. It publishes page.changed,
// switches pages and publishes page.activated once the page is live.
func (d *Document) ActivatePage(ctx context.Context, id history.HostID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := d.PageByID(id); !ok {
		return fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	if d.active == id {
		return nil
	}
	d.switchTo(ctx, id)
	return nil
}

func (d *Document) switchTo(ctx context.Context, id history.HostID) {
	from := d.active
	d.publish(ctx, event.NewEvent(event.TopicPageChanged, event.PageChanged{
		Document: string(d.id),
		From:     string(from),
		To:       string(id),
	}, "scene"))
	d.active = id
	d.logger.Debug("page %s activated", id)
	d.publish(ctx, event.NewEvent(event.TopicPageActivated, event.PageActivated{
		Document: string(d.id),
		Page:     string(id),
	}, "scene"))
}

// PageIndex implements history.PageHost.
func (d *Document) PageIndex(id history.HostID) (int, bool) {
	idx := slices.IndexFunc(d.pages, func(p *Page) bool { return p.id == id })
	return idx, idx >= 0
}

// PageCount implements history.PageHost.
func (d *Document) PageCount() int { return len(d.pages) }

// SerializePage implements history.PageHost.
func (d *Document) SerializePage(id history.HostID) (history.PageRecord, error) {
	p, ok := d.PageByID(id)
	if !ok {
		return history.PageRecord{}, fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	return p.record()
}

// InsertPage implements history.PageHost.
func (d *Document) InsertPage(rec history.PageRecord, index int) error {
	if _, ok := d.PageByID(rec.ID); ok {
		return fmt.Errorf("%w: page %s", ErrDuplicateID, rec.ID)
	}
	p, err := pageFromRecord(rec, d)
	if err != nil {
		return err
	}
	index = min(max(index, 0), len(d.pages))
	d.pages = slices.Insert(d.pages, index, p)
	return nil
}

// RemovePage implements history.PageHost. Removing the active page
// activates its neighbour.
func (d *Document) RemovePage(id history.HostID) error {
	idx, ok := d.PageIndex(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	if len(d.pages) == 1 {
		return ErrLastPage
	}
	d.pages = slices.Delete(d.pages, idx, idx+1)
	if d.active == id {
		d.switchTo(context.Background(), d.pages[min(idx, len(d.pages)-1)].id)
	}
	return nil
}

// MovePage implements history.PageHost.
func (d *Document) MovePage(id history.HostID, index int) error {
	idx, ok := d.PageIndex(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	p := d.pages[idx]
	d.pages = slices.Delete(d.pages, idx, idx+1)
	index = min(max(index, 0), len(d.pages))
	d.pages = slices.Insert(d.pages, index, p)
	return nil
}

// BeginGesture starts a user gesture. Gestures nest; only the outermost
// pair opens and closes the history batch.
func (d *Document) BeginGesture() {
	if d.gestures == 0 {
		d.gesturer().BeginGesture()
	}
	d.gestures++
}

// EndGesture closes the innermost gesture.
func (d *Document) EndGesture() {
	if d.gestures == 0 {
		return
	}
	d.gestures--
	if d.gestures == 0 {
		d.gesturer().EndGesture()
	}
}

func (d *Document) gesture() func() {
	d.BeginGesture()
	return d.EndGesture
}

// Replaying reports whether an undo or redo is running.
func (d *Document) Replaying() bool {
	if d.pageHistory != nil {
		return d.pageHistory.Replaying()
	}
	return d.docHistory.Replaying()
}

// Undo reverts the most recent batch. Under the document strategy that is
// the newest edit anywhere, switching pages if needed; under the page
// strategy it is the newest edit on the active page.
func (d *Document) Undo(ctx context.Context) error {
	if d.pageHistory != nil {
		return d.pageHistory.Undo(d.Active())
	}
	return d.docHistory.Undo(ctx)
}

// Redo reapplies the next batch in the same scope as Undo.
func (d *Document) Redo(ctx context.Context) bool {
	if d.pageHistory != nil {
		return d.pageHistory.Redo(d.Active())
	}
	return d.docHistory.Redo(ctx)
}

// UndoHost is like Undo for the timeline of host: a page, or the document
// itself for page-level edits. Under the document strategy it is Undo.
func (d *Document) UndoHost(ctx context.Context, host history.HostID) error {
	if d.pageHistory == nil {
		return d.docHistory.Undo(ctx)
	}
	h, err := d.host(host)
	if err != nil {
		return err
	}
	return d.pageHistory.Undo(h)
}

// RedoHost is like Redo for the timeline of host.
func (d *Document) RedoHost(ctx context.Context, host history.HostID) (bool, error) {
	if d.pageHistory == nil {
		return d.docHistory.Redo(ctx), nil
	}
	h, err := d.host(host)
	if err != nil {
		return false, err
	}
	return d.pageHistory.Redo(h), nil
}

func (d *Document) host(id history.HostID) (history.Host, error) {
	if id == d.id {
		return d, nil
	}
	p, ok := d.PageByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	return p, nil
}

// scope returns the timeline id Undo and Redo act on.
func (d *Document) scope() history.HostID {
	if d.pageHistory != nil {
		return d.active
	}
	return d.id
}

// State returns the undo/redo availability in the scope of Undo.
func (d *Document) State() history.State {
	if d.pageHistory != nil {
		return d.pageHistory.State(d.scope())
	}
	return d.docHistory.State()
}

// CanUndo reports whether Undo would do anything.
func (d *Document) CanUndo() bool { return d.State().CanUndo }

// CanRedo reports whether Redo would do anything.
func (d *Document) CanRedo() bool { return d.State().CanRedo }

// UndoInfo lists applied entries in the scope of Undo, oldest first.
func (d *Document) UndoInfo() []history.OperationInfo {
	if d.pageHistory != nil {
		return d.pageHistory.UndoInfo(d.scope())
	}
	return d.docHistory.UndoInfo()
}

// RedoInfo lists redoable entries in the scope of Redo, next first.
func (d *Document) RedoInfo() []history.OperationInfo {
	if d.pageHistory != nil {
		return d.pageHistory.RedoInfo(d.scope())
	}
	return d.docHistory.RedoInfo()
}

// ClearHistory drops every recorded entry.
func (d *Document) ClearHistory() {
	if d.pageHistory != nil {
		for _, id := range d.pageHistory.Pages() {
			d.pageHistory.Clear(id)
		}
		return
	}
	d.docHistory.Clear()
}

// Close releases the document's history. Edits after Close fail with ErrClosed.
func (d *Document) Close() {
	if d.closed {
		return
	}
	if d.pageHistory != nil {
		for _, id := range d.pageHistory.Pages() {
			d.pageHistory.Forget(id)
		}
	} else {
		d.docHistory.Clear()
	}
	d.closed = true
}

// Closed reports whether Close was called.
func (d *Document) Closed() bool { return d.closed }

func (d *Document) historyChanged(host history.HostID, s history.State) {
	if d.notifier != nil {
		d.notifier.HistoryChanged(host, s)
	}
	d.publish(context.Background(), event.NewEvent(event.TopicHistoryChanged, event.HistoryChanged{
		Document: string(d.id),
		Host:     string(host),
		CanUndo:  s.CanUndo,
		CanRedo:  s.CanRedo,
	}, "history"))
}

func (d *Document) publish(ctx context.Context, ev any) {
	if d.bus == nil {
		return
	}
	if err := d.bus.Publish(ctx, ev); err != nil {
		d.logger.Warn("publish: %v", err)
	}
}

// DocumentRecord is the exported form of a document.
type DocumentRecord struct {
	ID       history.HostID       `json:"id"`
	Name     string               `json:"name,omitempty"`
	Strategy config.Strategy      `json:"strategy"`
	Active   history.HostID       `json:"active"`
	Pages    []history.PageRecord `json:"pages"`
}

// Export serializes every page.
func (d *Document) Export() (DocumentRecord, error) {
	rec := DocumentRecord{ID: d.id, Name: d.name, Strategy: d.strategy, Active: d.active}
	for _, p := range d.pages {
		pr, err := p.record()
		if err != nil {
			return DocumentRecord{}, err
		}
		rec.Pages = append(rec.Pages, pr)
	}
	return rec, nil
}

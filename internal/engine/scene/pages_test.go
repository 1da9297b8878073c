package scene

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/dshills/drawstorm/internal/config"
	"github.com/dshills/drawstorm/internal/engine/history"
	"github.com/dshills/drawstorm/internal/event"
	"github.com/dshills/drawstorm/internal/event/topic"
)

func pageIDs(d *Document) []history.HostID {
	var ids []history.HostID
	for _, p := range d.Pages() {
		ids = append(ids, p.ID())
	}
	return ids
}

func createPage(t *testing.T, d *Document, id history.HostID) *Page {
	t.Helper()
	p, err := d.CreatePage(PageSpec{ID: id}, d.PageCount())
	if err != nil {
		t.Fatalf("CreatePage(%s): %v", id, err)
	}
	return p
}

func TestCrossPageUndoActivatesPage(t *testing.T) {
	bus := event.NewBus()
	var topics []topic.Topic
	if _, err := bus.SubscribeFunc(event.TopicPageWildcard, func(_ context.Context, ev any) error {
		topics = append(topics, ev.(event.TopicProvider).EventTopic())
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	d, _ := newDoc(t, WithBus(bus))
	createPage(t, d, "p2")
	if err := d.SwitchPage(ctx, "p2"); err != nil {
		t.Fatal(err)
	}
	addShape(t, d, "p2", rect("b", 0, 0))
	if err := d.SwitchPage(ctx, "p1"); err != nil {
		t.Fatal(err)
	}
	topics = nil

	undo(t, d)
	if d.Active().ID() != "p2" {
		t.Fatalf("Active() = %s, want p2", d.Active().ID())
	}
	want := []topic.Topic{event.TopicPageChanged, event.TopicPageActivated}
	if !slices.Equal(topics, want) {
		t.Errorf("events = %v, want %v", topics, want)
	}
	p2, _ := d.PageByID("p2")
	if p2.Len() != 0 {
		t.Error("shape on p2 not removed")
	}

	undo(t, d)
	if d.PageCount() != 1 || d.Active().ID() != "p1" {
		t.Fatalf("page add not undone: pages=%v active=%s", pageIDs(d), d.Active().ID())
	}

	d.Redo(ctx)
	d.Redo(ctx)
	p2, ok := d.PageByID("p2")
	if !ok || p2.Len() != 1 || d.Active().ID() != "p2" {
		t.Errorf("redo did not restore p2 and its shape: pages=%v", pageIDs(d))
	}
}

func TestActivatePage(t *testing.T) {
	bus := event.NewBus()
	var n int
	if _, err := bus.SubscribeFunc(event.TopicPageWildcard, func(context.Context, any) error {
		n++
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	d, _ := newDoc(t, WithBus(bus))
	createPage(t, d, "p2")

	if err := d.ActivatePage(context.Background(), "p1"); err != nil || n != 0 {
		t.Errorf("activating the active page: err=%v events=%d", err, n)
	}
	if err := d.ActivatePage(context.Background(), "nope"); !errors.Is(err, ErrPageNotFound) {
		t.Errorf("ActivatePage(nope) = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.ActivatePage(ctx, "p2"); !errors.Is(err, context.Canceled) {
		t.Errorf("ActivatePage with cancelled context = %v", err)
	}
	if d.Active().ID() != "p1" {
		t.Error("failed activation switched pages")
	}
}

func TestDeletePageUndo(t *testing.T) {
	d, _ := newDoc(t)
	createPage(t, d, "p2")
	addShape(t, d, "p2", rect("b", 4, 4))

	if err := d.DeletePage("p2"); err != nil {
		t.Fatal(err)
	}
	if d.PageCount() != 1 {
		t.Fatalf("PageCount() = %d, want 1", d.PageCount())
	}
	if err := d.DeletePage("p1"); !errors.Is(err, ErrLastPage) {
		t.Errorf("DeletePage(last) = %v, want ErrLastPage", err)
	}
	if err := d.DeletePage("nope"); !errors.Is(err, ErrPageNotFound) {
		t.Errorf("DeletePage(nope) = %v", err)
	}

	undo(t, d)
	p2, ok := d.PageByID("p2")
	if !ok {
		t.Fatal("page not restored")
	}
	if b, ok := p2.Shape("b"); !ok || b.X() != 4 {
		t.Errorf("shape not restored with page")
	}
	if idx, _ := d.PageIndex("p2"); idx != 1 {
		t.Errorf("PageIndex(p2) = %d, want 1", idx)
	}
}

func TestReorderPages(t *testing.T) {
	d, _ := newDoc(t)
	createPage(t, d, "p2")
	createPage(t, d, "p3")

	if err := d.ReorderPages("p3", "p2", "p1"); err != nil {
		t.Fatal(err)
	}
	if got := pageIDs(d); !slices.Equal(got, []history.HostID{"p3", "p2", "p1"}) {
		t.Fatalf("order = %v", got)
	}
	info, _ := d.DocumentHistory().PeekUndo()
	if info.Description != "Reorder pages" || info.Kind != history.KindTransaction {
		t.Errorf("PeekUndo() = %+v", info)
	}

	undo(t, d)
	if got := pageIDs(d); !slices.Equal(got, []history.HostID{"p1", "p2", "p3"}) {
		t.Fatalf("order after undo = %v", got)
	}
	d.Redo(context.Background())
	if got := pageIDs(d); !slices.Equal(got, []history.HostID{"p3", "p2", "p1"}) {
		t.Fatalf("order after redo = %v", got)
	}

	if err := d.ReorderPage("p1", 0); err != nil {
		t.Fatal(err)
	}
	if got := pageIDs(d); !slices.Equal(got, []history.HostID{"p1", "p3", "p2"}) {
		t.Fatalf("order = %v", got)
	}
	undo(t, d)
	if got := pageIDs(d); !slices.Equal(got, []history.HostID{"p3", "p2", "p1"}) {
		t.Errorf("order after undo = %v", got)
	}

	if err := d.ReorderPages("p1", "nope"); !errors.Is(err, ErrPageNotFound) {
		t.Errorf("ReorderPages(nope) = %v", err)
	}
	before := len(d.UndoInfo())
	if err := d.ReorderPages(pageIDs(d)...); err != nil {
		t.Fatal(err)
	}
	if len(d.UndoInfo()) != before {
		t.Error("no-op reorder recorded")
	}
}

func TestUnrecordedPageRemovalSkipsEntries(t *testing.T) {
	d, _ := newDoc(t)
	createPage(t, d, "p2")
	addShape(t, d, "p2", rect("b", 0, 0))

	d.SetHistoryEnabled(false)
	if err := d.DeletePage("p2"); err != nil {
		t.Fatal(err)
	}
	d.SetHistoryEnabled(true)
	if len(d.UndoInfo()) != 2 {
		t.Fatalf("page removal with history disabled was recorded: %+v", d.UndoInfo())
	}

	undo(t, d)
	undo(t, d)
	if d.CanUndo() || d.PageCount() != 1 {
		t.Errorf("CanUndo=%v pages=%v", d.CanUndo(), pageIDs(d))
	}
}

func TestPageStrategyScopesUndo(t *testing.T) {
	ctx := context.Background()
	d, _ := newDoc(t, WithStrategy(config.StrategyPage))
	if d.PageHistory() == nil || d.DocumentHistory() != nil {
		t.Fatal("page strategy should own a PageHistory")
	}
	createPage(t, d, "p2")
	addShape(t, d, "p1", rect("a", 0, 0))
	addShape(t, d, "p2", rect("b", 0, 0))

	undo(t, d)
	p1, _ := d.PageByID("p1")
	p2, _ := d.PageByID("p2")
	if p1.Len() != 0 || p2.Len() != 1 {
		t.Fatalf("undo should stay on the active page: p1=%d p2=%d", p1.Len(), p2.Len())
	}
	if d.CanUndo() || !d.CanRedo() {
		t.Error("p1 availability wrong")
	}
	if !d.PageHistory().CanUndo("p2") || !d.PageHistory().CanUndo("doc") {
		t.Error("other timelines should be untouched")
	}

	if err := d.UndoHost(ctx, "doc"); err != nil {
		t.Fatal(err)
	}
	if d.PageCount() != 1 {
		t.Fatalf("page add not undone: %v", pageIDs(d))
	}
	if ok, err := d.RedoHost(ctx, "doc"); err != nil || !ok {
		t.Fatalf("RedoHost(doc) = %v, %v", ok, err)
	}
	p2, ok := d.PageByID("p2")
	if !ok || p2.Len() != 1 {
		t.Fatal("page and shape not restored")
	}
	if err := d.UndoHost(ctx, "nope"); !errors.Is(err, ErrPageNotFound) {
		t.Errorf("UndoHost(nope) = %v", err)
	}

	if err := d.SwitchPage(ctx, "p2"); err != nil {
		t.Fatal(err)
	}
	undo(t, d)
	if p2.Len() != 0 {
		t.Error("undo on p2 did not remove its shape")
	}
	if len(d.UndoInfo()) != 0 || len(d.RedoInfo()) != 1 {
		t.Errorf("undo=%v redo=%v", d.UndoInfo(), d.RedoInfo())
	}

	d.ClearHistory()
	for _, id := range []history.HostID{"doc", "p1", "p2"} {
		if s := d.PageHistory().State(id); s.CanUndo || s.CanRedo {
			t.Errorf("ClearHistory left %s with %+v", id, s)
		}
	}
}

func TestPageStrategyEventsNamePage(t *testing.T) {
	bus := event.NewBus()
	var hosts []string
	if _, err := bus.SubscribeFunc(event.TopicHistoryChanged, func(_ context.Context, ev any) error {
		hc, _ := event.PayloadAs[event.HistoryChanged](ev)
		hosts = append(hosts, hc.Host)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	d, p := newDoc(t, WithStrategy(config.StrategyPage), WithBus(bus))
	addShape(t, d, p.ID(), rect("a", 0, 0))
	createPage(t, d, "p2")
	if !slices.Equal(hosts, []string{"p1", "doc"}) {
		t.Errorf("hosts = %v, want [p1 doc]", hosts)
	}
}

package api

import (
	"context"
	"errors"
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/drawstorm/internal/engine/history"
	"github.com/dshills/drawstorm/internal/engine/scene"
)

// failingHistory returns an error from Undo.
type failingHistory struct {
	depth int
}

func (f *failingHistory) Undo(context.Context) error        { return errors.New("page gone") }
func (f *failingHistory) Redo(context.Context) bool         { return false }
func (f *failingHistory) CanUndo() bool                     { return true }
func (f *failingHistory) CanRedo() bool                     { return false }
func (f *failingHistory) BeginGesture()                     { f.depth++ }
func (f *failingHistory) EndGesture()                       { f.depth-- }
func (f *failingHistory) UndoInfo() []history.OperationInfo { return nil }
func (f *failingHistory) RedoInfo() []history.OperationInfo { return nil }

func setupDocument(t *testing.T) (*lua.LState, *scene.Document) {
	t.Helper()

	doc := scene.New(scene.WithID("doc"), scene.WithFirstPage(scene.PageSpec{ID: "p1", Name: "One"}))
	ctx := &Context{Ctx: context.Background(), History: doc, Scene: doc}

	L := setupModules(t, ctx, CapabilityHistory, CapabilityScene)
	return L, doc
}

func setupModules(t *testing.T, ctx *Context, granted ...Capability) *lua.LState {
	t.Helper()

	r, err := DefaultRegistry(ctx)
	if err != nil {
		t.Fatalf("DefaultRegistry error = %v", err)
	}
	L := NewState()
	t.Cleanup(L.Close)
	if err := r.InjectAll(L, granted...); err != nil {
		t.Fatalf("InjectAll error = %v", err)
	}
	if err := L.DoString(`ds = require("ds")`); err != nil {
		t.Fatalf("require error = %v", err)
	}
	return L
}

func TestHistoryModuleName(t *testing.T) {
	mod := NewHistoryModule(&Context{})
	if mod.Name() != "history" {
		t.Errorf("Name() = %q, want %q", mod.Name(), "history")
	}
	if mod.RequiredCapability() != CapabilityHistory {
		t.Errorf("RequiredCapability() = %q", mod.RequiredCapability())
	}
}

func TestHistoryUndoRedo(t *testing.T) {
	L, doc := setupDocument(t)

	err := L.DoString(`
		before = ds.history.can_undo()
		ds.scene.add(nil, {id = "a", kind = "rect", props = {x = 0, y = 0}})
		ds.scene.move(nil, 5, 0, "a")
		after = ds.history.can_undo()
		undone = ds.history.undo()
		redoable = ds.history.can_redo()
		redone = ds.history.redo()
	`)
	if err != nil {
		t.Fatalf("DoString error = %v", err)
	}

	if L.GetGlobal("before") != lua.LFalse || L.GetGlobal("after") != lua.LTrue {
		t.Errorf("can_undo before=%v after=%v", L.GetGlobal("before"), L.GetGlobal("after"))
	}
	if L.GetGlobal("undone") != lua.LTrue || L.GetGlobal("redoable") != lua.LTrue || L.GetGlobal("redone") != lua.LTrue {
		t.Error("undo/redo should report true")
	}
	s, _ := doc.Active().Shape("a")
	if s.X() != 5 {
		t.Errorf("X() = %v, want 5", s.X())
	}
}

func TestHistoryUndoNothing(t *testing.T) {
	L, _ := setupDocument(t)

	if err := L.DoString(`u = ds.history.undo(); r = ds.history.redo()`); err != nil {
		t.Fatalf("DoString error = %v", err)
	}
	if L.GetGlobal("u") != lua.LFalse || L.GetGlobal("r") != lua.LFalse {
		t.Error("empty history should report false")
	}
}

func TestHistoryUndoError(t *testing.T) {
	L := setupModules(t, &Context{History: &failingHistory{}}, CapabilityHistory)

	err := L.DoString(`ds.history.undo()`)
	if err == nil || !strings.Contains(err.Error(), "page gone") {
		t.Errorf("undo error = %v, want page gone", err)
	}
}

func TestHistoryGesture(t *testing.T) {
	L, doc := setupDocument(t)

	err := L.DoString(`
		ds.scene.add(nil, {id = "a", kind = "rect", props = {x = 0, y = 0}})
		n = ds.history.gesture(function()
			ds.scene.move(nil, 1, 0, "a")
			ds.scene.move(nil, 1, 0, "a")
			return 2
		end)
		ds.history.undo()
	`)
	if err != nil {
		t.Fatalf("DoString error = %v", err)
	}
	if L.GetGlobal("n") != lua.LNumber(2) {
		t.Errorf("gesture returned %v, want 2", L.GetGlobal("n"))
	}
	s, _ := doc.Active().Shape("a")
	if s.X() != 0 {
		t.Errorf("X() = %v, want 0 after undoing the gesture", s.X())
	}
}

func TestHistoryGestureClosesOnError(t *testing.T) {
	h := &failingHistory{}
	L := setupModules(t, &Context{History: h}, CapabilityHistory)

	err := L.DoString(`ds.history.gesture(function() error("boom") end)`)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("gesture error = %v, want boom", err)
	}
	if h.depth != 0 {
		t.Errorf("gesture depth = %d, want 0", h.depth)
	}
}

func TestHistoryBeginEndGesture(t *testing.T) {
	L, doc := setupDocument(t)

	err := L.DoString(`
		ds.history.begin_gesture()
		ds.scene.add(nil, {id = "a", kind = "rect"})
		ds.scene.add(nil, {id = "b", kind = "rect"})
		ds.history.end_gesture()
		ds.history.undo()
	`)
	if err != nil {
		t.Fatalf("DoString error = %v", err)
	}
	if doc.Active().Len() != 0 {
		t.Errorf("Len() = %d, want 0", doc.Active().Len())
	}
}

func TestHistoryEntries(t *testing.T) {
	L, _ := setupDocument(t)

	err := L.DoString(`
		ds.scene.add(nil, {id = "a", kind = "rect"})
		ds.scene.move(nil, 1, 1, "a")
		ds.history.undo()
		undo, redo = ds.history.entries()
		nundo, nredo = #undo, #redo
		kind = undo[1].kind
		host = undo[1].host
		next = redo[1].kind
	`)
	if err != nil {
		t.Fatalf("DoString error = %v", err)
	}
	if L.GetGlobal("nundo") != lua.LNumber(1) || L.GetGlobal("nredo") != lua.LNumber(1) {
		t.Errorf("entries = %v/%v, want 1/1", L.GetGlobal("nundo"), L.GetGlobal("nredo"))
	}
	if L.GetGlobal("kind").String() != "add" || L.GetGlobal("host").String() != "p1" {
		t.Errorf("undo[1] = %v on %v", L.GetGlobal("kind"), L.GetGlobal("host"))
	}
	if L.GetGlobal("next").String() != "position" {
		t.Errorf("redo[1].kind = %v, want position", L.GetGlobal("next"))
	}
}

func TestHistoryWithoutDocument(t *testing.T) {
	L := setupModules(t, &Context{}, CapabilityHistory)

	err := L.DoString(`
		a = ds.history.undo()
		b = ds.history.redo()
		c = ds.history.can_undo()
		u, r = ds.history.entries()
		n = #u + #r
	`)
	if err != nil {
		t.Fatalf("DoString error = %v", err)
	}
	for _, name := range []string{"a", "b", "c"} {
		if L.GetGlobal(name) != lua.LFalse {
			t.Errorf("%s = %v, want false", name, L.GetGlobal(name))
		}
	}
	if L.GetGlobal("n") != lua.LNumber(0) {
		t.Errorf("entries without document = %v", L.GetGlobal("n"))
	}
}

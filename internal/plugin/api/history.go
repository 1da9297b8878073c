package api

import (
	"context"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/drawstorm/internal/engine/history"
)

// HistoryProvider is the undo surface of a document.
type HistoryProvider interface {
	Undo(ctx context.Context) error
	Redo(ctx context.Context) bool
	CanUndo() bool
	CanRedo() bool
	BeginGesture()
	EndGesture()
	UndoInfo() []history.OperationInfo
	RedoInfo() []history.OperationInfo
}

// HistoryModule implements the ds.history API module.
type HistoryModule struct {
	ctx *Context
}

// NewHistoryModule creates a new history module.
func NewHistoryModule(ctx *Context) *HistoryModule {
	return &HistoryModule{ctx: ctx}
}

// Name returns the module name.
func (m *HistoryModule) Name() string {
	return "history"
}

// RequiredCapability returns the capability required for this module.
func (m *HistoryModule) RequiredCapability() Capability {
	return CapabilityHistory
}

// Register registers the module into the Lua state.
func (m *HistoryModule) Register(L *lua.LState) error {
	mod := L.NewTable()

	L.SetField(mod, "undo", L.NewFunction(m.undo))
	L.SetField(mod, "redo", L.NewFunction(m.redo))
	L.SetField(mod, "can_undo", L.NewFunction(m.canUndo))
	L.SetField(mod, "can_redo", L.NewFunction(m.canRedo))
	L.SetField(mod, "begin_gesture", L.NewFunction(m.beginGesture))
	L.SetField(mod, "end_gesture", L.NewFunction(m.endGesture))
	L.SetField(mod, "gesture", L.NewFunction(m.gesture))
	L.SetField(mod, "entries", L.NewFunction(m.entries))

	L.SetGlobal("_ds_history", mod)
	return nil
}

// undo() -> bool
// Reverts the newest batch. Returns false if there was nothing to undo.
func (m *HistoryModule) undo(L *lua.LState) int {
	h := m.ctx.History
	if h == nil || !h.CanUndo() {
		L.Push(lua.LFalse)
		return 1
	}
	if err := h.Undo(m.ctx.context()); err != nil {
		L.RaiseError("undo: %v", err)
		return 0
	}
	L.Push(lua.LTrue)
	return 1
}

// redo() -> bool
// Reapplies the next batch. Returns false if there was nothing to redo.
func (m *HistoryModule) redo(L *lua.LState) int {
	h := m.ctx.History
	if h == nil {
		L.Push(lua.LFalse)
		return 1
	}
	L.Push(lua.LBool(h.Redo(m.ctx.context())))
	return 1
}

// can_undo() -> bool
func (m *HistoryModule) canUndo(L *lua.LState) int {
	L.Push(lua.LBool(m.ctx.History != nil && m.ctx.History.CanUndo()))
	return 1
}

// can_redo() -> bool
func (m *HistoryModule) canRedo(L *lua.LState) int {
	L.Push(lua.LBool(m.ctx.History != nil && m.ctx.History.CanRedo()))
	return 1
}

// begin_gesture()
// Opens a gesture; edits until end_gesture undo as one step.
func (m *HistoryModule) beginGesture(L *lua.LState) int {
	if m.ctx.History != nil {
		m.ctx.History.BeginGesture()
	}
	return 0
}

// end_gesture()
func (m *HistoryModule) endGesture(L *lua.LState) int {
	if m.ctx.History != nil {
		m.ctx.History.EndGesture()
	}
	return 0
}

// gesture(fn) -> ...
// Calls fn inside a gesture. The gesture is closed even if fn raises.
func (m *HistoryModule) gesture(L *lua.LState) int {
	fn := L.CheckFunction(1)
	if m.ctx.History != nil {
		m.ctx.History.BeginGesture()
		defer m.ctx.History.EndGesture()
	}

	top := L.GetTop()
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		L.RaiseError("gesture: %v", err)
		return 0
	}
	return L.GetTop() - top
}

// entries() -> {{description, kind, host, batch}, ...}, {...}
// Returns the undoable entries, oldest first, and the redoable ones, next first.
func (m *HistoryModule) entries(L *lua.LState) int {
	if m.ctx.History == nil {
		L.Push(L.NewTable())
		L.Push(L.NewTable())
		return 2
	}
	L.Push(infoTable(L, m.ctx.History.UndoInfo()))
	L.Push(infoTable(L, m.ctx.History.RedoInfo()))
	return 2
}

func infoTable(L *lua.LState, infos []history.OperationInfo) *lua.LTable {
	tbl := L.NewTable()
	for i, info := range infos {
		entry := L.NewTable()
		L.SetField(entry, "description", lua.LString(info.Description))
		L.SetField(entry, "kind", lua.LString(info.Kind.String()))
		L.SetField(entry, "host", lua.LString(string(info.Host)))
		L.SetField(entry, "batch", lua.LString(string(info.Batch)))
		tbl.RawSetInt(i+1, entry)
	}
	return tbl
}

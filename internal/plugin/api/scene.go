package api

import (
	"context"

	"github.com/tidwall/gjson"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/drawstorm/internal/engine/history"
	"github.com/dshills/drawstorm/internal/engine/scene"
)

// SceneProvider is the editing surface of a document.
type SceneProvider interface {
	Active() *scene.Page
	PageByID(id history.HostID) (*scene.Page, bool)
	Pages() []*scene.Page
	SwitchPage(ctx context.Context, id history.HostID) error
	CreatePage(spec scene.PageSpec, index int) (*scene.Page, error)
	DeletePage(id history.HostID) error
	ReorderPages(order ...history.HostID) error

	AddShape(pageID history.HostID, spec scene.ShapeSpec) (*scene.Shape, error)
	Move(pageID history.HostID, dx, dy float64, ids ...history.ObjectID) error
	MoveTo(pageID history.HostID, id, container history.ObjectID, x, y float64) error
	Resize(pageID history.HostID, id history.ObjectID, width, height float64) error
	Rotate(pageID history.HostID, id history.ObjectID, degrees float64) error
	Scale(pageID history.HostID, factor float64, ids ...history.ObjectID) error
	Connect(pageID history.HostID, lineID history.ObjectID, end string, target history.ObjectID, connector string) error
	Disconnect(pageID history.HostID, lineID history.ObjectID, end string) error
	SetData(pageID history.HostID, path string, value any, ids ...history.ObjectID) error
	SetLayout(pageID history.HostID, path string, value any, ids ...history.ObjectID) error
	DeleteShapes(pageID history.HostID, ids ...history.ObjectID) error
	Restack(pageID history.HostID, id history.ObjectID, index int) error
	Draw(pageID history.HostID, strokeID history.ObjectID, points []float64) (string, error)
	Erase(pageID history.HostID, strokeID history.ObjectID, segmentIDs ...string) error
}

// SceneModule implements the ds.scene API module. Every function taking a
// page accepts nil for the active page.
type SceneModule struct {
	ctx *Context
}

// NewSceneModule creates a new scene module.
func NewSceneModule(ctx *Context) *SceneModule {
	return &SceneModule{ctx: ctx}
}

// Name returns the module name.
func (m *SceneModule) Name() string {
	return "scene"
}

// RequiredCapability returns the capability required for this module.
func (m *SceneModule) RequiredCapability() Capability {
	return CapabilityScene
}

// Register registers the module into the Lua state.
func (m *SceneModule) Register(L *lua.LState) error {
	mod := L.NewTable()

	// Pages
	L.SetField(mod, "active_page", L.NewFunction(m.activePage))
	L.SetField(mod, "pages", L.NewFunction(m.pages))
	L.SetField(mod, "switch_page", L.NewFunction(m.switchPage))
	L.SetField(mod, "create_page", L.NewFunction(m.createPage))
	L.SetField(mod, "delete_page", L.NewFunction(m.deletePage))
	L.SetField(mod, "reorder_pages", L.NewFunction(m.reorderPages))

	// Shapes
	L.SetField(mod, "add", L.NewFunction(m.add))
	L.SetField(mod, "get", L.NewFunction(m.get))
	L.SetField(mod, "shapes", L.NewFunction(m.shapes))
	L.SetField(mod, "move", L.NewFunction(m.move))
	L.SetField(mod, "move_to", L.NewFunction(m.moveTo))
	L.SetField(mod, "resize", L.NewFunction(m.resize))
	L.SetField(mod, "rotate", L.NewFunction(m.rotate))
	L.SetField(mod, "scale", L.NewFunction(m.scale))
	L.SetField(mod, "connect", L.NewFunction(m.connect))
	L.SetField(mod, "disconnect", L.NewFunction(m.disconnect))
	L.SetField(mod, "set", L.NewFunction(m.set))
	L.SetField(mod, "set_layout", L.NewFunction(m.setLayout))
	L.SetField(mod, "delete", L.NewFunction(m.delete))
	L.SetField(mod, "restack", L.NewFunction(m.restack))

	// Freeline strokes
	L.SetField(mod, "draw", L.NewFunction(m.draw))
	L.SetField(mod, "erase", L.NewFunction(m.erase))

	L.SetGlobal("_ds_scene", mod)
	return nil
}

func (m *SceneModule) provider(L *lua.LState) SceneProvider {
	if m.ctx.Scene == nil {
		L.RaiseError("no document open")
	}
	return m.ctx.Scene
}

// pageArg returns the page id at n, defaulting to the active page.
func (m *SceneModule) pageArg(L *lua.LState, n int) history.HostID {
	if L.Get(n) == lua.LNil {
		return m.provider(L).Active().ID()
	}
	return history.HostID(L.CheckString(n))
}

// idArgs collects shape ids from n onwards; each argument is an id or an
// array of ids.
func idArgs(L *lua.LState, n int) []history.ObjectID {
	var ids []history.ObjectID
	for i := n; i <= L.GetTop(); i++ {
		if tbl, ok := L.Get(i).(*lua.LTable); ok {
			for _, s := range stringList(L, tbl) {
				ids = append(ids, history.ObjectID(s))
			}
			continue
		}
		ids = append(ids, history.ObjectID(L.CheckString(i)))
	}
	return ids
}

func check(L *lua.LState, op string, err error) {
	if err != nil {
		L.RaiseError("%s: %v", op, err)
	}
}

// active_page() -> id
func (m *SceneModule) activePage(L *lua.LState) int {
	L.Push(lua.LString(string(m.provider(L).Active().ID())))
	return 1
}

// pages() -> {id, ...}
func (m *SceneModule) pages(L *lua.LState) int {
	tbl := L.NewTable()
	for i, p := range m.provider(L).Pages() {
		tbl.RawSetInt(i+1, lua.LString(string(p.ID())))
	}
	L.Push(tbl)
	return 1
}

// switch_page(id)
func (m *SceneModule) switchPage(L *lua.LState) int {
	id := history.HostID(L.CheckString(1))
	check(L, "switch_page", m.provider(L).SwitchPage(m.ctx.context(), id))
	return 0
}

// create_page({id=, name=, index=}) -> id
// index is 1-based and defaults to after the last page.
func (m *SceneModule) createPage(L *lua.LState) int {
	opts := L.OptTable(1, L.NewTable())
	p := m.provider(L)
	spec := scene.PageSpec{
		ID:   history.HostID(lua.LVAsString(opts.RawGetString("id"))),
		Name: lua.LVAsString(opts.RawGetString("name")),
	}
	index := len(p.Pages())
	if n, ok := opts.RawGetString("index").(lua.LNumber); ok {
		index = int(n) - 1
	}
	page, err := p.CreatePage(spec, index)
	check(L, "create_page", err)
	L.Push(lua.LString(string(page.ID())))
	return 1
}

// delete_page(id)
func (m *SceneModule) deletePage(L *lua.LState) int {
	check(L, "delete_page", m.provider(L).DeletePage(history.HostID(L.CheckString(1))))
	return 0
}

// reorder_pages({id, ...})
func (m *SceneModule) reorderPages(L *lua.LState) int {
	ids := stringList(L, L.CheckTable(1))
	order := make([]history.HostID, len(ids))
	for i, id := range ids {
		order[i] = history.HostID(id)
	}
	check(L, "reorder_pages", m.provider(L).ReorderPages(order...))
	return 0
}

// add(page, {id=, kind=, container=, props={...}, segments={{...}}}) -> id
func (m *SceneModule) add(L *lua.LState) int {
	page := m.pageArg(L, 1)
	tbl := L.CheckTable(2)

	spec := scene.ShapeSpec{
		ID:        history.ObjectID(lua.LVAsString(tbl.RawGetString("id"))),
		Kind:      scene.Kind(lua.LVAsString(tbl.RawGetString("kind"))),
		Container: history.ObjectID(lua.LVAsString(tbl.RawGetString("container"))),
	}
	if props, ok := tbl.RawGetString("props").(*lua.LTable); ok {
		if kv, ok := toGo(props).(map[string]any); ok {
			spec.Props = kv
		}
	}
	if segs, ok := tbl.RawGetString("segments").(*lua.LTable); ok {
		for i := 1; i <= segs.MaxN(); i++ {
			pts, ok := segs.RawGetInt(i).(*lua.LTable)
			if !ok {
				L.ArgError(2, "segments must be arrays of numbers")
				return 0
			}
			spec.Segments = append(spec.Segments, history.Segment{
				ID:     string(spec.ID) + "-" + lua.LNumber(i).String(),
				Points: numberList(L, pts),
			})
		}
	}

	s, err := m.provider(L).AddShape(page, spec)
	check(L, "add", err)
	L.Push(lua.LString(string(s.ObjectID())))
	return 1
}

// get(page, id [, path]) -> value
// Returns one property, or every property as a table when path is omitted.
func (m *SceneModule) get(L *lua.LState) int {
	pageID := m.pageArg(L, 1)
	id := history.ObjectID(L.CheckString(2))
	path := L.OptString(3, "")

	p, ok := m.provider(L).PageByID(pageID)
	if !ok {
		L.RaiseError("get: page %s not found", pageID)
		return 0
	}
	s, ok := p.Shape(id)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	r := gjson.Parse(s.Props())
	if path != "" {
		r = s.Get(path)
	}
	L.Push(toLua(L, r.Value()))
	return 1
}

// shapes(page) -> {id, ...}
// Lists every shape depth first in stacking order.
func (m *SceneModule) shapes(L *lua.LState) int {
	pageID := m.pageArg(L, 1)
	p, ok := m.provider(L).PageByID(pageID)
	if !ok {
		L.RaiseError("shapes: page %s not found", pageID)
		return 0
	}
	tbl := L.NewTable()
	p.Walk(func(s *scene.Shape, _ int) {
		tbl.Append(lua.LString(string(s.ObjectID())))
	})
	L.Push(tbl)
	return 1
}

// move(page, dx, dy, id...)
func (m *SceneModule) move(L *lua.LState) int {
	page := m.pageArg(L, 1)
	dx, dy := float64(L.CheckNumber(2)), float64(L.CheckNumber(3))
	check(L, "move", m.provider(L).Move(page, dx, dy, idArgs(L, 4)...))
	return 0
}

// move_to(page, id, x, y [, container])
func (m *SceneModule) moveTo(L *lua.LState) int {
	page := m.pageArg(L, 1)
	id := history.ObjectID(L.CheckString(2))
	x, y := float64(L.CheckNumber(3)), float64(L.CheckNumber(4))
	container := history.ObjectID(L.OptString(5, ""))
	check(L, "move_to", m.provider(L).MoveTo(page, id, container, x, y))
	return 0
}

// resize(page, id, width, height)
func (m *SceneModule) resize(L *lua.LState) int {
	page := m.pageArg(L, 1)
	id := history.ObjectID(L.CheckString(2))
	w, h := float64(L.CheckNumber(3)), float64(L.CheckNumber(4))
	check(L, "resize", m.provider(L).Resize(page, id, w, h))
	return 0
}

// rotate(page, id, degrees)
func (m *SceneModule) rotate(L *lua.LState) int {
	page := m.pageArg(L, 1)
	id := history.ObjectID(L.CheckString(2))
	check(L, "rotate", m.provider(L).Rotate(page, id, float64(L.CheckNumber(3))))
	return 0
}

// scale(page, factor, id...)
func (m *SceneModule) scale(L *lua.LState) int {
	page := m.pageArg(L, 1)
	factor := float64(L.CheckNumber(2))
	check(L, "scale", m.provider(L).Scale(page, factor, idArgs(L, 3)...))
	return 0
}

// connect(page, line, end, target [, connector])
func (m *SceneModule) connect(L *lua.LState) int {
	page := m.pageArg(L, 1)
	line := history.ObjectID(L.CheckString(2))
	end := L.CheckString(3)
	target := history.ObjectID(L.CheckString(4))
	connector := L.OptString(5, "")
	check(L, "connect", m.provider(L).Connect(page, line, end, target, connector))
	return 0
}

// disconnect(page, line, end)
func (m *SceneModule) disconnect(L *lua.LState) int {
	page := m.pageArg(L, 1)
	line := history.ObjectID(L.CheckString(2))
	check(L, "disconnect", m.provider(L).Disconnect(page, line, L.CheckString(3)))
	return 0
}

// set(page, path, value, id...)
func (m *SceneModule) set(L *lua.LState) int {
	page := m.pageArg(L, 1)
	path := L.CheckString(2)
	value := toGo(L.CheckAny(3))
	check(L, "set", m.provider(L).SetData(page, path, value, idArgs(L, 4)...))
	return 0
}

// set_layout(page, path, value, id...)
func (m *SceneModule) setLayout(L *lua.LState) int {
	page := m.pageArg(L, 1)
	path := L.CheckString(2)
	value := toGo(L.CheckAny(3))
	check(L, "set_layout", m.provider(L).SetLayout(page, path, value, idArgs(L, 4)...))
	return 0
}

// delete(page, id...)
func (m *SceneModule) delete(L *lua.LState) int {
	page := m.pageArg(L, 1)
	check(L, "delete", m.provider(L).DeleteShapes(page, idArgs(L, 2)...))
	return 0
}

// restack(page, id, index)
// index is 1-based among the shape's siblings, bottom first.
func (m *SceneModule) restack(L *lua.LState) int {
	page := m.pageArg(L, 1)
	id := history.ObjectID(L.CheckString(2))
	index := L.CheckInt(3)
	if index < 1 {
		L.ArgError(3, "index must be positive")
		return 0
	}
	check(L, "restack", m.provider(L).Restack(page, id, index-1))
	return 0
}

// draw(page, stroke, {x1, y1, x2, y2, ...}) -> segment id
func (m *SceneModule) draw(L *lua.LState) int {
	page := m.pageArg(L, 1)
	stroke := history.ObjectID(L.CheckString(2))
	points := numberList(L, L.CheckTable(3))
	seg, err := m.provider(L).Draw(page, stroke, points)
	check(L, "draw", err)
	L.Push(lua.LString(seg))
	return 1
}

// erase(page, stroke, segment...)
func (m *SceneModule) erase(L *lua.LState) int {
	page := m.pageArg(L, 1)
	stroke := history.ObjectID(L.CheckString(2))
	var segs []string
	for i := 3; i <= L.GetTop(); i++ {
		segs = append(segs, L.CheckString(i))
	}
	check(L, "erase", m.provider(L).Erase(page, stroke, segs...))
	return 0
}

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"testing"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// fakeObject stores its fields as a JSON document.
type fakeObject struct {
	id        ObjectID
	typ       string
	container ObjectID
	data      string
	segs      []Segment
	page      *fakePage

	preEdit   map[string]Value
	noDelete  bool
	setErr    error
	refreshes int
	onRefresh func()
}

func (o *fakeObject) ObjectID() ObjectID  { return o.id }

func (o *fakeObject) StackIndex() (int, bool) {
	if o.page == nil {
		return 0, false
	}
	return o.page.StackIndex(o.id)
}
func (o *fakeObject) Container() ObjectID { return o.container }

func (o *fakeObject) Field(p FieldPath) (Value, bool) {
	r := gjson.Get(o.data, p.String())
	if !r.Exists() {
		return "", false
	}
	return Value(r.Raw), true
}

func (o *fakeObject) SetField(p FieldPath, v Value) error {
	if o.setErr != nil {
		return o.setErr
	}
	var (
		data string
		err  error
	)
	if v.Exists() {
		data, err = sjson.SetRaw(o.data, p.String(), string(v))
	} else {
		data, err = sjson.Delete(o.data, p.String())
	}
	if err != nil {
		return err
	}
	o.data = data
	if o.page != nil {
		o.page.logf("set %s.%s", o.id, p)
	}
	return nil
}

func (o *fakeObject) PreEditValue(p FieldPath) (Value, bool) {
	v, ok := o.preEdit[p.String()]
	return v, ok
}

func (o *fakeObject) ResetPreEdit() { o.preEdit = nil }

func (o *fakeObject) Deletable() bool { return !o.noDelete }

func (o *fakeObject) Segments() []Segment { return cloneSegments(o.segs) }

func (o *fakeObject) SetSegments(segs []Segment) { o.segs = cloneSegments(segs) }

func (o *fakeObject) Refresh() {
	o.refreshes++
	if o.onRefresh != nil {
		o.onRefresh()
	}
}

// set assigns a JSON-encodable value, failing the test on error.
func (o *fakeObject) set(t *testing.T, path string, value any) {
	t.Helper()
	if err := o.SetField(MustPath(path), MustValue(value)); err != nil {
		t.Fatalf("set %s: %v", path, err)
	}
}

func (o *fakeObject) get(path string) string {
	v, _ := o.Field(MustPath(path))
	return string(v)
}

// fakePage is an in-memory ObjectHost.
type fakePage struct {
	id       HostID
	enabled  bool
	recorder Recorder

	objects  map[ObjectID]*fakeObject
	children map[ObjectID][]ObjectID
	bindings []Binding
	log      []string
}

func newFakePage(id HostID) *fakePage {
	return &fakePage{
		id:       id,
		enabled:  true,
		objects:  make(map[ObjectID]*fakeObject),
		children: make(map[ObjectID][]ObjectID),
	}
}

func (p *fakePage) logf(format string, args ...any) {
	p.log = append(p.log, fmt.Sprintf(format, args...))
}

// add places a new object at the top of container.
func (p *fakePage) add(id ObjectID, container ObjectID, data string) *fakeObject {
	obj := &fakeObject{id: id, typ: "shape", container: container, data: data, page: p}
	p.objects[id] = obj
	p.children[container] = append(p.children[container], id)
	return obj
}

func (p *fakePage) order(container ObjectID) []ObjectID {
	return slices.Clone(p.children[container])
}

func (p *fakePage) binding(line ObjectID, end string) (Binding, bool) {
	for _, b := range p.bindings {
		if b.LineID == line && b.End == end {
			return b, true
		}
	}
	return Binding{}, false
}

func (p *fakePage) HostID() HostID      { return p.id }
func (p *fakePage) EnableHistory() bool { return p.enabled }
func (p *fakePage) History() Recorder   { return p.recorder }

func (p *fakePage) FindObjectByID(id ObjectID) (Object, bool) {
	obj, ok := p.objects[id]
	if !ok {
		return nil, false
	}
	return obj, true
}

func (p *fakePage) Serialize(id ObjectID) (ObjectRecord, error) {
	obj, ok := p.objects[id]
	if !ok {
		return ObjectRecord{}, fmt.Errorf("%w: %s", ErrNoSuchObject, id)
	}
	idx, _ := p.StackIndex(id)
	rec := ObjectRecord{
		ID:        id,
		Type:      obj.typ,
		Container: obj.container,
		Index:     idx,
		Data:      json.RawMessage(obj.data),
		Segments:  cloneSegments(obj.segs),
	}
	for _, child := range p.children[id] {
		cr, err := p.Serialize(child)
		if err != nil {
			return ObjectRecord{}, err
		}
		rec.Children = append(rec.Children, cr)
	}
	return rec, nil
}

func (p *fakePage) Deserialize(rec ObjectRecord) (Object, error) {
	if _, ok := p.objects[rec.ID]; ok {
		return nil, fmt.Errorf("object %s exists", rec.ID)
	}
	obj := &fakeObject{
		id:        rec.ID,
		typ:       rec.Type,
		container: rec.Container,
		data:      string(rec.Data),
		segs:      cloneSegments(rec.Segments),
		page:      p,
	}
	p.objects[rec.ID] = obj
	list := p.children[rec.Container]
	idx := min(max(rec.Index, 0), len(list))
	p.children[rec.Container] = slices.Insert(list, idx, rec.ID)
	p.logf("create %s", rec.ID)
	for _, child := range rec.Children {
		child.Container = rec.ID
		if _, err := p.Deserialize(child); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func (p *fakePage) RemoveObject(id ObjectID) error {
	obj, ok := p.objects[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSuchObject, id)
	}
	for _, child := range slices.Clone(p.children[id]) {
		if err := p.RemoveObject(child); err != nil {
			return err
		}
	}
	delete(p.children, id)
	p.children[obj.container] = slices.DeleteFunc(p.children[obj.container], func(c ObjectID) bool { return c == id })
	delete(p.objects, id)
	p.bindings = slices.DeleteFunc(p.bindings, func(b Binding) bool {
		return b.LineID == id || b.TargetID == id
	})
	p.logf("remove %s", id)
	return nil
}

func (p *fakePage) StackIndex(id ObjectID) (int, bool) {
	obj, ok := p.objects[id]
	if !ok {
		return 0, false
	}
	idx := slices.Index(p.children[obj.container], id)
	return idx, idx >= 0
}

func (p *fakePage) MoveToIndex(id ObjectID, index int) error {
	obj, ok := p.objects[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSuchObject, id)
	}
	list := slices.DeleteFunc(p.children[obj.container], func(c ObjectID) bool { return c == id })
	index = min(max(index, 0), len(list))
	p.children[obj.container] = slices.Insert(list, index, id)
	p.logf("restack %s %d", id, index)
	return nil
}

func (p *fakePage) Reparent(id, container ObjectID) error {
	obj, ok := p.objects[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSuchObject, id)
	}
	p.children[obj.container] = slices.DeleteFunc(p.children[obj.container], func(c ObjectID) bool { return c == id })
	obj.container = container
	p.children[container] = append(p.children[container], id)
	p.logf("reparent %s", id)
	return nil
}

func (p *fakePage) BindingsTo(ids ...ObjectID) []Binding {
	var out []Binding
	for _, b := range p.bindings {
		if slices.Contains(ids, b.TargetID) {
			out = append(out, b)
		}
	}
	return out
}

func (p *fakePage) Bind(b Binding) error {
	for i, existing := range p.bindings {
		if existing.LineID == b.LineID && existing.End == b.End {
			p.bindings[i] = b
			return nil
		}
	}
	p.bindings = append(p.bindings, b)
	return nil
}

func (p *fakePage) Dependents(id ObjectID) []Object {
	var out []Object
	for _, b := range p.bindings {
		if b.TargetID == id {
			if line, ok := p.objects[b.LineID]; ok {
				out = append(out, line)
			}
		}
	}
	return out
}

// fakeDoc is an in-memory Document with explicit page activation.
type fakeDoc struct {
	id       HostID
	recorder Recorder

	pages   []*fakePage
	removed map[HostID]*fakePage
	active  HostID

	activations []HostID
	activateErr error
	log         []string
}

func newFakeDoc(id HostID, pages ...HostID) *fakeDoc {
	d := &fakeDoc{id: id, removed: make(map[HostID]*fakePage)}
	for _, pid := range pages {
		d.pages = append(d.pages, newFakePage(pid))
	}
	if len(pages) > 0 {
		d.active = pages[0]
	}
	return d
}

func (d *fakeDoc) page(id HostID) *fakePage {
	for _, p := range d.pages {
		if p.id == id {
			return p
		}
	}
	return nil
}

func (d *fakeDoc) pageOrder() []HostID {
	ids := make([]HostID, len(d.pages))
	for i, p := range d.pages {
		ids[i] = p.id
	}
	return ids
}

func (d *fakeDoc) HostID() HostID      { return d.id }
func (d *fakeDoc) EnableHistory() bool { return true }
func (d *fakeDoc) History() Recorder   { return d.recorder }

func (d *fakeDoc) PageIndex(id HostID) (int, bool) {
	idx := slices.IndexFunc(d.pages, func(p *fakePage) bool { return p.id == id })
	return idx, idx >= 0
}

func (d *fakeDoc) PageCount() int { return len(d.pages) }

func (d *fakeDoc) SerializePage(id HostID) (PageRecord, error) {
	if d.page(id) == nil {
		return PageRecord{}, fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	return PageRecord{ID: id, Name: string(id)}, nil
}

func (d *fakeDoc) InsertPage(rec PageRecord, index int) error {
	p, ok := d.removed[rec.ID]
	if !ok {
		p = newFakePage(rec.ID)
	}
	delete(d.removed, rec.ID)
	index = min(max(index, 0), len(d.pages))
	d.pages = slices.Insert(d.pages, index, p)
	d.log = append(d.log, fmt.Sprintf("insert %s %d", rec.ID, index))
	return nil
}

func (d *fakeDoc) RemovePage(id HostID) error {
	idx, ok := d.PageIndex(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	d.removed[id] = d.pages[idx]
	d.pages = slices.Delete(d.pages, idx, idx+1)
	d.log = append(d.log, fmt.Sprintf("remove %s", id))
	return nil
}

func (d *fakeDoc) MovePage(id HostID, index int) error {
	idx, ok := d.PageIndex(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	p := d.pages[idx]
	d.pages = slices.Delete(d.pages, idx, idx+1)
	index = min(max(index, 0), len(d.pages))
	d.pages = slices.Insert(d.pages, index, p)
	d.log = append(d.log, fmt.Sprintf("move %s %d", id, index))
	return nil
}

func (d *fakeDoc) Page(id HostID) (ObjectHost, bool) {
	if p := d.page(id); p != nil {
		return p, true
	}
	return nil, false
}

func (d *fakeDoc) ActivePage() ObjectHost {
	if p := d.page(d.active); p != nil {
		return p
	}
	return nil
}

func (d *fakeDoc) ActivatePage(ctx context.Context, id HostID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.activateErr != nil {
		return d.activateErr
	}
	d.activations = append(d.activations, id)
	d.active = id
	return nil
}

// fakeEditor records native undo/redo and focus calls.
type fakeEditor struct {
	undos, redos int
	focused      []ObjectID
	selected     [][]ObjectID
	err          error
}

func (e *fakeEditor) Undo() error {
	e.undos++
	return e.err
}

func (e *fakeEditor) Redo() error {
	e.redos++
	return e.err
}

func (e *fakeEditor) Focus(id ObjectID) error {
	e.focused = append(e.focused, id)
	return nil
}

func (e *fakeEditor) Select(ids []ObjectID) {
	e.selected = append(e.selected, ids)
}

// setupDoc creates a document with pages wired to a DocumentHistory.
func setupDoc(t *testing.T, pages ...HostID) (*fakeDoc, *DocumentHistory) {
	t.Helper()
	doc := newFakeDoc("doc", pages...)
	h := NewDocumentHistory(doc)
	doc.recorder = h
	for _, p := range doc.pages {
		p.recorder = h
	}
	return doc, h
}

// move records a position change of obj as its own gesture.
func move(t *testing.T, r interface {
	Recorder
	Gesturer
}, page *fakePage, obj *fakeObject, x, y int) *Command {
	t.Helper()
	snap := Capture(PositionPaths, obj)
	obj.set(t, "x", x)
	obj.set(t, "y", y)
	cmd := NewPositionCommand(page, snap, obj)
	r.BeginGesture()
	if !r.AddCommand(page, cmd) {
		t.Fatalf("position command for %s not recorded", obj.id)
	}
	r.EndGesture()
	return cmd
}

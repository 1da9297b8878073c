package scene

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/dshills/drawstorm/internal/engine/history"
)

// Page is one page of a document and the object host its shapes live in.
type Page struct {
	id       history.HostID
	name     string
	doc      *Document
	tracking bool

	shapes   map[history.ObjectID]*Shape
	children map[history.ObjectID][]history.ObjectID
}

func newPage(id history.HostID, name string, doc *Document) *Page {
	return &Page{
		id:       id,
		name:     name,
		doc:      doc,
		tracking: true,
		shapes:   make(map[history.ObjectID]*Shape),
		children: make(map[history.ObjectID][]history.ObjectID),
	}
}

// ID returns the page id.
func (p *Page) ID() history.HostID { return p.id }

// Name returns the page name.
func (p *Page) Name() string { return p.name }

// HostID implements history.Host.
func (p *Page) HostID() history.HostID { return p.id }

// EnableHistory implements history.Host.
func (p *Page) EnableHistory() bool { return p.tracking }

// SetHistoryEnabled turns recording of edits on this page on or off.
func (p *Page) SetHistoryEnabled(enabled bool) { p.tracking = enabled }

// History implements history.Host.
func (p *Page) History() history.Recorder {
	if p.doc == nil {
		return nil
	}
	return p.doc.recorder()
}

// Shape returns the shape with id.
func (p *Page) Shape(id history.ObjectID) (*Shape, bool) {
	s, ok := p.shapes[id]
	return s, ok
}

// Order returns the children of container, bottom first.
func (p *Page) Order(container history.ObjectID) []history.ObjectID {
	return slices.Clone(p.children[container])
}

// Len returns the number of shapes on the page, nested ones included.
func (p *Page) Len() int { return len(p.shapes) }

// Walk visits every shape depth first in stacking order.
func (p *Page) Walk(fn func(s *Shape, depth int)) {
	var walk func(container history.ObjectID, depth int)
	walk = func(container history.ObjectID, depth int) {
		for _, id := range p.children[container] {
			fn(p.shapes[id], depth)
			walk(id, depth+1)
		}
	}
	walk("", 0)
}

// FindObjectByID implements history.ObjectHost.
func (p *Page) FindObjectByID(id history.ObjectID) (history.Object, bool) {
	s, ok := p.shapes[id]
	if !ok {
		return nil, false
	}
	return s, true
}

// StackIndex implements history.ObjectHost.
func (p *Page) StackIndex(id history.ObjectID) (int, bool) {
	s, ok := p.shapes[id]
	if !ok {
		return 0, false
	}
	idx := slices.Index(p.children[s.container], id)
	return idx, idx >= 0
}

// Serialize implements history.ObjectHost.
func (p *Page) Serialize(id history.ObjectID) (history.ObjectRecord, error) {
	s, ok := p.shapes[id]
	if !ok {
		return history.ObjectRecord{}, fmt.Errorf("%w: %s", ErrShapeNotFound, id)
	}
	idx, _ := p.StackIndex(id)
	rec := history.ObjectRecord{
		ID:        id,
		Type:      string(s.kind),
		Container: s.container,
		Index:     idx,
		Data:      json.RawMessage(s.props),
		Segments:  s.Segments(),
	}
	for _, child := range p.children[id] {
		cr, err := p.Serialize(child)
		if err != nil {
			return history.ObjectRecord{}, err
		}
		rec.Children = append(rec.Children, cr)
	}
	return rec, nil
}

// Deserialize implements history.ObjectHost.
func (p *Page) Deserialize(rec history.ObjectRecord) (history.Object, error) {
	if _, ok := p.shapes[rec.ID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
	}
	if rec.Container != "" {
		if _, ok := p.shapes[rec.Container]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidContainer, rec.Container)
		}
	}
	s := newShape(rec.ID, Kind(rec.Type), rec.Container, string(rec.Data))
	s.SetSegments(rec.Segments)
	s.page = p
	p.insert(s, rec.Index)

	for _, child := range rec.Children {
		child.Container = rec.ID
		if _, err := p.Deserialize(child); err != nil {
			return nil, err
		}
	}
	s.Refresh()
	return s, nil
}

func (p *Page) insert(s *Shape, index int) {
	p.shapes[s.id] = s
	list := p.children[s.container]
	index = min(max(index, 0), len(list))
	p.children[s.container] = slices.Insert(list, index, s.id)
}

// RemoveObject implements history.ObjectHost. The subtree is removed and
// lines bound to any removed shape are unbound.
func (p *Page) RemoveObject(id history.ObjectID) error {
	s, ok := p.shapes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrShapeNotFound, id)
	}
	for _, child := range slices.Clone(p.children[id]) {
		if err := p.RemoveObject(child); err != nil {
			return err
		}
	}
	delete(p.children, id)
	p.children[s.container] = slices.DeleteFunc(p.children[s.container], func(c history.ObjectID) bool {
		return c == id
	})
	delete(p.shapes, id)

	for _, b := range p.BindingsTo(id) {
		if line, ok := p.shapes[b.LineID]; ok {
			line.unbind(b.End)
		}
	}
	return nil
}

// MoveToIndex implements history.ObjectHost.
func (p *Page) MoveToIndex(id history.ObjectID, index int) error {
	s, ok := p.shapes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrShapeNotFound, id)
	}
	list := slices.DeleteFunc(p.children[s.container], func(c history.ObjectID) bool { return c == id })
	index = min(max(index, 0), len(list))
	p.children[s.container] = slices.Insert(list, index, id)
	return nil
}

// Reparent implements history.ObjectHost. The shape lands on top of its new
// container.
func (p *Page) Reparent(id, container history.ObjectID) error {
	s, ok := p.shapes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrShapeNotFound, id)
	}
	if container != "" {
		if _, ok := p.shapes[container]; !ok || p.isWithin(container, id) {
			return fmt.Errorf("%w: %s for %s", ErrInvalidContainer, container, id)
		}
	}
	if s.container == container {
		return nil
	}
	p.children[s.container] = slices.DeleteFunc(p.children[s.container], func(c history.ObjectID) bool {
		return c == id
	})
	s.container = container
	p.children[container] = append(p.children[container], id)
	return nil
}

// isWithin reports whether id is ancestor or id itself.
func (p *Page) isWithin(id, ancestor history.ObjectID) bool {
	for id != "" {
		if id == ancestor {
			return true
		}
		s, ok := p.shapes[id]
		if !ok {
			return false
		}
		id = s.container
	}
	return false
}

// BindingsTo implements history.ObjectHost.
func (p *Page) BindingsTo(ids ...history.ObjectID) []history.Binding {
	var out []history.Binding
	p.Walk(func(s *Shape, _ int) {
		if s.kind != KindLine {
			return
		}
		for _, end := range []string{EndStart, EndEnd} {
			target, connector, ok := s.Binding(end)
			if ok && slices.Contains(ids, target) {
				out = append(out, history.Binding{LineID: s.id, End: end, TargetID: target, Connector: connector})
			}
		}
	})
	return out
}

// Bind implements history.ObjectHost.
func (p *Page) Bind(b history.Binding) error {
	line, ok := p.shapes[b.LineID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrShapeNotFound, b.LineID)
	}
	if line.kind != KindLine {
		return fmt.Errorf("%w: %s", ErrNotALine, b.LineID)
	}
	if b.End != EndStart && b.End != EndEnd {
		return fmt.Errorf("%w: %q", ErrInvalidEnd, b.End)
	}
	if _, ok := p.shapes[b.TargetID]; !ok {
		return fmt.Errorf("%w: %s", ErrShapeNotFound, b.TargetID)
	}
	if err := line.bind(b.End, b.TargetID, b.Connector); err != nil {
		return fmt.Errorf("bind %s.%s: %w", b.LineID, b.End, err)
	}
	line.Refresh()
	return nil
}

// Dependents implements history.ObjectHost.
func (p *Page) Dependents(id history.ObjectID) []history.Object {
	var out []history.Object
	seen := make(map[history.ObjectID]bool)
	for _, b := range p.BindingsTo(id) {
		if seen[b.LineID] {
			continue
		}
		seen[b.LineID] = true
		out = append(out, p.shapes[b.LineID])
	}
	return out
}

// record serializes the page with every root shape and its subtree.
func (p *Page) record() (history.PageRecord, error) {
	rec := history.PageRecord{ID: p.id, Name: p.name}
	for _, id := range p.children[""] {
		or, err := p.Serialize(id)
		if err != nil {
			return history.PageRecord{}, err
		}
		rec.Objects = append(rec.Objects, or)
	}
	return rec, nil
}

// pageFromRecord rebuilds a page and all of its shapes.
func pageFromRecord(rec history.PageRecord, doc *Document) (*Page, error) {
	p := newPage(rec.ID, rec.Name, doc)
	for _, or := range rec.Objects {
		or.Container = ""
		if _, err := p.Deserialize(or); err != nil {
			return nil, fmt.Errorf("page %s: %w", rec.ID, err)
		}
	}
	return p, nil
}

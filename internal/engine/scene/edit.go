package scene

import (
	"fmt"
	"slices"
	"sort"

	"github.com/google/uuid"
	"github.com/tidwall/sjson"

	"github.com/dshills/drawstorm/internal/engine/history"
)

// ShapeSpec describes a shape to add.
type ShapeSpec struct {
	// ID is the shape id; a random id is used when empty.
	ID history.ObjectID
	// Kind is the shape kind.
	Kind Kind
	// Container is the group to add into, or "" for the page root.
	Container history.ObjectID
	// Props are the initial properties, set key by key.
	Props map[string]any
	// Segments are the initial strokes of a freeline.
	Segments []history.Segment
}

var validKinds = []Kind{KindRect, KindEllipse, KindText, KindGroup, KindLine, KindFreeline}

func (d *Document) editPage(id history.HostID) (*Page, error) {
	if d.closed {
		return nil, ErrClosed
	}
	p, ok := d.PageByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	return p, nil
}

// record hands cmd to the history owning host.
func (d *Document) record(host history.Host, cmd *history.Command) bool {
	r := host.History()
	if r == nil {
		return false
	}
	ok := r.AddCommand(host, cmd)
	if ok {
		d.logger.Debug("recorded %s on %s", cmd.Kind(), host.HostID())
	}
	return ok
}

func (p *Page) lookup(ids []history.ObjectID) ([]*Shape, []history.Object, error) {
	shapes := make([]*Shape, 0, len(ids))
	objs := make([]history.Object, 0, len(ids))
	for _, id := range ids {
		s, ok := p.shapes[id]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrShapeNotFound, id)
		}
		shapes = append(shapes, s)
		objs = append(objs, s)
	}
	return shapes, objs, nil
}

// follow refreshes shapes and everything bound to them.
func (p *Page) follow(shapes ...*Shape) {
	for _, s := range shapes {
		s.Refresh()
		for _, dep := range p.Dependents(s.id) {
			dep.(*Shape).Refresh()
		}
	}
}

// AddShape creates a shape on top of its container and records it.
func (d *Document) AddShape(pageID history.HostID, spec ShapeSpec) (*Shape, error) {
	p, err := d.editPage(pageID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(validKinds, spec.Kind) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, spec.Kind)
	}
	id := spec.ID
	if id == "" {
		id = history.ObjectID(uuid.NewString())
	}
	if _, ok := p.shapes[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	if spec.Container != "" {
		c, ok := p.shapes[spec.Container]
		if !ok || c.kind != KindGroup {
			return nil, fmt.Errorf("%w: %s", ErrInvalidContainer, spec.Container)
		}
	}

	props := "{}"
	keys := make([]string, 0, len(spec.Props))
	for k := range spec.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if props, err = sjson.Set(props, k, spec.Props[k]); err != nil {
			return nil, fmt.Errorf("prop %s: %w", k, err)
		}
	}

	defer d.gesture()()
	s := newShape(id, spec.Kind, spec.Container, props)
	s.page = p
	s.SetSegments(spec.Segments)
	p.insert(s, len(p.children[spec.Container]))
	s.Refresh()

	cmd, err := history.NewAddCommand(p, s)
	if err != nil {
		return nil, err
	}
	d.record(p, cmd)
	return s, nil
}

// Move translates shapes by dx, dy.
func (d *Document) Move(pageID history.HostID, dx, dy float64, ids ...history.ObjectID) error {
	p, err := d.editPage(pageID)
	if err != nil {
		return err
	}
	shapes, objs, err := p.lookup(ids)
	if err != nil {
		return err
	}

	defer d.gesture()()
	before := history.Capture(history.PositionPaths, objs...)
	for _, s := range shapes {
		if err := s.Set("x", s.X()+dx); err != nil {
			return err
		}
		if err := s.Set("y", s.Y()+dy); err != nil {
			return err
		}
	}
	p.follow(shapes...)
	d.record(p, history.NewPositionCommand(p, before, objs...))
	return nil
}

// MoveTo places a shape at x, y inside container, reparenting it when the
// container differs.
func (d *Document) MoveTo(pageID history.HostID, id, container history.ObjectID, x, y float64) error {
	p, err := d.editPage(pageID)
	if err != nil {
		return err
	}
	shapes, objs, err := p.lookup([]history.ObjectID{id})
	if err != nil {
		return err
	}
	s := shapes[0]
	if container != "" {
		if c, ok := p.shapes[container]; !ok || c.kind != KindGroup {
			return fmt.Errorf("%w: %s", ErrInvalidContainer, container)
		}
	}

	defer d.gesture()()
	before := history.Capture(history.PositionPaths, objs...)
	if err := p.Reparent(id, container); err != nil {
		return err
	}
	if err := s.Set("x", x); err != nil {
		return err
	}
	if err := s.Set("y", y); err != nil {
		return err
	}
	p.follow(s)
	d.record(p, history.NewPositionCommand(p, before, objs...))
	return nil
}

// Resize sets the size of a shape.
func (d *Document) Resize(pageID history.HostID, id history.ObjectID, width, height float64) error {
	return d.geometry(pageID, id, map[string]float64{"width": width, "height": height})
}

// Rotate sets the rotation of a shape in degrees.
func (d *Document) Rotate(pageID history.HostID, id history.ObjectID, degrees float64) error {
	return d.geometry(pageID, id, map[string]float64{"rotation": degrees})
}

func (d *Document) geometry(pageID history.HostID, id history.ObjectID, set map[string]float64) error {
	p, err := d.editPage(pageID)
	if err != nil {
		return err
	}
	shapes, objs, err := p.lookup([]history.ObjectID{id})
	if err != nil {
		return err
	}

	defer d.gesture()()
	before := history.Capture(history.ResizePaths, objs...)
	for _, path := range []string{"width", "height", "rotation"} {
		v, ok := set[path]
		if !ok {
			continue
		}
		if err := shapes[0].Set(path, v); err != nil {
			return err
		}
	}
	p.follow(shapes...)
	d.record(p, history.NewResizeCommand(p, before, objs...))
	return nil
}

// Scale multiplies the size of every shape by factor. The result undoes as
// one entry; shapes that fail to restore do not block the others.
func (d *Document) Scale(pageID history.HostID, factor float64, ids ...history.ObjectID) error {
	p, err := d.editPage(pageID)
	if err != nil {
		return err
	}
	shapes, _, err := p.lookup(ids)
	if err != nil {
		return err
	}

	defer d.gesture()()
	var children []*history.Command
	for _, s := range shapes {
		before := history.Capture(history.ResizePaths, s)
		if err := s.Set("width", s.Width()*factor); err != nil {
			return err
		}
		if err := s.Set("height", s.Height()*factor); err != nil {
			return err
		}
		p.follow(s)
		if cmd := history.NewResizeCommand(p, before, s); !cmd.Empty() {
			children = append(children, cmd)
		}
	}
	if len(children) == 0 {
		return nil
	}
	txn, err := history.NewTransactionCommand(p, fmt.Sprintf("Scale %d objects", len(children)), false, children...)
	if err != nil {
		return err
	}
	d.record(p, txn)
	return nil
}

// Connect binds one end of a line to a target shape, optionally at a named
// connector.
func (d *Document) Connect(pageID history.HostID, lineID history.ObjectID, end string, target history.ObjectID, connector string) error {
	p, err := d.editPage(pageID)
	if err != nil {
		return err
	}
	_, objs, err := p.lookup([]history.ObjectID{lineID})
	if err != nil {
		return err
	}

	defer d.gesture()()
	before := history.Capture(history.ResizePaths, objs...)
	if err := p.Bind(history.Binding{LineID: lineID, End: end, TargetID: target, Connector: connector}); err != nil {
		return err
	}
	d.record(p, history.NewResizeCommand(p, before, objs...))
	return nil
}

// Disconnect unbinds one end of a line. The end keeps its last position.
func (d *Document) Disconnect(pageID history.HostID, lineID history.ObjectID, end string) error {
	p, err := d.editPage(pageID)
	if err != nil {
		return err
	}
	shapes, objs, err := p.lookup([]history.ObjectID{lineID})
	if err != nil {
		return err
	}
	if shapes[0].kind != KindLine {
		return fmt.Errorf("%w: %s", ErrNotALine, lineID)
	}
	if end != EndStart && end != EndEnd {
		return fmt.Errorf("%w: %q", ErrInvalidEnd, end)
	}

	defer d.gesture()()
	before := history.Capture(history.ResizePaths, objs...)
	shapes[0].unbind(end)
	d.record(p, history.NewResizeCommand(p, before, objs...))
	return nil
}

// SetData sets path to value on every shape. A nested path whose owner is
// missing on any shape fails before anything changes.
func (d *Document) SetData(pageID history.HostID, path string, value any, ids ...history.ObjectID) error {
	return d.setField(pageID, path, value, false, ids)
}

// SetLayout is like SetData for layout properties; bound lines follow.
func (d *Document) SetLayout(pageID history.HostID, path string, value any, ids ...history.ObjectID) error {
	return d.setField(pageID, path, value, true, ids)
}

func (d *Document) setField(pageID history.HostID, path string, value any, layout bool, ids []history.ObjectID) error {
	p, err := d.editPage(pageID)
	if err != nil {
		return err
	}
	shapes, objs, err := p.lookup(ids)
	if err != nil {
		return err
	}
	fp, err := history.ParseFieldPath(path)
	if err != nil {
		return err
	}
	if fp.IsNested() {
		for _, s := range shapes {
			if !s.Get(fp.Parent().String()).IsObject() {
				return fmt.Errorf("%w: %q on shape %s", history.ErrUnknownPath, path, s.id)
			}
		}
	}

	defer d.gesture()()
	before := history.Capture([]history.FieldPath{fp}, objs...)
	for _, s := range shapes {
		if err := s.Set(path, value); err != nil {
			return err
		}
	}

	var cmd *history.Command
	if layout {
		p.follow(shapes...)
		cmd, err = history.NewLayoutCommand(p, before, []string{path}, objs...)
	} else {
		cmd, err = history.NewDataCommand(p, before, []string{path}, objs...)
	}
	if err != nil {
		return err
	}
	d.record(p, cmd)
	return nil
}

// CommitData records edits already made through Shape.Set on paths, using
// the values the shapes had before they were first touched.
func (d *Document) CommitData(pageID history.HostID, paths []string, ids ...history.ObjectID) error {
	p, err := d.editPage(pageID)
	if err != nil {
		return err
	}
	_, objs, err := p.lookup(ids)
	if err != nil {
		return err
	}
	cmd, err := history.NewDataCommand(p, nil, paths, objs...)
	if err != nil {
		return err
	}

	defer d.gesture()()
	d.record(p, cmd)
	return nil
}

// DeleteShapes removes shapes with their subtrees. Locked shapes are kept.
func (d *Document) DeleteShapes(pageID history.HostID, ids ...history.ObjectID) error {
	p, err := d.editPage(pageID)
	if err != nil {
		return err
	}
	cmd, err := history.NewDeleteCommand(p, ids...)
	if err != nil {
		return err
	}
	if cmd.Empty() {
		return ErrNothingToDelete
	}

	defer d.gesture()()
	if err := cmd.Execute(p); err != nil {
		return err
	}
	d.record(p, cmd)
	return nil
}

// Restack moves a shape to index among its siblings.
func (d *Document) Restack(pageID history.HostID, id history.ObjectID, index int) error {
	p, err := d.editPage(pageID)
	if err != nil {
		return err
	}
	prev, ok := p.StackIndex(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrShapeNotFound, id)
	}

	defer d.gesture()()
	if err := p.MoveToIndex(id, index); err != nil {
		return err
	}
	cmd, err := history.NewIndexCommand(p, id, prev)
	if err != nil {
		return err
	}
	d.record(p, cmd)
	return nil
}

package scene

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/drawstorm/internal/engine/history"
)

// Kind is the type of a shape.
type Kind string

// Shape kinds.
const (
	KindRect     Kind = "rect"
	KindEllipse  Kind = "ellipse"
	KindText     Kind = "text"
	KindGroup    Kind = "group"
	KindLine     Kind = "line"
	KindFreeline Kind = "freeline"
)

// Line ends.
const (
	EndStart = "start"
	EndEnd   = "end"
)

// Shape is a live object on a page. Its properties are a JSON document
// addressed by dotted paths, e.g. "x" or "style.stroke.width".
type Shape struct {
	id        history.ObjectID
	kind      Kind
	container history.ObjectID
	props     string
	segments  []history.Segment
	page      *Page

	// preEdit holds the first value each path had since the last capture.
	preEdit map[string]history.Value
}

func newShape(id history.ObjectID, kind Kind, container history.ObjectID, props string) *Shape {
	if props == "" {
		props = "{}"
	}
	return &Shape{id: id, kind: kind, container: container, props: props}
}

// ObjectID returns the shape id.
func (s *Shape) ObjectID() history.ObjectID { return s.id }

// Kind returns the shape kind.
func (s *Shape) Kind() Kind { return s.kind }

// Container returns the id of the containing group, or "" for the page root.
func (s *Shape) Container() history.ObjectID { return s.container }

// StackIndex returns the shape's position among its container's children.
func (s *Shape) StackIndex() (int, bool) {
	if s.page == nil {
		return 0, false
	}
	return s.page.StackIndex(s.id)
}

// Props returns the raw JSON properties.
func (s *Shape) Props() string { return s.props }

// Get returns the property at path.
func (s *Shape) Get(path string) gjson.Result {
	return gjson.Get(s.props, path)
}

// X returns the x coordinate.
func (s *Shape) X() float64 { return s.Get("x").Float() }

// Y returns the y coordinate.
func (s *Shape) Y() float64 { return s.Get("y").Float() }

// Width returns the width.
func (s *Shape) Width() float64 { return s.Get("width").Float() }

// Height returns the height.
func (s *Shape) Height() float64 { return s.Get("height").Float() }

// Rotation returns the rotation in degrees.
func (s *Shape) Rotation() float64 { return s.Get("rotation").Float() }

// Locked reports whether the shape refuses deletion.
func (s *Shape) Locked() bool { return s.Get("locked").Bool() }

// Field implements history.Object.
func (s *Shape) Field(p history.FieldPath) (history.Value, bool) {
	r := gjson.Get(s.props, p.String())
	if !r.Exists() {
		return "", false
	}
	return history.Value(r.Raw), true
}

// SetField implements history.Object. It writes without pre-edit tracking.
func (s *Shape) SetField(p history.FieldPath, v history.Value) error {
	var (
		props string
		err   error
	)
	if v.Exists() {
		props, err = sjson.SetRaw(s.props, p.String(), string(v))
	} else {
		props, err = sjson.Delete(s.props, p.String())
	}
	if err != nil {
		return fmt.Errorf("set %s on %s: %w", p, s.id, err)
	}
	s.props = props
	return nil
}

// Set is a live edit: it assigns value at path and remembers the value the
// path had before the current gesture. A nested path whose owning object
// does not exist fails with history.ErrUnknownPath.
func (s *Shape) Set(path string, value any) error {
	p, err := history.ParseFieldPath(path)
	if err != nil {
		return err
	}
	if p.IsNested() && !s.Get(p.Parent().String()).IsObject() {
		return fmt.Errorf("%w: %q on shape %s", history.ErrUnknownPath, path, s.id)
	}
	v, err := history.ValueOf(value)
	if err != nil {
		return err
	}
	s.track(p)
	return s.SetField(p, v)
}

// Delete is a live edit removing the property at path.
func (s *Shape) Delete(path string) error {
	p, err := history.ParseFieldPath(path)
	if err != nil {
		return err
	}
	s.track(p)
	return s.SetField(p, "")
}

func (s *Shape) track(p history.FieldPath) {
	if s.preEdit == nil {
		s.preEdit = make(map[string]history.Value)
	}
	if _, ok := s.preEdit[p.String()]; ok {
		return
	}
	v, _ := s.Field(p)
	s.preEdit[p.String()] = v
}

// PreEditValue implements history.PreEditTracker.
func (s *Shape) PreEditValue(p history.FieldPath) (history.Value, bool) {
	v, ok := s.preEdit[p.String()]
	return v, ok
}

// ResetPreEdit implements history.PreEditTracker.
func (s *Shape) ResetPreEdit() {
	s.preEdit = nil
}

// Deletable implements history.Deletable.
func (s *Shape) Deletable() bool {
	return !s.Locked()
}

// Segments returns a copy of the stroke segments of a freeline.
func (s *Shape) Segments() []history.Segment {
	out := make([]history.Segment, len(s.segments))
	for i, seg := range s.segments {
		out[i] = history.Segment{ID: seg.ID, Points: append([]float64(nil), seg.Points...)}
	}
	return out
}

// SetSegments replaces the stroke segments.
func (s *Shape) SetSegments(segs []history.Segment) {
	s.segments = make([]history.Segment, len(segs))
	for i, seg := range segs {
		s.segments[i] = history.Segment{ID: seg.ID, Points: append([]float64(nil), seg.Points...)}
	}
}

// Binding returns the target and connector an end of a line is bound to.
func (s *Shape) Binding(end string) (history.ObjectID, string, bool) {
	target := s.Get(end + ".target").String()
	if s.kind != KindLine || target == "" {
		return "", "", false
	}
	return history.ObjectID(target), s.Get(end + ".connector").String(), true
}

// Refresh implements history.Refresher. A line moves each bound end to its
// target's connector, or to the target's center when the connector is
// unknown.
func (s *Shape) Refresh() {
	if s.kind != KindLine || s.page == nil {
		return
	}
	for _, end := range []string{EndStart, EndEnd} {
		targetID, connector, ok := s.Binding(end)
		if !ok {
			continue
		}
		target, ok := s.page.shapes[targetID]
		if !ok {
			continue
		}
		x, y := target.anchor(connector)
		s.props, _ = sjson.Set(s.props, end+".x", x)
		s.props, _ = sjson.Set(s.props, end+".y", y)
	}
}

// anchor returns the absolute position of a connector.
func (s *Shape) anchor(connector string) (float64, float64) {
	if connector != "" {
		c := s.Get("connectors." + connector)
		if c.IsObject() {
			return s.X() + c.Get("x").Float(), s.Y() + c.Get("y").Float()
		}
	}
	return s.X() + s.Width()/2, s.Y() + s.Height()/2
}

func (s *Shape) bind(end string, target history.ObjectID, connector string) error {
	props, err := sjson.Set(s.props, end+".target", string(target))
	if err != nil {
		return err
	}
	if connector != "" {
		props, err = sjson.Set(props, end+".connector", connector)
	} else {
		props, err = sjson.Delete(props, end+".connector")
	}
	if err != nil {
		return err
	}
	s.props = props
	return nil
}

func (s *Shape) unbind(end string) {
	s.props, _ = sjson.Delete(s.props, end+".target")
	s.props, _ = sjson.Delete(s.props, end+".connector")
}

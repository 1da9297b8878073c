package history

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Value is a raw JSON field value. The empty Value means the field is absent.
type Value string

// Exists reports whether the value denotes a present field.
func (v Value) Exists() bool {
	return v != ""
}

// Valid reports whether v is absent or well-formed JSON.
func (v Value) Valid() bool {
	return v == "" || gjson.Valid(string(v))
}

// String returns the raw JSON text.
func (v Value) String() string {
	return string(v)
}

// ValueOf marshals x into a Value.
func ValueOf(x any) (Value, error) {
	data, err := json.Marshal(x)
	if err != nil {
		return "", fmt.Errorf("marshal value: %w", err)
	}
	return Value(data), nil
}

// MustValue is like ValueOf but panics on error. Intended for constants.
func MustValue(x any) Value {
	v, err := ValueOf(x)
	if err != nil {
		panic(err)
	}
	return v
}

// FieldPath is a validated, dotted path into an object's fields, e.g. "x" or
// "style.stroke.width". Construct with ParseFieldPath or MustPath.
type FieldPath struct {
	raw      string
	segments []string
}

// Common field paths.
var (
	PathX          = MustPath("x")
	PathY          = MustPath("y")
	PathWidth      = MustPath("width")
	PathHeight     = MustPath("height")
	PathRotation   = MustPath("rotation")
	PathConnectors = MustPath("connectors")
	PathStart      = MustPath("start")
	PathEnd        = MustPath("end")
)

// reserved characters carry query meaning in the path syntax used by the
// scene's field store and are rejected so a path always addresses one field.
const reservedPathChars = `*?#|@\!=<>%,:"`

// ParseFieldPath validates s and returns the corresponding FieldPath.
func ParseFieldPath(s string) (FieldPath, error) {
	if s == "" {
		return FieldPath{}, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if strings.ContainsAny(s, reservedPathChars) {
		return FieldPath{}, fmt.Errorf("%w: %q contains reserved characters", ErrInvalidPath, s)
	}
	segs := strings.Split(s, ".")
	for _, seg := range segs {
		if seg == "" {
			return FieldPath{}, fmt.Errorf("%w: %q has an empty segment", ErrInvalidPath, s)
		}
	}
	return FieldPath{raw: s, segments: segs}, nil
}

// MustPath is like ParseFieldPath but panics on error.
func MustPath(s string) FieldPath {
	p, err := ParseFieldPath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the dotted form of the path.
func (p FieldPath) String() string {
	return p.raw
}

// IsZero reports whether p is the zero FieldPath.
func (p FieldPath) IsZero() bool {
	return p.raw == ""
}

// Segments returns a copy of the path segments.
func (p FieldPath) Segments() []string {
	out := make([]string, len(p.segments))
	copy(out, p.segments)
	return out
}

// IsNested reports whether the path has more than one segment.
func (p FieldPath) IsNested() bool {
	return len(p.segments) > 1
}

// Parent returns the path of the owning sub-object, or the zero path for a
// top-level field.
func (p FieldPath) Parent() FieldPath {
	if len(p.segments) < 2 {
		return FieldPath{}
	}
	segs := p.segments[:len(p.segments)-1]
	return FieldPath{raw: strings.Join(segs, "."), segments: segs}
}

// ParsePaths parses every element of raw.
func ParsePaths(raw ...string) ([]FieldPath, error) {
	out := make([]FieldPath, 0, len(raw))
	for _, s := range raw {
		p, err := ParseFieldPath(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// validateOwner checks that the sub-object owning a nested path exists on obj.
func validateOwner(obj Object, p FieldPath) error {
	if !p.IsNested() {
		return nil
	}
	parent := p.Parent()
	v, ok := obj.Field(parent)
	if !ok || !gjson.Parse(string(v)).IsObject() {
		return fmt.Errorf("%w: %q on object %s", ErrUnknownPath, p.raw, obj.ObjectID())
	}
	return nil
}

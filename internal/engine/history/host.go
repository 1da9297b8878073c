package history

import (
	"context"
	"encoding/json"
)

// HostID identifies a page or document that owns commands.
type HostID string

// ObjectID identifies a live scene object. The empty ObjectID denotes the
// page root when used as a container.
type ObjectID string

// Host is a page or document against which commands are recorded and replayed.
type Host interface {
	// HostID returns the stable identity of the host.
	HostID() HostID

	// EnableHistory reports whether edits on this host are tracked.
	EnableHistory() bool

	// History returns the recorder that owns commands for this host.
	History() Recorder
}

// Recorder accepts newly created commands. Both DocumentHistory and
// PageHistory implement it.
type Recorder interface {
	AddCommand(host Host, cmd *Command) bool
}

// Object is a live, identity-addressable object inside an ObjectHost.
type Object interface {
	ObjectID() ObjectID

	// Container returns the id of the containing object, or "" for the root.
	Container() ObjectID

	// Field returns the raw JSON value at path and whether it exists.
	Field(path FieldPath) (Value, bool)

	// SetField assigns v at path. The empty Value deletes the field.
	SetField(path FieldPath, v Value) error
}

// Refresher is implemented by objects with a post-change hook (re-layout,
// endpoint follow).
type Refresher interface {
	Refresh()
}

// PreEditTracker is implemented by objects that remember the value a field
// had before the current gesture started mutating it.
type PreEditTracker interface {
	PreEditValue(path FieldPath) (Value, bool)
	ResetPreEdit()
}

// Stacked is implemented by objects that can report their position among
// their container's children.
type Stacked interface {
	StackIndex() (int, bool)
}

// Deletable is implemented by objects that may refuse deletion.
type Deletable interface {
	Deletable() bool
}

// Segment is one freehand stroke segment.
type Segment struct {
	ID     string    `json:"id"`
	Points []float64 `json:"points"`
}

// Stroke is implemented by freeline objects.
type Stroke interface {
	Object
	Segments() []Segment
	SetSegments(segs []Segment)
}

// ObjectRecord is a serialized object together with its recursive subtree.
type ObjectRecord struct {
	ID        ObjectID        `json:"id"`
	Type      string          `json:"type"`
	Container ObjectID        `json:"container,omitempty"`
	Index     int             `json:"index"`
	Data      json.RawMessage `json:"data,omitempty"`
	Segments  []Segment       `json:"segments,omitempty"`
	Children  []ObjectRecord  `json:"children,omitempty"`
}

// Binding attaches one end of a line to a target object's connector.
type Binding struct {
	LineID    ObjectID `json:"line"`
	End       string   `json:"end"`
	TargetID  ObjectID `json:"target"`
	Connector string   `json:"connector"`
}

// ObjectHost is a host that contains objects (a page).
type ObjectHost interface {
	Host

	FindObjectByID(id ObjectID) (Object, bool)

	// Serialize captures the object and all of its descendants.
	Serialize(id ObjectID) (ObjectRecord, error)

	// Deserialize recreates a serialized subtree at rec.Container/rec.Index.
	Deserialize(rec ObjectRecord) (Object, error)

	RemoveObject(id ObjectID) error

	// StackIndex returns the position of id among its container's children.
	StackIndex(id ObjectID) (int, bool)

	// MoveToIndex moves id within its container to index, keeping the
	// relative order of every other child.
	MoveToIndex(id ObjectID, index int) error

	Reparent(id, container ObjectID) error

	// BindingsTo lists bindings whose target is one of ids.
	BindingsTo(ids ...ObjectID) []Binding

	Bind(b Binding) error

	// Dependents returns objects that follow id (e.g. lines bound to it).
	Dependents(id ObjectID) []Object
}

// PageRecord is a serialized page.
type PageRecord struct {
	ID      HostID          `json:"id"`
	Name    string          `json:"name"`
	Objects []ObjectRecord  `json:"objects,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// PageHost is a host that contains pages (a document).
type PageHost interface {
	Host

	PageIndex(id HostID) (int, bool)
	PageCount() int
	SerializePage(id HostID) (PageRecord, error)
	InsertPage(rec PageRecord, index int) error
	RemovePage(id HostID) error
	MovePage(id HostID, index int) error
}

// Document is the page container consumed by DocumentHistory.
type Document interface {
	PageHost

	Page(id HostID) (ObjectHost, bool)
	ActivePage() ObjectHost

	// ActivatePage makes id the visible page and returns once the page is
	// live and rendered.
	ActivatePage(ctx context.Context, id HostID) error
}

// TextEditor is a handle into an external rich-text editor with its own
// native undo stack.
type TextEditor interface {
	Undo() error
	Redo() error

	// Focus places input focus inside the text of a single object.
	Focus(id ObjectID) error

	// Select restores a multi-object selection without text focus.
	Select(ids []ObjectID)
}

// State is the undo/redo availability of one history.
type State struct {
	CanUndo bool
	CanRedo bool
}

// Notifier receives availability changes for UI affordances.
type Notifier interface {
	HistoryChanged(host HostID, state State)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(host HostID, state State)

// HistoryChanged implements Notifier.
func (f NotifierFunc) HistoryChanged(host HostID, state State) {
	f(host, state)
}

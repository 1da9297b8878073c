package history

// Field sets captured by the geometry variants.
var (
	PositionPaths = []FieldPath{PathX, PathY}
	ResizePaths   = []FieldPath{PathX, PathY, PathWidth, PathHeight, PathRotation, PathConnectors, PathStart, PathEnd}
)

// NewPositionCommand records a move of objs. before should hold the
// coordinates and containers captured when the gesture started.
func NewPositionCommand(host ObjectHost, before *Snapshot, objs ...Object) *Command {
	c := newCommand(KindPosition, host.HostID())
	c.deltas = captureDeltas(host, before, PositionPaths, true, objs)
	c.follow = true
	return c
}

// NewResizeCommand records a resize of objs, including rotation, connector
// offsets and line endpoint bindings. Dependents of every target refresh on
// replay.
func NewResizeCommand(host ObjectHost, before *Snapshot, objs ...Object) *Command {
	c := newCommand(KindResize, host.HostID())
	c.deltas = captureDeltas(host, before, ResizePaths, false, objs)
	c.follow = true
	return c
}

// NewDataCommand records arbitrary flat or nested field edits. Paths are
// parsed and checked against every object once, here; an unknown nested
// owner fails with ErrUnknownPath.
func NewDataCommand(host ObjectHost, before *Snapshot, paths []string, objs ...Object) (*Command, error) {
	return newFieldCommand(KindData, host, before, paths, objs)
}

// NewLayoutCommand is like NewDataCommand for layout properties; replay also
// refreshes dependents.
func NewLayoutCommand(host ObjectHost, before *Snapshot, paths []string, objs ...Object) (*Command, error) {
	c, err := newFieldCommand(KindLayout, host, before, paths, objs)
	if err != nil {
		return nil, err
	}
	c.follow = true
	return c, nil
}

func newFieldCommand(kind Kind, host ObjectHost, before *Snapshot, paths []string, objs []Object) (*Command, error) {
	fps, err := ParsePaths(paths...)
	if err != nil {
		return nil, err
	}
	for _, obj := range objs {
		for _, p := range fps {
			if err := validateOwner(obj, p); err != nil {
				return nil, err
			}
		}
	}
	c := newCommand(kind, host.HostID())
	c.deltas = captureDeltas(host, before, fps, false, objs)
	return c, nil
}

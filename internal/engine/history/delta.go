package history

import "fmt"

// FieldChange is the previous/current pair for one field.
type FieldChange struct {
	Path     FieldPath
	Previous Value
	Current  Value
}

// ContainerChange records a move between containers. The indices are the
// object's position among the children of each container, or -1 when unknown.
type ContainerChange struct {
	Previous      ObjectID
	Current       ObjectID
	PreviousIndex int
	CurrentIndex  int
}

// ShapeDelta is the minimal set of field changes captured for one object.
// TargetID is resolved against the live host at replay time.
type ShapeDelta struct {
	TargetID  ObjectID
	Fields    []FieldChange
	Container *ContainerChange
}

type direction int

const (
	backward direction = iota
	forward
)

func (d direction) String() string {
	if d == forward {
		return "redo"
	}
	return "undo"
}

func (c FieldChange) pick(dir direction) Value {
	if dir == forward {
		return c.Current
	}
	return c.Previous
}

func (c *ContainerChange) pick(dir direction) (ObjectID, int) {
	if dir == forward {
		return c.Current, c.CurrentIndex
	}
	return c.Previous, c.PreviousIndex
}

// captureDeltas builds one delta per object from the fields that actually
// changed. Previous values come from before, then from the object's pre-edit
// tracker, then default to the current value.
func captureDeltas(host ObjectHost, before *Snapshot, paths []FieldPath, withContainer bool, objs []Object) []ShapeDelta {
	deltas := make([]ShapeDelta, 0, len(objs))
	for _, obj := range objs {
		id := obj.ObjectID()
		tracker, _ := obj.(PreEditTracker)
		d := ShapeDelta{TargetID: id}

		for _, p := range paths {
			cur, _ := obj.Field(p)
			prev, ok := before.value(id, p)
			if !ok && tracker != nil {
				prev, ok = tracker.PreEditValue(p)
			}
			if !ok {
				prev = cur
			}
			if prev == cur {
				continue
			}
			d.Fields = append(d.Fields, FieldChange{Path: p, Previous: prev, Current: cur})
		}

		if withContainer {
			if prevC, ok := before.container(id); ok && prevC != obj.Container() {
				cur := -1
				if idx, ok := host.StackIndex(id); ok {
					cur = idx
				}
				d.Container = &ContainerChange{
					Previous:      prevC,
					Current:       obj.Container(),
					PreviousIndex: before.stack(id),
					CurrentIndex:  cur,
				}
			}
		}

		if tracker != nil {
			tracker.ResetPreEdit()
		}
		if len(d.Fields) > 0 || d.Container != nil {
			deltas = append(deltas, d)
		}
	}
	return deltas
}

// applyDeltas writes one side of every delta into the live host. Missing
// targets are skipped. When follow is set, dependents of each target are
// refreshed after it.
func applyDeltas(host ObjectHost, deltas []ShapeDelta, dir direction, follow bool) error {
	for _, d := range deltas {
		obj, ok := host.FindObjectByID(d.TargetID)
		if !ok {
			continue
		}

		if d.Container != nil {
			target, index := d.Container.pick(dir)
			if obj.Container() != target && containerExists(host, target) {
				if err := host.Reparent(d.TargetID, target); err != nil {
					return fmt.Errorf("reparent %s: %w", d.TargetID, err)
				}
				if index >= 0 {
					if err := host.MoveToIndex(d.TargetID, index); err != nil {
						return fmt.Errorf("restack %s: %w", d.TargetID, err)
					}
				}
			}
		}

		for _, f := range d.Fields {
			if err := obj.SetField(f.Path, f.pick(dir)); err != nil {
				return fmt.Errorf("set %s.%s: %w", d.TargetID, f.Path, err)
			}
		}

		refresh(obj)
		if follow {
			for _, dep := range host.Dependents(d.TargetID) {
				refresh(dep)
			}
		}
	}
	return nil
}

func containerExists(host ObjectHost, id ObjectID) bool {
	if id == "" {
		return true
	}
	_, ok := host.FindObjectByID(id)
	return ok
}

func refresh(obj Object) {
	if r, ok := obj.(Refresher); ok {
		r.Refresh()
	}
}

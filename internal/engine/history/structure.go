package history

import (
	"fmt"
	"sort"
)

type structurePayload struct {
	// identities are the created objects as serialized when added.
	identities []ObjectRecord

	// records are removed subtrees: captured at construction for delete,
	// refreshed on every undo for add.
	records []ObjectRecord

	// bindings point from surviving lines to removed objects.
	bindings []Binding
}

type indexPayload struct {
	target   ObjectID
	from, to int
}

// NewAddCommand records the creation of objs, which must already exist on host.
// Descendants of another object in objs are captured through their ancestor.
func NewAddCommand(host ObjectHost, objs ...Object) (*Command, error) {
	selected := make(map[ObjectID]bool, len(objs))
	for _, obj := range objs {
		selected[obj.ObjectID()] = true
	}
	p := &structurePayload{}
	for _, obj := range objs {
		if hasSelectedAncestor(host, obj.ObjectID(), selected) {
			continue
		}
		rec, err := host.Serialize(obj.ObjectID())
		if err != nil {
			return nil, fmt.Errorf("serialize %s: %w", obj.ObjectID(), err)
		}
		p.identities = append(p.identities, rec)
	}
	c := newCommand(KindAdd, host.HostID())
	c.structure = p
	return c, nil
}

// NewDeleteCommand captures ids for deletion. It must be created before the
// objects are removed; call Execute to remove them. Objects that refuse
// deletion are left out, and descendants of another id in the set are
// captured through their ancestor.
func NewDeleteCommand(host ObjectHost, ids ...ObjectID) (*Command, error) {
	selected := make(map[ObjectID]bool, len(ids))
	for _, id := range ids {
		obj, ok := host.FindObjectByID(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoSuchObject, id)
		}
		if d, ok := obj.(Deletable); ok && !d.Deletable() {
			continue
		}
		selected[id] = true
	}

	p := &structurePayload{}
	removed := make(map[ObjectID]bool)
	for _, id := range ids {
		if !selected[id] || hasSelectedAncestor(host, id, selected) {
			continue
		}
		rec, err := host.Serialize(id)
		if err != nil {
			return nil, fmt.Errorf("serialize %s: %w", id, err)
		}
		p.records = append(p.records, rec)
		collectIDs(rec, removed)
	}
	sortByIndex(p.records)

	all := make([]ObjectID, 0, len(removed))
	for id := range removed {
		all = append(all, id)
	}
	for _, b := range host.BindingsTo(all...) {
		if !removed[b.LineID] {
			p.bindings = append(p.bindings, b)
		}
	}

	c := newCommand(KindDelete, host.HostID())
	c.structure = p
	return c, nil
}

// NewIndexCommand records a stacking-order change of id from previous to
// its current index.
func NewIndexCommand(host ObjectHost, id ObjectID, previous int) (*Command, error) {
	cur, ok := host.StackIndex(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchObject, id)
	}
	c := newCommand(KindIndex, host.HostID())
	c.index = &indexPayload{target: id, from: previous, to: cur}
	return c, nil
}

func (c *Command) undoAdd(host ObjectHost) error {
	p := c.structure
	selected := make(map[ObjectID]bool, len(p.identities))
	for _, ident := range p.identities {
		selected[ident.ID] = true
	}
	ids := make([]ObjectID, 0, len(p.identities))
	for _, ident := range p.identities {
		// A later reparent may have nested one created object in another.
		if !hasSelectedAncestor(host, ident.ID, selected) {
			ids = append(ids, ident.ID)
		}
	}

	// The subtree may have grown since creation; capture it all before removal.
	var records []ObjectRecord
	for i := len(ids) - 1; i >= 0; i-- {
		if _, ok := host.FindObjectByID(ids[i]); !ok {
			continue
		}
		rec, err := host.Serialize(ids[i])
		if err != nil {
			return fmt.Errorf("serialize %s: %w", ids[i], err)
		}
		records = append(records, rec)
		if err := host.RemoveObject(ids[i]); err != nil {
			return fmt.Errorf("remove %s: %w", ids[i], err)
		}
	}
	if len(records) > 0 {
		sortByIndex(records)
		p.records = records
	}
	return nil
}

func (c *Command) redoAdd(host ObjectHost) error {
	records := c.structure.records
	if len(records) == 0 {
		records = c.structure.identities
	}
	return restoreRecords(host, records)
}

func (c *Command) redoDelete(host ObjectHost) error {
	for _, rec := range c.structure.records {
		if _, ok := host.FindObjectByID(rec.ID); !ok {
			continue
		}
		if err := host.RemoveObject(rec.ID); err != nil {
			return fmt.Errorf("remove %s: %w", rec.ID, err)
		}
	}
	return nil
}

func (c *Command) undoDelete(host ObjectHost) error {
	if err := restoreRecords(host, c.structure.records); err != nil {
		return err
	}
	for _, b := range c.structure.bindings {
		if _, ok := host.FindObjectByID(b.LineID); !ok {
			continue
		}
		if _, ok := host.FindObjectByID(b.TargetID); !ok {
			continue
		}
		if err := host.Bind(b); err != nil {
			return fmt.Errorf("rebind %s.%s: %w", b.LineID, b.End, err)
		}
	}
	return nil
}

func (c *Command) replayIndex(host ObjectHost, dir direction) error {
	idx := c.index.from
	if dir == forward {
		idx = c.index.to
	}
	cur, ok := host.StackIndex(c.index.target)
	if !ok || cur == idx {
		return nil
	}
	return host.MoveToIndex(c.index.target, idx)
}

// restoreRecords recreates removed subtrees in ascending stacking order so
// each lands at its original index, reusing objects that still exist.
func restoreRecords(host ObjectHost, records []ObjectRecord) error {
	sorted := make([]ObjectRecord, len(records))
	copy(sorted, records)
	sortByIndex(sorted)

	for _, rec := range sorted {
		if obj, ok := host.FindObjectByID(rec.ID); ok {
			if obj.Container() != rec.Container && containerExists(host, rec.Container) {
				if err := host.Reparent(rec.ID, rec.Container); err != nil {
					return fmt.Errorf("reparent %s: %w", rec.ID, err)
				}
			}
			if err := host.MoveToIndex(rec.ID, rec.Index); err != nil {
				return fmt.Errorf("restack %s: %w", rec.ID, err)
			}
			continue
		}
		if !containerExists(host, rec.Container) {
			rec.Container = ""
		}
		if _, err := host.Deserialize(rec); err != nil {
			return fmt.Errorf("recreate %s: %w", rec.ID, err)
		}
	}
	return nil
}

func hasSelectedAncestor(host ObjectHost, id ObjectID, selected map[ObjectID]bool) bool {
	obj, ok := host.FindObjectByID(id)
	for ok {
		parent := obj.Container()
		if parent == "" {
			return false
		}
		if selected[parent] {
			return true
		}
		obj, ok = host.FindObjectByID(parent)
	}
	return false
}

func collectIDs(rec ObjectRecord, into map[ObjectID]bool) {
	into[rec.ID] = true
	for _, child := range rec.Children {
		collectIDs(child, into)
	}
}

func sortByIndex(records []ObjectRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Index < records[j].Index
	})
}

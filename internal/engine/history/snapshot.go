package history

// Snapshot holds field values and containers captured before a gesture
// mutates objects. A nil *Snapshot is valid and knows nothing.
type Snapshot struct {
	values     map[ObjectID]map[string]Value
	containers map[ObjectID]ObjectID
	stacks     map[ObjectID]int
}

// Capture records the current value of every path on every object, along
// with each object's container.
func Capture(paths []FieldPath, objs ...Object) *Snapshot {
	s := &Snapshot{
		values:     make(map[ObjectID]map[string]Value, len(objs)),
		containers: make(map[ObjectID]ObjectID, len(objs)),
		stacks:     make(map[ObjectID]int, len(objs)),
	}
	for _, obj := range objs {
		s.Add(obj, paths...)
	}
	return s
}

// Add records paths of obj into the snapshot. Paths already recorded for obj
// keep their first value, and so do its container and stacking index.
func (s *Snapshot) Add(obj Object, paths ...FieldPath) {
	id := obj.ObjectID()
	if _, ok := s.containers[id]; !ok {
		s.containers[id] = obj.Container()
		if st, ok := obj.(Stacked); ok {
			if idx, ok := st.StackIndex(); ok {
				s.stacks[id] = idx
			}
		}
	}
	fields := s.values[id]
	if fields == nil {
		fields = make(map[string]Value, len(paths))
		s.values[id] = fields
	}
	for _, p := range paths {
		if _, ok := fields[p.raw]; ok {
			continue
		}
		v, _ := obj.Field(p)
		fields[p.raw] = v
	}
}

func (s *Snapshot) value(id ObjectID, p FieldPath) (Value, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s.values[id][p.raw]
	return v, ok
}

// stack returns the captured stacking index of id, or -1.
func (s *Snapshot) stack(id ObjectID) int {
	if s == nil {
		return -1
	}
	if idx, ok := s.stacks[id]; ok {
		return idx
	}
	return -1
}

func (s *Snapshot) container(id ObjectID) (ObjectID, bool) {
	if s == nil {
		return "", false
	}
	c, ok := s.containers[id]
	return c, ok
}

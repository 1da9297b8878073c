package history

// PageHistory keeps one timeline per page, so undo stays scoped to the page
// being edited. Undo and Redo take the owning host explicitly and never
// switch pages.
//
// PageHistory is not safe for concurrent use.
type PageHistory struct {
	core
	timelines map[HostID]*timeline
}

// NewPageHistory creates an empty page-scoped history.
func NewPageHistory(opts ...Option) *PageHistory {
	return &PageHistory{
		core:      newCore(opts),
		timelines: make(map[HostID]*timeline),
	}
}

func (h *PageHistory) timeline(id HostID) *timeline {
	t, ok := h.timelines[id]
	if !ok {
		t = newTimeline(h.maxEntries)
		h.timelines[id] = t
	}
	return t
}

func (h *PageHistory) state(id HostID) State {
	if t, ok := h.timelines[id]; ok {
		return t.state()
	}
	return State{}
}

// AddCommand appends cmd to the timeline of host. It returns false for nil or
// empty commands, hosts that opted out and commands created during replay.
func (h *PageHistory) AddCommand(host Host, cmd *Command) bool {
	if cmd == nil || host == nil || cmd.Empty() {
		return false
	}
	if !host.EnableHistory() {
		return false
	}
	if h.guard.active() {
		h.logger.Debug("ignoring %s during replay", cmd.kind)
		return false
	}

	id := host.HostID()
	t := h.timeline(id)
	before := t.state()
	h.stamp(cmd, t)
	if n := t.push(cmd); n > 0 {
		h.logger.WithFields(map[string]any{"page": string(id), "evicted": n}).Debug("history bound reached")
	}
	h.notify(id, before, t.state())
	return true
}

// Undo reverts the most recent batch on host. The first error aborts the
// batch and is returned.
func (h *PageHistory) Undo(host Host) error {
	if host == nil {
		return nil
	}
	t, ok := h.timelines[host.HostID()]
	if !ok || !t.canUndo() {
		return nil
	}
	defer h.guard.enter()()

	before := t.state()
	err := t.undoBatch(func(cmd *Command) error {
		return cmd.Undo(host)
	})
	h.notify(host.HostID(), before, t.state())
	return err
}

// Redo reapplies the next batch on host. Failures are logged and the cursor
// advances past the whole batch. It returns false if there was nothing to
// redo.
func (h *PageHistory) Redo(host Host) bool {
	if host == nil {
		return false
	}
	t, ok := h.timelines[host.HostID()]
	if !ok || !t.canRedo() {
		return false
	}
	defer h.guard.enter()()

	before := t.state()
	done := t.redoBatch(func(cmd *Command) error {
		return cmd.Redo(host)
	}, func(cmd *Command, err error) {
		h.logger.WithFields(map[string]any{
			"kind": cmd.kind.String(),
			"page": string(host.HostID()),
		}).Error("redo failed: %v", err)
	})
	h.notify(host.HostID(), before, t.state())
	return done
}

// CanUndo reports whether page id has a batch to undo.
func (h *PageHistory) CanUndo(id HostID) bool { return h.state(id).CanUndo }

// CanRedo reports whether page id has a batch to redo.
func (h *PageHistory) CanRedo(id HostID) bool { return h.state(id).CanRedo }

// State returns the availability for page id.
func (h *PageHistory) State(id HostID) State { return h.state(id) }

// RemoveLastCommand trims the newest entry of page id.
func (h *PageHistory) RemoveLastCommand(id HostID) bool {
	return h.removeLast(id, func(*Command) bool { return true })
}

// RemoveLastCommandOfKind trims the newest entry of kind k on page id.
func (h *PageHistory) RemoveLastCommandOfKind(id HostID, k Kind) bool {
	return h.removeLast(id, func(c *Command) bool { return c.kind == k })
}

func (h *PageHistory) removeLast(id HostID, match func(*Command) bool) bool {
	t, ok := h.timelines[id]
	if !ok {
		return false
	}
	before := t.state()
	removed := t.removeLast(match)
	h.notify(id, before, t.state())
	return removed
}

// Clear drops every entry of page id.
func (h *PageHistory) Clear(id HostID) {
	t, ok := h.timelines[id]
	if !ok {
		return
	}
	before := t.state()
	t.reset()
	h.notify(id, before, t.state())
}

// Forget releases the timeline of a page that was closed or removed.
func (h *PageHistory) Forget(id HostID) {
	before := h.state(id)
	delete(h.timelines, id)
	h.notify(id, before, State{})
}

// Len returns the number of entries recorded for page id.
func (h *PageHistory) Len(id HostID) int {
	if t, ok := h.timelines[id]; ok {
		return len(t.entries)
	}
	return 0
}

// Cursor returns the cursor of page id, or -1.
func (h *PageHistory) Cursor(id HostID) int {
	if t, ok := h.timelines[id]; ok {
		return t.cursor
	}
	return -1
}

// UndoInfo lists applied entries of page id, oldest first.
func (h *PageHistory) UndoInfo(id HostID) []OperationInfo {
	if t, ok := h.timelines[id]; ok {
		return t.undoInfo()
	}
	return nil
}

// RedoInfo lists redoable entries of page id, next to redo first.
func (h *PageHistory) RedoInfo(id HostID) []OperationInfo {
	if t, ok := h.timelines[id]; ok {
		return t.redoInfo()
	}
	return nil
}

// Pages returns the ids that currently have a timeline.
func (h *PageHistory) Pages() []HostID {
	ids := make([]HostID, 0, len(h.timelines))
	for id := range h.timelines {
		ids = append(ids, id)
	}
	return ids
}

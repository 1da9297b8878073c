package history

import (
	"context"
	"fmt"
)

// DocumentHistory keeps one shared timeline for a whole document, so edits
// on any page undo in a single global chronological order.
//
// A DocumentHistory is owned by its document; there is no registry. It is
// not safe for concurrent use.
type DocumentHistory struct {
	core
	doc      Document
	timeline *timeline
}

// NewDocumentHistory creates an empty history for doc.
func NewDocumentHistory(doc Document, opts ...Option) *DocumentHistory {
	c := newCore(opts)
	return &DocumentHistory{
		core:     c,
		doc:      doc,
		timeline: newTimeline(c.maxEntries),
	}
}

// AddCommand appends cmd, truncating any redo future. It returns false when
// the command is not recorded: nil or empty commands, hosts that opted out of
// history, and commands created while a replay is in progress.
func (h *DocumentHistory) AddCommand(host Host, cmd *Command) bool {
	if cmd == nil || cmd.Empty() {
		return false
	}
	if host != nil && !host.EnableHistory() {
		return false
	}
	if h.guard.active() {
		h.logger.Debug("ignoring %s during replay", cmd.kind)
		return false
	}

	before := h.timeline.state()
	h.stamp(cmd, h.timeline)
	if n := h.timeline.push(cmd); n > 0 {
		h.logger.WithField("evicted", n).Debug("history bound reached")
	}
	h.notify(h.doc.HostID(), before, h.timeline.state())
	return true
}

// Undo reverts the most recent batch. If an entry belongs to a page other
// than the active one, that page is activated first and Undo waits for it.
// The first error aborts the batch and is returned; the failing entry stays
// at the cursor.
func (h *DocumentHistory) Undo(ctx context.Context) error {
	if !h.timeline.canUndo() {
		return nil
	}
	defer h.guard.enter()()

	before := h.timeline.state()
	err := h.timeline.undoBatch(func(cmd *Command) error {
		host, ok, err := h.resolve(ctx, cmd)
		if err != nil || !ok {
			return err
		}
		return cmd.Undo(host)
	})
	h.notify(h.doc.HostID(), before, h.timeline.state())
	return err
}

// Redo reapplies the next batch. Failures are logged and the cursor advances
// past the whole batch regardless. It returns false if there was nothing to
// redo.
func (h *DocumentHistory) Redo(ctx context.Context) bool {
	if !h.timeline.canRedo() {
		return false
	}
	defer h.guard.enter()()

	before := h.timeline.state()
	ok := h.timeline.redoBatch(func(cmd *Command) error {
		host, ok, err := h.resolve(ctx, cmd)
		if err != nil || !ok {
			return err
		}
		return cmd.Redo(host)
	}, func(cmd *Command, err error) {
		h.logger.WithFields(map[string]any{
			"kind": cmd.kind.String(),
			"host": string(cmd.host),
		}).Error("redo failed: %v", err)
	})
	h.notify(h.doc.HostID(), before, h.timeline.state())
	return ok
}

// resolve returns the live host cmd must replay against, activating its page
// when it is not the visible one. ok is false when the page no longer exists.
func (h *DocumentHistory) resolve(ctx context.Context, cmd *Command) (Host, bool, error) {
	if cmd.host == h.doc.HostID() {
		return h.doc, true, nil
	}
	page, ok := h.doc.Page(cmd.host)
	if !ok {
		h.logger.WithField("page", string(cmd.host)).Warn("skipping %s: page no longer exists", cmd.kind)
		return nil, false, nil
	}
	if active := h.doc.ActivePage(); active != nil && active.HostID() == cmd.host {
		return active, true, nil
	}
	if err := h.doc.ActivatePage(ctx, cmd.host); err != nil {
		return nil, false, fmt.Errorf("activate page %s: %w", cmd.host, err)
	}
	if active := h.doc.ActivePage(); active != nil && active.HostID() == cmd.host {
		return active, true, nil
	}
	return page, true, nil
}

// CanUndo reports whether there is a batch to undo.
func (h *DocumentHistory) CanUndo() bool { return h.timeline.canUndo() }

// CanRedo reports whether there is a batch to redo.
func (h *DocumentHistory) CanRedo() bool { return h.timeline.canRedo() }

// State returns the current availability.
func (h *DocumentHistory) State() State { return h.timeline.state() }

// RemoveLastCommand trims the newest entry. It is meant for cancelling a
// command that was recorded but never surfaced to the user.
func (h *DocumentHistory) RemoveLastCommand() bool {
	return h.removeLast(func(*Command) bool { return true })
}

// RemoveLastCommandOfKind trims the newest entry of kind k.
func (h *DocumentHistory) RemoveLastCommandOfKind(k Kind) bool {
	return h.removeLast(func(c *Command) bool { return c.kind == k })
}

func (h *DocumentHistory) removeLast(match func(*Command) bool) bool {
	before := h.timeline.state()
	ok := h.timeline.removeLast(match)
	h.notify(h.doc.HostID(), before, h.timeline.state())
	return ok
}

// Clear drops every entry and ends the current gesture.
func (h *DocumentHistory) Clear() {
	before := h.timeline.state()
	h.timeline.reset()
	h.batch = ""
	h.notify(h.doc.HostID(), before, h.timeline.state())
}

// Len returns the number of entries, applied or not.
func (h *DocumentHistory) Len() int { return len(h.timeline.entries) }

// Cursor returns the index of the next entry to undo, or -1.
func (h *DocumentHistory) Cursor() int { return h.timeline.cursor }

// UndoInfo lists applied entries, oldest first.
func (h *DocumentHistory) UndoInfo() []OperationInfo { return h.timeline.undoInfo() }

// RedoInfo lists redoable entries, next to redo first.
func (h *DocumentHistory) RedoInfo() []OperationInfo { return h.timeline.redoInfo() }

// PeekUndo describes the entry Undo would revert first.
func (h *DocumentHistory) PeekUndo() (OperationInfo, bool) { return h.timeline.peekUndo() }

// PeekRedo describes the entry Redo would reapply first.
func (h *DocumentHistory) PeekRedo() (OperationInfo, bool) { return h.timeline.peekRedo() }

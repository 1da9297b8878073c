package history

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BatchToken groups contiguous commands created during one user gesture.
// The zero token never groups.
type BatchToken string

// NewBatchToken returns a fresh, unique token.
func NewBatchToken() BatchToken {
	return BatchToken(uuid.NewString())
}

// Command records one committed edit so it can be undone and redone.
//
// Command is a tagged union: kind selects which payload is populated, and
// every operation dispatches through a single switch on kind. Commands never
// hold references to live objects; targets are looked up by id on the host
// passed to Undo and Redo.
type Command struct {
	kind  Kind
	host  HostID
	batch BatchToken

	// Field-delta kinds: position, resize, data, layout.
	deltas []ShapeDelta
	follow bool

	structure   *structurePayload
	index       *indexPayload
	freeline    *freelinePayload
	page        *pagePayload
	transaction *transactionPayload
	editor      *editorPayload

	timestamp time.Time
}

func newCommand(kind Kind, host HostID) *Command {
	return &Command{kind: kind, host: host, timestamp: time.Now()}
}

// Kind returns the command variant.
func (c *Command) Kind() Kind { return c.kind }

// Host returns the id of the owning page or document.
func (c *Command) Host() HostID { return c.host }

// Batch returns the command's batch token.
func (c *Command) Batch() BatchToken { return c.batch }

// WithBatch sets an explicit batch token and returns the command for chaining.
// AddCommand keeps an explicit token instead of stamping the current gesture's.
func (c *Command) WithBatch(token BatchToken) *Command {
	c.batch = token
	return c
}

// Timestamp returns when the command was created.
func (c *Command) Timestamp() time.Time { return c.timestamp }

// Deltas returns a copy of the captured field deltas.
func (c *Command) Deltas() []ShapeDelta {
	out := make([]ShapeDelta, len(c.deltas))
	copy(out, c.deltas)
	return out
}

// Children returns the children of a transaction, or nil.
func (c *Command) Children() []*Command {
	if c.transaction == nil {
		return nil
	}
	out := make([]*Command, len(c.transaction.children))
	copy(out, c.transaction.children)
	return out
}

// Empty reports whether replaying the command would change nothing.
func (c *Command) Empty() bool {
	switch c.kind {
	case KindPosition, KindResize, KindData, KindLayout:
		return len(c.deltas) == 0
	case KindAdd:
		return len(c.structure.identities) == 0
	case KindDelete:
		return len(c.structure.records) == 0
	case KindIndex:
		return c.index.from == c.index.to
	case KindFreelineAdd, KindFreelineUpdate, KindFreelineErase:
		return c.freeline.empty()
	case KindPageIndex:
		return c.page.from == c.page.to
	case KindPageAdd, KindPageRemove, KindEditor:
		return false
	case KindTransaction:
		for _, child := range c.transaction.children {
			if !child.Empty() {
				return false
			}
		}
		return true
	}
	return true
}

// Execute performs the one-time bookkeeping of variants whose pre-edit state
// had to be captured before the underlying operation ran (delete, page
// remove). For every other variant the live mutation already happened and
// Execute does nothing.
func (c *Command) Execute(host Host) error {
	var err error
	switch c.kind {
	case KindDelete:
		var oh ObjectHost
		if oh, err = objectHost(host, c.kind); err == nil {
			err = c.redoDelete(oh)
		}
	case KindPageRemove:
		var ph PageHost
		if ph, err = pageHost(host, c.kind); err == nil {
			err = c.replayPage(ph, forward)
		}
	case KindTransaction:
		for _, child := range c.transaction.children {
			if err = child.Execute(host); err != nil {
				break
			}
		}
	case KindPosition, KindResize, KindAdd, KindIndex, KindData, KindLayout,
		KindFreelineAdd, KindFreelineUpdate, KindFreelineErase,
		KindPageAdd, KindPageIndex, KindEditor:
		return nil
	default:
		err = fmt.Errorf("unknown command kind %d", c.kind)
	}
	if err != nil {
		return &ReplayError{Op: "execute", Kind: c.kind, Host: c.host, Err: err}
	}
	return nil
}

// Undo reverts the command against host.
func (c *Command) Undo(host Host) error {
	return c.replay(host, backward)
}

// Redo reapplies the command against host.
func (c *Command) Redo(host Host) error {
	return c.replay(host, forward)
}

func (c *Command) replay(host Host, dir direction) error {
	var err error
	switch c.kind {
	case KindPosition, KindResize, KindData, KindLayout:
		var oh ObjectHost
		if oh, err = objectHost(host, c.kind); err == nil {
			err = applyDeltas(oh, c.deltas, dir, c.follow)
		}
	case KindAdd:
		var oh ObjectHost
		if oh, err = objectHost(host, c.kind); err == nil {
			if dir == forward {
				err = c.redoAdd(oh)
			} else {
				err = c.undoAdd(oh)
			}
		}
	case KindDelete:
		var oh ObjectHost
		if oh, err = objectHost(host, c.kind); err == nil {
			if dir == forward {
				err = c.redoDelete(oh)
			} else {
				err = c.undoDelete(oh)
			}
		}
	case KindIndex:
		var oh ObjectHost
		if oh, err = objectHost(host, c.kind); err == nil {
			err = c.replayIndex(oh, dir)
		}
	case KindFreelineAdd, KindFreelineUpdate, KindFreelineErase:
		var oh ObjectHost
		if oh, err = objectHost(host, c.kind); err == nil {
			err = c.replayFreeline(oh, dir)
		}
	case KindPageAdd, KindPageRemove, KindPageIndex:
		var ph PageHost
		if ph, err = pageHost(host, c.kind); err == nil {
			err = c.replayPage(ph, dir)
		}
	case KindTransaction:
		err = c.replayTransaction(host, dir)
	case KindEditor:
		err = c.replayEditor(dir)
	default:
		err = fmt.Errorf("unknown command kind %d", c.kind)
	}
	if err != nil {
		return &ReplayError{Op: dir.String(), Kind: c.kind, Host: c.host, Err: err}
	}
	return nil
}

// Description returns a human-readable description of the command.
func (c *Command) Description() string {
	switch c.kind {
	case KindPosition:
		return plural("Move", len(c.deltas), "object")
	case KindResize:
		return plural("Resize", len(c.deltas), "object")
	case KindData:
		return plural("Edit", len(c.deltas), "object")
	case KindLayout:
		return plural("Layout", len(c.deltas), "object")
	case KindAdd:
		return plural("Add", len(c.structure.identities), "object")
	case KindDelete:
		return plural("Delete", len(c.structure.records), "object")
	case KindIndex:
		return "Change stacking order"
	case KindFreelineAdd:
		return "Draw"
	case KindFreelineUpdate:
		return "Edit stroke"
	case KindFreelineErase:
		return "Erase"
	case KindPageAdd:
		return "Add page"
	case KindPageRemove:
		return "Remove page"
	case KindPageIndex:
		return "Reorder page"
	case KindTransaction:
		if c.transaction.name != "" {
			return c.transaction.name
		}
		if len(c.transaction.children) == 1 {
			return c.transaction.children[0].Description()
		}
		return fmt.Sprintf("%d operations", len(c.transaction.children))
	case KindEditor:
		return "Edit text"
	}
	return "Unknown"
}

func plural(verb string, n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%s %s", verb, noun)
	}
	return fmt.Sprintf("%s %d %ss", verb, n, noun)
}

func objectHost(host Host, kind Kind) (ObjectHost, error) {
	oh, ok := host.(ObjectHost)
	if !ok {
		return nil, fmt.Errorf("%w: %s needs an object host, got %s", ErrHostMismatch, kind, host.HostID())
	}
	return oh, nil
}

func pageHost(host Host, kind Kind) (PageHost, error) {
	ph, ok := host.(PageHost)
	if !ok {
		return nil, fmt.Errorf("%w: %s needs a page host, got %s", ErrHostMismatch, kind, host.HostID())
	}
	return ph, nil
}

// IsHostMismatch reports whether err was caused by replaying against the
// wrong kind of host.
func IsHostMismatch(err error) bool {
	return errors.Is(err, ErrHostMismatch)
}

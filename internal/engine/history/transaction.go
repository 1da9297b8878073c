package history

import (
	"errors"
	"fmt"
)

type transactionPayload struct {
	name     string
	children []*Command
	strict   bool
}

// NewTransactionCommand bundles children created during one multi-step
// operation into a single history entry.
//
// With strict set, undo reverts children in reverse creation order and stops
// at the first failure, leaving the rest un-reverted. Without it, every child
// is reverted regardless of failures and errors are joined.
func NewTransactionCommand(host Host, name string, strict bool, children ...*Command) (*Command, error) {
	if len(children) == 0 {
		return nil, ErrEmptyTransaction
	}
	c := newCommand(KindTransaction, host.HostID())
	c.transaction = &transactionPayload{
		name:     name,
		children: append([]*Command(nil), children...),
		strict:   strict,
	}
	return c, nil
}

// Strict reports whether a transaction uses strict undo ordering.
func (c *Command) Strict() bool {
	return c.transaction != nil && c.transaction.strict
}

func (c *Command) replayTransaction(host Host, dir direction) error {
	t := c.transaction

	if dir == forward {
		for i, child := range t.children {
			if err := child.Redo(host); err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
		}
		return nil
	}

	if t.strict {
		for i := len(t.children) - 1; i >= 0; i-- {
			if err := t.children[i].Undo(host); err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
		}
		return nil
	}

	var errs []error
	for i, child := range t.children {
		if err := child.Undo(host); err != nil {
			errs = append(errs, fmt.Errorf("step %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

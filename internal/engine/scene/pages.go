package scene

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/drawstorm/internal/engine/history"
)

// CreatePage inserts an empty page at index and records it.
func (d *Document) CreatePage(spec PageSpec, index int) (*Page, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if spec.ID == "" {
		spec.ID = history.HostID(uuid.NewString())
	}
	if spec.Name == "" {
		spec.Name = fmt.Sprintf("Page %d", len(d.pages)+1)
	}
	if err := d.InsertPage(history.PageRecord{ID: spec.ID, Name: spec.Name}, index); err != nil {
		return nil, err
	}

	defer d.gesture()()
	cmd, err := history.NewPageAddCommand(d, spec.ID)
	if err != nil {
		return nil, err
	}
	d.record(d, cmd)
	p, _ := d.PageByID(spec.ID)
	return p, nil
}

// DeletePage removes a page and records it. The last page cannot be deleted.
func (d *Document) DeletePage(id history.HostID) error {
	if d.closed {
		return ErrClosed
	}
	if _, ok := d.PageIndex(id); !ok {
		return fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	if len(d.pages) == 1 {
		return ErrLastPage
	}

	defer d.gesture()()
	cmd, err := history.NewPageRemoveCommand(d, id)
	if err != nil {
		return err
	}
	if err := cmd.Execute(d); err != nil {
		return err
	}
	d.record(d, cmd)
	return nil
}

// ReorderPage moves a page to index.
func (d *Document) ReorderPage(id history.HostID, index int) error {
	if d.closed {
		return ErrClosed
	}
	prev, ok := d.PageIndex(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}

	defer d.gesture()()
	if err := d.MovePage(id, index); err != nil {
		return err
	}
	cmd, err := history.NewPageIndexCommand(d, id, prev)
	if err != nil {
		return err
	}
	d.record(d, cmd)
	return nil
}

// ReorderPages puts the pages in order, recording one entry whose undo
// reverts the moves last to first.
func (d *Document) ReorderPages(order ...history.HostID) error {
	if d.closed {
		return ErrClosed
	}
	for _, id := range order {
		if _, ok := d.PageIndex(id); !ok {
			return fmt.Errorf("%w: %s", ErrPageNotFound, id)
		}
	}

	defer d.gesture()()
	var children []*history.Command
	for i, id := range order {
		prev, _ := d.PageIndex(id)
		if prev == i {
			continue
		}
		if err := d.MovePage(id, i); err != nil {
			return err
		}
		cmd, err := history.NewPageIndexCommand(d, id, prev)
		if err != nil {
			return err
		}
		children = append(children, cmd)
	}
	if len(children) == 0 {
		return nil
	}
	txn, err := history.NewTransactionCommand(d, "Reorder pages", true, children...)
	if err != nil {
		return err
	}
	d.record(d, txn)
	return nil
}

// RecordTextEdit records one step taken in an external text editor on a
// page. selection is restored after each undo and redo.
func (d *Document) RecordTextEdit(pageID history.HostID, editor history.TextEditor, selection ...history.ObjectID) error {
	p, err := d.editPage(pageID)
	if err != nil {
		return err
	}
	cmd, err := history.NewEditorCommand(p, editor, selection...)
	if err != nil {
		return err
	}

	defer d.gesture()()
	d.record(p, cmd)
	return nil
}

// SwitchPage activates a page outside of undo and redo.
func (d *Document) SwitchPage(ctx context.Context, id history.HostID) error {
	if d.closed {
		return ErrClosed
	}
	return d.ActivatePage(ctx, id)
}

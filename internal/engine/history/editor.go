package history

type editorPayload struct {
	editor    TextEditor
	selection []ObjectID
}

// NewEditorCommand wraps one step of an external rich-text editor's native
// undo stack. selection is what was selected when the step was taken; it is
// restored after each replay.
func NewEditorCommand(host Host, editor TextEditor, selection ...ObjectID) (*Command, error) {
	if editor == nil {
		return nil, ErrNoEditor
	}
	c := newCommand(KindEditor, host.HostID())
	c.editor = &editorPayload{
		editor:    editor,
		selection: append([]ObjectID(nil), selection...),
	}
	return c, nil
}

func (c *Command) replayEditor(dir direction) error {
	p := c.editor
	var err error
	if dir == forward {
		err = p.editor.Redo()
	} else {
		err = p.editor.Undo()
	}
	if err != nil {
		return err
	}

	switch len(p.selection) {
	case 0:
		return nil
	case 1:
		return p.editor.Focus(p.selection[0])
	default:
		p.editor.Select(append([]ObjectID(nil), p.selection...))
		return nil
	}
}

package history

import "time"

// OperationInfo provides read-only info about a history entry.
// Used for displaying undo/redo history to users.
type OperationInfo struct {
	Description string
	Kind        Kind
	Host        HostID
	Batch       BatchToken
	Timestamp   time.Time
}

type entry struct {
	command   *Command
	timestamp time.Time
}

func (e *entry) info() OperationInfo {
	return OperationInfo{
		Description: e.command.Description(),
		Kind:        e.command.kind,
		Host:        e.command.host,
		Batch:       e.command.batch,
		Timestamp:   e.timestamp,
	}
}

// timeline is the cursor-addressed entry list behind both history
// strategies. entries[cursor] is the next command to undo; everything after
// cursor is redoable future. -1 <= cursor < len(entries) always holds.
type timeline struct {
	entries    []*entry
	cursor     int
	maxEntries int
}

func newTimeline(maxEntries int) *timeline {
	return &timeline{cursor: -1, maxEntries: maxEntries}
}

func (t *timeline) canUndo() bool {
	return t.cursor >= 0
}

func (t *timeline) canRedo() bool {
	return t.cursor < len(t.entries)-1
}

func (t *timeline) state() State {
	return State{CanUndo: t.canUndo(), CanRedo: t.canRedo()}
}

func (t *timeline) lastBatch() BatchToken {
	if len(t.entries) == 0 {
		return ""
	}
	return t.entries[len(t.entries)-1].command.batch
}

func (t *timeline) hasBatch(token BatchToken) bool {
	for _, e := range t.entries {
		if e.command.batch == token {
			return true
		}
	}
	return false
}

// push truncates the redo future, appends cmd and evicts leading batch
// groups while over maxEntries. It returns the number of evicted entries.
func (t *timeline) push(cmd *Command) int {
	clear(t.entries[t.cursor+1:])
	t.entries = t.entries[:t.cursor+1]
	t.entries = append(t.entries, &entry{command: cmd, timestamp: time.Now()})
	t.cursor = len(t.entries) - 1

	evicted := 0
	for t.maxEntries > 0 && len(t.entries) > t.maxEntries {
		n := t.leadingGroup()
		if n >= len(t.entries) {
			break
		}
		clear(t.entries[:n])
		t.entries = t.entries[n:]
		t.cursor -= n
		evicted += n
	}
	return evicted
}

// leadingGroup returns the size of the batch group at the front.
func (t *timeline) leadingGroup() int {
	batch := t.entries[0].command.batch
	if batch == "" {
		return 1
	}
	n := 1
	for n < len(t.entries) && t.entries[n].command.batch == batch {
		n++
	}
	return n
}

// undoBatch runs the entry at the cursor and every contiguous older entry
// sharing its batch token. The cursor is decremented only after run
// succeeds, so an error leaves the failing entry at the cursor.
func (t *timeline) undoBatch(run func(*Command) error) error {
	if !t.canUndo() {
		return nil
	}
	batch := t.entries[t.cursor].command.batch
	for {
		if err := run(t.entries[t.cursor].command); err != nil {
			return err
		}
		t.cursor--
		if batch == "" || t.cursor < 0 || t.entries[t.cursor].command.batch != batch {
			return nil
		}
	}
}

// redoBatch advances over the next entry and every contiguous newer entry
// sharing its batch token. Failures are handed to onErr and the cursor still
// advances past the whole batch.
func (t *timeline) redoBatch(run func(*Command) error, onErr func(*Command, error)) bool {
	if !t.canRedo() {
		return false
	}
	batch := t.entries[t.cursor+1].command.batch
	for {
		t.cursor++
		cmd := t.entries[t.cursor].command
		if err := run(cmd); err != nil {
			onErr(cmd, err)
		}
		if batch == "" || t.cursor+1 >= len(t.entries) || t.entries[t.cursor+1].command.batch != batch {
			return true
		}
	}
}

// removeLast deletes the newest entry matching match.
func (t *timeline) removeLast(match func(*Command) bool) bool {
	for i := len(t.entries) - 1; i >= 0; i-- {
		if !match(t.entries[i].command) {
			continue
		}
		copy(t.entries[i:], t.entries[i+1:])
		t.entries[len(t.entries)-1] = nil
		t.entries = t.entries[:len(t.entries)-1]
		if i <= t.cursor {
			t.cursor--
		}
		return true
	}
	return false
}

func (t *timeline) reset() {
	clear(t.entries)
	t.entries = nil
	t.cursor = -1
}

// undoInfo lists applied entries, oldest first.
func (t *timeline) undoInfo() []OperationInfo {
	result := make([]OperationInfo, 0, t.cursor+1)
	for i := 0; i <= t.cursor; i++ {
		result = append(result, t.entries[i].info())
	}
	return result
}

// redoInfo lists redoable entries, next to redo first.
func (t *timeline) redoInfo() []OperationInfo {
	result := make([]OperationInfo, 0, len(t.entries)-t.cursor-1)
	for i := t.cursor + 1; i < len(t.entries); i++ {
		result = append(result, t.entries[i].info())
	}
	return result
}

func (t *timeline) peekUndo() (OperationInfo, bool) {
	if !t.canUndo() {
		return OperationInfo{}, false
	}
	return t.entries[t.cursor].info(), true
}

func (t *timeline) peekRedo() (OperationInfo, bool) {
	if !t.canRedo() {
		return OperationInfo{}, false
	}
	return t.entries[t.cursor+1].info(), true
}

package history

import (
	"errors"
	"fmt"
)

// Errors returned by history operations.
var (
	// ErrInvalidPath indicates a field path that cannot be parsed.
	ErrInvalidPath = errors.New("invalid field path")

	// ErrUnknownPath indicates a nested path whose owning sub-object does not exist.
	ErrUnknownPath = errors.New("unknown field path")

	// ErrHostMismatch indicates a command replayed against a host lacking the
	// capabilities its kind needs.
	ErrHostMismatch = errors.New("host does not support command kind")

	// ErrNoSuchObject indicates an object required at construction time is missing.
	ErrNoSuchObject = errors.New("no such object")

	// ErrPageNotFound indicates a page required at construction time is missing.
	ErrPageNotFound = errors.New("page not found")

	// ErrEmptyTransaction indicates a transaction created without children.
	ErrEmptyTransaction = errors.New("transaction has no children")

	// ErrNoEditor indicates an editor-integration command without an editor handle.
	ErrNoEditor = errors.New("no text editor")
)

// ReplayError describes a failure while undoing or redoing a command.
type ReplayError struct {
	Op   string // "undo", "redo" or "execute"
	Kind Kind
	Host HostID
	Err  error
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("%s %s on %s: %v", e.Op, e.Kind, e.Host, e.Err)
}

func (e *ReplayError) Unwrap() error {
	return e.Err
}

package app

import (
	"errors"
	"strings"
)

var (
	ErrShutdown            = errors.New("application shut down")
	ErrNoActiveDocument    = errors.New("no active document")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrDocumentAlreadyOpen = errors.New("document already open")
	ErrScriptingDisabled   = errors.New("scripting disabled")
)

// OperationError ties a failure to the document operation or script run
// that produced it, e.g. "script layout.lua: <err>".
type OperationError struct {
	Op     string
	Target string
	Err    error
}

// NewOperationError wraps err for op on target. target may be empty.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{Op: op, Target: target, Err: err}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Target != "" {
		b.WriteByte(' ')
		b.WriteString(e.Target)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ComponentError reports a subsystem (config, events) that failed while the
// application was being wired.
type ComponentError struct {
	Component string
	Action    string
	Err       error
}

// NewComponentError wraps err for the given component and action.
func NewComponentError(component, action string, err error) *ComponentError {
	return &ComponentError{Component: component, Action: action, Err: err}
}

func (e *ComponentError) Error() string {
	if e == nil {
		return ""
	}
	parts := []string{e.Component}
	if e.Action != "" {
		parts = append(parts, e.Action)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ComponentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ErrorList gathers the failures of a shutdown so every document still gets
// closed. It is not safe for concurrent use.
type ErrorList struct {
	errs []error
}

// Add appends err; nil is ignored.
func (l *ErrorList) Add(err error) {
	if err != nil {
		l.errs = append(l.errs, err)
	}
}

// Len returns the number of collected errors.
func (l *ErrorList) Len() int { return len(l.errs) }

func (l *ErrorList) Error() string {
	if l == nil {
		return ""
	}
	msgs := make([]string, len(l.errs))
	for i, err := range l.errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

func (l *ErrorList) Unwrap() []error {
	if l == nil {
		return nil
	}
	return l.errs
}

// AsError returns nil for an empty list and the list otherwise.
func (l *ErrorList) AsError() error {
	if l == nil || len(l.errs) == 0 {
		return nil
	}
	return l
}

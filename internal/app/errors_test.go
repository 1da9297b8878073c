package app

import (
	"errors"
	"testing"
)

func TestOperationError(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name string
		err  *OperationError
		want string
	}{
		{"op only", NewOperationError("open", "", nil), "open"},
		{"with target", NewOperationError("close", "doc", base), "close doc: boom"},
		{"without target", NewOperationError("script", "", base), "script: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}

	err := NewOperationError("script", "a.lua", base)
	if !errors.Is(err, base) || !errors.Is(err, err) {
		t.Error("Is should match the wrapped error and itself")
	}
	if errors.Is(err, NewOperationError("script", "a.lua", base)) {
		t.Error("Is should not match a different wrapper")
	}

	var nilErr *OperationError
	if nilErr.Error() != "" || nilErr.Unwrap() != nil {
		t.Error("nil receiver should be safe")
	}
}

func TestComponentError(t *testing.T) {
	base := errors.New("denied")

	tests := []struct {
		err  *ComponentError
		want string
	}{
		{NewComponentError("config", "watch", base), "config: watch: denied"},
		{NewComponentError("config", "watch", nil), "config: watch"},
		{NewComponentError("events", "", base), "events: denied"},
		{NewComponentError("events", "", nil), "events"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
	if !errors.Is(NewComponentError("config", "load", base), base) {
		t.Error("ComponentError should unwrap")
	}
}

func TestErrorList(t *testing.T) {
	var list ErrorList
	if list.AsError() != nil {
		t.Error("empty list should be nil")
	}

	list.Add(nil)
	list.Add(ErrDocumentNotFound)
	list.Add(ErrShutdown)
	if list.Len() != 2 {
		t.Errorf("Len() = %d, want 2", list.Len())
	}

	err := list.AsError()
	if err.Error() != "document not found; application shut down" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrShutdown) {
		t.Error("Is should find any collected error")
	}
}
